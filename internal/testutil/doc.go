// Package testutil provides fixtures shared by the cmdres test suites.
//
// Helpers here build descriptors and definitions with terse call sites.
package testutil
