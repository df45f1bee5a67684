package ir

// Version constants for the definition schema and resolver.
const (
	// SpecVersion is the CmdSetSpec schema version.
	SpecVersion = "1"

	// ResolverVersion is the cmdres resolver version.
	ResolverVersion = "0.1.0"
)
