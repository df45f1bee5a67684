package ir

import "fmt"

// Candidate is one hypothesis about where the command name ends in a raw
// input line.
//
// Specificity is the zero-based position in the increasing-length expansion:
// a higher value means a longer, more specific name, and callers prefer
// higher-specificity candidates when several names match known commands.
type Candidate struct {
	Name            string `json:"name"`
	Args            string `json:"args"`
	Specificity     int    `json:"specificity"`
	ObjectQualifier string `json:"object_qualifier,omitempty"` // empty = absent
}

// HasQualifier reports whether the user scoped the lookup to an object.
func (c Candidate) HasQualifier() bool {
	return c.ObjectQualifier != ""
}

// String renders the candidate for diagnostics.
func (c Candidate) String() string {
	if c.HasQualifier() {
		return fmt.Sprintf("<cmdname:'%s',args:'%s',obj:'%s'>", c.Name, c.Args, c.ObjectQualifier)
	}
	return fmt.Sprintf("<cmdname:'%s',args:'%s'>", c.Name, c.Args)
}
