package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/cmdres/internal/ir"
)

// marshalSpec converts a definition to canonical JSON TEXT for storage.
func marshalSpec(spec ir.CmdSetSpec) (string, error) {
	data, err := ir.MarshalSpec(spec)
	if err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	return string(data), nil
}

// unmarshalSpec parses stored TEXT back into a definition. Empty alias lists
// and override maps come back as nil, as the compiler produces them.
func unmarshalSpec(data string) (ir.CmdSetSpec, error) {
	var spec ir.CmdSetSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.CmdSetSpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	if len(spec.KeyMergeTypes) == 0 {
		spec.KeyMergeTypes = nil
	}
	if len(spec.Commands) == 0 {
		spec.Commands = nil
	}
	for i := range spec.Commands {
		if len(spec.Commands[i].Aliases) == 0 {
			spec.Commands[i].Aliases = nil
		}
	}
	return spec, nil
}
