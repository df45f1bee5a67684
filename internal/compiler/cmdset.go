package compiler

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/cmdres/internal/ir"
)

// RootField is the top-level field holding command-set definitions.
const RootField = "cmdset"

// CompileAll compiles every definition under the "cmdset" field of v, in
// declaration order. A missing field yields no specs and no error.
func CompileAll(v cue.Value) ([]ir.CmdSetSpec, []Warning, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath(RootField))
	if !root.Exists() {
		return nil, nil, nil
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}

	var (
		specs    []ir.CmdSetSpec
		warnings []Warning
	)
	for iter.Next() {
		spec, warns, err := CompileCmdSet(iter.Value())
		if err != nil {
			return specs, warnings, err
		}
		specs = append(specs, *spec)
		warnings = append(warnings, warns...)
	}
	return specs, warnings, nil
}

// CompileCmdSet parses a CUE value into a CmdSetSpec.
//
// The value should be the definition struct itself; its label is the set
// key unless a "key" field overrides it:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`cmdset: Exit: { priority: 9 }`)
//	spec, warns, err := CompileCmdSet(v.LookupPath(cue.ParsePath("cmdset.Exit")))
func CompileCmdSet(v cue.Value) (*ir.CmdSetSpec, []Warning, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, nil, &CompileError{
			Field:   "cmdset",
			Message: "definition must be a struct",
			Pos:     v.Pos(),
		}
	}

	spec := &ir.CmdSetSpec{Key: label(v)}
	c := &compilation{spec: spec}

	if key, ok, err := optionalString(v, "key"); err != nil {
		return nil, nil, err
	} else if ok && strings.TrimSpace(key) != "" {
		spec.Key = strings.TrimSpace(key)
	}
	if spec.Key == "" {
		return nil, nil, &CompileError{
			Field:   "key",
			Message: "command set key is required",
			Pos:     v.Pos(),
		}
	}

	if err := c.priority(v); err != nil {
		return nil, nil, err
	}
	if err := c.mergeType(v); err != nil {
		return nil, nil, err
	}
	if err := c.flags(v); err != nil {
		return nil, nil, err
	}
	if err := c.keyMergeTypes(v); err != nil {
		return nil, nil, err
	}
	if err := c.commands(v); err != nil {
		return nil, nil, err
	}

	return spec, c.warnings, nil
}

// compilation accumulates the spec and its warnings.
type compilation struct {
	spec     *ir.CmdSetSpec
	warnings []Warning
}

func (c *compilation) warn(code, field, msg string, pos cue.Value) {
	c.warnings = append(c.warnings, Warning{
		Set:     c.spec.Key,
		Field:   field,
		Message: msg,
		Code:    code,
		Pos:     pos.Pos(),
	})
}

func (c *compilation) priority(v cue.Value) error {
	pv := v.LookupPath(cue.ParsePath("priority"))
	if !pv.Exists() {
		return nil
	}
	p, err := pv.Int64()
	if err != nil {
		return fieldError("priority", pv, err)
	}
	if p < 0 {
		c.warn(WarnNegativePriority, "priority", fmt.Sprintf("priority %d is negative, using 0", p), pv)
		p = 0
	}
	c.spec.Priority = int(p)
	return nil
}

func (c *compilation) mergeType(v cue.Value) error {
	s, ok, err := optionalString(v, "merge_type")
	if err != nil || !ok {
		return err
	}
	mt, valid := ir.ParseMergeType(s)
	if !valid {
		c.warn(WarnMergeType, "merge_type", fmt.Sprintf("unknown merge type %q, using Union", s),
			v.LookupPath(cue.ParsePath("merge_type")))
	}
	c.spec.MergeType = mt
	return nil
}

func (c *compilation) flags(v cue.Value) error {
	fields := []struct {
		name string
		dst  *bool
	}{
		{"duplicates", &c.spec.Duplicates},
		{"no_objs", &c.spec.NoObjs},
		{"no_exits", &c.spec.NoExits},
		{"no_channels", &c.spec.NoChannels},
	}
	for _, f := range fields {
		fv := v.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			continue
		}
		b, err := fv.Bool()
		if err != nil {
			return fieldError(f.name, fv, err)
		}
		*f.dst = b
	}
	return nil
}

func (c *compilation) keyMergeTypes(v cue.Value) error {
	kv := v.LookupPath(cue.ParsePath("key_merge_types"))
	if !kv.Exists() {
		return nil
	}
	iter, err := kv.Fields()
	if err != nil {
		return fieldError("key_merge_types", kv, err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return fieldError("key_merge_types."+iter.Label(), iter.Value(), err)
		}
		mt, ok := ir.ParseMergeType(s)
		if !ok {
			c.warn(WarnKeyMergeType, "key_merge_types."+iter.Label(),
				fmt.Sprintf("unknown merge type %q, override dropped", s), iter.Value())
			continue
		}
		if c.spec.KeyMergeTypes == nil {
			c.spec.KeyMergeTypes = make(map[string]ir.MergeType)
		}
		c.spec.KeyMergeTypes[iter.Label()] = mt
	}
	return nil
}

func (c *compilation) commands(v cue.Value) error {
	cv := v.LookupPath(cue.ParsePath("commands"))
	if !cv.Exists() {
		return nil
	}
	iter, err := cv.List()
	if err != nil {
		return fieldError("commands", cv, err)
	}
	for i := 0; iter.Next(); i++ {
		cmd, err := c.command(iter.Value(), i)
		if err != nil {
			return err
		}
		c.spec.Commands = append(c.spec.Commands, *cmd)
	}
	return nil
}

func (c *compilation) command(v cue.Value, idx int) (*ir.Command, error) {
	field := fmt.Sprintf("commands[%d]", idx)

	// A bare string is shorthand for { key: "<string>" }.
	if s, err := v.String(); err == nil {
		if ir.NormalizeKey(s) == "" {
			return nil, &CompileError{Field: field, Message: "command key is required", Pos: v.Pos()}
		}
		return ir.NewCommand(s), nil
	}

	key, ok, err := optionalString(v, "key")
	if err != nil {
		return nil, err
	}
	if !ok || ir.NormalizeKey(key) == "" {
		return nil, &CompileError{Field: field + ".key", Message: "command key is required", Pos: v.Pos()}
	}

	var aliases []string
	if av := v.LookupPath(cue.ParsePath("aliases")); av.Exists() {
		if err := av.Decode(&aliases); err != nil {
			return nil, fieldError(field+".aliases", av, err)
		}
	}

	cmd := ir.NewCommand(key, aliases...)
	if dropped := len(aliases) - len(cmd.Aliases); dropped > 0 {
		c.warn(WarnEmptyAlias, field+".aliases",
			fmt.Sprintf("%d empty or redundant aliases dropped", dropped), v)
	}

	help, _, err := optionalString(v, "help")
	if err != nil {
		return nil, err
	}
	cmd.Help = help
	return cmd, nil
}

// optionalString returns the string at name, reporting whether it exists.
func optionalString(v cue.Value, name string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", true, fieldError(name, fv, err)
	}
	return s, true, nil
}

// fieldError reports a value of the wrong kind at field.
func fieldError(field string, v cue.Value, err error) error {
	ce := &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	var inner *CompileError
	if errors.As(formatCUEError(err), &inner) && inner.Pos.IsValid() {
		ce.Message = inner.Message
		ce.Pos = inner.Pos
	}
	return ce
}

// label returns the last path selector of v, unquoted.
func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	sel := sels[len(sels)-1]
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}
