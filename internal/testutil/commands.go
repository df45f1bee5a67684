package testutil

import "github.com/roach88/cmdres/internal/ir"

// Commands builds one descriptor per key.
func Commands(keys ...string) []*ir.Command {
	cmds := make([]*ir.Command, len(keys))
	for i, k := range keys {
		cmds[i] = ir.NewCommand(k)
	}
	return cmds
}

// OwnedCommands builds one descriptor per key, all owned by owner.
func OwnedCommands(owner string, keys ...string) []*ir.Command {
	cmds := Commands(keys...)
	for _, c := range cmds {
		c.Owner = owner
	}
	return cmds
}

// Spec builds a definition with the given commands.
func Spec(key string, priority int, mt ir.MergeType, keys ...string) ir.CmdSetSpec {
	spec := ir.CmdSetSpec{
		Key:       key,
		Priority:  priority,
		MergeType: mt,
		Commands:  make([]ir.Command, len(keys)),
	}
	for i, k := range keys {
		spec.Commands[i] = *ir.NewCommand(k)
	}
	return spec
}
