package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/store"
)

// StoreOptions holds flags shared by the store subcommands.
type StoreOptions struct {
	*RootOptions
	Database string
}

// StoredSet is a stored definition as printed by list and show.
type StoredSet struct {
	Owner     string         `json:"owner"`
	Key       string         `json:"key"`
	Seq       int64          `json:"seq"`
	Priority  int            `json:"priority"`
	SpecHash  string         `json:"spec_hash"`
	IRVersion string         `json:"ir_version"`
	Spec      *ir.CmdSetSpec `json:"spec,omitempty"`
}

// NewStoreCommand creates the store command and its subcommands.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage per-owner command sets in SQLite",
		Long: `Save, list, show and delete the command-set definitions attached to
owners. Stored sets are resolved with "cmdres resolve --stored OWNER".
Merged sets are never stored.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite store (default from config)")

	cmd.AddCommand(newStoreSaveCommand(opts))
	cmd.AddCommand(newStoreListCommand(opts))
	cmd.AddCommand(newStoreShowCommand(opts))
	cmd.AddCommand(newStoreDeleteCommand(opts))
	cmd.AddCommand(newStoreFindCommand(opts))

	return cmd
}

func newStoreSaveCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <specs-dir> <owner> [set]...",
		Short: "Attach definitions to an owner",
		Long: `Compile the specs dir and store the named definitions for owner. With
no set names every definition is stored. Saving a key again replaces it
in place.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreSave(opts, args[0], args[1], args[2:], cmd)
		},
	}
}

func newStoreListCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list [owner]",
		Short:         "List owners, or the sets of one owner",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := ""
			if len(args) == 1 {
				owner = args[0]
			}
			return runStoreList(opts, owner, cmd)
		},
	}
}

func newStoreShowCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <owner> <key>",
		Short:         "Show one stored definition",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreShow(opts, args[0], args[1], cmd)
		},
	}
}

func newStoreDeleteCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <owner> [key]",
		Short:         "Delete one definition, or all of an owner's",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 2 {
				key = args[1]
			}
			return runStoreDelete(opts, args[0], key, cmd)
		},
	}
}

func newStoreFindCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "find <spec-hash>",
		Short:         "List the owners storing a definition with this hash",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreFind(opts, args[0], cmd)
		},
	}
}

func runStoreSave(opts *StoreOptions, specsDir, owner string, keys []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if loadResult == nil || len(loadErrors) > 0 {
		code, message := firstLoadError(loadErrors)
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	specs := loadResult.CmdSets
	if len(keys) > 0 {
		specs = make([]ir.CmdSetSpec, 0, len(keys))
		for _, key := range keys {
			spec, ok := loadResult.Find(key)
			if !ok {
				return formatter.fail(ExitCommandError, ErrCodeUnknownSet,
					fmt.Sprintf("no command set definition %q", key), nil)
			}
			specs = append(specs, spec)
		}
	}

	st, err := openStore(cmd.Context(), opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	saved := make([]string, 0, len(specs))
	for _, spec := range specs {
		if err := st.SaveCmdSet(cmd.Context(), owner, spec); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		opts.logger().Info("stored command set", zap.String("owner", owner), zap.String("key", spec.Key))
		saved = append(saved, spec.Key)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"owner": owner, "saved": saved})
	}
	fmt.Fprintf(formatter.Writer, "✓ Stored %d command set(s) for %s\n", len(saved), owner)
	return nil
}

func runStoreList(opts *StoreOptions, owner string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(cmd.Context(), opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	if owner == "" {
		owners, err := st.ListOwners(cmd.Context())
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		if formatter.JSON() {
			return formatter.Success(map[string]any{"owners": owners})
		}
		if len(owners) == 0 {
			fmt.Fprintln(formatter.Writer, "No owners.")
		}
		for _, o := range owners {
			fmt.Fprintln(formatter.Writer, o)
		}
		return nil
	}

	records, err := st.LoadRecords(cmd.Context(), owner)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	sets := make([]StoredSet, len(records))
	for i, r := range records {
		sets[i] = storedSet(r, false)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"owner": owner, "cmdsets": sets})
	}
	if len(sets) == 0 {
		fmt.Fprintf(formatter.Writer, "No command sets for %s.\n", owner)
	}
	for _, s := range sets {
		fmt.Fprintf(formatter.Writer, "%3d  %-20s priority %-3d %s\n", s.Seq, s.Key, s.Priority, shortHash(s.SpecHash))
	}
	return nil
}

func runStoreShow(opts *StoreOptions, owner, key string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(cmd.Context(), opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	rec, err := st.LoadCmdSet(cmd.Context(), owner, key)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(ExitFailure, ErrCodeUnknownSet,
			fmt.Sprintf("no command set %q stored for %q", key, owner), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	set := storedSet(rec, true)
	if formatter.JSON() {
		return formatter.Success(set)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s/%s (seq %d, priority %d, %s)\n", set.Owner, set.Key, set.Seq, set.Priority, set.Spec.MergeType)
	fmt.Fprintf(w, "spec_hash %s\n", set.SpecHash)
	for _, c := range set.Spec.Commands {
		fmt.Fprintf(w, "  %s", c.Key)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(w, " %v", c.Aliases)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func runStoreDelete(opts *StoreOptions, owner, key string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(cmd.Context(), opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	var deleted int64
	if key == "" {
		deleted, err = st.DeleteOwner(cmd.Context(), owner)
	} else {
		err = st.DeleteCmdSet(cmd.Context(), owner, key)
		deleted = 1
	}
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(ExitFailure, ErrCodeUnknownSet,
			fmt.Sprintf("no command set %q stored for %q", key, owner), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"owner": owner, "deleted": deleted})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted %d command set(s) for %s\n", deleted, owner)
	return nil
}

func runStoreFind(opts *StoreOptions, hash string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(cmd.Context(), opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	records, err := st.FindBySpecHash(cmd.Context(), hash)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	sets := make([]StoredSet, len(records))
	for i, r := range records {
		sets[i] = storedSet(r, false)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"spec_hash": hash, "cmdsets": sets})
	}
	if len(sets) == 0 {
		fmt.Fprintln(formatter.Writer, "No matching command sets.")
	}
	for _, s := range sets {
		fmt.Fprintf(formatter.Writer, "%s/%s\n", s.Owner, s.Key)
	}
	return nil
}

func storedSet(r store.Record, withSpec bool) StoredSet {
	s := StoredSet{
		Owner:     r.Owner,
		Key:       r.Spec.Key,
		Seq:       r.Seq,
		Priority:  r.Spec.Priority,
		SpecHash:  r.SpecHash,
		IRVersion: r.IRVersion,
	}
	if withSpec {
		spec := r.Spec
		s.Spec = &spec
	}
	return s
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
