package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minios-linux/kbdkit/config"
	"github.com/minios-linux/kbdkit/i18n"
	"github.com/minios-linux/kbdkit/prefs"
)

// ---------------------------------------------------------------------------
// prefs (raw preference access)
// ---------------------------------------------------------------------------

func newPrefsCmd() *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect and edit raw preferences",
		Long: `Inspect and edit the keyboard's raw preferences.

Scopes:
  device    device-protected preferences (keyboard settings, default)
  default   default preferences (gesture library checksum)

Examples:
  kbdkit prefs list
  kbdkit prefs get key_longpress_timeout
  kbdkit prefs set show_hints true --type boolean
  kbdkit prefs export settings.txt --scope default`,
	}

	cmd.PersistentFlags().StringVar(&scopeName, "scope", string(config.ScopeDevice), "Preference scope: device or default")

	// open resolves the data root and the store of the selected scope.
	open := func(cmd *cobra.Command) (*prefs.XMLStore, error) {
		scope, err := config.ParseScope(scopeName)
		if err != nil {
			return nil, err
		}
		e, err := loadEnv(cmd)
		if err != nil {
			return nil, err
		}
		return e.store(scope), nil
	}

	cmd.AddCommand(
		newPrefsListCmd(open),
		newPrefsGetCmd(open),
		newPrefsSetCmd(open),
		newPrefsRmCmd(open),
		newPrefsExportCmd(open),
		newPrefsImportCmd(open),
	)

	return cmd
}

type storeOpener func(cmd *cobra.Command) (*prefs.XMLStore, error)

func newPrefsListCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all preferences",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			values := s.All()
			if len(values) == 0 {
				logInfo(i18n.T("No preferences in %s"), s.Path())
				return nil
			}
			out := cmd.OutOrStdout()
			for _, k := range prefs.Keys(values) {
				v := values[k]
				fmt.Fprintf(out, "%-35s %-8s %s\n", k, v.Kind(), v.Format())
			}
			return nil
		},
	}
}

func newPrefsGetCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one preference value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			v, ok := s.Get(args[0])
			if !ok {
				return fmt.Errorf(i18n.T("preference %q is not set"), args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Format())
			return nil
		},
	}
}

func newPrefsSetCmd(open storeOpener) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one preference value",
		Long: `Set one preference value. --type selects the value type: boolean,
int, long, float, string (default) or set (comma-separated members).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := prefs.ParseKind(typeName)
			if err != nil {
				return err
			}
			v, err := prefs.ParseValue(kind, args[1])
			if err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			if err := s.Edit().Put(args[0], v).Commit(); err != nil {
				return err
			}
			logSuccess("%s = %s (%s)", args[0], v.Format(), v.Kind())
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "string", "Value type")

	return cmd
}

func newPrefsRmCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY...",
		Aliases: []string{"remove"},
		Short:   "Remove preferences",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			e := s.Edit()
			for _, k := range args {
				e.Remove(k)
			}
			if err := e.Commit(); err != nil {
				return err
			}
			logSuccess(i18n.N("Removed %d preference", "Removed %d preferences", len(args)), len(args))
			return nil
		},
	}
}

func newPrefsExportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write a preference snapshot",
		Long:  `Write the preferences of a scope in backup snapshot format, to FILE or stdout.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return prefs.WriteSnapshot(cmd.OutOrStdout(), s.All())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := prefs.WriteSnapshot(f, s.All()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logSuccess(i18n.T("Preferences written to %s"), args[0])
			return nil
		},
	}
}

func newPrefsImportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace preferences with a snapshot",
		Long:  `Replace all preferences of a scope with the content of a snapshot file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			values, err := prefs.ReadSnapshot(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			if err := prefs.Replace(s, values); err != nil {
				return err
			}
			logSuccess(i18n.N("Imported %d preference", "Imported %d preferences", len(values)), len(values))
			return nil
		},
	}
}
