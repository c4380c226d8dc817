package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/kbdkit/advanced"
	"github.com/minios-linux/kbdkit/dictionary"
	"github.com/minios-linux/kbdkit/i18n"
	"github.com/minios-linux/kbdkit/langmeta"
)

// ---------------------------------------------------------------------------
// dict (dictionary screen)
// ---------------------------------------------------------------------------

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dict",
		Aliases: []string{"dictionary"},
		Short:   "List, add and remove dictionaries",
		Long: `List, add and remove the keyboard's dictionaries.

Each locale can have an internal dictionary (bundled or downloaded) and
user dictionaries of the types: ` + strings.Join(dictionary.Types, ", ") + `.
A user "main" dictionary replaces the internal one.

Examples:
  kbdkit dict list
  kbdkit dict list --search port
  kbdkit dict add ~/Downloads/main_de.dict --locale de
  kbdkit dict rm de --type emoji`,
	}

	cmd.AddCommand(
		newDictListCmd(),
		newDictShowCmd(),
		newDictAddCmd(),
		newDictRmCmd(),
	)

	return cmd
}

func newDictListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List locales with dictionaries",
		Long: `List all locales that have a dictionary. Enabled keyboard languages
come first (marked with *), the rest is sorted by name. --search keeps
locales with a name word starting with the term.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			entries := dictionary.Listing(e.layout, advanced.EnabledLanguages(e.settings()), search)
			if len(entries) == 0 {
				if search == "" {
					logInfo(i18n.T("No dictionaries found. Add one with 'kbdkit dict add'."))
					return nil
				}
				logWarning(i18n.T("No dictionary matches %q"), search)
				if sugg := langmeta.Suggest(search, dictionary.Metas(e.layout), 3); len(sugg) > 0 {
					names := make([]string, len(sugg))
					for i, m := range sugg {
						names[i] = m.EnglishName
					}
					logInfo(i18n.T("Did you mean: %s?"), joinComma(names))
				}
				return nil
			}

			width := 0
			for _, en := range entries {
				width = max(width, len(en.Meta.Tag))
			}
			out := cmd.OutOrStdout()
			for _, en := range entries {
				mark := " "
				if en.Enabled {
					mark = "*"
				}
				flag := en.Meta.Flag
				if flag == "" {
					flag = "  "
				}
				fmt.Fprintf(out, "%s %s %-*s  %s\n", mark, flag, width, en.Meta.Tag, en.Meta.DisplayName())
				fmt.Fprintf(out, "  %s %-*s  %s\n", "  ", width, "", strings.Join(typeLabels(en.Types), ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by language name")

	return cmd
}

// typeLabels translates the internal dictionary marker.
func typeLabels(types []string) []string {
	out := make([]string, len(types))
	for i, t := range types {
		if t == dictionary.InternalSummary {
			t = i18n.T("internal")
		}
		out[i] = t
	}
	return out
}

func newDictShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show LOCALE",
		Short: "Show the dictionaries of one locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			meta := langmeta.Resolve(args[0])
			user, internal := dictionary.UserAndInternal(e.layout, args[0])

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s)\n", meta.Flag, meta.DisplayName(), meta.Tag)
			if !internal && len(user) == 0 {
				fmt.Fprintf(out, "  %s\n", i18n.T("no dictionaries"))
				return nil
			}
			if internal {
				fmt.Fprintf(out, "  %-10s %s\n", i18n.T("internal"), i18n.T("yes"))
			}
			for _, p := range user {
				t := strings.TrimSuffix(filepath.Base(p), "_"+dictionary.UserSuffix)
				fmt.Fprintf(out, "  %-10s %s\n", t, p)
			}
			return nil
		},
	}
}

func newDictAddCmd() *cobra.Command {
	var locale, dictType string

	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Add a user dictionary",
		Long: `Copy a dictionary file into the data root as a user dictionary of the
given locale and type (default: main). An existing dictionary of the same
type is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			path, err := dictionary.Import(e.layout, args[0], locale, dictType)
			if err != nil {
				return err
			}
			logSuccess(i18n.T("Dictionary installed as %s"), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "Locale of the dictionary (e.g. en-US)")
	cmd.Flags().StringVarP(&dictType, "type", "t", dictionary.TypeMain, "Dictionary type")
	_ = cmd.MarkFlagRequired("locale")
	_ = cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return dictionary.Types, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newDictRmCmd() *cobra.Command {
	var dictType string

	cmd := &cobra.Command{
		Use:     "rm LOCALE",
		Aliases: []string{"remove"},
		Short:   "Remove a user dictionary",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if err := dictionary.Remove(e.layout, args[0], dictType); err != nil {
				return err
			}
			logSuccess(i18n.T("Removed %s dictionary for %s"), dictType, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&dictType, "type", "t", dictionary.TypeMain, "Dictionary type")

	return cmd
}
