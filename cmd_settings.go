package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/kbdkit/advanced"
	"github.com/minios-linux/kbdkit/i18n"
)

// ---------------------------------------------------------------------------
// settings (advanced settings screen)
// ---------------------------------------------------------------------------

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change advanced settings",
		Long: `Show and change the keyboard's advanced settings.

Numeric settings:
  longpress-timeout         Key long-press delay in ms (100-700, default 300)
  emoji-max-sdk             Newest Android version whose emojis are shown
                            (21-35, default: device API level)
  language-swipe-distance   Space bar swipe distance for switching languages
                            (2-18, default 5)

Examples:
  kbdkit settings show
  kbdkit settings set longpress-timeout 450
  kbdkit settings reset emoji-max-sdk
  kbdkit settings currency "₿ Ð"
  kbdkit settings switch-after --emoji=true`,
	}

	cmd.AddCommand(
		newSettingsShowCmd(),
		newSettingsSetCmd(),
		newSettingsResetCmd(),
		newSettingsCurrencyCmd(),
		newSettingsSwitchAfterCmd(),
	)

	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show advanced settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			s := e.settings()
			out := cmd.OutOrStdout()

			for _, p := range advanced.Proxies(e.cfg.SDKInt) {
				if p.Key == advanced.KeyLanguageSwipeDistance && !advanced.LanguageSwipeDistanceVisible(s) {
					continue
				}
				v := p.Read(s)
				marker := ""
				if _, stored := s.Get(p.Key); !stored {
					marker = " " + i18n.T("(default)")
				}
				fmt.Fprintf(out, "  %-25s %s%s\n", p.Name, p.ValueText(v), marker)
			}

			currency := advanced.Currency(s)
			if currency == "" {
				currency = "-"
			}
			fmt.Fprintf(out, "  %-25s %s\n", "currency", currency)

			sa := advanced.ReadSwitchAfter(s)
			fmt.Fprintf(out, "  %-25s symbol-space=%t emoji=%t clip=%t\n", "switch-after", sa.SymbolSpace, sa.Emoji, sa.Clip)
			fmt.Fprintf(out, "  %-25s %s\n", "enabled-languages", joinComma(advanced.EnabledLanguages(s)))
			if advanced.DebugSettingsVisible(e.cfg.Debug, s) {
				fmt.Fprintf(out, "  %-25s %s\n", "debug-settings", i18n.T("visible"))
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Change a numeric setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			p, err := advanced.Lookup(args[0], e.cfg.SDKInt)
			if err != nil {
				return err
			}
			n, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("%s: invalid number %q", p.Name, args[1])
			}
			if err := p.Write(e.settings(), int32(n)); err != nil {
				return err
			}
			logSuccess("%s = %s", p.Name, p.ValueText(int32(n)))
			settingChanged(p.Key)
			return nil
		},
	}
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset NAME",
		Short: "Reset a numeric setting to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			p, err := advanced.Lookup(args[0], e.cfg.SDKInt)
			if err != nil {
				return err
			}
			if err := p.WriteDefault(e.settings()); err != nil {
				return err
			}
			logSuccess(i18n.T("%s reset to default (%s)"), p.Name, p.ValueText(p.ReadDefault()))
			settingChanged(p.Key)
			return nil
		},
	}
}

// settingChanged reports side effects the keyboard applies on change.
func settingChanged(key string) {
	if key == advanced.KeyEmojiMaxSDK {
		logInfo(i18n.T("The keyboard theme is refreshed to apply the new emoji set"))
	}
}

func newSettingsCurrencyCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "currency [SYMBOLS]",
		Short: "Show or set custom currency symbols",
		Long: `Show or set custom currency symbols, separated by spaces.
Each symbol may have at most 8 characters. --reset removes them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			s := e.settings()
			switch {
			case reset:
				if err := advanced.ResetCurrency(s); err != nil {
					return err
				}
				logSuccess(i18n.T("Custom currency symbols removed"))
			case len(args) == 1:
				if err := advanced.SetCurrency(s, args[0]); err != nil {
					return err
				}
				logSuccess(i18n.T("Custom currency symbols set to %q"), args[0])
			default:
				fmt.Fprintln(cmd.OutOrStdout(), advanced.Currency(s))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Remove custom currency symbols")

	return cmd
}

func newSettingsSwitchAfterCmd() *cobra.Command {
	var symbolSpace, emoji, clip bool

	cmd := &cobra.Command{
		Use:   "switch-after",
		Short: "Show or set when to switch back to the letters layout",
		Long: `Show or set when the keyboard switches back to the letters layout.
Only the given flags are changed.

Examples:
  kbdkit settings switch-after
  kbdkit settings switch-after --emoji --clip=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			s := e.settings()
			sa := advanced.ReadSwitchAfter(s)

			fs := cmd.Flags()
			if !flagChanged(fs, "symbol-space") && !flagChanged(fs, "emoji") && !flagChanged(fs, "clip") {
				fmt.Fprintf(cmd.OutOrStdout(), "symbol-space=%t emoji=%t clip=%t\n", sa.SymbolSpace, sa.Emoji, sa.Clip)
				return nil
			}
			if flagChanged(fs, "symbol-space") {
				sa.SymbolSpace = symbolSpace
			}
			if flagChanged(fs, "emoji") {
				sa.Emoji = emoji
			}
			if flagChanged(fs, "clip") {
				sa.Clip = clip
			}
			if err := advanced.WriteSwitchAfter(s, sa); err != nil {
				return err
			}
			logSuccess("symbol-space=%t emoji=%t clip=%t", sa.SymbolSpace, sa.Emoji, sa.Clip)
			return nil
		},
	}

	cmd.Flags().BoolVar(&symbolSpace, "symbol-space", true, "After typing space on the symbols layout")
	cmd.Flags().BoolVar(&emoji, "emoji", false, "After picking an emoji")
	cmd.Flags().BoolVar(&clip, "clip", false, "After pasting from the clipboard view")

	return cmd
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
