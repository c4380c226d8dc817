// kbdkit — Keyboard Kit: manages the data directory of an Android
// keyboard (backups, advanced settings, dictionaries, gesture library).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/kbdkit/config"
	"github.com/minios-linux/kbdkit/i18n"
	"github.com/minios-linux/kbdkit/prefs"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kbdkit",
		Short: "Keyboard Kit: manage an Android keyboard's data directory",
		Long: `kbdkit — Keyboard Kit: manage the data directory of an Android keyboard.

Works on a host copy of the keyboard's data (files/, protected/files/,
shared_prefs/, assets/dicts/). Layout and device properties can be set in
a .kbdkit.yaml file in the data root.

Commands:
  backup      Write a backup archive
  restore     Restore a backup archive
  settings    Show and change advanced settings
  prefs       Inspect and edit raw preferences
  dict        List, add and remove dictionaries
  library     Install or remove the gesture typing library`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Keyboard data root directory (env: KBDKIT_ROOT)")

	root.AddCommand(
		newBackupCmd(),
		newRestoreCmd(),
		newSettingsCmd(),
		newPrefsCmd(),
		newDictCmd(),
		newLibraryCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kbdkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Data root environment
// ---------------------------------------------------------------------------

// env is the resolved data root shared by all commands.
type env struct {
	cfg    *config.File
	layout *config.Layout
	device *prefs.XMLStore
	def    *prefs.XMLStore
}

// flagChanged reports whether a flag was set on the command line.
func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	root := config.ResolveRoot(rootDir, flagChanged(cmd.Flags(), "root"))
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	layout, err := cfg.Layout(root)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, layout: layout}
	if err := e.reloadPrefs(); err != nil {
		return nil, err
	}
	return e, nil
}

// reloadPrefs re-reads both preference files from disk.
func (e *env) reloadPrefs() error {
	device, err := prefs.OpenXML(e.layout.PrefsPath(config.ScopeDevice))
	if err != nil {
		return err
	}
	def, err := prefs.OpenXML(e.layout.PrefsPath(config.ScopeDefault))
	if err != nil {
		return err
	}
	e.device, e.def = device, def
	return nil
}

// store returns the preference store of a scope.
func (e *env) store(scope config.Scope) *prefs.XMLStore {
	if scope == config.ScopeDefault {
		return e.def
	}
	return e.device
}

// settings is the store the keyboard's settings screens write to.
func (e *env) settings() prefs.Store { return e.device }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// confirm asks a yes/no question on stderr and reads the answer from in.
// Anything but y/yes counts as no.
func confirm(in io.Reader, question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
