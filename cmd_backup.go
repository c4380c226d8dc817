package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minios-linux/kbdkit/advanced"
	"github.com/minios-linux/kbdkit/backup"
	"github.com/minios-linux/kbdkit/config"
	"github.com/minios-linux/kbdkit/dictionary"
	"github.com/minios-linux/kbdkit/i18n"
	"github.com/minios-linux/kbdkit/worker"
)

// ---------------------------------------------------------------------------
// backup / restore
// ---------------------------------------------------------------------------

func newBackupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup archive",
		Long: `Write a zip archive with user dictionaries, blacklists, typing history,
custom background images and font, and both preference files.

Without --output the archive is written to the kbdkit data directory
($XDG_DATA_HOME/kbdkit) as <keyboard name>_backup.zip.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if output == "" {
				dir, err := config.DataDir()
				if err != nil {
					return err
				}
				if err := os.MkdirAll(dir, 0755); err != nil {
					return err
				}
				output = filepath.Join(dir, e.cfg.BackupFileName())
			}

			if fileExists(output) {
				logWarning(i18n.T("Overwriting %s"), output)
			}

			exec := worker.New()
			defer exec.Close()

			logInfo(i18n.T("Writing backup to %s"), output)
			if err := backup.NewManager(exec, e.backupData(), backup.Hooks{}).Backup(output); err != nil {
				return fmt.Errorf("%s: %w", i18n.T("backup failed"), err)
			}
			logSuccess(i18n.T("Backup written to %s"), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Archive path (default: data directory)")

	return cmd
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Restore a backup archive",
		Long: `Restore a backup archive into the data root.

Files are written in archive order and legacy locale names (en_US) are
upgraded to language tags (en-US). Preference files replace the current
preferences of their scope. Unknown entries are skipped. The first error
stops the restore; entries restored before it stay in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			exec := worker.New()
			defer exec.Close()

			rep, err := backup.NewManager(exec, e.backupData(), e.restoreHooks()).Restore(args[0])
			for _, name := range rep.Ignored {
				logWarning(i18n.T("Skipped unknown entry %s"), name)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("restore failed"), err)
			}
			logSuccess(i18n.T("Restored %d files, %d protected files, %d + %d preferences"),
				rep.Files, rep.ProtectedFiles, rep.DevicePrefs, rep.DefaultPrefs)
			return nil
		},
	}

	return cmd
}

func (e *env) backupData() backup.Data {
	return backup.Data{
		FilesDir:     e.layout.FilesDir(),
		ProtectedDir: e.layout.ProtectedDir(),
		DevicePrefs:  e.device,
		DefaultPrefs: e.def,
	}
}

// restoreHooks refresh everything that depends on restored data.
func (e *env) restoreHooks() backup.Hooks {
	return backup.Hooks{
		CheckVersionUpgrade: func() error {
			prev, upgraded, err := advanced.CheckVersionUpgrade(e.settings(), version)
			if err != nil {
				return err
			}
			if upgraded && prev != "" {
				logInfo(i18n.T("Settings upgraded from version %s to %s"), prev, version)
			}
			return nil
		},
		ReloadSubtypes: func() error {
			langs := advanced.EnabledLanguages(e.settings())
			logInfo(i18n.N("%d enabled language: %s", "%d enabled languages: %s", len(langs)),
				len(langs), joinComma(langs))
			return nil
		},
		NewDictionary: func() error {
			locales := dictionary.Locales(e.layout)
			logInfo(i18n.N("Dictionaries available for %d locale", "Dictionaries available for %d locales", len(locales)),
				len(locales))
			return nil
		},
		RebuildSettings: e.reloadPrefs,
		RefreshTheme: func() error {
			logInfo(i18n.T("The keyboard picks up the restored theme on its next start"))
			return nil
		},
	}
}
