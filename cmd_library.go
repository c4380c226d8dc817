package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minios-linux/kbdkit/i18n"
	"github.com/minios-linux/kbdkit/library"
)

// ---------------------------------------------------------------------------
// library (gesture typing library)
// ---------------------------------------------------------------------------

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Install or remove the gesture typing library",
		Long: `Install or remove the gesture typing library (libjni_latinime.so).

The library must match the device's ABI (abi in .kbdkit.yaml). Files with
an unexpected checksum are only installed after confirmation.

Examples:
  kbdkit library status
  kbdkit library load ~/Downloads/libjni_latinime.so
  kbdkit library delete`,
	}

	cmd.AddCommand(
		newLibraryStatusCmd(),
		newLibraryLoadCmd(),
		newLibraryDeleteCmd(),
	)

	return cmd
}

func (e *env) installer() *library.Installer {
	return &library.Installer{Path: e.layout.LibraryPath(), Prefs: e.def}
}

func newLibraryStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			st, err := e.installer().Status(e.cfg.ExpectedChecksum())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %-10s %s\n", "abi", e.cfg.ABI)
			if !st.Installed {
				fmt.Fprintf(out, "  %-10s %s\n", "library", i18n.T("not installed"))
				return nil
			}
			fmt.Fprintf(out, "  %-10s %s (%d bytes)\n", "library", e.layout.LibraryPath(), st.Size)
			fmt.Fprintf(out, "  %-10s %s\n", "checksum", st.Actual)
			if st.Stored != "" && st.Stored != st.Actual {
				logWarning(i18n.T("Recorded checksum %s differs from the installed file"), st.Stored)
			}
			if st.Verified() {
				fmt.Fprintf(out, "  %-10s %s\n", "verified", i18n.T("yes"))
			} else {
				fmt.Fprintf(out, "  %-10s %s\n", "verified", i18n.T("no"))
			}
			return nil
		},
	}
}

func newLibraryLoadCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "load FILE",
		Short: "Install a gesture typing library",
		Long: `Install a gesture typing library. When its checksum does not match the
known-good library for the device ABI you are asked to confirm; --force
installs without asking.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			in := e.installer()
			p, err := in.Import(args[0], e.cfg.ExpectedChecksum(), force)
			switch {
			case errors.Is(err, library.ErrChecksumMismatch):
				logWarning(i18n.T("The library checksum does not match the expected library for %s."), e.cfg.ABI)
				logWarning(i18n.T("Using an unknown library may crash the keyboard."))
				if !confirm(cmd.InOrStdin(), i18n.T("Install anyway?")) {
					if err := in.Discard(p); err != nil {
						return err
					}
					logInfo(i18n.T("Library not installed"))
					return nil
				}
				if err := in.Confirm(p); err != nil {
					return err
				}
			case err != nil:
				return err
			}
			logSuccess(i18n.T("Library installed (sha256 %s)"), p.Checksum)
			logInfo(i18n.T("Restart the keyboard to load it"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Install even if the checksum does not match")

	return cmd
}

func newLibraryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the gesture typing library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if err := e.installer().Delete(); err != nil {
				return err
			}
			logSuccess(i18n.T("Library removed"))
			return nil
		},
	}
}
