package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/minios-linux/kbdkit/prefs"
)

// ErrUnsafeEntry is returned for entry names that would escape their root.
var ErrUnsafeEntry = errors.New("unsafe archive entry name")

// Report summarizes a restore.
type Report struct {
	Files          int // written below the files root
	ProtectedFiles int // written below the device-protected root
	DevicePrefs    int // keys restored into the device-protected scope
	DefaultPrefs   int // keys restored into the default scope
	Ignored        []string
}

// Restore reads the archive in r and writes its content into d, in
// archive order. The first error stops the restore; entries already
// written stay in place.
func Restore(r io.ReaderAt, size int64, d Data) (Report, error) {
	var rep Report

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return rep, fmt.Errorf("reading archive: %w", err)
	}

	for _, f := range zr.File {
		name := f.Name
		switch {
		case strings.HasPrefix(name, ProtectedPrefix):
			rel := strings.TrimPrefix(name, ProtectedPrefix)
			if f.FileInfo().IsDir() || !Matches(rel) {
				rep.Ignored = append(rep.Ignored, name)
				continue
			}
			if err := extract(f, d.ProtectedDir, UpgradeFileName(rel)); err != nil {
				return rep, err
			}
			rep.ProtectedFiles++

		case !f.FileInfo().IsDir() && Matches(name):
			if err := extract(f, d.FilesDir, UpgradeFileName(name)); err != nil {
				return rep, err
			}
			rep.Files++

		case name == DevicePrefsEntry:
			n, err := restorePrefs(f, d.DevicePrefs)
			if err != nil {
				return rep, err
			}
			rep.DevicePrefs = n

		case name == DefaultPrefsEntry:
			n, err := restorePrefs(f, d.DefaultPrefs)
			if err != nil {
				return rep, err
			}
			rep.DefaultPrefs = n

		default:
			rep.Ignored = append(rep.Ignored, name)
		}
	}
	return rep, nil
}

// safeJoin resolves a slash-separated relative name below root.
func safeJoin(root, name string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: %q: no target directory", ErrUnsafeEntry, name)
	}
	if path.IsAbs(name) || filepath.IsAbs(name) || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeEntry, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrUnsafeEntry, name)
		}
	}
	return filepath.Join(root, filepath.FromSlash(name)), nil
}

func extract(f *zip.File, root, name string) error {
	dst, err := safeJoin(root, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("restoring %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	return nil
}

// restorePrefs replaces the content of s with the snapshot in f. The
// store is left untouched when the snapshot cannot be parsed.
func restorePrefs(f *zip.File, s prefs.Store) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("restoring %s: no preference store", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	defer rc.Close()

	values, err := prefs.ReadSnapshot(rc)
	if err != nil {
		return 0, fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	if err := prefs.Replace(s, values); err != nil {
		return 0, fmt.Errorf("restoring %s: %w", f.Name, err)
	}
	return len(values), nil
}
