// Package backup writes and restores the keyboard's backup archive.
//
// An archive is a zip file holding user data files (dictionaries,
// blacklists, history, custom background and font), the files of the
// device-protected root under the "unprotected/" prefix, and one
// preference snapshot per scope.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/minios-linux/kbdkit/prefs"
)

// Data locates everything an archive is made from or restored into.
type Data struct {
	FilesDir     string
	ProtectedDir string
	DevicePrefs  prefs.Store // device-protected scope
	DefaultPrefs prefs.Store
}

// Backup writes the archive for d to w.
func Backup(w io.Writer, d Data) error {
	zw := zip.NewWriter(w)

	if err := addFiles(zw, d.FilesDir, ""); err != nil {
		return err
	}
	if err := addFiles(zw, d.ProtectedDir, ProtectedPrefix); err != nil {
		return err
	}
	if err := addSnapshot(zw, DevicePrefsEntry, d.DevicePrefs); err != nil {
		return err
	}
	if err := addSnapshot(zw, DefaultPrefsEntry, d.DefaultPrefs); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return nil
}

// addFiles stores every file below root that matches a backup pattern.
// A missing root contributes nothing.
func addFiles(zw *zip.Writer, root, prefix string) error {
	if root == "" {
		return nil
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !Matches(rel) {
			return nil
		}
		if err := addFile(zw, path, prefix+rel, entry); err != nil {
			return fmt.Errorf("adding %s: %w", path, err)
		}
		return nil
	})
}

func addFile(zw *zip.Writer, path, name string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}

func addSnapshot(zw *zip.Writer, name string, s prefs.Store) error {
	var values map[string]prefs.Value
	if s != nil {
		values = s.All()
	}
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if err := prefs.WriteSnapshot(w, values); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}
