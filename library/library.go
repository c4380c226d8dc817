// Package library installs and removes the user-supplied gesture typing
// library.
//
// An imported file is first copied to a read-only temporary file next to
// the library and hashed. A checksum different from the known-good one
// is reported with ErrChecksumMismatch; the caller then either confirms
// the install or discards the temporary file.
package library

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/kbdkit/prefs"
)

// KeyChecksum stores the checksum of the installed library in the
// default preference scope.
const KeyChecksum = "lib_checksum"

// TempFileName is the temporary copy awaiting confirmation.
const TempFileName = "tmplib"

// ErrChecksumMismatch is returned by Import when the file is not the
// known-good library.
var ErrChecksumMismatch = errors.New("library checksum does not match the expected checksum")

// Installer manages the library file at Path.
type Installer struct {
	Path  string
	Prefs prefs.Store // default scope
}

// Pending is an imported library copy.
type Pending struct {
	TempPath string
	Checksum string
	Expected string
}

// Status describes the installed library.
type Status struct {
	Installed bool
	Size      int64
	Stored    string // checksum recorded at install time
	Actual    string // checksum of the file on disk
	Expected  string
}

// Verified reports whether the installed file is the known-good library.
func (s Status) Verified() bool {
	return s.Installed && s.Expected != "" && s.Actual == s.Expected
}

// Checksum returns the lowercase hex SHA-256 of r.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Checksum(f)
}

func (in *Installer) tempPath() string {
	return filepath.Join(filepath.Dir(in.Path), TempFileName)
}

// Import copies src into the temporary file and installs it when its
// checksum equals expected or force is set. Otherwise the returned
// Pending must be passed to Confirm or Discard, and the error wraps
// ErrChecksumMismatch.
func (in *Installer) Import(src, expected string, force bool) (Pending, error) {
	tmp := in.tempPath()
	p := Pending{TempPath: tmp, Expected: strings.ToLower(expected)}

	if err := copyReadOnly(src, tmp); err != nil {
		os.Remove(tmp)
		return Pending{}, err
	}
	sum, err := fileChecksum(tmp)
	if err != nil {
		os.Remove(tmp)
		return Pending{}, err
	}
	p.Checksum = sum

	if sum == p.Expected || force {
		return p, in.Confirm(p)
	}
	return p, fmt.Errorf("%w (got %s)", ErrChecksumMismatch, sum)
}

// copyReadOnly copies src to dst and makes dst read-only.
func copyReadOnly(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	// a leftover copy is read-only and cannot be truncated
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, 0444)
}

// Confirm installs a pending library: the old library is removed, the
// checksum is recorded and the temporary file takes its place.
func (in *Installer) Confirm(p Pending) error {
	if _, err := os.Stat(p.TempPath); err != nil {
		return fmt.Errorf("no pending library: %w", err)
	}
	if err := os.Remove(in.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := in.Prefs.Edit().PutString(KeyChecksum, p.Checksum).Commit(); err != nil {
		return err
	}
	return os.Rename(p.TempPath, in.Path)
}

// Discard deletes the temporary file of a pending library.
func (in *Installer) Discard(p Pending) error {
	if err := os.Remove(p.TempPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Delete removes the installed library and its recorded checksum.
func (in *Installer) Delete() error {
	if err := os.Remove(in.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return in.Prefs.Edit().Remove(KeyChecksum).Commit()
}

// Status inspects the installed library.
func (in *Installer) Status(expected string) (Status, error) {
	st := Status{
		Stored:   prefs.GetString(in.Prefs, KeyChecksum, ""),
		Expected: strings.ToLower(expected),
	}
	info, err := os.Stat(in.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.Installed = true
	st.Size = info.Size()
	if st.Actual, err = fileChecksum(in.Path); err != nil {
		return st, err
	}
	return st, nil
}
