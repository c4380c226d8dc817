// Package config resolves the on-disk layout of a keyboard data root.
//
// A data root mirrors the keyboard's Android data directories:
//
//	files/                                   normal files root
//	protected/files/                         device-protected files root
//	shared_prefs/<pkg>_preferences.xml       default preference scope
//	protected/shared_prefs/<pkg>_preferences.xml
//	                                         device-protected preference scope
//	assets/dicts/main_<locale>.dict          bundled dictionaries
//
// The layout can be adjusted with a .kbdkit.yaml file in the root
// (see kbdkitfile.go) and a few environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scope selects one of the two preference stores.
type Scope string

const (
	// ScopeDevice is the device-protected store, readable before the user
	// unlocks the device. It holds nearly all keyboard settings.
	ScopeDevice Scope = "device"
	// ScopeDefault is the credential-protected default store.
	ScopeDefault Scope = "default"
)

// ParseScope converts a flag value into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeDevice, "":
		return ScopeDevice, nil
	case ScopeDefault:
		return ScopeDefault, nil
	}
	return "", fmt.Errorf("unknown preference scope %q (valid: device, default)", s)
}

// Layout holds absolute paths of a resolved data root.
type Layout struct {
	Root string

	filesDir          string
	protectedDir      string
	prefsDir          string
	protectedPrefsDir string
	assetsDir         string
	pkg               string
}

// FilesDir returns the normal files root.
func (l *Layout) FilesDir() string { return l.filesDir }

// ProtectedDir returns the device-protected files root.
func (l *Layout) ProtectedDir() string { return l.protectedDir }

// PrefsPath returns the SharedPreferences XML file for a scope.
func (l *Layout) PrefsPath(scope Scope) string {
	name := l.pkg + "_preferences.xml"
	if scope == ScopeDefault {
		return filepath.Join(l.prefsDir, name)
	}
	return filepath.Join(l.protectedPrefsDir, name)
}

// AssetsDictDir returns the directory holding bundled dictionaries.
func (l *Layout) AssetsDictDir() string {
	return filepath.Join(l.assetsDir, "dicts")
}

// DictCacheDir returns the per-locale dictionary cache directory root.
func (l *Layout) DictCacheDir() string {
	return filepath.Join(l.filesDir, "dicts")
}

// LocaleDictDir returns the cache directory for one language tag.
func (l *Layout) LocaleDictDir(tag string) string {
	return filepath.Join(l.DictCacheDir(), tag)
}

// LibraryPath returns the location of the user-supplied gesture library.
func (l *Layout) LibraryPath() string {
	return filepath.Join(l.filesDir, LibraryFileName)
}

// LibraryFileName is the file name the keyboard loads user gesture libraries from.
const LibraryFileName = "libjni_latinime.so"

// ---------------------------------------------------------------------------
// Data directory
// ---------------------------------------------------------------------------

const dataDirName = "kbdkit"

// DataDir returns the XDG data directory for kbdkit, where backups are
// written by default. Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// ResolveRoot picks the data root: the flag value when set explicitly,
// otherwise $KBDKIT_ROOT, otherwise the flag default.
func ResolveRoot(flagValue string, flagChanged bool) string {
	if flagChanged {
		return flagValue
	}
	if env := os.Getenv("KBDKIT_ROOT"); env != "" {
		return env
	}
	return flagValue
}
