package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .kbdkit.yaml structure.
type File struct {
	// ImeName is the keyboard's display name, used for default backup names.
	ImeName string `yaml:"ime_name,omitempty"`
	// Package is the application id used as preference file prefix.
	Package string `yaml:"package,omitempty"`

	// FilesDir is the normal files root relative to the data root.
	FilesDir string `yaml:"files_dir,omitempty"`
	// ProtectedDir is the device-protected files root.
	ProtectedDir string `yaml:"protected_dir,omitempty"`
	// PrefsDir holds the default scope preference file.
	PrefsDir string `yaml:"prefs_dir,omitempty"`
	// ProtectedPrefsDir holds the device-protected scope preference file.
	ProtectedPrefsDir string `yaml:"protected_prefs_dir,omitempty"`
	// AssetsDir holds bundled assets (assets/dicts/...).
	AssetsDir string `yaml:"assets_dir,omitempty"`

	// SDKInt is the device API level.
	SDKInt int `yaml:"sdk_int,omitempty"`
	// ABI is the device's primary ABI (e.g. arm64-v8a).
	ABI string `yaml:"abi,omitempty"`
	// Debug marks a debug build of the keyboard.
	Debug bool `yaml:"debug,omitempty"`

	// Library configures gesture library import.
	Library Library `yaml:"library,omitempty"`

	// sdkSet records an explicit sdk_int, so that 0 is rejected instead
	// of defaulted.
	sdkSet bool
}

// Library holds gesture library settings.
type Library struct {
	// ExpectedChecksums maps ABI to the SHA-256 of the known-good library.
	ExpectedChecksums map[string]string `yaml:"expected_checksums,omitempty"`
}

// FileName is the default config file name.
const FileName = ".kbdkit.yaml"

// Defaults
const (
	DefaultImeName = "HeliBoard"
	DefaultPackage = "helium314.keyboard"
	DefaultSDKInt  = 35
	DefaultABI     = "arm64-v8a"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads .kbdkit.yaml from the data root and applies defaults and
// environment overrides (KBDKIT_SDK_INT, KBDKIT_ABI). A missing file is
// not an error.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	f := &File{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		var explicit struct {
			SDKInt *int `yaml:"sdk_int"`
		}
		if err := yaml.Unmarshal(data, &explicit); err == nil && explicit.SDKInt != nil {
			f.sdkSet = true
		}
	}

	if v := os.Getenv("KBDKIT_SDK_INT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("KBDKIT_SDK_INT: %w", err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("KBDKIT_SDK_INT must be positive, got %d", n)
		}
		f.SDKInt = n
		f.sdkSet = true
	}
	if v := os.Getenv("KBDKIT_ABI"); v != "" {
		f.ABI = v
	}

	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *File) applyDefaults() {
	if f.ImeName == "" {
		f.ImeName = DefaultImeName
	}
	if f.Package == "" {
		f.Package = DefaultPackage
	}
	if f.FilesDir == "" {
		f.FilesDir = "files"
	}
	if f.ProtectedDir == "" {
		f.ProtectedDir = filepath.Join("protected", "files")
	}
	if f.PrefsDir == "" {
		f.PrefsDir = "shared_prefs"
	}
	if f.ProtectedPrefsDir == "" {
		f.ProtectedPrefsDir = filepath.Join("protected", "shared_prefs")
	}
	if f.AssetsDir == "" {
		f.AssetsDir = "assets"
	}
	if f.SDKInt == 0 && !f.sdkSet {
		f.SDKInt = DefaultSDKInt
	}
	if f.ABI == "" {
		f.ABI = DefaultABI
	}
}

func (f *File) validate() error {
	if f.SDKInt <= 0 {
		return fmt.Errorf("sdk_int must be positive, got %d", f.SDKInt)
	}
	dirs := map[string]string{
		"files_dir":           f.FilesDir,
		"protected_dir":       f.ProtectedDir,
		"prefs_dir":           f.PrefsDir,
		"protected_prefs_dir": f.ProtectedPrefsDir,
		"assets_dir":          f.AssetsDir,
	}
	for name, dir := range dirs {
		if filepath.IsAbs(dir) {
			return fmt.Errorf("%s must be relative to the data root, got %q", name, dir)
		}
		if strings.HasPrefix(filepath.Clean(dir), "..") {
			return fmt.Errorf("%s escapes the data root: %q", name, dir)
		}
	}
	return nil
}

// ExpectedChecksum returns the known-good library checksum for the
// configured ABI, or "" when none is configured.
func (f *File) ExpectedChecksum() string {
	return strings.ToLower(f.Library.ExpectedChecksums[f.ABI])
}

// BackupFileName returns the suggested archive name, e.g. HeliBoard_backup.zip.
func (f *File) BackupFileName() string {
	return strings.ReplaceAll(f.ImeName, " ", "_") + "_backup.zip"
}

// Layout resolves the configured directories against the data root.
func (f *File) Layout(rootDir string) (*Layout, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	return &Layout{
		Root:              abs,
		filesDir:          filepath.Join(abs, f.FilesDir),
		protectedDir:      filepath.Join(abs, f.ProtectedDir),
		prefsDir:          filepath.Join(abs, f.PrefsDir),
		protectedPrefsDir: filepath.Join(abs, f.ProtectedPrefsDir),
		assetsDir:         filepath.Join(abs, f.AssetsDir),
		pkg:               f.Package,
	}, nil
}
