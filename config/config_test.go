package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KBDKIT_SDK_INT", "")
	t.Setenv("KBDKIT_ABI", "")
	t.Setenv("KBDKIT_ROOT", "")
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Package != DefaultPackage || f.SDKInt != DefaultSDKInt || f.ABI != DefaultABI {
		t.Fatalf("unexpected defaults: %#v", f)
	}
	if got := f.BackupFileName(); got != "HeliBoard_backup.zip" {
		t.Fatalf("BackupFileName() = %q", got)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
ime_name: My Keyboard
package: org.example.kbd
sdk_int: 30
abi: armeabi-v7a
library:
  expected_checksums:
    armeabi-v7a: ABCDEF
`)
	t.Setenv("KBDKIT_SDK_INT", "33")

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.SDKInt != 33 {
		t.Errorf("SDKInt = %d, want 33 (env override)", f.SDKInt)
	}
	if f.ExpectedChecksum() != "abcdef" {
		t.Errorf("ExpectedChecksum() = %q, want %q", f.ExpectedChecksum(), "abcdef")
	}
	if got := f.BackupFileName(); got != "My_Keyboard_backup.zip" {
		t.Errorf("BackupFileName() = %q", got)
	}

	layout, err := f.Layout(dir)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want := filepath.Join(layout.Root, "shared_prefs", "org.example.kbd_preferences.xml")
	if got := layout.PrefsPath(ScopeDefault); got != want {
		t.Errorf("PrefsPath(default) = %q, want %q", got, want)
	}
	want = filepath.Join(layout.Root, "protected", "shared_prefs", "org.example.kbd_preferences.xml")
	if got := layout.PrefsPath(ScopeDevice); got != want {
		t.Errorf("PrefsPath(device) = %q, want %q", got, want)
	}
	if got := layout.LocaleDictDir("en-US"); got != filepath.Join(layout.Root, "files", "dicts", "en-US") {
		t.Errorf("LocaleDictDir = %q", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"malformed yaml": "files_dir: [",
		"absolute dir":   "files_dir: /data/files",
		"escaping dir":   "assets_dir: ../assets",
		"negative sdk":   "sdk_int: -1",
		"zero sdk":       "sdk_int: 0",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, content)
			if _, err := Load(dir); err == nil {
				t.Fatalf("Load accepted %q", content)
			} else if !strings.Contains(err.Error(), FileName) {
				t.Fatalf("error %q does not name the config file", err)
			}
		})
	}
}

func TestLoadRejectsNonPositiveSDKFromEnv(t *testing.T) {
	clearEnv(t)
	for _, v := range []string{"0", "-3", "abc"} {
		t.Setenv("KBDKIT_SDK_INT", v)
		if f, err := Load(t.TempDir()); err == nil {
			t.Fatalf("KBDKIT_SDK_INT=%s accepted, SDKInt = %d", v, f.SDKInt)
		}
	}
}

func TestParseScope(t *testing.T) {
	if s, err := ParseScope(""); err != nil || s != ScopeDevice {
		t.Fatalf("ParseScope(\"\") = %q, %v", s, err)
	}
	if s, err := ParseScope("default"); err != nil || s != ScopeDefault {
		t.Fatalf("ParseScope(default) = %q, %v", s, err)
	}
	if _, err := ParseScope("global"); err == nil {
		t.Fatal("ParseScope(global) should fail")
	}
}

func TestResolveRootAndDataDir(t *testing.T) {
	clearEnv(t)
	if got := ResolveRoot(".", false); got != "." {
		t.Fatalf("ResolveRoot without env = %q", got)
	}
	t.Setenv("KBDKIT_ROOT", "/tmp/device")
	if got := ResolveRoot(".", false); got != "/tmp/device" {
		t.Fatalf("ResolveRoot env = %q", got)
	}
	if got := ResolveRoot("mine", true); got != "mine" {
		t.Fatalf("ResolveRoot flag = %q", got)
	}

	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	dir, err := DataDir()
	if err != nil || dir != filepath.Join(tmp, "kbdkit") {
		t.Fatalf("DataDir() = %q, %v", dir, err)
	}
}
