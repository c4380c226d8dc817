package backup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/minios-linux/kbdkit/prefs"
	"github.com/minios-linux/kbdkit/worker"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func newData(t *testing.T) Data {
	t.Helper()
	dir := t.TempDir()
	return Data{
		FilesDir:     filepath.Join(dir, "files"),
		ProtectedDir: filepath.Join(dir, "protected"),
		DevicePrefs:  prefs.NewMemoryStore(),
		DefaultPrefs: prefs.NewMemoryStore(),
	}
}

// zipOf builds an archive from name/content pairs, in order.
func zipOf(t *testing.T, entries ...[2]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		if err != nil {
			t.Fatalf("create %s: %v", e[0], err)
		}
		w.Write([]byte(e[1]))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

// ---------------------------------------------------------------------------
// Round trip
// ---------------------------------------------------------------------------

func TestBackupRestoreRoundTrip(t *testing.T) {
	src := newData(t)
	writeFile(t, src.FilesDir, "dicts/en_US/main_user.dict", "main dictionary\x00\x01")
	writeFile(t, src.FilesDir, "dicts/de/emoji_user.dict", "emoji")
	writeFile(t, src.FilesDir, "blacklists/fr_CA.txt", "merde\n")
	writeFile(t, src.FilesDir, "custom_font", "font bytes")
	writeFile(t, src.FilesDir, "UserHistoryDictionary.en_US.dict/UserHistoryDictionary.en_US.dict.body", "history")
	writeFile(t, src.FilesDir, "not_backed_up.txt", "skip me")
	writeFile(t, src.ProtectedDir, "custom_background_image_night", "png")

	if err := src.DevicePrefs.Edit().PutInt("key_longpress_timeout", 450).PutStringSet("pinned", []string{"a"}).Commit(); err != nil {
		t.Fatal(err)
	}
	if err := src.DefaultPrefs.Edit().PutString("lib_checksum", "abc").Commit(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Backup(&buf, src); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	dst := newData(t)
	rep, err := Restore(bytes.NewReader(buf.Bytes()), int64(buf.Len()), dst)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if rep.Files != 5 || rep.ProtectedFiles != 1 || rep.DevicePrefs != 2 || rep.DefaultPrefs != 1 || len(rep.Ignored) != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	migrated := map[string]string{
		"dicts/en-US/main_user.dict": "main dictionary\x00\x01",
		"dicts/de/emoji_user.dict":   "emoji",
		"blacklists/fr-CA.txt":       "merde\n",
		"custom_font":                "font bytes",
		"UserHistoryDictionary.en-US.dict/UserHistoryDictionary.en-US.dict.body": "history",
	}
	for rel, want := range migrated {
		if got := readFile(t, dst.FilesDir, rel); got != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}
	if got := readFile(t, dst.ProtectedDir, "custom_background_image_night"); got != "png" {
		t.Errorf("protected file = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dst.FilesDir, "not_backed_up.txt")); !os.IsNotExist(err) {
		t.Errorf("unmatched file was restored: %v", err)
	}

	if got := prefs.GetInt(dst.DevicePrefs, "key_longpress_timeout", 0); got != 450 {
		t.Errorf("device pref = %d", got)
	}
	if got := prefs.GetString(dst.DefaultPrefs, "lib_checksum", ""); got != "abc" {
		t.Errorf("default pref = %q", got)
	}
}

func TestRestoreKeepsCurrentLanguageCodes(t *testing.T) {
	src := newData(t)
	writeFile(t, src.FilesDir, "dicts/tl/main_user.dict", "tagalog")
	writeFile(t, src.FilesDir, "blacklists/sh.txt", "serbo-croatian")
	writeFile(t, src.FilesDir, "dicts/iw_IL/emoji_user.dict", "hebrew")

	var buf bytes.Buffer
	if err := Backup(&buf, src); err != nil {
		t.Fatalf("Backup: %v", err)
	}
	dst := newData(t)
	if _, err := Restore(bytes.NewReader(buf.Bytes()), int64(buf.Len()), dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	want := map[string]string{
		"dicts/tl/main_user.dict":     "tagalog",
		"blacklists/sh.txt":           "serbo-croatian",
		"dicts/he-IL/emoji_user.dict": "hebrew",
	}
	for rel, content := range want {
		if got := readFile(t, dst.FilesDir, rel); got != content {
			t.Errorf("%s = %q, want %q", rel, got, content)
		}
	}
	if _, err := os.Stat(filepath.Join(dst.FilesDir, "dicts", "fil")); !os.IsNotExist(err) {
		t.Errorf("tl dictionary restored under an alias: %v", err)
	}
}

func TestBackupEntryNames(t *testing.T) {
	src := newData(t)
	writeFile(t, src.FilesDir, "custom_font", "f")
	writeFile(t, src.ProtectedDir, "blacklists/en.txt", "x")

	var buf bytes.Buffer
	if err := Backup(&buf, src); err != nil {
		t.Fatalf("Backup: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"custom_font", "unprotected/blacklists/en.txt", DevicePrefsEntry, DefaultPrefsEntry}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
}

func TestBackupMissingRoots(t *testing.T) {
	d := newData(t) // directories never created
	var buf bytes.Buffer
	if err := Backup(&buf, d); err != nil {
		t.Fatalf("Backup with missing roots: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Restore edge cases
// ---------------------------------------------------------------------------

func TestRestoreIgnoresUnknownEntries(t *testing.T) {
	r := zipOf(t,
		[2]string{"readme.txt", "hello"},
		[2]string{"unprotected/random.bin", "x"},
		[2]string{"custom_font", "font"},
	)
	d := newData(t)
	rep, err := Restore(r, r.Size(), d)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if rep.Files != 1 || len(rep.Ignored) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if got := readFile(t, d.FilesDir, "custom_font"); got != "font" {
		t.Fatalf("custom_font = %q", got)
	}
}

func TestRestoreRejectsEscapingNames(t *testing.T) {
	r := zipOf(t, [2]string{"dicts/../../evil/x_user.dict", "pwned"})
	d := newData(t)
	_, err := Restore(r, r.Size(), d)
	if !errors.Is(err, ErrUnsafeEntry) {
		t.Fatalf("err = %v, want ErrUnsafeEntry", err)
	}
}

func TestRestoreBadSnapshotKeepsPrefs(t *testing.T) {
	d := newData(t)
	d.DevicePrefs.Edit().PutBool("keep", true).Commit()

	r := zipOf(t, [2]string{DevicePrefsEntry, prefs.LabelBool + "\n{broken"})
	_, err := Restore(r, r.Size(), d)
	if !errors.Is(err, prefs.ErrSnapshotParse) {
		t.Fatalf("err = %v, want ErrSnapshotParse", err)
	}
	if !prefs.GetBool(d.DevicePrefs, "keep", false) {
		t.Fatal("store changed after failed snapshot parse")
	}
}

func TestRestoreStopsAtFirstError(t *testing.T) {
	r := zipOf(t,
		[2]string{"custom_font", "font"},
		[2]string{DefaultPrefsEntry, prefs.LabelInt},
		[2]string{"blacklists/en.txt", "never"},
	)
	d := newData(t)
	rep, err := Restore(r, r.Size(), d)
	if err == nil {
		t.Fatal("expected error")
	}
	if rep.Files != 1 {
		t.Fatalf("files restored before the error = %d, want 1", rep.Files)
	}
	if _, err := os.Stat(filepath.Join(d.FilesDir, "blacklists", "en.txt")); !os.IsNotExist(err) {
		t.Fatal("entry after the error was restored")
	}
}

func TestRestoreNotAZip(t *testing.T) {
	r := bytes.NewReader([]byte("definitely not a zip"))
	if _, err := Restore(r, r.Size(), newData(t)); err == nil {
		t.Fatal("expected error")
	}
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

func TestManagerRunsHooksInOrder(t *testing.T) {
	exec := worker.New()
	defer exec.Close()

	var calls []string
	hook := func(name string) func() error {
		return func() error { calls = append(calls, name); return nil }
	}
	hooks := Hooks{
		CheckVersionUpgrade: hook("version"),
		ReloadSubtypes:      hook("subtypes"),
		NewDictionary:       hook("dictionary"),
		RebuildSettings:     hook("settings"),
		RefreshTheme:        hook("theme"),
	}

	src := newData(t)
	writeFile(t, src.FilesDir, "custom_font", "f")
	archive := filepath.Join(t.TempDir(), "HeliBoard_backup.zip")
	if err := NewManager(exec, src, Hooks{}).Backup(archive); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	dst := newData(t)
	rep, err := NewManager(exec, dst, hooks).Restore(archive)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if rep.Files != 1 {
		t.Fatalf("report = %+v", rep)
	}
	want := []string{"version", "subtypes", "dictionary", "settings", "theme"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("hook order = %v, want %v", calls, want)
	}

	// hooks still run when the restore fails
	calls = nil
	if _, err := NewManager(exec, dst, hooks).Restore(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Fatal("expected error for missing archive")
	}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("hooks after failure = %v", calls)
	}
}

func TestManagerBackupError(t *testing.T) {
	exec := worker.New()
	defer exec.Close()

	bad := filepath.Join(t.TempDir(), "no", "such", "dir", "b.zip")
	if err := NewManager(exec, newData(t), Hooks{}).Backup(bad); err == nil {
		t.Fatal("expected error")
	}
}
