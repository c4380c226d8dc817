package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type testDirs struct{ root string }

func (d testDirs) DictCacheDir() string  { return filepath.Join(d.root, "files", "dicts") }
func (d testDirs) AssetsDictDir() string { return filepath.Join(d.root, "assets", "dicts") }

func newDirs(t *testing.T) testDirs {
	t.Helper()
	return testDirs{root: t.TempDir()}
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestExists(t *testing.T) {
	t.Run("bundled dictionary", func(t *testing.T) {
		d := newDirs(t)
		if Exists(d, "fr") {
			t.Fatal("Exists before adding anything")
		}
		touch(t, filepath.Join(d.AssetsDictDir(), "main_fr.dict"), "x")
		if !Exists(d, "fr") {
			t.Fatal("Exists false after adding bundled dictionary")
		}
		if !Exists(d, "fr-CA") {
			t.Fatal("regional locale should fall back to the language's bundled dictionary")
		}
	})

	t.Run("user dictionary", func(t *testing.T) {
		d := newDirs(t)
		if Exists(d, "de") {
			t.Fatal("Exists before adding anything")
		}
		touch(t, filepath.Join(d.DictCacheDir(), "de", "emoji_user.dict"), "x")
		if !Exists(d, "de") {
			t.Fatal("Exists false after adding user dictionary")
		}
	})
}

func TestUserAndInternal(t *testing.T) {
	d := newDirs(t)
	dir := filepath.Join(d.DictCacheDir(), "en-US")
	touch(t, filepath.Join(dir, "main_user.dict"), "x")
	touch(t, filepath.Join(dir, "emoji_user.dict"), "x")
	touch(t, filepath.Join(dir, "main_en_us.dict"), "x")
	touch(t, filepath.Join(dir, "notes.txt"), "x")

	user, internal := UserAndInternal(d, "en_US")
	if !internal {
		t.Fatal("main* file in the cache dir should count as internal")
	}
	want := []string{filepath.Join(dir, "emoji_user.dict"), filepath.Join(dir, "main_user.dict")}
	if !reflect.DeepEqual(user, want) {
		t.Fatalf("user dicts = %v, want %v", user, want)
	}

	if _, internal := UserAndInternal(d, "it"); internal {
		t.Fatal("no internal dictionary expected for it")
	}
}

func TestUserAndInternalCurrentCode(t *testing.T) {
	d := newDirs(t)
	path := filepath.Join(d.DictCacheDir(), "tl", "main_user.dict")
	touch(t, path, "x")

	user, _ := UserAndInternal(d, "tl")
	if !reflect.DeepEqual(user, []string{path}) {
		t.Fatalf("user dicts for tl = %v, want %v", user, []string{path})
	}
	if !Exists(d, "tl") {
		t.Fatal("Exists(tl) = false")
	}
}

func TestTypeSummary(t *testing.T) {
	cases := []struct {
		name     string
		user     []string
		internal bool
		want     []string
	}{
		{name: "internal only", internal: true, want: []string{"internal"}},
		{name: "internal and emoji", user: []string{"/d/emoji_user.dict"}, internal: true, want: []string{"internal", "emoji"}},
		{name: "main replaces internal", user: []string{"/d/main_user.dict"}, internal: true, want: []string{"main"}},
		{name: "user only", user: []string{"/d/contacts_user.dict"}, want: []string{"contacts"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TypeSummary(tc.user, tc.internal); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("TypeSummary = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLocalesAndListing(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.AssetsDictDir(), "main_fr.dict"), "x")
	touch(t, filepath.Join(d.AssetsDictDir(), "main_de.dict"), "x")
	touch(t, filepath.Join(d.AssetsDictDir(), "readme.txt"), "x")
	touch(t, filepath.Join(d.DictCacheDir(), "en-US", "main_user.dict"), "x")
	touch(t, filepath.Join(d.DictCacheDir(), "de", "emoji_user.dict"), "x")
	os.MkdirAll(filepath.Join(d.DictCacheDir(), "it"), 0755) // empty dir is not a locale

	if got, want := Locales(d), []string{"de", "en-US", "fr"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Locales = %v, want %v", got, want)
	}

	entries := Listing(d, []string{"fr_CA"}, "")
	if len(entries) != 3 {
		t.Fatalf("Listing returned %d entries", len(entries))
	}
	if entries[0].Meta.Tag != "fr" || !entries[0].Enabled {
		t.Fatalf("enabled language should come first: %+v", entries[0])
	}
	if !reflect.DeepEqual(entries[0].Types, []string{"internal"}) {
		t.Fatalf("fr types = %v", entries[0].Types)
	}
	for _, e := range entries {
		if e.Meta.Tag == "de" && !reflect.DeepEqual(e.Types, []string{"internal", "emoji"}) {
			t.Fatalf("de types = %v", e.Types)
		}
	}

	filtered := Listing(d, nil, "germ")
	if len(filtered) != 1 || filtered[0].Meta.Tag != "de" {
		t.Fatalf("Listing(germ) = %+v", filtered)
	}
}

func TestImportAndRemove(t *testing.T) {
	d := newDirs(t)
	src := filepath.Join(t.TempDir(), "my.dict")
	touch(t, src, "dictionary data")

	path, err := Import(d, src, "pt_BR", "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if want := filepath.Join(d.DictCacheDir(), "pt-BR", "main_user.dict"); path != want {
		t.Fatalf("Import path = %q, want %q", path, want)
	}
	if data, _ := os.ReadFile(path); string(data) != "dictionary data" {
		t.Fatalf("imported content = %q", data)
	}
	if !Exists(d, "pt-BR") {
		t.Fatal("Exists false after import")
	}

	// replaces an existing dictionary
	touch(t, src, "v2")
	if _, err := Import(d, src, "pt-BR", TypeMain); err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "v2" {
		t.Fatalf("content after re-import = %q", data)
	}

	if err := Remove(d, "pt-BR", ""); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Fatal("empty locale dir should be removed")
	}
	if err := Remove(d, "pt-BR", ""); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("second Remove = %v, want not-exist", err)
	}
}

func TestImportRejects(t *testing.T) {
	d := newDirs(t)
	empty := filepath.Join(t.TempDir(), "empty.dict")
	touch(t, empty, "")
	full := filepath.Join(t.TempDir(), "full.dict")
	touch(t, full, "x")

	if _, err := Import(d, empty, "en", ""); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("empty file: err = %v", err)
	}
	if _, err := Import(d, full, "en", "bogus"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("bad type: err = %v", err)
	}
	if _, err := Import(d, full, "!!", ""); err == nil {
		t.Fatal("invalid locale should fail")
	}
	if _, err := Import(d, filepath.Join(t.TempDir(), "missing"), "en", ""); err == nil {
		t.Fatal("missing source should fail")
	}
}
