// Package dictionary resolves, lists, imports and removes the keyboard's
// per-locale dictionaries.
//
// User dictionaries live in files/dicts/<language tag>/ and are named
// <type>_user.dict. Internal dictionaries are either a main* file in the
// same directory or a bundled assets/dicts/main_<locale>.dict file.
package dictionary

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/kbdkit/langmeta"
	"github.com/minios-linux/kbdkit/langtag"
)

// Naming conventions of dictionary files.
const (
	UserSuffix      = "user.dict"
	MainPrefix      = "main"
	assetSuffix     = ".dict"
	InternalSummary = "internal"
)

// Dictionary types a user dictionary can have.
const (
	TypeMain     = "main"
	TypeContacts = "contacts"
	TypeApps     = "apps"
	TypeHistory  = "history"
	TypeEmoji    = "emoji"
	TypeUser     = "user"
)

// Types lists the valid dictionary types.
var Types = []string{TypeMain, TypeContacts, TypeApps, TypeHistory, TypeEmoji, TypeUser}

var (
	// ErrUnknownType is returned for a type not in Types.
	ErrUnknownType = errors.New("unknown dictionary type")
	// ErrEmptyFile is returned when importing an empty file.
	ErrEmptyFile = errors.New("dictionary file is empty")
)

// Dirs locates dictionary directories.
type Dirs interface {
	DictCacheDir() string
	AssetsDictDir() string
}

// localeDir returns the cache directory for a language tag.
func localeDir(d Dirs, tag string) string {
	return filepath.Join(d.DictCacheDir(), tag)
}

// UserAndInternal returns the user dictionary files of a locale and
// whether an internal dictionary exists for it. The result is recomputed
// from disk on every call.
func UserAndInternal(d Dirs, locale string) (userDicts []string, hasInternal bool) {
	tag := langtag.ToLanguageTag(locale)
	entries, err := os.ReadDir(localeDir(d, tag))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			switch {
			case strings.HasSuffix(name, UserSuffix):
				userDicts = append(userDicts, filepath.Join(localeDir(d, tag), name))
			case strings.HasPrefix(name, MainPrefix):
				hasInternal = true
			}
		}
	}
	if hasInternal {
		return userDicts, true
	}

	assets := AssetLocales(d)
	_, found := langtag.BestMatch(tag, assets, func(s string) string { return s })
	return userDicts, found
}

// Exists reports whether any user or internal dictionary exists for locale.
func Exists(d Dirs, locale string) bool {
	user, internal := UserAndInternal(d, locale)
	return internal || len(user) > 0
}

// AssetLocales returns the locales of the bundled main dictionaries.
func AssetLocales(d Dirs) []string {
	entries, err := os.ReadDir(d.AssetsDictDir())
	if err != nil {
		return nil
	}
	var locales []string
	for _, e := range entries {
		if loc, ok := assetLocale(e.Name()); ok && !e.IsDir() {
			locales = append(locales, loc)
		}
	}
	return locales
}

// assetLocale extracts <locale> from main_<locale>.dict.
func assetLocale(name string) (string, bool) {
	if !strings.HasPrefix(name, MainPrefix+"_") || !strings.HasSuffix(name, assetSuffix) {
		return "", false
	}
	loc := strings.TrimSuffix(strings.TrimPrefix(name, MainPrefix+"_"), assetSuffix)
	return loc, loc != ""
}

// Locales returns the language tags that have a dictionary, either in the
// cache directory or bundled, sorted and deduplicated.
func Locales(d Dirs) []string {
	seen := map[string]bool{}
	var tags []string
	add := func(loc string) {
		tag := langtag.ToLanguageTag(loc)
		if tag == langtag.Undetermined || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	if entries, err := os.ReadDir(d.DictCacheDir()); err == nil {
		for _, e := range entries {
			if e.IsDir() && Exists(d, e.Name()) {
				add(e.Name())
			}
		}
	}
	for _, loc := range AssetLocales(d) {
		add(loc)
	}
	sort.Strings(tags)
	return tags
}

// TypeSummary lists the dictionary types of a locale for display: the
// type of every user dictionary, preceded by "internal" when an internal
// dictionary exists and is not replaced by a user main dictionary.
func TypeSummary(userDicts []string, hasInternal bool) []string {
	types := make([]string, 0, len(userDicts)+1)
	hasMain := false
	for _, p := range userDicts {
		t := strings.TrimSuffix(filepath.Base(p), "_"+UserSuffix)
		if t == TypeMain {
			hasMain = true
		}
		types = append(types, t)
	}
	if hasInternal && !hasMain {
		types = append([]string{InternalSummary}, types...)
	}
	return types
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

// Entry is one locale of the dictionary listing.
type Entry struct {
	Meta    langmeta.Meta
	Enabled bool
	Types   []string
}

// Listing returns every dictionary locale matching term, enabled
// languages first, then by display name. enabled holds locale strings
// of the enabled keyboard languages; they are compared by language only.
func Listing(d Dirs, enabled []string, term string) []Entry {
	enabledBase := map[string]bool{}
	for _, loc := range enabled {
		enabledBase[langtag.Base(loc)] = true
	}

	var entries []Entry
	for _, tag := range Locales(d) {
		meta := langmeta.Resolve(tag)
		if !langmeta.MatchesSearch(meta, term) {
			continue
		}
		user, internal := UserAndInternal(d, tag)
		entries = append(entries, Entry{
			Meta:    meta,
			Enabled: enabledBase[langtag.Base(tag)],
			Types:   TypeSummary(user, internal),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Enabled != entries[j].Enabled {
			return entries[i].Enabled
		}
		return entries[i].Meta.DisplayName() < entries[j].Meta.DisplayName()
	})
	return entries
}

// Metas returns the language metadata of every dictionary locale.
func Metas(d Dirs) []langmeta.Meta {
	tags := Locales(d)
	metas := make([]langmeta.Meta, len(tags))
	for i, tag := range tags {
		metas[i] = langmeta.Resolve(tag)
	}
	return metas
}

// ---------------------------------------------------------------------------
// Import / remove
// ---------------------------------------------------------------------------

func checkType(dictType string) (string, error) {
	if dictType == "" {
		return TypeMain, nil
	}
	for _, t := range Types {
		if t == dictType {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownType, dictType, strings.Join(Types, ", "))
}

// UserDictPath returns the file of a user dictionary.
func UserDictPath(d Dirs, locale, dictType string) (string, error) {
	t, err := checkType(dictType)
	if err != nil {
		return "", err
	}
	tag := langtag.ToLanguageTag(locale)
	if tag == langtag.Undetermined {
		return "", fmt.Errorf("invalid locale %q", locale)
	}
	return filepath.Join(localeDir(d, tag), t+"_"+UserSuffix), nil
}

// Import copies src into the cache directory of locale as a user
// dictionary of dictType ("main" when empty), replacing an existing one.
// It returns the installed path.
func Import(d Dirs, src, locale, dictType string) (string, error) {
	dst, err := UserDictPath(d, locale, dictType)
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: is a directory", src)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s: %w", src, ErrEmptyFile)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".import-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Remove deletes a user dictionary ("main" when dictType is empty) and
// the locale directory when nothing else is left in it.
func Remove(d Dirs, locale, dictType string) error {
	path, err := UserDictPath(d, locale, dictType)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no %s dictionary for %s: %w", filepath.Base(path), locale, err)
		}
		return err
	}

	dir := filepath.Dir(path)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		os.Remove(dir)
	}
	return nil
}
