// Package langmeta provides language display metadata (native and
// English names, emoji flags) for dictionary listings and CLI output.
package langmeta

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/minios-linux/kbdkit/langtag"
)

// Meta describes language display metadata.
type Meta struct {
	Tag         string
	Name        string // name in the language itself
	EnglishName string
	Flag        string
}

// DisplayName returns the name shown in listings: the native name,
// followed by the English one when they differ.
func (m Meta) DisplayName() string {
	if m.EnglishName == "" || m.EnglishName == m.Name {
		return m.Name
	}
	return m.Name + " (" + m.EnglishName + ")"
}

// Resolve returns best-effort language metadata for a locale string,
// supporting variants like pt_BR, pt-BR and en_us. Unknown languages
// resolve to their tag with no flag.
func Resolve(lang string) Meta {
	tagStr := langtag.ToLanguageTag(lang)
	m := Meta{Tag: tagStr, Name: tagStr, EnglishName: tagStr}

	tag, err := language.Raw.Parse(tagStr)
	if err != nil || tag == language.Und {
		return m
	}
	if name := display.Self.Name(tag); name != "" {
		m.Name = name
	}
	if name := display.English.Tags().Name(tag); name != "" {
		m.EnglishName = name
	}
	m.Flag = flag(tag)
	return m
}

// flag builds the regional indicator pair for the tag's (likely) region.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 || code == "ZZ" {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

// MatchesSearch reports whether any word of the language's English or
// native name starts with term, ignoring case. A blank term matches.
func MatchesSearch(m Meta, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, name := range []string{m.EnglishName, m.Name} {
		for _, word := range strings.Fields(strings.ReplaceAll(name, "(", "")) {
			if strings.HasPrefix(strings.ToLower(word), term) {
				return true
			}
		}
	}
	return false
}

// Suggest returns up to max entries whose names are closest to term by
// edit distance. Entries further than half the term length are dropped.
func Suggest(term string, metas []Meta, max int) []Meta {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || max <= 0 {
		return nil
	}
	limit := len([]rune(term))/2 + 1

	type scored struct {
		meta Meta
		dist int
	}
	var found []scored
	for _, m := range metas {
		best := -1
		for _, word := range candidates(m) {
			d := levenshtein.ComputeDistance(term, word)
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 && best <= limit {
			found = append(found, scored{meta: m, dist: best})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].meta.EnglishName < found[j].meta.EnglishName
	})
	if len(found) > max {
		found = found[:max]
	}
	out := make([]Meta, len(found))
	for i, s := range found {
		out[i] = s.meta
	}
	return out
}

func candidates(m Meta) []string {
	words := []string{strings.ToLower(m.Tag)}
	for _, name := range []string{m.EnglishName, m.Name} {
		for _, w := range strings.Fields(strings.NewReplacer("(", "", ")", "").Replace(name)) {
			words = append(words, strings.ToLower(w))
		}
	}
	return words
}
