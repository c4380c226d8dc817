// Package langtag converts the keyboard's legacy locale strings
// (en_US, sr_RS_Latn, pt-br) into BCP-47 language tags and picks the
// best matching locale out of a candidate list.
package langtag

import (
	"strings"

	"golang.org/x/text/language"
)

// Undetermined is returned for strings that are not language tags.
const Undetermined = "und"

// ToLanguageTag converts a locale string into a BCP-47 tag.
// Unknown but well-formed tags keep their subtags with canonical casing.
// Converting an already converted tag returns it unchanged.
func ToLanguageTag(s string) string {
	parts := split(s)
	if len(parts) == 0 {
		return Undetermined
	}
	parts = reorderScript(parts)
	if lang, ok := legacyLanguages[strings.ToLower(parts[0])]; ok {
		parts[0] = lang
	}
	joined := strings.Join(parts, "-")

	// Raw keeps current codes like tl, mo and sh instead of applying
	// CLDR aliases; the keyboard names its directories after them.
	if tag, err := language.Raw.Parse(joined); err == nil {
		return tag.String()
	}
	if !wellFormed(parts) {
		return Undetermined
	}
	return canonicalize(parts)
}

// legacyLanguages are the withdrawn ISO 639 codes that are replaced by
// their current ones.
var legacyLanguages = map[string]string{
	"iw": "he",
	"ji": "yi",
	"in": "id",
}

// Base returns the language subtag of a locale string, or "und".
func Base(s string) string {
	tag := ToLanguageTag(s)
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		return tag[:i]
	}
	return tag
}

func split(s string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, "-") {
		if p == "" {
			continue
		}
		parts = append(parts, strings.TrimPrefix(p, "#"))
	}
	return parts
}

// reorderScript moves a trailing script subtag in front of the region,
// as in sr_RS_Latn.
func reorderScript(parts []string) []string {
	if len(parts) == 3 && len(parts[1]) == 2 && len(parts[2]) == 4 && isAlpha(parts[2]) {
		return []string{parts[0], parts[2], parts[1]}
	}
	return parts
}

func wellFormed(parts []string) bool {
	if len(parts[0]) < 2 || len(parts[0]) > 8 || !isAlpha(parts[0]) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) < 1 || len(p) > 8 || !isAlnum(p) {
			return false
		}
	}
	return true
}

func canonicalize(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		switch {
		case i == 0:
			out[i] = strings.ToLower(p)
		case len(p) == 2 && isAlpha(p):
			out[i] = strings.ToUpper(p)
		case len(p) == 4 && isAlpha(p):
			out[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		default:
			out[i] = strings.ToLower(p)
		}
	}
	return strings.Join(out, "-")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}

// ---------------------------------------------------------------------------
// Matching
// ---------------------------------------------------------------------------

// Match levels, higher is better.
const (
	noMatch = iota
	matchLanguage
	matchLanguageScript
	matchLanguageRegion
	matchLanguageScriptRegion
	matchExact
)

type subtags struct {
	tag    string
	base   string
	script string
	region string
}

func parseSubtags(s string) subtags {
	tag := ToLanguageTag(s)
	st := subtags{tag: tag}
	t, err := language.Raw.Parse(tag)
	if err != nil {
		// unknown language: compare the raw subtags
		parts := strings.Split(tag, "-")
		st.base = parts[0]
		for _, p := range parts[1:] {
			switch {
			case len(p) == 4 && st.script == "":
				st.script = p
			case len(p) == 2 && st.region == "":
				st.region = p
			}
		}
		return st
	}
	b, sc, r := t.Raw()
	st.base = b.String()
	if sc.String() != "Zzzz" {
		st.script = sc.String()
	}
	if r.String() != "ZZ" {
		st.region = r.String()
	}
	return st
}

func matchLevel(target, candidate subtags) int {
	if target.base == Undetermined || target.base != candidate.base {
		return noMatch
	}
	switch {
	case target.tag == candidate.tag:
		return matchExact
	case target.script == candidate.script && target.region == candidate.region:
		return matchLanguageScriptRegion
	case target.region == candidate.region:
		return matchLanguageRegion
	case target.script == candidate.script:
		return matchLanguageScript
	}
	return matchLanguage
}

// BestMatch returns the index of the candidate whose locale best matches
// target. toLocale extracts the locale string of a candidate. The first
// candidate wins a tie; ok is false when no candidate shares target's
// language.
func BestMatch[T any](target string, candidates []T, toLocale func(T) string) (index int, ok bool) {
	want := parseSubtags(target)
	best, bestLevel := -1, noMatch
	for i, c := range candidates {
		level := matchLevel(want, parseSubtags(toLocale(c)))
		if level > bestLevel {
			best, bestLevel = i, level
		}
	}
	return best, best >= 0
}
