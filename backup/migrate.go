package backup

import (
	"path"
	"strings"

	"github.com/minios-linux/kbdkit/langtag"
)

// userDictSuffix ends every user dictionary file name.
const userDictSuffix = "user.dict"

// layoutNames are layout files whose middle segment is not a locale.
var layoutNames = map[string]bool{
	"symbols":          true,
	"symbols_shifted":  true,
	"symbols_arabic":   true,
	"number":           true,
	"numpad":           true,
	"numpad_landscape": true,
	"phone":            true,
	"phone_symbols":    true,
}

// UpgradeFileName rewrites legacy locale strings (en_US) embedded in a
// backed-up file name into language tags (en-US). Names without a
// locale part are returned unchanged. Applying it twice is the same as
// applying it once.
func UpgradeFileName(name string) string {
	switch {
	case strings.HasSuffix(name, userDictSuffix):
		// dicts/<locale>/<type>_user.dict
		parts := strings.SplitN(name, "/", 3)
		if len(parts) < 3 {
			return name
		}
		parts[1] = langtag.ToLanguageTag(parts[1])
		return strings.Join(parts, "/")

	case strings.HasPrefix(name, "blacklists"):
		// blacklists/<locale>.txt
		dir, file := path.Split(name)
		if dir == "" || !strings.HasSuffix(file, ".txt") {
			return name
		}
		return dir + langtag.ToLanguageTag(strings.TrimSuffix(file, ".txt")) + ".txt"

	case strings.HasPrefix(name, "layouts"):
		// layouts/<kind>.<locale>.txt
		first, second, ok := dottedSegment(name)
		if !ok {
			return name
		}
		seg := name[first+1 : second]
		if layoutNames[seg] {
			return name
		}
		tag := langtag.ToLanguageTag(seg)
		if tag == langtag.Undetermined {
			return name
		}
		return name[:first+1] + tag + name[second:]

	case strings.HasPrefix(name, "UserHistoryDictionary"):
		// UserHistoryDictionary.<locale>.dict/UserHistoryDictionary.<locale>.dict.body
		first, second, ok := dottedSegment(name)
		if !ok {
			return name
		}
		seg := name[first+1 : second]
		tag := langtag.ToLanguageTag(seg)
		return strings.ReplaceAll(name, "."+seg+".", "."+tag+".")
	}
	return name
}

// dottedSegment returns the positions of the first two dots in name.
func dottedSegment(name string) (first, second int, ok bool) {
	first = strings.IndexByte(name, '.')
	if first < 0 {
		return 0, 0, false
	}
	rest := strings.IndexByte(name[first+1:], '.')
	if rest < 0 {
		return 0, 0, false
	}
	return first, first + 1 + rest, true
}
