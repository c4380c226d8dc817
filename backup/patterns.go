package backup

import "regexp"

// Archive entry names with special meaning.
const (
	// ProtectedPrefix marks files from the device-protected files root.
	ProtectedPrefix = "unprotected/"
	// DevicePrefsEntry holds the device-protected preference scope.
	DevicePrefsEntry = "preferences.json"
	// DefaultPrefsEntry holds the default preference scope.
	DefaultPrefsEntry = "protected_preferences.json"
)

// Patterns select the files that are backed up. They match the whole
// slash-separated path relative to a files root.
var Patterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:blacklists/.*\.txt)$`),
	regexp.MustCompile(`^(?:dicts/.*/.*user\.dict)$`),
	regexp.MustCompile(`^(?:UserHistoryDictionary.*/UserHistoryDictionary.*\.(body|header))$`),
	regexp.MustCompile(`^(?:custom_background_image.*)$`),
	regexp.MustCompile(`^(?:custom_font)$`),
}

// Matches reports whether a relative path is selected by any pattern.
func Matches(rel string) bool {
	for _, re := range Patterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}
