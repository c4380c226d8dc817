// Package advanced implements the keyboard's advanced settings: the
// seek bar values (long-press timeout, emoji cutoff, language swipe
// distance), custom currency keys, switch-back behaviour and the
// visibility rules of dependent settings.
package advanced

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/minios-linux/kbdkit/i18n"
	"github.com/minios-linux/kbdkit/langtag"
	"github.com/minios-linux/kbdkit/prefs"
)

// Preference keys.
const (
	KeyLongPressTimeout      = "key_longpress_timeout"
	KeyEmojiMaxSDK           = "emoji_max_sdk"
	KeyLanguageSwipeDistance = "language_swipe_distance"
	KeyCustomCurrency        = "custom_currency_key"
	KeyABCAfterSymbolSpace   = "abc_after_symbol_space"
	KeyABCAfterEmoji         = "abc_after_emoji"
	KeyABCAfterClip          = "abc_after_clip"
	KeyHorizontalSpaceSwipe  = "horizontal_space_swipe"
	KeyVerticalSpaceSwipe    = "vertical_space_swipe"
	KeyShowDebugSettings     = "show_debug_settings"
	KeyEnabledSubtypes       = "enabled_subtypes"
)

// Space bar swipe actions.
const (
	SwipeMoveCursor     = "move_cursor"
	SwipeSwitchLanguage = "switch_language"
	SwipeNone           = "none"
)

var (
	// ErrOutOfRange is returned when a value is outside a proxy's range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrCurrencyTooLong is returned for a currency symbol over MaxCurrencyLen.
	ErrCurrencyTooLong = errors.New("currency symbol too long")
)

// ---------------------------------------------------------------------------
// Seek bar values
// ---------------------------------------------------------------------------

// ValueProxy reads and writes one integer setting.
type ValueProxy struct {
	Name     string // command-line name
	Key      string
	Min, Max int32

	def  int32
	text func(int32) string
}

// Read returns the stored value or the default.
func (p ValueProxy) Read(s prefs.Store) int32 {
	return prefs.GetInt(s, p.Key, p.def)
}

// ReadDefault returns the value used when nothing is stored.
func (p ValueProxy) ReadDefault() int32 { return p.def }

// Write stores v.
func (p ValueProxy) Write(s prefs.Store, v int32) error {
	if v < p.Min || v > p.Max {
		return fmt.Errorf("%s: %w: %d (allowed %d..%d)", p.Name, ErrOutOfRange, v, p.Min, p.Max)
	}
	return s.Edit().PutInt(p.Key, v).Commit()
}

// WriteDefault removes the stored value so the default applies.
func (p ValueProxy) WriteDefault(s prefs.Store) error {
	return s.Edit().Remove(p.Key).Commit()
}

// ValueText formats v for display.
func (p ValueProxy) ValueText(v int32) string {
	if p.text == nil {
		return fmt.Sprint(v)
	}
	return p.text(v)
}

// LongPressTimeout is the key long-press delay in milliseconds.
func LongPressTimeout() ValueProxy {
	return ValueProxy{
		Name: "longpress-timeout",
		Key:  KeyLongPressTimeout,
		Min:  100,
		Max:  700,
		def:  300,
		text: func(v int32) string { return fmt.Sprintf(i18n.T("%d ms"), v) },
	}
}

var androidVersions = map[int32]string{
	21: "5.0",
	22: "5.1",
	23: "6",
	24: "7.0",
	25: "7.1",
	26: "8.0",
	27: "8.1",
	28: "9",
	29: "10",
	30: "11",
	31: "12",
	32: "12L",
	33: "13",
	34: "14",
	35: "15",
}

// EmojiMaxSDK is the newest Android API level whose emojis are shown.
// It defaults to the device's API level.
func EmojiMaxSDK(sdkInt int) ValueProxy {
	return ValueProxy{
		Name: "emoji-max-sdk",
		Key:  KeyEmojiMaxSDK,
		Min:  21,
		Max:  35,
		def:  int32(sdkInt),
		text: func(v int32) string {
			if name, ok := androidVersions[v]; ok {
				return "Android " + name
			}
			return i18n.T("Android version unknown")
		},
	}
}

// LanguageSwipeDistance is the space bar swipe distance for switching
// languages.
func LanguageSwipeDistance() ValueProxy {
	return ValueProxy{
		Name: "language-swipe-distance",
		Key:  KeyLanguageSwipeDistance,
		Min:  2,
		Max:  18,
		def:  5,
	}
}

// Proxies returns every seek bar setting.
func Proxies(sdkInt int) []ValueProxy {
	return []ValueProxy{LongPressTimeout(), EmojiMaxSDK(sdkInt), LanguageSwipeDistance()}
}

// Lookup returns the proxy with the given command-line name or key.
func Lookup(name string, sdkInt int) (ValueProxy, error) {
	var names []string
	for _, p := range Proxies(sdkInt) {
		if p.Name == name || p.Key == name {
			return p, nil
		}
		names = append(names, p.Name)
	}
	return ValueProxy{}, fmt.Errorf("unknown setting %q (valid: %s)", name, strings.Join(names, ", "))
}

// ---------------------------------------------------------------------------
// Custom currency
// ---------------------------------------------------------------------------

// MaxCurrencyLen is the longest accepted currency symbol, in UTF-16 code
// units as the keyboard counts them.
const MaxCurrencyLen = 8

// ValidateCurrency checks that no whitespace-separated symbol in value is
// longer than MaxCurrencyLen.
func ValidateCurrency(value string) error {
	for _, sym := range strings.Fields(value) {
		if utf16Len(sym) > MaxCurrencyLen {
			return fmt.Errorf("%w: %q has more than %d characters", ErrCurrencyTooLong, sym, MaxCurrencyLen)
		}
	}
	return nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r})) // utf16.RuneLen requires Go 1.23
	}
	return n
}

// Currency returns the custom currency symbols.
func Currency(s prefs.Store) string {
	return prefs.GetString(s, KeyCustomCurrency, "")
}

// SetCurrency stores custom currency symbols after validating them.
func SetCurrency(s prefs.Store, value string) error {
	if err := ValidateCurrency(value); err != nil {
		return err
	}
	return s.Edit().PutString(KeyCustomCurrency, value).Commit()
}

// ResetCurrency clears the custom currency symbols.
func ResetCurrency(s prefs.Store) error {
	return s.Edit().PutString(KeyCustomCurrency, "").Commit()
}

// ---------------------------------------------------------------------------
// Switch back to the main layout
// ---------------------------------------------------------------------------

// SwitchAfter selects when the keyboard returns to the alphabet layout.
type SwitchAfter struct {
	SymbolSpace bool // after typing space on the symbols layout
	Emoji       bool // after picking an emoji
	Clip        bool // after pasting from the clipboard view
}

// ReadSwitchAfter returns the stored switch-back settings.
func ReadSwitchAfter(s prefs.Store) SwitchAfter {
	return SwitchAfter{
		SymbolSpace: prefs.GetBool(s, KeyABCAfterSymbolSpace, true),
		Emoji:       prefs.GetBool(s, KeyABCAfterEmoji, false),
		Clip:        prefs.GetBool(s, KeyABCAfterClip, false),
	}
}

// WriteSwitchAfter stores all three switch-back settings in one commit.
func WriteSwitchAfter(s prefs.Store, sa SwitchAfter) error {
	return s.Edit().
		PutBool(KeyABCAfterSymbolSpace, sa.SymbolSpace).
		PutBool(KeyABCAfterEmoji, sa.Emoji).
		PutBool(KeyABCAfterClip, sa.Clip).
		Commit()
}

// ---------------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------------

// LanguageSwipeDistanceVisible reports whether the swipe distance setting
// applies, i.e. a space bar swipe switches the language.
func LanguageSwipeDistanceVisible(s prefs.Store) bool {
	return prefs.GetString(s, KeyHorizontalSpaceSwipe, SwipeMoveCursor) == SwipeSwitchLanguage ||
		prefs.GetString(s, KeyVerticalSpaceSwipe, SwipeNone) == SwipeSwitchLanguage
}

// DebugSettingsVisible reports whether the debug settings entry is shown.
func DebugSettingsVisible(debugBuild bool, s prefs.Store) bool {
	return debugBuild || prefs.GetBool(s, KeyShowDebugSettings, false)
}

// EnabledLanguages returns the language tags of the enabled keyboard
// subtypes, stored as "locale:layout" pairs separated by ";".
func EnabledLanguages(s prefs.Store) []string {
	raw := prefs.GetString(s, KeyEnabledSubtypes, "")
	seen := map[string]bool{}
	var tags []string
	for _, subtype := range strings.Split(raw, ";") {
		locale, _, _ := strings.Cut(strings.TrimSpace(subtype), ":")
		if locale == "" {
			continue
		}
		tag := langtag.ToLanguageTag(locale)
		if tag == langtag.Undetermined || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return []string{"en-US"}
	}
	return tags
}

// KeyVersion records the tool version that last wrote the settings.
const KeyVersion = "version"

// CheckVersionUpgrade records current as the settings version and
// returns the version stored before, if it differed.
func CheckVersionUpgrade(s prefs.Store, current string) (previous string, upgraded bool, err error) {
	previous = prefs.GetString(s, KeyVersion, "")
	if previous == current {
		return previous, false, nil
	}
	if err := s.Edit().PutString(KeyVersion, current).Commit(); err != nil {
		return previous, false, err
	}
	return previous, true, nil
}
