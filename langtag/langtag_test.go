package langtag

import "testing"

func TestToLanguageTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "en_US", want: "en-US"},
		{in: "en-us", want: "en-US"},
		{in: "pt_br", want: "pt-BR"},
		{in: "de", want: "de"},
		{in: "sr_RS_Latn", want: "sr-Latn-RS"},
		{in: " fr_CA ", want: "fr-CA"},
		{in: "", want: "und"},
		{in: "!!", want: "und"},
		{in: "und", want: "und"},
		{in: "tl", want: "tl"},
		{in: "tl_PH", want: "tl-PH"},
		{in: "mo", want: "mo"},
		{in: "sh", want: "sh"},
		{in: "iw", want: "he"},
		{in: "iw_IL", want: "he-IL"},
		{in: "ji", want: "yi"},
		{in: "in_ID", want: "id-ID"},
		{in: "IN_id", want: "id-ID"},
	}

	for _, tc := range cases {
		if got := ToLanguageTag(tc.in); got != tc.want {
			t.Fatalf("ToLanguageTag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToLanguageTagIdempotent(t *testing.T) {
	for _, in := range []string{"en_US", "sr_RS_Latn", "zh_TW", "xx_yy", "ar-eg", "es_419", "nonsense!", "hi_IN_x_foo", "tl", "iw_IL", "sh"} {
		once := ToLanguageTag(in)
		if twice := ToLanguageTag(once); twice != once {
			t.Fatalf("ToLanguageTag not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestBase(t *testing.T) {
	if got := Base("en_GB"); got != "en" {
		t.Fatalf("Base(en_GB) = %q", got)
	}
	if got := Base(""); got != "und" {
		t.Fatalf("Base(\"\") = %q", got)
	}
}

func TestBestMatch(t *testing.T) {
	id := func(s string) string { return s }

	cases := []struct {
		name       string
		target     string
		candidates []string
		want       int
		wantOK     bool
	}{
		{name: "exact wins", target: "en-US", candidates: []string{"en", "en_GB", "en_US"}, want: 2, wantOK: true},
		{name: "region beats bare language", target: "pt-BR", candidates: []string{"pt", "pt_BR"}, want: 1, wantOK: true},
		{name: "script and region", target: "sr-Latn-RS", candidates: []string{"sr_RS", "sr_RS_Latn"}, want: 1, wantOK: true},
		{name: "language fallback", target: "de-AT", candidates: []string{"fr", "de"}, want: 1, wantOK: true},
		{name: "first wins tie", target: "en-IN", candidates: []string{"en_GB", "en_US"}, want: 0, wantOK: true},
		{name: "no alias match", target: "tl", candidates: []string{"fil", "tl_PH"}, want: 1, wantOK: true},
		{name: "legacy code", target: "iw", candidates: []string{"en", "he_IL"}, want: 1, wantOK: true},
		{name: "no language match", target: "it", candidates: []string{"en", "de"}, want: -1, wantOK: false},
		{name: "empty", target: "en", candidates: nil, want: -1, wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := BestMatch(tc.target, tc.candidates, id)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("BestMatch(%q, %v) = (%d, %v), want (%d, %v)", tc.target, tc.candidates, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
