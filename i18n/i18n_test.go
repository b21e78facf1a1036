package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	tcs := []struct {
		in   string
		want language.Tag
	}{
		{"", language.Spanish},
		{"es", language.Spanish},
		{"en", language.English},
		{"en-US", language.English},
		{"fr-FR,en;q=0.8", language.English},
		{"not a tag!!", language.Spanish},
	}
	for _, tc := range tcs {
		if got := ParseTag(tc.in); got != tc.want {
			t.Fatalf("ParseTag(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPrinterUsesCatalog(t *testing.T) {
	if got := Printer("es").Sprintf(KeyBattleTurn, 3); got != "--- Turno 3 ---" {
		t.Fatalf("es turn = %q", got)
	}
	if got := Printer("en").Sprintf(KeyBattleFaint, "Pikachu"); got != "Pikachu fainted!" {
		t.Fatalf("en faint = %q", got)
	}
}
