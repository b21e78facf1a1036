package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Types lists the 18 type names used as keys of Pokemon.Against, in dataset column order.
var Types = []string{
	"normal", "fire", "water", "electric", "grass", "ice",
	"fight", "poison", "ground", "flying", "psychic", "bug",
	"rock", "ghost", "dragon", "dark", "steel", "fairy",
}

// el csv usa "fight", showdown usa "fighting"
var typeAliases = map[string]string{
	"fighting": "fight",
}

// NormalizeType case-folds a type name and maps known aliases onto the dataset vocabulary.
func NormalizeType(name string) string {
	folded := cases.Fold().String(strings.TrimSpace(name))
	if alias, ok := typeAliases[folded]; ok {
		return alias
	}
	return folded
}

// IsKnownType reports whether name belongs to the 18-type vocabulary.
func IsKnownType(name string) bool {
	n := NormalizeType(name)
	for _, t := range Types {
		if t == n {
			return true
		}
	}
	return false
}

// DisplayType title-cases a type name for output ("fire" -> "Fire").
func DisplayType(name string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}

// NeutralAgainst returns an effectiveness table with every type at 1.0.
func NeutralAgainst() map[string]float64 {
	against := make(map[string]float64, len(Types))
	for _, t := range Types {
		against[t] = 1.0
	}
	return against
}
