package game

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// ErrInvalidStat reports a non-positive combat stat or a multiplier outside [0, 4].
	ErrInvalidStat = errors.New("invalid stat")
	// ErrInvalidType reports a missing primary type.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidName reports an empty name.
	ErrInvalidName = errors.New("invalid name")
)

// MaxEffectiveness is the largest multiplier a dual type can reach (2 x 2).
const MaxEffectiveness = 4.0

// Pokemon is one dataset record. Battles never mutate it; per-battle health lives in Combatant.
type Pokemon struct {
	Number       int    `json:"pokedex_number"`
	Name         string `json:"name"`
	GermanName   string `json:"german_name,omitempty"`
	JapaneseName string `json:"japanese_name,omitempty"`
	Generation   int    `json:"generation"`
	Status       string `json:"status,omitempty"`
	Species      string `json:"species,omitempty"`

	Type1 string `json:"type_1"`
	Type2 string `json:"type_2,omitempty"`

	Height float64 `json:"height_m"`
	Weight float64 `json:"weight_kg"`

	Ability1      string `json:"ability_1,omitempty"`
	Ability2      string `json:"ability_2,omitempty"`
	HiddenAbility string `json:"ability_hidden,omitempty"`

	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`

	CatchRate      int    `json:"catch_rate"`
	BaseFriendship int    `json:"base_friendship"`
	BaseExperience int    `json:"base_experience"`
	GrowthRate     string `json:"growth_rate,omitempty"`

	Against map[string]float64 `json:"against"`
}

// NewPokemon normalizes p (folded effectiveness keys, neutral defaults, dropped "None"
// secondary type) and validates it.
func NewPokemon(p Pokemon) (Pokemon, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Type1 = strings.TrimSpace(p.Type1)
	p.Type2 = strings.TrimSpace(p.Type2)
	if strings.EqualFold(p.Type2, "none") {
		p.Type2 = ""
	}

	against := NeutralAgainst()
	for t, v := range p.Against {
		against[NormalizeType(t)] = v
	}
	p.Against = against

	if err := p.Validate(); err != nil {
		return Pokemon{}, err
	}
	return p, nil
}

// Key is the case-insensitive lookup key for the pokemon's name.
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (p Pokemon) Key() string {
	return Key(p.Name)
}

// Validate checks the invariants the battle engine relies on. A zero defense would
// otherwise divide by zero inside the damage formula.
func (p Pokemon) Validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Type1 == "" {
		return fmt.Errorf("%w: %s has no primary type", ErrInvalidType, p.Name)
	}
	stats := []struct {
		name  string
		value int
	}{
		{"hp", p.HP},
		{"attack", p.Attack},
		{"defense", p.Defense},
		{"sp_attack", p.SpAttack},
		{"sp_defense", p.SpDefense},
		{"speed", p.Speed},
	}
	for _, s := range stats {
		if s.value < 1 {
			return fmt.Errorf("%w: %s %s = %d", ErrInvalidStat, p.Name, s.name, s.value)
		}
	}
	for t, v := range p.Against {
		if math.IsNaN(v) || v < 0 || v > MaxEffectiveness {
			return fmt.Errorf("%w: %s against_%s = %g", ErrInvalidStat, p.Name, t, v)
		}
	}
	return nil
}

// Effectiveness returns the damage multiplier for an attack of moveType. Unknown type
// names are neutral.
func (p Pokemon) Effectiveness(moveType string) float64 {
	if v, ok := p.Against[NormalizeType(moveType)]; ok {
		return v
	}
	return 1.0
}

// TypeNames returns the primary and, when present, secondary type.
func (p Pokemon) TypeNames() []string {
	if p.Type2 == "" {
		return []string{p.Type1}
	}
	return []string{p.Type1, p.Type2}
}

// Clone returns a copy that shares no map with p.
func (p Pokemon) Clone() Pokemon {
	c := p
	if p.Against != nil {
		c.Against = make(map[string]float64, len(p.Against))
		for k, v := range p.Against {
			c.Against[k] = v
		}
	}
	return c
}

func (p Pokemon) String() string {
	return fmt.Sprintf("#%03d %s (%s) - HP: %d", p.Number, p.Name, strings.Join(p.TypeNames(), "/"), p.HP)
}
