package game

import (
	"errors"
	"math"
	"testing"
)

func charmander() Pokemon {
	return Pokemon{
		Number:    4,
		Name:      "Charmander",
		Type1:     "Fire",
		HP:        39,
		Attack:    52,
		Defense:   43,
		SpAttack:  60,
		SpDefense: 50,
		Speed:     65,
		Against:   map[string]float64{"Water": 2, "grass": 0.5},
	}
}

func TestNewPokemonNormalizesAgainst(t *testing.T) {
	p, err := NewPokemon(charmander())
	if err != nil {
		t.Fatalf("new pokemon: %v", err)
	}
	if len(p.Against) != len(Types) {
		t.Fatalf("against entries = %d, want %d", len(p.Against), len(Types))
	}
	if p.Against["water"] != 2 {
		t.Fatalf("against water = %v, want 2", p.Against["water"])
	}
	if p.Against["rock"] != 1 {
		t.Fatalf("against rock = %v, want 1", p.Against["rock"])
	}
}

func TestNewPokemonDropsNoneSecondaryType(t *testing.T) {
	in := charmander()
	in.Type2 = "None"
	p, err := NewPokemon(in)
	if err != nil {
		t.Fatalf("new pokemon: %v", err)
	}
	if p.Type2 != "" {
		t.Fatalf("type2 = %q, want empty", p.Type2)
	}
	if got := p.String(); got != "#004 Charmander (Fire) - HP: 39" {
		t.Fatalf("string = %q", got)
	}
}

func TestValidateRejectsNonPositiveStats(t *testing.T) {
	tcs := []struct {
		name   string
		mutate func(*Pokemon)
	}{
		{"hp", func(p *Pokemon) { p.HP = 0 }},
		{"attack", func(p *Pokemon) { p.Attack = -1 }},
		{"defense", func(p *Pokemon) { p.Defense = 0 }},
		{"sp_attack", func(p *Pokemon) { p.SpAttack = 0 }},
		{"sp_defense", func(p *Pokemon) { p.SpDefense = 0 }},
		{"speed", func(p *Pokemon) { p.Speed = 0 }},
		{"against", func(p *Pokemon) { p.Against = map[string]float64{"fire": -0.5} }},
		{"against_inf", func(p *Pokemon) { p.Against = map[string]float64{"fire": math.Inf(1)} }},
		{"against_nan", func(p *Pokemon) { p.Against = map[string]float64{"fire": math.NaN()} }},
		{"against_huge", func(p *Pokemon) { p.Against = map[string]float64{"fire": 1e300} }},
		{"against_above_max", func(p *Pokemon) { p.Against = map[string]float64{"fire": 4.5} }},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p := charmander()
			tc.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidStat) {
				t.Fatalf("validate error = %v, want %v", err, ErrInvalidStat)
			}
		})
	}
}

func TestValidateAcceptsQuadrupleWeakness(t *testing.T) {
	p := charmander()
	p.Against = map[string]float64{"water": MaxEffectiveness, "ground": 0}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRequiresNameAndType(t *testing.T) {
	p := charmander()
	p.Name = ""
	if err := p.Validate(); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("validate error = %v, want %v", err, ErrInvalidName)
	}
	p = charmander()
	p.Type1 = ""
	if err := p.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("validate error = %v, want %v", err, ErrInvalidType)
	}
}

func TestEffectivenessIsCaseInsensitiveAndNeutralForUnknown(t *testing.T) {
	p, err := NewPokemon(charmander())
	if err != nil {
		t.Fatalf("new pokemon: %v", err)
	}
	tcs := map[string]float64{
		"WATER":    2,
		"Water":    2,
		" grass ":  0.5,
		"shadow":   1,
		"":         1,
		"Fighting": 1,
	}
	for moveType, want := range tcs {
		if got := p.Effectiveness(moveType); got != want {
			t.Fatalf("effectiveness(%q) = %v, want %v", moveType, got, want)
		}
	}

	bare := Pokemon{Name: "Missingno"}
	if got := bare.Effectiveness("fire"); got != 1 {
		t.Fatalf("nil table effectiveness = %v, want 1", got)
	}
}

func TestNormalizeTypeAliases(t *testing.T) {
	if got := NormalizeType("Fighting"); got != "fight" {
		t.Fatalf("normalize = %q, want fight", got)
	}
	if !IsKnownType("DRAGON") {
		t.Fatal("expected dragon to be known")
	}
	if IsKnownType("shadow") {
		t.Fatal("expected shadow to be unknown")
	}
	if got := DisplayType("fire"); got != "Fire" {
		t.Fatalf("display = %q, want Fire", got)
	}
}

func TestCloneDoesNotShareAgainst(t *testing.T) {
	p, err := NewPokemon(charmander())
	if err != nil {
		t.Fatalf("new pokemon: %v", err)
	}
	c := p.Clone()
	c.Against["water"] = 4
	if p.Against["water"] != 2 {
		t.Fatalf("original against water = %v, want 2", p.Against["water"])
	}
}

func TestCombatantReceiveDamage(t *testing.T) {
	p := charmander()
	c := NewCombatant(&p)
	if c.HP != 39 {
		t.Fatalf("hp = %d, want 39", c.HP)
	}
	if c.ReceiveDamage(0) {
		t.Fatal("zero damage should not faint")
	}
	if c.HP != 39 {
		t.Fatalf("hp after zero damage = %d, want 39", c.HP)
	}
	if c.ReceiveDamage(-5) || c.HP != 39 {
		t.Fatalf("negative damage changed hp to %d", c.HP)
	}
	if c.ReceiveDamage(20) {
		t.Fatal("20 damage should not faint")
	}
	if !c.ReceiveDamage(100) {
		t.Fatal("overkill should faint")
	}
	if c.HP != 0 {
		t.Fatalf("hp = %d, want 0", c.HP)
	}
	if !c.ReceiveDamage(0) {
		t.Fatal("zero damage on fainted combatant should report fainted")
	}
	if p.HP != 39 {
		t.Fatalf("stored hp mutated to %d", p.HP)
	}

	c.ResetHP()
	if c.HP != c.MaxHP() || c.Fainted() {
		t.Fatalf("reset hp = %d, want %d", c.HP, c.MaxHP())
	}
}
