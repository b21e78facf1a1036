package battle

import (
	"math"

	"pokemon-battle/game"
)

const (
	DefaultLevel    = 50
	DefaultPower    = 80
	DefaultMaxTurns = 10000
	JitterMin       = 0.85
	JitterMax       = 1.0
)

// SpecialTypes are the move types resolved against special attack and special defense.
var SpecialTypes = []string{"water", "fire", "grass", "electric", "psychic", "ice", "dragon", "dark", "fairy"}

// Rules holds the constants of the damage formula. Every attack uses the same level and
// base power; there is no per-move power.
type Rules struct {
	Level     int
	Power     int
	MaxTurns  int
	JitterMin float64
	JitterMax float64
	Special   map[string]bool
}

func DefaultRules() Rules {
	special := make(map[string]bool, len(SpecialTypes))
	for _, t := range SpecialTypes {
		special[t] = true
	}
	return Rules{
		Level:     DefaultLevel,
		Power:     DefaultPower,
		MaxTurns:  DefaultMaxTurns,
		JitterMin: JitterMin,
		JitterMax: JitterMax,
		Special:   special,
	}
}

// withDefaults fills zero fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.Level <= 0 {
		r.Level = d.Level
	}
	if r.Power <= 0 {
		r.Power = d.Power
	}
	if r.MaxTurns <= 0 {
		r.MaxTurns = d.MaxTurns
	}
	if r.JitterMin <= 0 && r.JitterMax <= 0 {
		r.JitterMin, r.JitterMax = d.JitterMin, d.JitterMax
	}
	if r.JitterMax < r.JitterMin {
		r.JitterMin, r.JitterMax = r.JitterMax, r.JitterMin
	}
	if r.Special == nil {
		r.Special = d.Special
	}
	return r
}

func (r Rules) IsSpecial(moveType string) bool {
	return r.Special[game.NormalizeType(moveType)]
}

// Hit is the breakdown of one attack.
type Hit struct {
	MoveType      string
	Special       bool
	AttackStat    int
	DefenseStat   int
	Effectiveness float64
	Jitter        float64
	Damage        int
}

// Formula evaluates
//
//	floor((((2*level/5 + 2) * power * atk / def) / 50 + 2) * jitter * effectiveness)
//
// with real division and a single truncation at the end, clamped to [1, MaxInt32]. The
// floor of 1 holds even for zero effectiveness; it is what guarantees battles end.
func (r Rules) Formula(attackStat, defenseStat int, jitter, effectiveness float64) int {
	// Validate rejects these; unchecked callers still must not divide by zero.
	defenseStat = max(defenseStat, 1)
	level := float64(r.Level)
	base := ((2*level/5+2)*float64(r.Power)*float64(attackStat)/float64(defenseStat))/50 + 2
	damage := math.Floor(base * jitter * effectiveness)
	switch {
	case damage < 1 || math.IsNaN(damage):
		return 1
	case damage >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(damage)
}

// Jitter draws the random multiplier uniformly from [JitterMin, JitterMax].
func (r Rules) Jitter(rng Rand) float64 {
	j := r.JitterMin + (r.JitterMax-r.JitterMin)*rng.Float64()
	return min(max(j, r.JitterMin), r.JitterMax)
}

// Hit resolves one attack. An empty moveType defaults to the attacker's primary type.
func (r Rules) Hit(rng Rand, attacker, defender *game.Pokemon, moveType string) Hit {
	r = r.withDefaults()
	if moveType == "" {
		moveType = attacker.Type1
	}
	moveType = game.NormalizeType(moveType)

	h := Hit{MoveType: moveType, Special: r.IsSpecial(moveType)}
	if h.Special {
		h.AttackStat, h.DefenseStat = attacker.SpAttack, defender.SpDefense
	} else {
		h.AttackStat, h.DefenseStat = attacker.Attack, defender.Defense
	}
	h.Effectiveness = defender.Effectiveness(moveType)
	h.Jitter = r.Jitter(rng)
	h.Damage = r.Formula(h.AttackStat, h.DefenseStat, h.Jitter, h.Effectiveness)
	return h
}

func (r Rules) CalculateDamage(rng Rand, attacker, defender *game.Pokemon, moveType string) int {
	return r.Hit(rng, attacker, defender, moveType).Damage
}

// CalculateDamage resolves one attack under DefaultRules.
func CalculateDamage(rng Rand, attacker, defender *game.Pokemon, moveType string) int {
	return DefaultRules().CalculateDamage(rng, attacker, defender, moveType)
}
