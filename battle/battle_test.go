package battle

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"pokemon-battle/game"
)

// seqRand replays a fixed sequence of draws.
type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func mustPokemon(t *testing.T, p game.Pokemon) *game.Pokemon {
	t.Helper()
	out, err := game.NewPokemon(p)
	if err != nil {
		t.Fatalf("new pokemon %s: %v", p.Name, err)
	}
	return &out
}

func fireA(t *testing.T) *game.Pokemon {
	return mustPokemon(t, game.Pokemon{
		Number: 1, Name: "Alpha", Type1: "fire",
		HP: 100, Attack: 80, Defense: 70, SpAttack: 80, SpDefense: 70, Speed: 100,
	})
}

func waterB(t *testing.T) *game.Pokemon {
	return mustPokemon(t, game.Pokemon{
		Number: 2, Name: "Beta", Type1: "water",
		HP: 80, Attack: 60, Defense: 60, SpAttack: 60, SpDefense: 60, Speed: 50,
		Against: map[string]float64{"fire": 2.0},
	})
}

func TestFormulaKnownValues(t *testing.T) {
	r := DefaultRules()
	tcs := []struct {
		atk, def int
		jitter   float64
		eff      float64
		want     int
	}{
		{80, 60, 1.0, 2.0, 97},
		{80, 60, 0.85, 2.0, 83},
		{80, 60, 1.0, 1.0, 48},
		{80, 60, 0.85, 1.0, 41},
		{60, 70, 1.0, 1.0, 32},
		{80, 60, 1.0, 0, 1},
		{1, 255, 0.85, 0.25, 1},
		{80, 60, 1.0, 1e300, math.MaxInt32},
		{80, 60, 1.0, math.Inf(1), math.MaxInt32},
		{80, 60, 1.0, math.NaN(), 1},
	}
	for _, tc := range tcs {
		if got := r.Formula(tc.atk, tc.def, tc.jitter, tc.eff); got != tc.want {
			t.Fatalf("Formula(%d, %d, %v, %v) = %d, want %d", tc.atk, tc.def, tc.jitter, tc.eff, got, tc.want)
		}
	}
}

func TestFormulaAlwaysAtLeastOne(t *testing.T) {
	r := DefaultRules()
	rng := rand.New(rand.NewSource(7))
	multipliers := []float64{0, 0.25, 0.5, 1, 2, 4}
	for i := 0; i < 5000; i++ {
		atk := rng.Intn(255) + 1
		def := rng.Intn(255) + 1
		eff := multipliers[rng.Intn(len(multipliers))]
		for _, jitter := range []float64{JitterMin, JitterMax, JitterMin + rng.Float64()*(JitterMax-JitterMin)} {
			if got := r.Formula(atk, def, jitter, eff); got < 1 {
				t.Fatalf("Formula(%d, %d, %v, %v) = %d, want >= 1", atk, def, jitter, eff, got)
			}
		}
	}
}

func TestJitterStaysInRange(t *testing.T) {
	r := DefaultRules()
	rng := &seqRand{vals: []float64{0, 0.5, 0.9999999}}
	for i := 0; i < 3; i++ {
		j := r.Jitter(rng)
		if j < JitterMin || j > JitterMax {
			t.Fatalf("jitter = %v, want within [%v, %v]", j, JitterMin, JitterMax)
		}
	}
	if j := r.Jitter(&seqRand{vals: []float64{0}}); j != JitterMin {
		t.Fatalf("jitter at 0 = %v, want %v", j, JitterMin)
	}
}

func TestHitSelectsDamageCategory(t *testing.T) {
	a := fireA(t)
	a.Attack = 10
	b := waterB(t)
	b.Defense = 200
	rng := &seqRand{vals: []float64{1}}

	special := DefaultRules().Hit(rng, a, b, "")
	if special.MoveType != "fire" || !special.Special {
		t.Fatalf("default move = %+v, want special fire", special)
	}
	if special.AttackStat != a.SpAttack || special.DefenseStat != b.SpDefense {
		t.Fatalf("special stats = %d/%d, want %d/%d", special.AttackStat, special.DefenseStat, a.SpAttack, b.SpDefense)
	}
	if special.Effectiveness != 2 {
		t.Fatalf("effectiveness = %v, want 2", special.Effectiveness)
	}

	physical := DefaultRules().Hit(rng, a, b, "Normal")
	if physical.Special {
		t.Fatal("normal move should be physical")
	}
	if physical.AttackStat != 10 || physical.DefenseStat != 200 {
		t.Fatalf("physical stats = %d/%d, want 10/200", physical.AttackStat, physical.DefenseStat)
	}
	if physical.Effectiveness != 1 {
		t.Fatalf("effectiveness = %v, want 1", physical.Effectiveness)
	}
}

func TestSuperEffectiveBeatsNeutralTarget(t *testing.T) {
	a := fireA(t)
	weak := waterB(t)
	neutral := waterB(t)
	neutral.Against = game.NeutralAgainst()

	for _, draw := range []float64{0, 0.3, 0.7, 1} {
		superDmg := CalculateDamage(&seqRand{vals: []float64{draw}}, a, weak, "")
		neutralDmg := CalculateDamage(&seqRand{vals: []float64{draw}}, a, neutral, "")
		if superDmg <= neutralDmg {
			t.Fatalf("draw %v: super effective %d <= neutral %d", draw, superDmg, neutralDmg)
		}
	}
}

func TestZeroEffectivenessStillDealsOne(t *testing.T) {
	a := fireA(t)
	ghost := waterB(t)
	ghost.Against = map[string]float64{"fire": 0}
	if got := CalculateDamage(&seqRand{vals: []float64{1}}, a, ghost, "fire"); got != 1 {
		t.Fatalf("damage = %d, want 1", got)
	}
}

func TestOrderFollowsSpeed(t *testing.T) {
	a, b := fireA(t), waterB(t)
	rng := &seqRand{vals: []float64{0.1, 0.9}}
	for i := 0; i < 4; i++ {
		if first, _ := Order(rng, a, b); first != SideOne {
			t.Fatalf("first = %v, want p1", first)
		}
		if first, _ := Order(rng, b, a); first != SideTwo {
			t.Fatalf("first = %v, want p2", first)
		}
	}
	if rng.i != 0 {
		t.Fatalf("speed order consumed %d draws, want 0", rng.i)
	}
}

func TestOrderTieIsCoinFlip(t *testing.T) {
	a := fireA(t)
	b := fireA(t)
	b.Name = "Alpha II"
	rng := NewRand(42)

	const trials = 4000
	ones := 0
	for i := 0; i < trials; i++ {
		if first, _ := Order(rng, a, b); first == SideOne {
			ones++
		}
	}
	if ones < trials*45/100 || ones > trials*55/100 {
		t.Fatalf("side one first %d/%d times, want about half", ones, trials)
	}
}

func TestRunScenarioFasterFireWins(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		a, b := fireA(t), waterB(t)
		res, err := Run(a, b, WithSeed(seed))
		if err != nil {
			t.Fatalf("seed %d: run: %v", seed, err)
		}
		if res.FirstSide != SideOne {
			t.Fatalf("seed %d: first side = %v, want p1", seed, res.FirstSide)
		}
		if !strings.HasPrefix(res.Log[1], "Alpha (Velocidad: 100)") {
			t.Fatalf("seed %d: order line = %q", seed, res.Log[1])
		}
		if !strings.HasPrefix(res.Log[3], "Alpha ataca a Beta por ") {
			t.Fatalf("seed %d: first attack line = %q", seed, res.Log[3])
		}
		hit := res.Events[3].Hit
		if hit.Effectiveness != 2 || !hit.Special || hit.Damage < 83 || hit.Damage > 97 {
			t.Fatalf("seed %d: first hit = %+v", seed, hit)
		}
		// 83 damage or more always knocks out 80 HP.
		if res.Winner != a || res.Turns != 1 || len(res.Log) != 6 {
			t.Fatalf("seed %d: winner %s in %d turns with %d lines", seed, res.Winner.Name, res.Turns, len(res.Log))
		}
		if res.Log[5] != "¡Alpha gana la batalla!" {
			t.Fatalf("seed %d: last line = %q", seed, res.Log[5])
		}
	}
}

func TestRunTerminatesWithOneWinner(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 300; i++ {
		a := randomPokemon(t, rng, "A")
		b := randomPokemon(t, rng, "B")
		res, err := Run(a, b, WithRand(rng))
		if err != nil {
			t.Fatalf("battle %d: %v", i, err)
		}
		if res.Winner != a && res.Winner != b {
			t.Fatalf("battle %d: winner is neither input", i)
		}
		if res.Winner == res.Loser {
			t.Fatalf("battle %d: winner equals loser", i)
		}
		winner := res.Combatants[res.WinnerSide]
		loser := res.Combatants[other(res.WinnerSide)]
		if winner.HP <= 0 {
			t.Fatalf("battle %d: winner hp = %d", i, winner.HP)
		}
		if loser.HP != 0 {
			t.Fatalf("battle %d: loser hp = %d, want 0", i, loser.HP)
		}
		if a.HP <= 0 || b.HP <= 0 {
			t.Fatalf("battle %d: stored pokemon mutated", i)
		}
	}
}

func TestRunEqualClonesTerminate(t *testing.T) {
	a := fireA(t)
	for seed := int64(0); seed < 20; seed++ {
		res, err := Run(a, a, WithSeed(seed))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if res.Turns < 1 || res.Turns > a.HP {
			t.Fatalf("seed %d: turns = %d", seed, res.Turns)
		}
		if res.Combatants[SideOne].HP == res.Combatants[SideTwo].HP {
			t.Fatalf("seed %d: both sides ended at %d hp", seed, res.Combatants[SideOne].HP)
		}
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	a := fireA(t)
	b := mustPokemon(t, game.Pokemon{
		Name: "Gamma", Type1: "normal",
		HP: 300, Attack: 90, Defense: 90, SpAttack: 40, SpDefense: 90, Speed: 100,
	})
	first, err := Run(a, b, WithSeed(5), WithID("fixed"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := Run(a, b, WithSeed(5), WithID("fixed"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Join(first.Log, "\n") != strings.Join(second.Log, "\n") {
		t.Fatal("same seed produced different logs")
	}
	if first.ID != "fixed" || first.Seed != 5 {
		t.Fatalf("id/seed = %q/%d", first.ID, first.Seed)
	}
}

func TestRunEnglishLog(t *testing.T) {
	res, err := Run(fireA(t), waterB(t), WithSeed(1), WithLanguage("en"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Log[0] != "The battle between Alpha and Beta begins!" {
		t.Fatalf("start line = %q", res.Log[0])
	}
	if res.Log[2] != "--- Turn 1 ---" {
		t.Fatalf("turn line = %q", res.Log[2])
	}
}

func TestStepWalksStates(t *testing.T) {
	bt, err := New(fireA(t), waterB(t), WithSeed(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if bt.State() != StateInit {
		t.Fatalf("state = %v, want init", bt.State())
	}
	wantKinds := []EventKind{EventStart, EventOrder, EventTurn, EventAttack, EventFaint, EventWin}
	for i, want := range wantKinds {
		ev, ok := bt.Step()
		if !ok {
			t.Fatalf("step %d: battle ended early", i)
		}
		if ev.Kind != want {
			t.Fatalf("step %d: kind = %v, want %v", i, ev.Kind, want)
		}
	}
	if _, ok := bt.Step(); ok {
		t.Fatal("expected no events after win")
	}
	if bt.State() != StateFinished {
		t.Fatalf("state = %v, want finished", bt.State())
	}
	if side, ok := bt.Winner(); !ok || side != SideOne {
		t.Fatalf("winner = %v/%v, want p1", side, ok)
	}
}

func TestTurnLimitStopsRunawayBattle(t *testing.T) {
	tank := game.Pokemon{
		Name: "Tank", Type1: "normal",
		HP: 100000, Attack: 1, Defense: 255, SpAttack: 1, SpDefense: 255, Speed: 10,
	}
	a := mustPokemon(t, tank)
	b := mustPokemon(t, tank)
	rules := DefaultRules()
	rules.MaxTurns = 5

	_, err := Run(a, b, WithSeed(1), WithRules(rules))
	if !errors.Is(err, ErrTurnLimit) {
		t.Fatalf("run error = %v, want %v", err, ErrTurnLimit)
	}
}

func TestNewRejectsInvalidPokemon(t *testing.T) {
	bad := game.Pokemon{Name: "Zero", Type1: "normal", HP: 10, Attack: 10, Defense: 0, SpAttack: 10, SpDefense: 10, Speed: 10}
	if _, err := New(fireA(t), &bad); !errors.Is(err, game.ErrInvalidStat) {
		t.Fatalf("new error = %v, want %v", err, game.ErrInvalidStat)
	}
	if _, err := New(nil, fireA(t)); !errors.Is(err, game.ErrInvalidStat) {
		t.Fatalf("new error = %v, want %v", err, game.ErrInvalidStat)
	}
}

func TestRulesDefaultsAndOverrides(t *testing.T) {
	r := Rules{Power: 120}.withDefaults()
	if r.Level != DefaultLevel || r.Power != 120 || r.MaxTurns != DefaultMaxTurns {
		t.Fatalf("rules = %+v", r)
	}
	if !r.IsSpecial("Dragon") || r.IsSpecial("rock") {
		t.Fatal("special set mismatch")
	}
	if got := r.Formula(80, 60, 1, 1); got <= DefaultRules().Formula(80, 60, 1, 1) {
		t.Fatalf("power 120 damage %d should exceed power 80", got)
	}
}

func randomPokemon(t *testing.T, rng *rand.Rand, name string) *game.Pokemon {
	t.Helper()
	types := game.Types
	multipliers := []float64{0, 0.25, 0.5, 1, 2, 4}
	against := make(map[string]float64, len(types))
	for _, ty := range types {
		against[ty] = multipliers[rng.Intn(len(multipliers))]
	}
	return mustPokemon(t, game.Pokemon{
		Name:      name,
		Type1:     types[rng.Intn(len(types))],
		HP:        rng.Intn(250) + 1,
		Attack:    rng.Intn(190) + 5,
		Defense:   rng.Intn(230) + 5,
		SpAttack:  rng.Intn(190) + 5,
		SpDefense: rng.Intn(230) + 5,
		Speed:     rng.Intn(180) + 5,
		Against:   against,
	})
}
