// Package battle resolves one-on-one battles between two pokemon.
//
// A battle is a small state machine:
//
//	Init -> OrderDecided -> AttackingFirst <-> AttackingSecond -> Finished
//
// Each call to Step performs one transition and returns the event it produced. Every
// attack deals at least 1 damage, so a battle always finishes; MaxTurns only guards
// against a future change breaking that floor.
package battle

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"time"

	"github.com/google/uuid"

	"pokemon-battle/game"
)

// ErrTurnLimit is returned when a battle exceeds Rules.MaxTurns.
var ErrTurnLimit = errors.New("battle exceeded turn limit")

type State int

const (
	StateInit State = iota
	StateOrderDecided
	StateAttackingFirst
	StateAttackingSecond
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateOrderDecided:
		return "order_decided"
	case StateAttackingFirst:
		return "attacking_first"
	case StateAttackingSecond:
		return "attacking_second"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

type options struct {
	rng     Rand
	seed    int64
	rules   Rules
	lang    string
	id      string
	hasSeed bool
}

type Option func(*options)

// WithRand injects the random source. The caller keeps ownership; do not share it
// between concurrent battles.
func WithRand(r Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithSeed seeds a fresh deterministic source.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

func WithRules(r Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithLanguage selects the log language for Run ("es" by default).
func WithLanguage(lang string) Option {
	return func(o *options) { o.lang = lang }
}

func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// Battle drives one battle. It is not safe for concurrent use.
type Battle struct {
	ID   string
	Seed int64

	rules Rules
	rng   Rand
	sides [2]*game.Combatant

	first  Side
	state  State
	turn   int
	winner Side
	queue  []Event
	err    error
}

// New validates both pokemon and prepares a battle. The pokemon are read, never written;
// the same record may be passed twice.
func New(a, b *game.Pokemon, opts ...Option) (*Battle, error) {
	o := options{rules: DefaultRules()}
	for _, opt := range opts {
		opt(&o)
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: missing pokemon", game.ErrInvalidStat)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("pokemon 1: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("pokemon 2: %w", err)
	}

	bt := &Battle{
		ID:    o.id,
		rules: o.rules.withDefaults(),
		rng:   o.rng,
		sides: [2]*game.Combatant{game.NewCombatant(a), game.NewCombatant(b)},
		state: StateInit,
	}
	if bt.ID == "" {
		bt.ID = uuid.NewString()
	}
	if bt.rng == nil {
		seed := o.seed
		if !o.hasSeed {
			var err error
			if seed, err = NewSeed(); err != nil {
				log.Printf("no se pudo generar semilla aleatoria: %v", err)
				seed = time.Now().UnixNano()
			}
		}
		bt.Seed = seed
		bt.rng = NewRand(seed)
	}
	return bt, nil
}

// Order returns who attacks first: the faster combatant, or a fresh coin flip on a tie.
func Order(rng Rand, a, b *game.Pokemon) (first, second Side) {
	switch {
	case a.Speed > b.Speed:
		return SideOne, SideTwo
	case a.Speed < b.Speed:
		return SideTwo, SideOne
	case rng.Float64() < 0.5:
		return SideOne, SideTwo
	default:
		return SideTwo, SideOne
	}
}

func (b *Battle) State() State { return b.state }

func (b *Battle) Turn() int { return b.turn }

// Err reports why the battle stopped early, if it did.
func (b *Battle) Err() error { return b.err }

// Combatant returns the live state of one side.
func (b *Battle) Combatant(s Side) *game.Combatant { return b.sides[s] }

// First returns the side that attacks first; meaningful once the order is decided.
func (b *Battle) First() Side { return b.first }

// Winner returns the winning side once the battle finished without error.
func (b *Battle) Winner() (Side, bool) {
	if b.state != StateFinished || b.err != nil {
		return 0, false
	}
	return b.winner, true
}

// Step advances the state machine by one transition. It returns false once the battle
// is finished and every event has been delivered.
func (b *Battle) Step() (Event, bool) {
	if len(b.queue) == 0 {
		b.advance()
	}
	if len(b.queue) == 0 {
		return Event{}, false
	}
	ev := b.queue[0]
	b.queue = b.queue[1:]
	return ev, true
}

// Events yields every remaining event in order.
func (b *Battle) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, ok := b.Step()
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

func (b *Battle) advance() {
	switch b.state {
	case StateInit:
		for _, c := range b.sides {
			c.ResetHP()
		}
		b.emit(Event{Kind: EventStart, Actor: b.snapshot(SideOne), Target: b.snapshot(SideTwo)})
		b.first, _ = Order(b.rng, b.sides[SideOne].Pokemon, b.sides[SideTwo].Pokemon)
		b.state = StateOrderDecided
		b.emit(Event{Kind: EventOrder, Actor: b.snapshot(b.first), Target: b.snapshot(other(b.first))})
	case StateOrderDecided:
		b.turn = 1
		b.state = StateAttackingFirst
		b.emit(Event{Kind: EventTurn, Turn: b.turn})
	case StateAttackingFirst:
		if b.attack(b.first) {
			return
		}
		b.state = StateAttackingSecond
	case StateAttackingSecond:
		if b.attack(other(b.first)) {
			return
		}
		if b.turn >= b.rules.MaxTurns {
			b.err = fmt.Errorf("%w: %d turns", ErrTurnLimit, b.rules.MaxTurns)
			b.state = StateFinished
			return
		}
		b.turn++
		b.state = StateAttackingFirst
		b.emit(Event{Kind: EventTurn, Turn: b.turn})
	case StateFinished:
	}
}

// attack resolves one hit from side s and reports whether it ended the battle.
func (b *Battle) attack(s Side) bool {
	attacker, defender := b.sides[s], b.sides[other(s)]
	hit := b.rules.Hit(b.rng, attacker.Pokemon, defender.Pokemon, "")
	fainted := defender.ReceiveDamage(hit.Damage)
	b.emit(Event{Kind: EventAttack, Turn: b.turn, Actor: b.snapshot(s), Target: b.snapshot(other(s)), Hit: hit})
	if !fainted {
		return false
	}
	b.winner = s
	b.state = StateFinished
	b.emit(Event{Kind: EventFaint, Turn: b.turn, Actor: b.snapshot(other(s)), Target: b.snapshot(s)})
	b.emit(Event{Kind: EventWin, Turn: b.turn, Actor: b.snapshot(s), Target: b.snapshot(other(s))})
	return true
}

func (b *Battle) emit(ev Event) {
	b.queue = append(b.queue, ev)
}

func (b *Battle) snapshot(s Side) Snapshot {
	c := b.sides[s]
	return Snapshot{
		Side:   s,
		Number: c.Pokemon.Number,
		Name:   c.Pokemon.Name,
		Types:  c.Pokemon.TypeNames(),
		HP:     c.HP,
		MaxHP:  c.MaxHP(),
		Speed:  c.Pokemon.Speed,
	}
}

func other(s Side) Side {
	if s == SideOne {
		return SideTwo
	}
	return SideOne
}
