package battle

import (
	"golang.org/x/text/message"

	"pokemon-battle/i18n"
)

// Side identifies the combatant by argument position: SideOne is the first pokemon
// passed to New, regardless of who attacks first.
type Side int

const (
	SideOne Side = iota
	SideTwo
)

func (s Side) String() string {
	if s == SideTwo {
		return "p2"
	}
	return "p1"
}

type EventKind int

const (
	EventStart EventKind = iota + 1
	EventOrder
	EventTurn
	EventAttack
	EventFaint
	EventWin
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventOrder:
		return "order"
	case EventTurn:
		return "turn"
	case EventAttack:
		return "attack"
	case EventFaint:
		return "faint"
	case EventWin:
		return "win"
	default:
		return "unknown"
	}
}

// Snapshot captures a combatant at the moment an event was emitted.
type Snapshot struct {
	Side   Side
	Number int
	Name   string
	Types  []string
	HP     int
	MaxHP  int
	Speed  int
}

// Event is one transition of the battle state machine.
//
//	EventStart   Actor = side one, Target = side two
//	EventOrder   Actor = first attacker, Target = second
//	EventTurn    Turn only
//	EventAttack  Actor = attacker, Target = defender after the hit, Hit filled
//	EventFaint   Actor = the fainted combatant, Target = the other
//	EventWin     Actor = winner, Target = loser
type Event struct {
	Kind   EventKind
	Turn   int
	Actor  Snapshot
	Target Snapshot
	Hit    Hit
}

// Narrator renders events as human-readable log lines.
type Narrator struct {
	p *message.Printer
}

func NewNarrator(lang string) Narrator {
	return Narrator{p: i18n.Printer(lang)}
}

func (n Narrator) Describe(ev Event) string {
	switch ev.Kind {
	case EventStart:
		return n.p.Sprintf(i18n.KeyBattleStart, ev.Actor.Name, ev.Target.Name)
	case EventOrder:
		return n.p.Sprintf(i18n.KeyBattleOrder, ev.Actor.Name, ev.Actor.Speed)
	case EventTurn:
		return n.p.Sprintf(i18n.KeyBattleTurn, ev.Turn)
	case EventAttack:
		return n.p.Sprintf(i18n.KeyBattleAttack, ev.Actor.Name, ev.Target.Name, ev.Hit.Damage, ev.Target.HP, ev.Target.MaxHP)
	case EventFaint:
		return n.p.Sprintf(i18n.KeyBattleFaint, ev.Actor.Name)
	case EventWin:
		return n.p.Sprintf(i18n.KeyBattleWin, ev.Actor.Name)
	default:
		return ""
	}
}
