// Package i18n registers the battle log catalog with golang.org/x/text/message.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	KeyBattleStart   = "battle.start"
	KeyBattleOrder   = "battle.order"
	KeyBattleTurn    = "battle.turn"
	KeyBattleAttack  = "battle.attack"
	KeyBattleFaint   = "battle.faint"
	KeyBattleWin     = "battle.win"
	KeyBattleSuper   = "battle.supereffective"
	KeyBattleResist  = "battle.resisted"
	KeyBattleImmune  = "battle.immune"
	KeyBattleWinner  = "battle.winner"
	KeyBattleSummary = "battle.summary"

	KeyStateBattle  = "state.battle"
	KeyStateTurn    = "state.turn"
	KeyStateFainted = "state.fainted"
	KeyStateMoves   = "state.moves"
)

// DefaultTag is used when a requested language is unknown or empty.
var DefaultTag = language.Spanish

var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[string]string{
	language.Spanish: {
		KeyBattleStart:   "¡Comienza la batalla entre %s y %s!",
		KeyBattleOrder:   "%s (Velocidad: %d) ataca primero!",
		KeyBattleTurn:    "--- Turno %d ---",
		KeyBattleAttack:  "%s ataca a %s por %d de daño! (HP: %d/%d)",
		KeyBattleFaint:   "¡%s se ha debilitado!",
		KeyBattleWin:     "¡%s gana la batalla!",
		KeyBattleSuper:   "¡Es súper efectivo!",
		KeyBattleResist:  "No es muy efectivo...",
		KeyBattleImmune:  "No afecta a %s...",
		KeyBattleWinner:  "¡El ganador es %s (#%d)!",
		KeyBattleSummary: "Turnos: %d",
		KeyStateBattle:   "Batalla %s",
		KeyStateTurn:     "Turno: %d",
		KeyStateFainted:  "(Debilitado)",
		KeyStateMoves:    "Ataques vistos: %s",
	},
	language.English: {
		KeyBattleStart:   "The battle between %s and %s begins!",
		KeyBattleOrder:   "%s (Speed: %d) attacks first!",
		KeyBattleTurn:    "--- Turn %d ---",
		KeyBattleAttack:  "%s attacks %s for %d damage! (HP: %d/%d)",
		KeyBattleFaint:   "%s fainted!",
		KeyBattleWin:     "%s wins the battle!",
		KeyBattleSuper:   "It's super effective!",
		KeyBattleResist:  "It's not very effective...",
		KeyBattleImmune:  "It doesn't affect %s...",
		KeyBattleWinner:  "The winner is %s (#%d)!",
		KeyBattleSummary: "Turns: %d",
		KeyStateBattle:   "Battle %s",
		KeyStateTurn:     "Turn: %d",
		KeyStateFainted:  "(Fainted)",
		KeyStateMoves:    "Moves seen: %s",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, msg := range messages {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// ParseTag resolves a language string ("es", "en-US", an Accept-Language value) to a
// supported tag.
func ParseTag(value string) language.Tag {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTag
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return DefaultTag
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultTag
	}
	return supported[idx]
}

// Printer returns a message printer for lang.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(ParseTag(lang))
}
