package parser

import (
	"fmt"
	"sort"
	"strings"

	"pokemon-battle/game"
	"pokemon-battle/i18n"
)

// RenderBattleState renders a plain-text summary of the spectator state.
func RenderBattleState(state *game.BattleState, lang string) string {
	p := i18n.Printer(lang)
	var sb strings.Builder

	if state.ID != "" {
		sb.WriteString(p.Sprintf(i18n.KeyStateBattle, state.ID) + "\n")
	}
	sb.WriteString(p.Sprintf(i18n.KeyStateTurn, state.Turn) + "\n")

	ids := make([]string, 0, len(state.Players))
	for id := range state.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		player := state.Players[id]
		poke := player.Active
		if poke == nil {
			sb.WriteString(fmt.Sprintf("[%s] %s\n", id, player.Name))
			continue
		}
		ps := "?/?"
		if poke.MaxHP > 0 {
			ps = fmt.Sprintf("%d/%d", poke.HP, poke.MaxHP)
		}
		fainted := ""
		if poke.Fainted {
			fainted = " " + p.Sprintf(i18n.KeyStateFainted)
		}
		types := make([]string, 0, len(poke.Type))
		for _, t := range poke.Type {
			types = append(types, game.DisplayType(t))
		}
		sb.WriteString(fmt.Sprintf("[%s] %s%s [%s] %s\n", id, poke.Name, fainted, ps, strings.Join(types, "/")))
		if len(poke.Moves) > 0 {
			moveNames := []string{}
			for _, m := range poke.Moves {
				moveNames = append(moveNames, game.DisplayType(m.Name))
			}
			sb.WriteString("    " + p.Sprintf(i18n.KeyStateMoves, strings.Join(moveNames, ", ")) + "\n")
		}
		if n := poke.Hits["supereffective"]; n > 0 {
			sb.WriteString(fmt.Sprintf("    %s x%d\n", p.Sprintf(i18n.KeyBattleSuper), n))
		}
		if n := poke.Hits["resisted"]; n > 0 {
			sb.WriteString(fmt.Sprintf("    %s x%d\n", p.Sprintf(i18n.KeyBattleResist), n))
		}
		if n := poke.Hits["immune"]; n > 0 {
			sb.WriteString(fmt.Sprintf("    %s x%d\n", p.Sprintf(i18n.KeyBattleImmune, poke.Name), n))
		}
	}

	if state.Winner != "" {
		sb.WriteString(p.Sprintf(i18n.KeyBattleWin, state.Winner) + "\n")
	}
	return sb.String()
}
