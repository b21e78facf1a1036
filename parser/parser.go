package parser

import (
	"fmt"
	"strconv"
	"strings"

	"pokemon-battle/battle"
	"pokemon-battle/game"
)

// Encode turns one battle event into Showdown-style protocol lines. Order events have no
// wire form; the first |move| line shows who went first.
func Encode(ev battle.Event) []string {
	switch ev.Kind {
	case battle.EventStart:
		return []string{
			fmt.Sprintf("|player|%s|%s", ev.Actor.Side, ev.Actor.Name),
			fmt.Sprintf("|player|%s|%s", ev.Target.Side, ev.Target.Name),
			fmt.Sprintf("|poke|%s|%s, %s", ev.Actor.Side, ev.Actor.Name, strings.Join(ev.Actor.Types, "/")),
			fmt.Sprintf("|poke|%s|%s, %s", ev.Target.Side, ev.Target.Name, strings.Join(ev.Target.Types, "/")),
			fmt.Sprintf("|switch|%s|%s|%d/%d", ident(ev.Actor), ev.Actor.Name, ev.Actor.HP, ev.Actor.MaxHP),
			fmt.Sprintf("|switch|%s|%s|%d/%d", ident(ev.Target), ev.Target.Name, ev.Target.HP, ev.Target.MaxHP),
			"|start|",
		}
	case battle.EventTurn:
		return []string{fmt.Sprintf("|turn|%d", ev.Turn)}
	case battle.EventAttack:
		lines := []string{fmt.Sprintf("|move|%s|%s|%s", ident(ev.Actor), ev.Hit.MoveType, ident(ev.Target))}
		switch eff := ev.Hit.Effectiveness; {
		case eff == 0:
			lines = append(lines, "|-immune|"+ident(ev.Target))
		case eff < 1:
			lines = append(lines, "|-resisted|"+ident(ev.Target))
		case eff > 1:
			lines = append(lines, "|-supereffective|"+ident(ev.Target))
		}
		return append(lines, fmt.Sprintf("|damage|%s|%d/%d", ident(ev.Target), ev.Target.HP, ev.Target.MaxHP))
	case battle.EventFaint:
		return []string{"|faint|" + ident(ev.Actor)}
	case battle.EventWin:
		return []string{"|win|" + ev.Actor.Name}
	default:
		return nil
	}
}

// BattleHeader is the first line of a stream, carrying the battle id.
func BattleHeader(id string) string {
	return "|battle|" + id
}

func ident(s battle.Snapshot) string {
	return s.Side.String() + "a: " + s.Name
}

func ParseLog(logText string) (*game.BattleState, error) {
	state := game.NewBattleState()
	lines := strings.Split(logText, "\n")

	for _, line := range lines {
		ProcessLine(state, line)
	}

	return state, nil
}

// ProcessLine applies one protocol line to state. Unknown or malformed lines are ignored.
func ProcessLine(state *game.BattleState, line string) {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) < 2 {
		return
	}
	switch parts[1] {
	case "battle":
		if len(parts) >= 3 {
			state.ID = parts[2]
		}
	case "start":
		state.Started = true
	case "player":
		if len(parts) >= 4 {
			id := parts[2]
			name := parts[3]
			if _, ok := state.Players[id]; !ok {
				state.Players[id] = &game.Player{
					ID:   id,
					Name: name,
					Team: make(map[string]*game.Fighter),
				}
			}
		}
	case "poke":
		if len(parts) >= 4 {
			id := parts[2]
			pokeInfo := strings.SplitN(parts[3], ",", 2)
			name := strings.TrimSpace(pokeInfo[0])
			var types []string
			if len(pokeInfo) == 2 {
				for _, t := range strings.Split(pokeInfo[1], "/") {
					if t = strings.TrimSpace(t); t != "" {
						types = append(types, t)
					}
				}
			}
			if player, ok := state.Players[id]; ok {
				player.Team[name] = &game.Fighter{Name: name, Type: types}
			}
		}
	case "switch":
		if len(parts) >= 5 {
			if player, poke := lookup(state, parts[2]); poke != nil {
				player.Active = poke
				poke.HP, poke.MaxHP = parseHP(parts[4], poke.HP, poke.MaxHP)
			}
		}
	case "move":
		if len(parts) >= 4 {
			player, poke := lookup(state, parts[2])
			if poke == nil {
				return
			}
			player.Active = poke
			move := game.Move{Name: parts[3], Type: parts[3], Power: battle.DefaultPower}
			for _, m := range poke.Moves {
				if m.Name == move.Name {
					return
				}
			}
			poke.Moves = append(poke.Moves, move)
		}
	case "-supereffective", "-resisted", "-immune":
		if len(parts) >= 3 {
			if _, poke := lookup(state, parts[2]); poke != nil {
				if poke.Hits == nil {
					poke.Hits = make(map[string]int)
				}
				poke.Hits[strings.TrimPrefix(parts[1], "-")]++
			}
		}
	case "damage":
		if len(parts) >= 4 {
			if _, poke := lookup(state, parts[2]); poke != nil {
				poke.HP, poke.MaxHP = parseHP(parts[3], poke.HP, poke.MaxHP)
			}
		}
	case "faint":
		if len(parts) >= 3 {
			if _, poke := lookup(state, parts[2]); poke != nil {
				poke.Fainted = true
				poke.HP = 0
			}
		}
	case "turn":
		if len(parts) >= 3 {
			t, err := strconv.Atoi(parts[2])
			if err == nil {
				state.Turn = t
			}
		}
	case "win":
		if len(parts) >= 3 {
			state.Winner = parts[2]
		}
	}
}

// lookup resolves "p1a: Name" to its player and team member.
func lookup(state *game.BattleState, ident string) (*game.Player, *game.Fighter) {
	pokeInfo := strings.SplitN(ident, ": ", 2)
	if len(pokeInfo) != 2 || len(pokeInfo[0]) < 2 {
		return nil, nil
	}
	playerID := pokeInfo[0][:2]
	player, ok := state.Players[playerID]
	if !ok {
		return nil, nil
	}
	poke, ok := player.Team[pokeInfo[1]]
	if !ok {
		return player, nil
	}
	return player, poke
}

func parseHP(value string, hp, maxHP int) (int, int) {
	hpInfo := strings.Split(value, "/")
	if len(hpInfo) != 2 {
		return hp, maxHP
	}
	cur, err1 := strconv.Atoi(strings.TrimSpace(hpInfo[0]))
	total, err2 := strconv.Atoi(strings.TrimSpace(hpInfo[1]))
	if err1 != nil || err2 != nil {
		return hp, maxHP
	}
	return cur, total
}
