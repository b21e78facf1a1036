package battle

import (
	"log"

	"pokemon-battle/game"
)

// Result is the outcome of a finished battle.
type Result struct {
	ID     string
	Seed   int64
	Winner *game.Pokemon
	Loser  *game.Pokemon
	// Final health by side; the winner's is above zero, the loser's is zero.
	Combatants [2]game.Combatant
	WinnerSide Side
	FirstSide  Side
	Turns      int
	Events     []Event
	Log        []string
}

// Run resolves a full battle between a and b and returns the winner and the log.
func Run(a, b *game.Pokemon, opts ...Option) (Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	bt, err := New(a, b, opts...)
	if err != nil {
		return Result{}, err
	}
	narrator := NewNarrator(o.lang)

	res := Result{ID: bt.ID, Seed: bt.Seed}
	for ev := range bt.Events() {
		res.Events = append(res.Events, ev)
		res.Log = append(res.Log, narrator.Describe(ev))
	}
	if err := bt.Err(); err != nil {
		return Result{}, err
	}

	winner, _ := bt.Winner()
	res.WinnerSide = winner
	res.FirstSide = bt.First()
	res.Winner = bt.Combatant(winner).Pokemon
	res.Loser = bt.Combatant(other(winner)).Pokemon
	res.Combatants = [2]game.Combatant{*bt.Combatant(SideOne), *bt.Combatant(SideTwo)}
	res.Turns = bt.Turn()
	log.Printf("batalla %s: %s vence a %s en %d turnos", res.ID, res.Winner.Name, res.Loser.Name, res.Turns)
	return res, nil
}
