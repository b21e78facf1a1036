package game

// Move is an attack seen on the wire. Every attack uses the attacker's type as its name.
type Move struct {
	Name  string
	Type  string
	Power int
}

// Fighter is the spectator's view of a pokemon rebuilt from protocol lines.
type Fighter struct {
	Name    string
	HP      int
	MaxHP   int
	Fainted bool
	Moves   []Move
	Type    []string
	// golpes recibidos por categoria: supereffective, resisted, immune
	Hits map[string]int
}

type Player struct {
	ID     string
	Name   string
	Team   map[string]*Fighter
	Active *Fighter
}

type BattleState struct {
	ID      string
	Players map[string]*Player
	Turn    int
	Started bool
	Winner  string
}

func NewBattleState() *BattleState {
	return &BattleState{
		Players: make(map[string]*Player),
		Turn:    0,
	}
}

// Finished reports whether a |win| line has been processed.
func (s *BattleState) Finished() bool {
	return s.Winner != ""
}
