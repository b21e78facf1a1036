package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"pokemon-battle/battle"
	"pokemon-battle/data"
	"pokemon-battle/game"
)

type memStore struct {
	pokemons []game.Pokemon
	saves    int
}

func (s *memStore) Load(context.Context) ([]game.Pokemon, error) { return s.pokemons, nil }

func (s *memStore) Save(_ context.Context, pokemons []game.Pokemon) error {
	s.saves++
	s.pokemons = pokemons
	return nil
}

func (s *memStore) Close() error { return nil }

func newManager(t *testing.T) (*data.Manager, *memStore) {
	t.Helper()
	store := &memStore{pokemons: []game.Pokemon{
		{Number: 4, Name: "Charmander", Type1: "Fire", HP: 39, Attack: 52, Defense: 43, SpAttack: 60, SpDefense: 50, Speed: 65, Ability1: "Blaze",
			Against: map[string]float64{"water": 2}},
		{Number: 7, Name: "Squirtle", Type1: "Water", HP: 44, Attack: 48, Defense: 65, SpAttack: 50, SpDefense: 64, Speed: 43, Ability1: "Torrent",
			Against: map[string]float64{"grass": 2, "fire": 0.5}},
	}}
	m, err := data.NewManager(context.Background(), store)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m, store
}

func runMenu(t *testing.T, m *data.Manager, input string) string {
	t.Helper()
	var out bytes.Buffer
	menu := New(strings.NewReader(input), &out, m, "es", battle.WithSeed(1))
	if err := menu.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestMenuListAndExit(t *testing.T) {
	m, _ := newManager(t)
	out := runMenu(t, m, "1\n7\n")
	if !strings.Contains(out, "  1. #004 Charmander") || !strings.Contains(out, "  2. #007 Squirtle") {
		t.Fatalf("list output = %q", out)
	}
	if !strings.Contains(out, "Total: 2 Pokémons") || !strings.Contains(out, "¡Gracias por usar") {
		t.Fatalf("output = %q", out)
	}
}

func TestMenuEndsOnEOF(t *testing.T) {
	m, _ := newManager(t)
	out := runMenu(t, m, "9\n")
	if !strings.Contains(out, "Opción no válida") {
		t.Fatalf("output = %q", out)
	}
}

func TestMenuDetails(t *testing.T) {
	m, _ := newManager(t)
	out := runMenu(t, m, "2\nSQUIRTLE\n2\nmissingno\n7\n")
	if !strings.Contains(out, "Defensa: 65") || !strings.Contains(out, "Debilidades: Grass x2") {
		t.Fatalf("details output = %q", out)
	}
	if !strings.Contains(out, "¡Pokémon no encontrado!") {
		t.Fatalf("missing not-found message: %q", out)
	}
}

func TestMenuAddUpdateDelete(t *testing.T) {
	m, store := newManager(t)
	input := strings.Join([]string{
		"3", "Pikachu", "25", "electric", "", "35", "55", "40", "50", "50", "90",
		"4", "pikachu", "60", "", "", "", "", "",
		"5", "charmander",
		"7",
	}, "\n") + "\n"
	out := runMenu(t, m, input)

	if !strings.Contains(out, "¡Pikachu ha sido agregado exitosamente!") {
		t.Fatalf("add output = %q", out)
	}
	if !strings.Contains(out, "¡Pikachu ha sido actualizado!") {
		t.Fatalf("update output = %q", out)
	}
	if !strings.Contains(out, "¡charmander ha sido eliminado exitosamente!") {
		t.Fatalf("delete output = %q", out)
	}
	p, err := m.Get("pikachu")
	if err != nil {
		t.Fatalf("get pikachu: %v", err)
	}
	if p.HP != 60 || p.Type1 != "Electric" || p.Speed != 90 {
		t.Fatalf("pikachu = %+v", p)
	}
	if store.saves != 3 {
		t.Fatalf("saves = %d, want 3", store.saves)
	}
}

func TestMenuAddRejectsBadNumbers(t *testing.T) {
	m, store := newManager(t)
	out := runMenu(t, m, "3\nEevee\nabc\n7\n")
	if !strings.Contains(out, "Los valores numéricos deben ser enteros") {
		t.Fatalf("output = %q", out)
	}
	if store.saves != 0 {
		t.Fatalf("saves = %d, want 0", store.saves)
	}
}

func TestMenuManualBattle(t *testing.T) {
	m, _ := newManager(t)
	input := "6\n1\ncharmander\nCharmander\nsquirtle\n\n\n7\n"
	out := runMenu(t, m, input)
	if !strings.Contains(out, "¡No puede elegir el mismo Pokémon!") {
		t.Fatalf("same pokemon not refused: %q", out)
	}
	if !strings.Contains(out, "¡Comienza la batalla entre Charmander y Squirtle!") {
		t.Fatalf("battle log missing: %q", out)
	}
	if !strings.Contains(out, "Charmander (Velocidad: 65) ataca primero!") {
		t.Fatalf("order line missing: %q", out)
	}
	if !strings.Contains(out, "¡El ganador es ") {
		t.Fatalf("winner line missing: %q", out)
	}
}

func TestMenuRandomBattle(t *testing.T) {
	m, _ := newManager(t)
	out := runMenu(t, m, "6\n2\n\n\n7\n")
	if !strings.Contains(out, "¡Batalla aleatoria entre ") || !strings.Contains(out, "gana la batalla!") {
		t.Fatalf("random battle output = %q", out)
	}
}
