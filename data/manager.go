package data

import (
	"context"
	"fmt"
	"log"
	"sync"

	"pokemon-battle/game"
)

// Intner is the random source used for random picks. *math/rand.Rand satisfies it.
type Intner interface {
	Intn(n int) int
}

// Patch lists the fields an update may change. Nil fields are left untouched; the name
// is the lookup key and cannot be patched.
type Patch struct {
	Number    *int
	Type1     *string
	Type2     *string
	HP        *int
	Attack    *int
	Defense   *int
	SpAttack  *int
	SpDefense *int
	Speed     *int
	Against   map[string]float64
}

func (p Patch) Empty() bool {
	return p.Number == nil && p.Type1 == nil && p.Type2 == nil && p.HP == nil &&
		p.Attack == nil && p.Defense == nil && p.SpAttack == nil && p.SpDefense == nil &&
		p.Speed == nil && len(p.Against) == 0
}

func (p Patch) apply(to game.Pokemon) game.Pokemon {
	out := to.Clone()
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&out.Number, p.Number)
	setInt(&out.HP, p.HP)
	setInt(&out.Attack, p.Attack)
	setInt(&out.Defense, p.Defense)
	setInt(&out.SpAttack, p.SpAttack)
	setInt(&out.SpDefense, p.SpDefense)
	setInt(&out.Speed, p.Speed)
	if p.Type1 != nil {
		out.Type1 = *p.Type1
	}
	if p.Type2 != nil {
		out.Type2 = *p.Type2
	}
	for t, v := range p.Against {
		if out.Against == nil {
			out.Against = game.NeutralAgainst()
		}
		out.Against[game.NormalizeType(t)] = v
	}
	return out
}

// Manager is the in-memory pokemon collection. Names are case-insensitive keys and every
// successful mutation is saved through the Store; a failed save rolls the change back.
// Readers get copies, so battles never touch the stored records.
type Manager struct {
	mu       sync.RWMutex
	store    Store
	pokemons map[string]game.Pokemon
}

// NewManager loads the dataset from store. Records that fail validation are skipped
// with a log line.
func NewManager(ctx context.Context, store Store) (*Manager, error) {
	m := &Manager{store: store, pokemons: make(map[string]game.Pokemon)}
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	for _, raw := range loaded {
		p, err := game.NewPokemon(raw)
		if err != nil {
			log.Printf("registro ignorado: %v", err)
			continue
		}
		if _, dup := m.pokemons[p.Key()]; dup {
			log.Printf("registro duplicado ignorado: %s", p.Name)
			continue
		}
		m.pokemons[p.Key()] = p
	}
	log.Printf("cargados %d pokémon", len(m.pokemons))
	return m, nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pokemons)
}

// Get returns a copy of the named pokemon.
func (m *Manager) Get(name string) (game.Pokemon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pokemons[game.Key(name)]
	if !ok {
		return game.Pokemon{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p.Clone(), nil
}

// List returns copies sorted by pokedex number, then name.
func (m *Manager) List() []game.Pokemon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Manager) Add(ctx context.Context, p game.Pokemon) error {
	p, err := game.NewPokemon(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pokemons[p.Key()]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, p.Name)
	}
	m.pokemons[p.Key()] = p
	if err := m.save(ctx); err != nil {
		delete(m.pokemons, p.Key())
		return err
	}
	return nil
}

// Update applies patch to the named pokemon after validating the result.
func (m *Manager) Update(ctx context.Context, name string, patch Patch) (game.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := game.Key(name)
	prev, ok := m.pokemons[key]
	if !ok {
		return game.Pokemon{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	next, err := game.NewPokemon(patch.apply(prev))
	if err != nil {
		return game.Pokemon{}, err
	}
	m.pokemons[key] = next
	if err := m.save(ctx); err != nil {
		m.pokemons[key] = prev
		return game.Pokemon{}, err
	}
	return next.Clone(), nil
}

func (m *Manager) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := game.Key(name)
	prev, ok := m.pokemons[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(m.pokemons, key)
	if err := m.save(ctx); err != nil {
		m.pokemons[key] = prev
		return err
	}
	return nil
}

// Random picks one pokemon uniformly.
func (m *Manager) Random(r Intner) (game.Pokemon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.snapshot()
	if len(all) == 0 {
		return game.Pokemon{}, ErrEmptyDataset
	}
	return all[r.Intn(len(all))], nil
}

// RandomPair picks two different pokemon.
func (m *Manager) RandomPair(r Intner) (game.Pokemon, game.Pokemon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.snapshot()
	if len(all) < 2 {
		return game.Pokemon{}, game.Pokemon{}, ErrSameCombatants
	}
	i := r.Intn(len(all))
	j := r.Intn(len(all) - 1)
	if j >= i {
		j++
	}
	return all[i], all[j], nil
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// snapshot must be called with mu held.
func (m *Manager) snapshot() []game.Pokemon {
	out := make([]game.Pokemon, 0, len(m.pokemons))
	for _, p := range m.pokemons {
		out = append(out, p.Clone())
	}
	sortPokemons(out)
	return out
}

func (m *Manager) save(ctx context.Context) error {
	if err := m.store.Save(ctx, m.snapshot()); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}
