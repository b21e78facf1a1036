package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pokemon-battle/data/sqlstore"
	"pokemon-battle/game"
)

var (
	ErrNotFound       = errors.New("pokemon not found")
	ErrAlreadyExists  = errors.New("pokemon already exists")
	ErrUnknownFormat  = errors.New("unknown dataset format")
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrSameCombatants = errors.New("need two different pokemon")
)

// Store loads and saves the whole dataset. Saves replace everything previously stored.
type Store interface {
	Load(ctx context.Context) ([]game.Pokemon, error)
	Save(ctx context.Context, pokemons []game.Pokemon) error
	Close() error
}

const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// InferFormat guesses the dataset format from a file extension.
func InferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return ""
	}
}

// OpenStore opens the dataset backend. An empty format is inferred from path; dsn is
// only used by postgres.
func OpenStore(format, path, dsn string) (Store, error) {
	if format == "" {
		format = InferFormat(path)
	}
	switch strings.ToLower(format) {
	case FormatCSV:
		return &CSVStore{Path: path}, nil
	case FormatJSON:
		return &JSONStore{Path: path}, nil
	case FormatSQLite:
		return sqlstore.Open(sqlstore.DriverSQLite, path)
	case FormatPostgres:
		return sqlstore.Open(sqlstore.DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSONStore keeps the dataset as a JSON object keyed by lowercased name.
type JSONStore struct {
	Path string
}

func (s *JSONStore) Load(ctx context.Context) ([]game.Pokemon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("%s no existe, se empieza con un dataset vacío", s.Path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rawData map[string]game.Pokemon
	if err := json.NewDecoder(file).Decode(&rawData); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}

	pokemons := make([]game.Pokemon, 0, len(rawData))
	for key, p := range rawData {
		if p.Name == "" {
			p.Name = key
		}
		pokemons = append(pokemons, p)
	}
	sortPokemons(pokemons)
	return pokemons, nil
}

func (s *JSONStore) Save(ctx context.Context, pokemons []game.Pokemon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := make(map[string]game.Pokemon, len(pokemons))
	for _, p := range pokemons {
		out[p.Key()] = p
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.Path, raw)
}

func (s *JSONStore) Close() error { return nil }

func sortPokemons(pokemons []game.Pokemon) {
	sort.Slice(pokemons, func(i, j int) bool {
		if pokemons[i].Number != pokemons[j].Number {
			return pokemons[i].Number < pokemons[j].Number
		}
		return pokemons[i].Key() < pokemons[j].Key()
	})
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	log.Printf("dataset guardado en %s", path)
	return nil
}
