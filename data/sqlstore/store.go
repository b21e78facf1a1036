// Package sqlstore keeps the pokemon dataset in SQLite (modernc.org/sqlite) or Postgres
// (lib/pq) through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"pokemon-battle/data/sqlstore/migrations"
	"pokemon-battle/game"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const pokemonColumns = `name_key, pokedex_number, name, german_name, japanese_name, generation, status, species,
	type_1, type_2, height_m, weight_kg, ability_1, ability_2, ability_hidden,
	hp, attack, defense, sp_attack, sp_defense, speed,
	catch_rate, base_friendship, base_experience, growth_rate, against`

// Store persists the dataset in one table. Save replaces the table contents in a
// single transaction.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects, pings and migrates. For sqlite dsn is a file path.
func Open(driver, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("storage dsn is required")
	}
	switch driver {
	case DriverSQLite:
		dsn = filepath.Clean(dsn) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.applyMigrations(context.Background(), migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Printf("base de datos %s lista", driver)
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) ([]game.Pokemon, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+pokemonColumns+" FROM pokemon ORDER BY pokedex_number, name_key")
	if err != nil {
		return nil, fmt.Errorf("query pokemon: %w", err)
	}
	defer rows.Close()

	var out []game.Pokemon
	for rows.Next() {
		var p game.Pokemon
		var key, against string
		if err := rows.Scan(
			&key, &p.Number, &p.Name, &p.GermanName, &p.JapaneseName, &p.Generation, &p.Status, &p.Species,
			&p.Type1, &p.Type2, &p.Height, &p.Weight, &p.Ability1, &p.Ability2, &p.HiddenAbility,
			&p.HP, &p.Attack, &p.Defense, &p.SpAttack, &p.SpDefense, &p.Speed,
			&p.CatchRate, &p.BaseFriendship, &p.BaseExperience, &p.GrowthRate, &against,
		); err != nil {
			return nil, fmt.Errorf("scan pokemon: %w", err)
		}
		if err := json.Unmarshal([]byte(against), &p.Against); err != nil {
			return nil, fmt.Errorf("decode against for %s: %w", p.Name, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pokemon: %w", err)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, pokemons []game.Pokemon) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pokemon"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear pokemon: %w", err)
	}
	insert := s.rebind("INSERT INTO pokemon (" + pokemonColumns + ") VALUES (" + placeholders(26) + ")")
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pokemons {
		against, err := json.Marshal(p.Against)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode against for %s: %w", p.Name, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.Key(), p.Number, p.Name, p.GermanName, p.JapaneseName, p.Generation, p.Status, p.Species,
			p.Type1, p.Type2, p.Height, p.Weight, p.Ability1, p.Ability2, p.HiddenAbility,
			p.HP, p.Attack, p.Defense, p.SpAttack, p.SpDefense, p.Speed,
			p.CatchRate, p.BaseFriendship, p.BaseExperience, p.GrowthRate, string(against),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
