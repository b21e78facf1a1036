package data

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"pokemon-battle/game"
)

// csvColumns is the dataset header. Effectiveness columns follow as against_<type>.
var csvColumns = []string{
	"pokedex_number", "name", "german_name", "japanese_name", "generation", "status", "species",
	"type_1", "type_2", "height_m", "weight_kg", "ability_1", "ability_2", "ability_hidden",
	"hp", "attack", "defense", "sp_attack", "sp_defense", "speed",
	"catch_rate", "base_friendship", "base_experience", "growth_rate",
}

func csvHeader() []string {
	header := append([]string{}, csvColumns...)
	for _, t := range game.Types {
		header = append(header, "against_"+t)
	}
	return header
}

// CSVStore reads and writes the tabular pokedex export.
type CSVStore struct {
	Path string
}

func (s *CSVStore) Load(ctx context.Context) ([]game.Pokemon, error) {
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

	pokemons, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return pokemons, nil
}

func (s *CSVStore) Save(ctx context.Context, pokemons []game.Pokemon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, pokemons); err != nil {
		return err
	}
	return writeFileAtomic(s.Path, buf.Bytes())
}

func (s *CSVStore) Close() error { return nil }

// ReadCSV parses a header-driven CSV. Unknown columns are ignored and missing ones stay
// at their zero value; pandas-style floats ("45.0") are accepted for integer columns.
func ReadCSV(r io.Reader) ([]game.Pokemon, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("missing name column")
	}

	var pokemons []game.Pokemon
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := csvRow{index: index, record: record}
		p := game.Pokemon{
			Number:         row.int("pokedex_number"),
			Name:           row.str("name"),
			GermanName:     row.str("german_name"),
			JapaneseName:   row.str("japanese_name"),
			Generation:     row.int("generation"),
			Status:         row.str("status"),
			Species:        row.str("species"),
			Type1:          row.str("type_1"),
			Type2:          row.str("type_2"),
			Height:         row.float("height_m"),
			Weight:         row.float("weight_kg"),
			Ability1:       row.str("ability_1"),
			Ability2:       row.str("ability_2"),
			HiddenAbility:  row.str("ability_hidden"),
			HP:             row.int("hp"),
			Attack:         row.int("attack"),
			Defense:        row.int("defense"),
			SpAttack:       row.int("sp_attack"),
			SpDefense:      row.int("sp_defense"),
			Speed:          row.int("speed"),
			CatchRate:      row.int("catch_rate"),
			BaseFriendship: row.int("base_friendship"),
			BaseExperience: row.int("base_experience"),
			GrowthRate:     row.str("growth_rate"),
			Against:        make(map[string]float64, len(game.Types)),
		}
		for _, t := range game.Types {
			if _, ok := index["against_"+t]; ok && row.str("against_"+t) != "" {
				p.Against[t] = row.float("against_" + t)
			}
		}
		if row.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, row.err)
		}
		pokemons = append(pokemons, p)
	}
	return pokemons, nil
}

// WriteCSV writes pokemons with the full header.
func WriteCSV(w io.Writer, pokemons []game.Pokemon) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, p := range pokemons {
		record := []string{
			strconv.Itoa(p.Number), p.Name, p.GermanName, p.JapaneseName,
			strconv.Itoa(p.Generation), p.Status, p.Species,
			p.Type1, p.Type2, formatFloat(p.Height), formatFloat(p.Weight),
			p.Ability1, p.Ability2, p.HiddenAbility,
			strconv.Itoa(p.HP), strconv.Itoa(p.Attack), strconv.Itoa(p.Defense),
			strconv.Itoa(p.SpAttack), strconv.Itoa(p.SpDefense), strconv.Itoa(p.Speed),
			strconv.Itoa(p.CatchRate), strconv.Itoa(p.BaseFriendship), strconv.Itoa(p.BaseExperience),
			p.GrowthRate,
		}
		for _, t := range game.Types {
			record = append(record, formatFloat(p.Effectiveness(t)))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type csvRow struct {
	index  map[string]int
	record []string
	err    error
}

func (r *csvRow) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	v := strings.TrimSpace(r.record[i])
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

func (r *csvRow) float(col string) float64 {
	v := r.str(col)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
	return f
}

func (r *csvRow) int(col string) int {
	return int(math.Round(r.float(col)))
}
