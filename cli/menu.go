// Package cli is the interactive text menu: list, inspect, edit and battle pokemon.
// It runs over any reader/writer pair, so the same menu serves a terminal and SSH.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"pokemon-battle/battle"
	"pokemon-battle/data"
	"pokemon-battle/game"
	"pokemon-battle/i18n"
)

// errQuit ends the menu when input runs out.
var errQuit = errors.New("input closed")

type Menu struct {
	in      *bufio.Scanner
	out     io.Writer
	manager *data.Manager
	opts    []battle.Option
	lang    string
	rng     *rand.Rand
}

// New builds a menu. opts are passed to every battle; lang selects the log language.
func New(in io.Reader, out io.Writer, manager *data.Manager, lang string, opts ...battle.Option) *Menu {
	seed, err := battle.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return &Menu{
		in:      bufio.NewScanner(in),
		out:     out,
		manager: manager,
		opts:    append(append([]battle.Option{}, opts...), battle.WithLanguage(lang)),
		lang:    lang,
		rng:     battle.NewRand(seed),
	}
}

// Run shows the main menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	m.printf("\n¡Bienvenido al Sistema de Batallas Pokémon!\n")
	m.printf("Cargados %d Pokémon.\n\n", m.manager.Len())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.displayMainMenu()
		choice, err := m.prompt("\nSeleccione una opción (1-7): ")
		if err != nil {
			return nil
		}

		switch choice {
		case "1":
			m.listPokemons()
		case "2":
			err = m.showPokemonDetails()
		case "3":
			err = m.addPokemon(ctx)
		case "4":
			err = m.updatePokemon(ctx)
		case "5":
			err = m.deletePokemon(ctx)
		case "6":
			err = m.battlePokemons()
		case "7":
			m.printf("\n¡Gracias por usar el Sistema de Batallas Pokémon!\n")
			return nil
		default:
			m.printf("\nOpción no válida. Por favor seleccione 1-7.\n")
		}
		if errors.Is(err, errQuit) {
			return nil
		}
	}
}

func (m *Menu) displayMainMenu() {
	m.printf("\n--- Menú Principal ---\n")
	m.printf("1. Listar todos los Pokémons\n")
	m.printf("2. Ver detalles de un Pokémon\n")
	m.printf("3. Agregar nuevo Pokémon\n")
	m.printf("4. Modificar Pokémon existente\n")
	m.printf("5. Eliminar Pokémon\n")
	m.printf("6. Realizar una batalla\n")
	m.printf("7. Salir\n")
}

func (m *Menu) listPokemons() {
	m.printf("\n--- Pokémons Disponibles ---\n")
	all := m.manager.List()
	for i, p := range all {
		m.printf("%3d. #%03d %s\n", i+1, p.Number, p.Name)
	}
	m.printf("\nTotal: %d Pokémons\n", len(all))
}

func (m *Menu) showPokemonDetails() error {
	name, err := m.prompt("\nIngrese el nombre del Pokémon: ")
	if err != nil {
		return err
	}
	p, err := m.manager.Get(name)
	if err != nil {
		m.printf("\n¡Pokémon no encontrado!\n")
		return nil
	}

	m.printf("\n--- Detalles del Pokémon ---\n")
	m.printf("ID: #%d\n", p.Number)
	m.printf("Nombre: %s (Alemán: %s, Japonés: %s)\n", p.Name, p.GermanName, p.JapaneseName)
	m.printf("Generación: %d - Especie: %s\n", p.Generation, p.Species)
	m.printf("Tipos: %s\n", strings.Join(p.TypeNames(), "/"))
	m.printf("Altura: %gm - Peso: %gkg\n", p.Height, p.Weight)

	m.printf("\nHabilidades:\n")
	m.printf("- %s\n", p.Ability1)
	if p.Ability2 != "" {
		m.printf("- %s\n", p.Ability2)
	}
	if p.HiddenAbility != "" {
		m.printf("- Habilidad Oculta: %s\n", p.HiddenAbility)
	}

	m.printf("\nEstadísticas:\n")
	m.printf("HP: %d\n", p.HP)
	m.printf("Ataque: %d\n", p.Attack)
	m.printf("Defensa: %d\n", p.Defense)
	m.printf("Ataque Especial: %d\n", p.SpAttack)
	m.printf("Defensa Especial: %d\n", p.SpDefense)
	m.printf("Velocidad: %d\n", p.Speed)

	m.printf("\nDatos de Entrenamiento:\n")
	m.printf("Ratio de Captura: %d\n", p.CatchRate)
	m.printf("Amistad Base: %d\n", p.BaseFriendship)
	m.printf("Experiencia Base: %d\n", p.BaseExperience)
	m.printf("Ratio de Crecimiento: %s\n", p.GrowthRate)

	var weak []string
	for _, t := range game.Types {
		if p.Effectiveness(t) > 1 {
			weak = append(weak, fmt.Sprintf("%s x%g", game.DisplayType(t), p.Effectiveness(t)))
		}
	}
	if len(weak) > 0 {
		m.printf("\nDebilidades: %s\n", strings.Join(weak, ", "))
	}
	return nil
}

func (m *Menu) addPokemon(ctx context.Context) error {
	m.printf("\n--- Agregar Nuevo Pokémon ---\n")
	m.printf("Complete los datos del nuevo Pokémon (deje vacío para cancelar):\n")

	name, err := m.prompt("Nombre: ")
	if err != nil {
		return err
	}
	if name == "" {
		m.printf("\nOperación cancelada.\n")
		return nil
	}
	if _, err := m.manager.Get(name); err == nil {
		m.printf("\n¡Ya existe un Pokémon con ese nombre!\n")
		return nil
	}

	p := game.Pokemon{
		Name:       name,
		Generation: 1,
		Status:     "Normal",
		Species:    "Custom Pokémon",
		Height:     1.0,
		Weight:     1.0,
		Ability1:   "Custom Ability",
		CatchRate:  45,

		BaseFriendship: 50,
		BaseExperience: 64,
		GrowthRate:     "Medium Slow",
		Against:        game.NeutralAgainst(),
	}

	if p.Number, err = m.promptInt("Número en la Pokédex: "); err != nil {
		return m.numberError(err)
	}
	type1, err := m.prompt("Tipo primario: ")
	if err != nil {
		return err
	}
	type2, err := m.prompt("Tipo secundario (opcional): ")
	if err != nil {
		return err
	}
	p.Type1, p.Type2 = game.DisplayType(type1), game.DisplayType(type2)

	stats := []struct {
		label string
		dst   *int
	}{
		{"HP: ", &p.HP},
		{"Ataque: ", &p.Attack},
		{"Defensa: ", &p.Defense},
		{"Ataque Especial: ", &p.SpAttack},
		{"Defensa Especial: ", &p.SpDefense},
		{"Velocidad: ", &p.Speed},
	}
	for _, s := range stats {
		if *s.dst, err = m.promptInt(s.label); err != nil {
			return m.numberError(err)
		}
	}

	if err := m.manager.Add(ctx, p); err != nil {
		log.Printf("error al agregar %s: %v", name, err)
		m.printf("\nError al agregar el Pokémon: %v\n", err)
		return nil
	}
	m.printf("\n¡%s ha sido agregado exitosamente!\n", name)
	return nil
}

func (m *Menu) updatePokemon(ctx context.Context) error {
	name, err := m.prompt("\nIngrese el nombre del Pokémon a modificar: ")
	if err != nil {
		return err
	}
	p, err := m.manager.Get(name)
	if err != nil {
		m.printf("\n¡Pokémon no encontrado!\n")
		return nil
	}

	m.printf("\nModificando a %s (#%d)\n", p.Name, p.Number)
	m.printf("Ingrese los nuevos valores (deje vacío para mantener el actual):\n")

	var patch data.Patch
	fields := []struct {
		label string
		cur   int
		dst   **int
	}{
		{"HP", p.HP, &patch.HP},
		{"Ataque", p.Attack, &patch.Attack},
		{"Defensa", p.Defense, &patch.Defense},
		{"Ataque Especial", p.SpAttack, &patch.SpAttack},
		{"Defensa Especial", p.SpDefense, &patch.SpDefense},
		{"Velocidad", p.Speed, &patch.Speed},
	}
	for _, f := range fields {
		raw, err := m.prompt(fmt.Sprintf("%s [%d]: ", f.label, f.cur))
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			m.printf("\nError: Los valores deben ser números enteros.\n")
			return nil
		}
		*f.dst = &v
	}

	if patch.Empty() {
		m.printf("\nNo se realizaron cambios.\n")
		return nil
	}
	if _, err := m.manager.Update(ctx, name, patch); err != nil {
		log.Printf("error al modificar %s: %v", name, err)
		m.printf("\nNo se realizaron cambios: %v\n", err)
		return nil
	}
	m.printf("\n¡%s ha sido actualizado!\n", p.Name)
	return nil
}

func (m *Menu) deletePokemon(ctx context.Context) error {
	name, err := m.prompt("\nIngrese el nombre del Pokémon a eliminar: ")
	if err != nil {
		return err
	}
	if err := m.manager.Delete(ctx, name); err != nil {
		if !errors.Is(err, data.ErrNotFound) {
			log.Printf("error al eliminar %s: %v", name, err)
		}
		m.printf("\n¡Pokémon no encontrado!\n")
		return nil
	}
	m.printf("\n¡%s ha sido eliminado exitosamente!\n", name)
	return nil
}

func (m *Menu) battlePokemons() error {
	m.printf("\n--- Batalla Pokémon ---\n")
	m.printf("Seleccione el modo de batalla:\n")
	m.printf("1. Batalla manual (elegir Pokémon)\n")
	m.printf("2. Batalla aleatoria\n")

	mode, err := m.prompt("Seleccione (1-2): ")
	if err != nil {
		return err
	}
	switch mode {
	case "1":
		return m.manualBattle()
	case "2":
		return m.randomBattle()
	default:
		m.printf("\nOpción no válida.\n")
		return nil
	}
}

func (m *Menu) manualBattle() error {
	m.listPokemons()

	var first game.Pokemon
	for {
		name, err := m.prompt("\nNombre del primer Pokémon: ")
		if err != nil {
			return err
		}
		if first, err = m.manager.Get(name); err == nil {
			break
		}
		m.printf("¡Pokémon no encontrado! Intente nuevamente.\n")
	}

	var second game.Pokemon
	for {
		name, err := m.prompt("Nombre del segundo Pokémon: ")
		if err != nil {
			return err
		}
		second, err = m.manager.Get(name)
		switch {
		case err != nil:
			m.printf("¡Pokémon no encontrado! Intente nuevamente.\n")
			continue
		case second.Key() == first.Key():
			m.printf("¡No puede elegir el mismo Pokémon! Intente nuevamente.\n")
			continue
		}
		break
	}
	return m.startBattle(first, second)
}

func (m *Menu) randomBattle() error {
	first, second, err := m.manager.RandomPair(m.rng)
	if err != nil {
		m.printf("\nSe necesitan al menos dos Pokémon para una batalla aleatoria.\n")
		return nil
	}
	m.printf("\n¡Batalla aleatoria entre %s y %s!\n", first.Name, second.Name)
	return m.startBattle(first, second)
}

func (m *Menu) startBattle(first, second game.Pokemon) error {
	if _, err := m.prompt("\nPresione Enter para comenzar la batalla..."); err != nil {
		return err
	}

	res, err := battle.Run(&first, &second, m.opts...)
	if err != nil {
		log.Printf("batalla fallida: %v", err)
		m.printf("\nLa batalla no pudo completarse: %v\n", err)
		return nil
	}

	m.printf("\n--- Resumen de la Batalla ---\n")
	for i, line := range res.Log {
		switch res.Events[i].Kind {
		case battle.EventTurn, battle.EventFaint:
			m.printf("\n")
		}
		m.printf("%s\n", line)
	}
	m.printf("\n%s\n", i18n.Printer(m.lang).Sprintf(i18n.KeyBattleWinner, res.Winner.Name, res.Winner.Number))
	_, err = m.prompt("\nPresione Enter para continuar...")
	return err
}

func (m *Menu) numberError(err error) error {
	if errors.Is(err, errQuit) {
		return err
	}
	m.printf("\nError: Los valores numéricos deben ser enteros.\n")
	return nil
}

func (m *Menu) prompt(label string) (string, error) {
	m.printf("%s", label)
	if !m.in.Scan() {
		return "", errQuit
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) promptInt(label string) (int, error) {
	raw, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
