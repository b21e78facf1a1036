package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pokemon-battle/battle"
	"pokemon-battle/cli"
	"pokemon-battle/client"
	"pokemon-battle/config"
	"pokemon-battle/data"
	"pokemon-battle/game"
	"pokemon-battle/i18n"
	"pokemon-battle/parser"
	"pokemon-battle/server"
)

const usage = `uso: pokemon-battle [comando]

comandos:
  menu                          menú interactivo (por defecto)
  battle [-seed N] <a> <b>      simula una batalla e imprime el registro
  serve                         servidor HTTP (JSON, SSE y websocket)
  ssh                           menú interactivo por SSH
  watch [-seed N] <url> <a> <b> sigue una batalla transmitida por un servidor
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargando configuración: %w", err)
	}

	cmd := "menu"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "watch":
		return watch(cfg, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	case "menu", "battle", "serve", "ssh":
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("comando desconocido %q", cmd)
	}

	store, err := data.OpenStore(cfg.StoreFormat, cfg.DataPath, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("abriendo el dataset: %w", err)
	}
	manager, err := data.NewManager(ctx, store)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("cargando datos de Pokémon: %w", err)
	}
	defer manager.Close()

	switch cmd {
	case "battle":
		return runBattle(cfg, manager, args)
	case "serve":
		srv := server.New(manager, server.Options{
			Lang:        cfg.Lang,
			StreamDelay: cfg.StreamDelay,
			Battle:      []battle.Option{battle.WithRules(cfg.Rules())},
		})
		return srv.ListenAndServe(ctx, cfg.HTTPAddr)
	case "ssh":
		return server.NewSSHServer(cfg.SSHAddr, cfg.SSHHostKey, manager, cfg.Lang, cfg.BattleOptions()...).Start(ctx)
	default:
		return cli.New(os.Stdin, os.Stdout, manager, cfg.Lang, cfg.BattleOptions()...).Run(ctx)
	}
}

func runBattle(cfg config.Config, manager *data.Manager, args []string) error {
	fs := flag.NewFlagSet("battle", flag.ContinueOnError)
	seed := fs.Int64("seed", cfg.Seed, "semilla de la batalla (0 = aleatoria)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("battle necesita dos pokémon, recibió %d", fs.NArg())
	}

	first, err := manager.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	second, err := manager.Get(fs.Arg(1))
	if err != nil {
		return err
	}

	opts := []battle.Option{battle.WithRules(cfg.Rules()), battle.WithLanguage(cfg.Lang)}
	if *seed != 0 {
		opts = append(opts, battle.WithSeed(*seed))
	}
	res, err := battle.Run(&first, &second, opts...)
	if err != nil {
		return err
	}
	for _, line := range res.Log {
		fmt.Println(line)
	}
	fmt.Println(i18n.Printer(cfg.Lang).Sprintf(i18n.KeyBattleWinner, res.Winner.Name, res.Winner.Number))
	fmt.Printf("(batalla %s, semilla %d)\n", res.ID, res.Seed)
	return nil
}

func watch(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	seed := fs.Int64("seed", cfg.Seed, "semilla de la batalla (0 = la elige el servidor)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("watch necesita <url> <a> <b>, recibió %d argumentos", fs.NArg())
	}

	bc, err := client.Dial(fs.Arg(0), fs.Arg(1), fs.Arg(2), *seed)
	if err != nil {
		return err
	}
	defer bc.Close()

	state, err := bc.Watch(func(_ *game.BattleState, line string) {
		fmt.Println(line)
	})
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(parser.RenderBattleState(state, cfg.Lang))
	return nil
}
