package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"battleship/internal/app"
	"battleship/internal/config"
	"battleship/internal/console"
	"battleship/internal/game"
	"battleship/internal/render"
	"battleship/internal/zk"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

func main() {
	cmd, args := "play", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "play":
		cmdPlay(args)
	case "layout":
		cmdLayout(args)
	case "keys":
		cmdKeys(args)
	default:
		usage()
	}
}

func usage() {
	fmt.Print(`Battleship CLI

Commands:
  play   [--config battleship.yaml] [--size N] [--render] [--first computer|player]
         [--seed N] [--proofs] [--keys ./keys]
  layout --out layout.json [--config battleship.yaml] [--seed N]
  keys   --dir ./keys
` + "\n")
}

func loadConfig(path string) config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	return cfg
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	size := fs.Int("size", 10, "board size")
	rendering := fs.Bool("render", false, "print both boards after every shot")
	first := fs.String("first", "computer", "who shoots first: computer or player")
	seed := fs.Uint64("seed", 0, "random seed, 0 for a random one")
	proofs := fs.Bool("proofs", false, "prove every computer answer with groth16")
	keysDir := fs.String("keys", "./keys", "keys directory")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.BoardSize = *size
		case "render":
			cfg.EnableRendering = *rendering
		case "first":
			cfg.FirstTurn = *first
		case "seed":
			cfg.Seed = *seed
		case "proofs":
			cfg.FairPlay.Proofs = *proofs
			if *proofs {
				cfg.FairPlay.Commit = true
			}
		case "keys":
			cfg.FairPlay.KeysDir = *keysDir
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("logger")
	}
	zk.SetLogger(logger)

	opts := []app.Option{app.WithLogger(logger)}
	if cfg.FairPlay.Proofs {
		keys, err := zk.EnsureKeys(cfg.FairPlay.KeysDir)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.FairPlay.KeysDir).Msg("proving keys")
		}
		opts = append(opts, app.WithProofKeys(keys))
	}

	prompter := console.NewPrompter(os.Stdin, os.Stdout, cfg.BoardSize)
	s, err := app.New(cfg, prompter, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("setup")
	}

	fmt.Println("Your ships are: ------------------")
	printFleet(s.Ocean(app.Player))
	if c := s.Commitment(); c != nil {
		fmt.Println("CPU fleet committed, root:", c.RootHex())
	}

	s.Subscribe(app.ObserverFunc(announce))
	if cfg.EnableRendering {
		ships := render.NewShipBoard(s.Ocean(app.Player))
		target := render.NewTargetBoard(cfg.BoardSize)
		s.Subscribe(ships.Observer(app.Computer))
		s.Subscribe(target.Observer(app.Player))
		s.Subscribe(app.ObserverFunc(func(ev app.ShotEvent) {
			if ev.Shooter == app.Computer {
				_, _ = ships.WriteTo(os.Stdout)
			} else {
				_, _ = target.WriteTo(os.Stdout)
			}
		}))
	}

	winner, err := s.Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("game aborted")
	}
	if winner == app.Player {
		fmt.Println("---YOU WON!---")
	} else {
		fmt.Println("---CPU WIN!---")
	}

	if s.Commitment() == nil {
		return
	}
	fmt.Println("CPU ships left: ------------------")
	printFleet(s.Ocean(app.Computer))
	reveal, err := s.Reveal()
	if err != nil {
		logger.Fatal().Err(err).Msg("reveal")
	}
	fmt.Println("revealed salt:", reveal.SaltHex)
	if err := s.Audit(); err != nil {
		fmt.Println("✗ fair play audit failed:", err)
		os.Exit(1)
	}
	fmt.Println("✓ fair play audit passed")
}

func announce(ev app.ShotEvent) {
	if ev.Shooter == app.Computer {
		fmt.Println("CPU turn --------")
		fmt.Printf("CPU guess is %d %d\n", ev.Row, ev.Col)
	}
	fmt.Println(ev.Outcome)
}

// printFleet lists the remaining cells of every live ship.
func printFleet(o *game.Ocean) {
	fleet := o.Fleet()
	for _, id := range slices.Sorted(maps.Keys(fleet)) {
		fmt.Println(fleet[id])
	}
}

func cmdLayout(args []string) {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	out := fs.String("out", "layout.json", "output layout file")
	cfgPath := fs.String("config", "", "YAML config file")
	seed := fs.Uint64("seed", 0, "random seed, 0 for a random one")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Seed = *seed
		}
	})
	l, err := game.RandomLayout(cfg.BoardSize, cfg.ShipLengths, game.NewRand(cfg.Seed),
		game.PlacementAttempts(cfg.PlacementAttempts))
	if err != nil {
		log.Fatal().Err(err).Msg("place fleet")
	}
	if err := l.Validate(cfg.ShipCells()); err != nil {
		log.Fatal().Err(err).Msg("layout")
	}
	if err := saveJSON(*out, l); err != nil {
		log.Fatal().Err(err).Msg("write layout")
	}
	fmt.Println("✓ wrote", *out)
}

func cmdKeys(args []string) {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	dir := fs.String("dir", "./keys", "keys directory")
	_ = fs.Parse(args)

	zk.SetLogger(log)
	if _, err := zk.EnsureKeys(*dir); err != nil {
		log.Fatal().Err(err).Msg("keys")
	}
	fmt.Println("✓ keys ready in", *dir)
}

func saveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
