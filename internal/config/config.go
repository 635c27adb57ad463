package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"battleship/internal/merkle"
)

// Config holds every session option. Keys absent from a YAML file keep their
// Default values.
type Config struct {
	BoardSize   int   `yaml:"board_size"`
	ShipLengths []int `yaml:"ship_lengths"`

	// EnableRendering prints both boards after every shot.
	EnableRendering bool `yaml:"enable_rendering"`

	// FirstTurn is "computer" or "player", or an alias accepted by CanonicalSide.
	FirstTurn string `yaml:"first_turn"`

	// PlacementAttempts bounds random ship placement per ship.
	PlacementAttempts int `yaml:"placement_attempts"`

	// Seed makes placement and computer guesses reproducible. 0 picks a random seed.
	Seed uint64 `yaml:"seed"`

	FairPlay FairPlay `yaml:"fair_play"`
	Log      Log      `yaml:"log"`
}

// FairPlay controls the computer's fleet commitment.
type FairPlay struct {
	Commit  bool   `yaml:"commit"`
	Proofs  bool   `yaml:"proofs"`
	KeysDir string `yaml:"keys_dir"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

// maxBoardSize is bounded by the A..Z row labels.
const maxBoardSize = 26

func Default() Config {
	return Config{
		BoardSize:         10,
		ShipLengths:       []int{2, 3, 4, 5},
		FirstTurn:         "computer",
		PlacementAttempts: 1000,
		FairPlay: FairPlay{
			Commit:  true,
			KeysDir: "./keys",
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML config file on top of Default and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BoardSize < 1 || c.BoardSize > maxBoardSize {
		return fmt.Errorf("board_size %d out of range [1, %d]", c.BoardSize, maxBoardSize)
	}
	if len(c.ShipLengths) == 0 {
		return errors.New("ship_lengths is empty")
	}
	total := 0
	for _, l := range c.ShipLengths {
		if l < 1 || l > c.BoardSize {
			return fmt.Errorf("ship length %d does not fit a %dx%d board", l, c.BoardSize, c.BoardSize)
		}
		total += l
	}
	if total > c.BoardSize*c.BoardSize {
		return fmt.Errorf("ships need %d cells, board has %d", total, c.BoardSize*c.BoardSize)
	}
	if _, err := CanonicalSide(c.FirstTurn); err != nil {
		return fmt.Errorf("first_turn: %w", err)
	}
	if c.PlacementAttempts < 1 {
		return fmt.Errorf("placement_attempts %d must be positive", c.PlacementAttempts)
	}
	if c.FairPlay.Commit && c.BoardSize*c.BoardSize > 1<<merkle.Depth {
		return fmt.Errorf("fair_play needs at most %d cells, board has %d", 1<<merkle.Depth, c.BoardSize*c.BoardSize)
	}
	if c.FairPlay.Proofs && !c.FairPlay.Commit {
		return errors.New("fair_play.proofs requires fair_play.commit")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q must be console or json", c.Log.Format)
	}
	return nil
}

var sideNames = map[string]string{
	"computer": "computer",
	"cpu":      "computer",
	"player":   "player",
	"human":    "player",
}

// CanonicalSide maps a side name or alias to "computer" or "player".
func CanonicalSide(name string) (string, error) {
	side, ok := sideNames[name]
	if !ok {
		return "", fmt.Errorf("unknown side %q, want computer or player", name)
	}
	return side, nil
}

// ShipCells is the number of cells each fleet occupies.
func (c Config) ShipCells() int {
	total := 0
	for _, l := range c.ShipLengths {
		total += l
	}
	return total
}

// NewLogger builds the logger described by l, writing to w.
func (l Log) NewLogger(w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if l.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
