package app_test

import (
	"io"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battleship/internal/app"
	"battleship/internal/config"
	"battleship/internal/game"
)

type scriptInput struct {
	guesses  []game.Coord
	rejected []error
}

func (in *scriptInput) NextGuess() (game.Coord, error) {
	if len(in.guesses) == 0 {
		return game.Coord{}, io.EOF
	}
	c := in.guesses[0]
	in.guesses = in.guesses[1:]
	return c, nil
}

func (in *scriptInput) Reject(err error) { in.rejected = append(in.rejected, err) }

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed*31+7)) }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 1
	return cfg
}

func fleetCells(o *game.Ocean) []game.Coord {
	var out []game.Coord
	for _, cells := range o.Fleet() {
		out = append(out, cells...)
	}
	return out
}

func TestNewRunsSetup(t *testing.T) {
	s, err := app.New(testConfig(), &scriptInput{}, app.WithRand(newRand(3)))
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, app.StageInProgress, s.Stage())
	assert.Equal(t, app.Computer, s.Turn())
	for _, side := range []app.Side{app.Computer, app.Player} {
		o := s.Ocean(side)
		require.NoError(t, o.Validate())
		assert.Equal(t, 4, o.ShipCount())
		assert.Equal(t, 14, o.OccupiedCount())
	}
	require.NotNil(t, s.Commitment())
	assert.Regexp(t, "^0x[0-9a-f]+$", s.Commitment().RootHex())

	_, ok := s.Winner()
	assert.False(t, ok)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ShipLengths = []int{11}
	_, err := app.New(cfg, &scriptInput{})
	require.Error(t, err)
}

func TestNewWithoutCommit(t *testing.T) {
	cfg := testConfig()
	cfg.FairPlay.Commit = false
	s, err := app.New(cfg, &scriptInput{})
	require.NoError(t, err)
	assert.Nil(t, s.Commitment())
}

func TestProofsNeedKeys(t *testing.T) {
	cfg := testConfig()
	cfg.FairPlay.Proofs = true
	_, err := app.New(cfg, &scriptInput{})
	require.ErrorContains(t, err, "proving keys")
}

func TestTurnsAlternateFromConfiguredSide(t *testing.T) {
	for _, first := range []app.Side{app.Computer, app.Player} {
		t.Run(first.String(), func(t *testing.T) {
			cfg := testConfig()
			cfg.FirstTurn = first.String()
			in := &scriptInput{}
			for r := 0; r < 10; r++ {
				for c := 0; c < 10; c++ {
					in.guesses = append(in.guesses, game.Coord{Row: r, Col: c})
				}
			}
			s, err := app.New(cfg, in, app.WithRand(newRand(5)))
			require.NoError(t, err)

			want := first
			for i := 0; i < 10; i++ {
				ev, err := s.Step()
				require.NoError(t, err)
				assert.Equal(t, want, ev.Shooter)
				assert.Equal(t, i+1, ev.N)
				want = want.Opponent()
			}
		})
	}
}

func TestStepRejectsBadGuessWithoutMutation(t *testing.T) {
	cfg := testConfig()
	cfg.FirstTurn = "player"
	in := &scriptInput{guesses: []game.Coord{{Row: 10, Col: 0}, {Row: 0, Col: 0}, {Row: 0, Col: 0}}}
	s, err := app.New(cfg, in, app.WithRand(newRand(8)))
	require.NoError(t, err)

	_, err = s.Step()
	require.ErrorIs(t, err, game.ErrInvalidCoordinate)
	assert.Equal(t, app.Player, s.Turn())
	assert.Empty(t, s.Shots(app.Player))

	ev, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 0, Col: 0}, game.Coord{Row: ev.Row, Col: ev.Col})

	_, err = s.Step()
	require.NoError(t, err, "computer turn")

	before := s.Ocean(app.Computer).OccupiedCount()
	_, err = s.Step()
	require.ErrorIs(t, err, game.ErrAlreadyGuessed)
	assert.Equal(t, app.Player, s.Turn())
	assert.Len(t, s.Shots(app.Player), 1)
	assert.Equal(t, before, s.Ocean(app.Computer).OccupiedCount())
}

func TestFailedAnswerLeavesGuessOpen(t *testing.T) {
	cfg := testConfig()
	cfg.FirstTurn = "player"
	in := &scriptInput{}
	s, err := app.New(cfg, in, app.WithRand(newRand(8)), app.WithSalt(big.NewInt(3)))
	require.NoError(t, err)

	// an all-water commitment disagrees with the real fleet on every ship cell
	water, err := app.Commit(game.NewLayout(cfg.BoardSize), big.NewInt(3), nil)
	require.NoError(t, err)
	app.SetCommitment(s, water)

	target := fleetCells(s.Ocean(app.Computer))[0]
	in.guesses = []game.Coord{target}
	before := s.Ocean(app.Computer).OccupiedCount()

	_, err = s.Step()
	require.ErrorIs(t, err, game.ErrInconsistentOccupancy)
	assert.True(t, app.Tracker(s, app.Player).IsUnguessed(target.Row, target.Col))
	assert.Zero(t, app.Tracker(s, app.Player).Guessed())
	assert.Equal(t, before, s.Ocean(app.Computer).OccupiedCount())
	assert.Empty(t, s.Shots(app.Player))
	assert.Equal(t, app.Player, s.Turn())
}

func TestRunRepromptsAfterRejection(t *testing.T) {
	cfg := testConfig()
	cfg.FirstTurn = "player"
	in := &scriptInput{}
	s, err := app.New(cfg, in, app.WithRand(newRand(11)))
	require.NoError(t, err)

	targets := fleetCells(s.Ocean(app.Computer))
	in.guesses = append([]game.Coord{{Row: -1, Col: 4}, targets[0]}, targets...)

	winner, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, app.Player, winner)
	require.Len(t, in.rejected, 2)
	assert.ErrorIs(t, in.rejected[0], game.ErrInvalidCoordinate)
	assert.ErrorIs(t, in.rejected[1], game.ErrAlreadyGuessed)
}

func TestPlayerSinksWholeFleet(t *testing.T) {
	cfg := testConfig()
	cfg.FirstTurn = "player"
	in := &scriptInput{}
	var events []app.ShotEvent
	s, err := app.New(cfg, in,
		app.WithRand(newRand(21)),
		app.WithObserver(app.ObserverFunc(func(ev app.ShotEvent) { events = append(events, ev) })))
	require.NoError(t, err)
	in.guesses = fleetCells(s.Ocean(app.Computer))

	winner, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, app.Player, winner)
	assert.Equal(t, app.StageTerminated, s.Stage())

	shots := s.Shots(app.Player)
	require.Len(t, shots, 14)
	eliminated := 0
	for i, ev := range shots {
		assert.True(t, ev.Outcome.IsHit())
		if ev.Outcome == game.FleetEliminated {
			eliminated++
			assert.Equal(t, len(shots)-1, i)
		}
	}
	assert.Equal(t, 1, eliminated)
	assert.Zero(t, s.Ocean(app.Computer).ShipCount())
	assert.Len(t, events, 27, "14 player shots and 13 computer shots")

	_, err = s.Step()
	assert.ErrorIs(t, err, app.ErrSessionOver)

	require.NoError(t, s.Audit())
}

func TestComputerWinsSingleCellBoard(t *testing.T) {
	cfg := testConfig()
	cfg.BoardSize = 1
	cfg.ShipLengths = []int{1}
	s, err := app.New(cfg, &scriptInput{})
	require.NoError(t, err)

	winner, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, app.Computer, winner)
	w, ok := s.Winner()
	assert.True(t, ok)
	assert.Equal(t, app.Computer, w)
	assert.Len(t, s.Shots(app.Computer), 1)
	assert.Empty(t, s.Shots(app.Player))
}

func TestComputerNeverRepeatsAndAlwaysFinishes(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		cfg := testConfig()
		cfg.BoardSize = 6
		cfg.ShipLengths = []int{2, 3}
		in := &scriptInput{}
		s, err := app.New(cfg, in, app.WithRand(newRand(seed)))
		require.NoError(t, err)
		// misses first, so the computer has swept its whole board before the
		// player could land a final hit
		var hits []game.Coord
		for r := 0; r < 6; r++ {
			for c := 0; c < 6; c++ {
				if s.Ocean(app.Computer).IsOccupied(r, c) {
					hits = append(hits, game.Coord{Row: r, Col: c})
				} else {
					in.guesses = append(in.guesses, game.Coord{Row: r, Col: c})
				}
			}
		}
		in.guesses = append(in.guesses, hits...)

		winner, err := s.Run()
		require.NoError(t, err)
		assert.Equal(t, app.Computer, winner)

		seen := map[game.Coord]bool{}
		for _, ev := range s.Shots(app.Computer) {
			c := game.Coord{Row: ev.Row, Col: ev.Col}
			require.False(t, seen[c], "computer repeated %v", c)
			seen[c] = true
		}
		require.NoError(t, s.Audit())
	}
}

func TestRunStopsOnInputError(t *testing.T) {
	cfg := testConfig()
	cfg.FirstTurn = "player"
	s, err := app.New(cfg, &scriptInput{})
	require.NoError(t, err)

	_, err = s.Run()
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, app.StageInProgress, s.Stage())

	_, err = s.Reveal()
	assert.ErrorIs(t, err, app.ErrSessionInProgress)
}

func TestFixedSaltGivesFixedRoot(t *testing.T) {
	cfg := testConfig()
	a, err := app.New(cfg, nil, app.WithRand(newRand(4)), app.WithSalt(big.NewInt(99)))
	require.NoError(t, err)
	b, err := app.New(cfg, nil, app.WithRand(newRand(4)), app.WithSalt(big.NewInt(99)))
	require.NoError(t, err)
	assert.Equal(t, a.Commitment().RootHex(), b.Commitment().RootHex())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseSide(t *testing.T) {
	s, err := app.ParseSide("human")
	require.NoError(t, err)
	assert.Equal(t, app.Player, s)
	_, err = app.ParseSide("referee")
	assert.Error(t, err)
}

func TestAliasFirstTurn(t *testing.T) {
	for alias, want := range map[string]app.Side{"cpu": app.Computer, "human": app.Player} {
		cfg := testConfig()
		cfg.FirstTurn = alias
		s, err := app.New(cfg, &scriptInput{})
		require.NoError(t, err, alias)
		assert.Equal(t, want, s.Turn(), alias)
	}
}

func TestSeedMatchesLayoutCommand(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 1234
	s, err := app.New(cfg, nil)
	require.NoError(t, err)

	l, err := game.RandomLayout(cfg.BoardSize, cfg.ShipLengths, game.NewRand(cfg.Seed),
		game.PlacementAttempts(cfg.PlacementAttempts))
	require.NoError(t, err)
	assert.Equal(t, l, s.Ocean(app.Computer).Layout())
}
