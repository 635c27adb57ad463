package app

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"battleship/internal/codec"
	"battleship/internal/config"
	"battleship/internal/game"
	"battleship/internal/zk"
)

var (
	ErrSessionOver       = errors.New("session is over")
	ErrSessionInProgress = errors.New("session still in progress")
	ErrNoInput           = errors.New("no input for player turn")
)

// Input supplies the human player's guesses. NextGuess may block for as long
// as it likes; Reject is told why a guess was refused before the next prompt.
type Input interface {
	NextGuess() (game.Coord, error)
	Reject(err error)
}

// Observer is notified after every resolved shot.
type Observer interface {
	Observe(ev ShotEvent)
}

type ObserverFunc func(ev ShotEvent)

func (f ObserverFunc) Observe(ev ShotEvent) { f(ev) }

// ShotEvent records one resolved shot.
type ShotEvent struct {
	N       int          `json:"n"` // 1-based, across both sides
	Shooter Side         `json:"shooter"`
	Row     int          `json:"row"`
	Col     int          `json:"col"`
	Outcome game.Outcome `json:"outcome"`
	At      int64        `json:"at"` // unix ms
}

type Option func(*Session)

func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// WithProofKeys supplies the groth16 keys used when fair_play.proofs is on.
func WithProofKeys(k *zk.Keys) Option { return func(s *Session) { s.keys = k } }

// WithSalt fixes the commitment salt instead of drawing a random one.
func WithSalt(salt *big.Int) Option { return func(s *Session) { s.salt = salt } }

// Session runs one game between the computer and a human player. It owns
// both oceans and both guess trackers; nothing else mutates them.
type Session struct {
	ID string

	cfg    config.Config
	stage  Stage
	turn   Side
	winner Side

	oceans   [2]*game.Ocean        // indexed by owner
	trackers [2]*game.GuessTracker // indexed by guesser

	input     Input
	observers []Observer
	log       zerolog.Logger
	rng       *rand.Rand

	commit *Commitment
	keys   *zk.Keys
	salt   *big.Int

	shots []ShotEvent
}

// New validates cfg and runs setup: every configured ship is placed on the
// computer's ocean, then on the player's. Any setup failure aborts.
func New(cfg config.Config, input Input, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	first, err := ParseSide(cfg.FirstTurn)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:    uuid.NewString(),
		cfg:   cfg,
		stage: StageSetup,
		turn:  first,
		input: input,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = game.NewRand(cfg.Seed)
	}
	s.log = s.log.With().Str("session", s.ID).Logger()

	for _, side := range sides {
		s.oceans[side] = game.NewOcean(cfg.BoardSize, s.rng, game.PlacementAttempts(cfg.PlacementAttempts))
		s.trackers[side] = game.NewGuessTracker(cfg.BoardSize, s.rng)
	}
	for _, side := range sides {
		for _, l := range cfg.ShipLengths {
			if _, err := s.oceans[side].AddRandomShip(l); err != nil {
				return nil, fmt.Errorf("setup %s fleet: %w", side, err)
			}
		}
	}

	if cfg.FairPlay.Commit {
		if err := s.commitFleet(); err != nil {
			return nil, fmt.Errorf("commit computer fleet: %w", err)
		}
	}

	s.stage = StageInProgress
	s.log.Info().
		Int("board_size", cfg.BoardSize).
		Ints("ships", cfg.ShipLengths).
		Stringer("first", first).
		Msg("session ready")
	return s, nil
}

func (s *Session) commitFleet() error {
	var keys *zk.Keys
	if s.cfg.FairPlay.Proofs {
		if s.keys == nil {
			return errors.New("proofs enabled but no proving keys supplied")
		}
		keys = s.keys
	}
	salt := s.salt
	if salt == nil {
		var err error
		if salt, err = NewSalt(); err != nil {
			return err
		}
	}
	c, err := Commit(s.oceans[Computer].Layout(), salt, keys)
	if err != nil {
		return err
	}
	s.commit = c
	s.log.Info().Str("root", c.RootHex()).Bool("proofs", keys != nil).Msg("computer fleet committed")
	return nil
}

// Subscribe adds an observer after construction, e.g. a renderer that needs
// the oceans.
func (s *Session) Subscribe(o Observer) { s.observers = append(s.observers, o) }

// Step plays exactly one turn for the side whose turn it is. A refused human
// guess returns an error wrapping game.ErrInvalidCoordinate or
// game.ErrAlreadyGuessed and leaves the session untouched; the same side is
// still on turn. A human guess only counts as guessed once its shot has been
// applied.
func (s *Session) Step() (ShotEvent, error) {
	if s.stage == StageTerminated {
		return ShotEvent{}, ErrSessionOver
	}
	shooter := s.turn

	var target game.Coord
	switch shooter {
	case Computer:
		c, err := s.trackers[Computer].NextRandomGuess()
		if err != nil {
			return ShotEvent{}, fmt.Errorf("computer guess: %w", err)
		}
		target = c
	case Player:
		if s.input == nil {
			return ShotEvent{}, ErrNoInput
		}
		c, err := s.input.NextGuess()
		if err != nil {
			return ShotEvent{}, err
		}
		if err := s.trackers[Player].CheckGuess(c.Row, c.Col); err != nil {
			return ShotEvent{}, err
		}
		target = c
	}
	return s.fire(shooter, target)
}

func (s *Session) fire(shooter Side, c game.Coord) (ShotEvent, error) {
	ocean := s.oceans[shooter.Opponent()]
	occupied := ocean.IsOccupied(c.Row, c.Col)

	if shooter == Player && s.commit != nil {
		if err := s.checkAnswer(c, occupied); err != nil {
			return ShotEvent{}, err
		}
	}

	outcome := game.Miss
	if occupied {
		var err error
		if outcome, err = ocean.RecordHit(c.Row, c.Col); err != nil {
			return ShotEvent{}, err
		}
	}
	// the computer's guess was recorded when it was drawn
	if shooter == Player {
		if err := s.trackers[Player].RecordGuess(c.Row, c.Col); err != nil {
			return ShotEvent{}, err
		}
	}

	ev := ShotEvent{
		N:       len(s.shots) + 1,
		Shooter: shooter,
		Row:     c.Row,
		Col:     c.Col,
		Outcome: outcome,
		At:      time.Now().UnixMilli(),
	}
	s.shots = append(s.shots, ev)

	if outcome == game.FleetEliminated {
		s.stage = StageTerminated
		s.winner = shooter
	} else {
		s.turn = shooter.Opponent()
	}

	s.log.Debug().
		Int("n", ev.N).
		Stringer("shooter", shooter).
		Int("row", c.Row).
		Int("col", c.Col).
		Stringer("outcome", outcome).
		Msg("shot")
	if s.stage == StageTerminated {
		s.log.Info().Stringer("winner", shooter).Int("shots", len(s.shots)).Msg("game over")
	}

	for _, o := range s.observers {
		o.Observe(ev)
	}
	return ev, nil
}

// checkAnswer has the computer answer from its commitment and, when proofs
// are on, verifies the proof before the shot is applied.
func (s *Session) checkAnswer(c game.Coord, occupied bool) error {
	ans, err := s.commit.Answer(c.Row, c.Col)
	if err != nil {
		return err
	}
	if ans.Hit != occupied {
		return fmt.Errorf("%w: commitment says hit=%t at %v, ocean says %t",
			game.ErrInconsistentOccupancy, ans.Hit, c, occupied)
	}
	if ans.Proof == nil {
		return nil
	}
	if err := VerifyAnswer(s.commit.VerifyingKey(), s.commit.Root(), s.cfg.BoardSize, c.Row, c.Col, ans); err != nil {
		return err
	}
	s.log.Debug().Int("row", c.Row).Int("col", c.Col).Msg("shot proof verified")
	return nil
}

// Run plays turns until one fleet is gone and returns the winner. Refused
// human guesses are handed to Input.Reject and the player is asked again; any
// other error ends the run.
func (s *Session) Run() (Side, error) {
	for s.stage != StageTerminated {
		_, err := s.Step()
		if err == nil {
			continue
		}
		if s.turn == Player && isUsageError(err) {
			s.log.Debug().Err(err).Msg("guess rejected")
			s.input.Reject(err)
			continue
		}
		return s.winner, err
	}
	return s.winner, nil
}

func isUsageError(err error) bool {
	return errors.Is(err, game.ErrInvalidCoordinate) || errors.Is(err, game.ErrAlreadyGuessed)
}

func (s *Session) Stage() Stage { return s.stage }

// Turn is the side to act next.
func (s *Session) Turn() Side { return s.turn }

// Winner reports the winning side once the session has terminated.
func (s *Session) Winner() (Side, bool) {
	return s.winner, s.stage == StageTerminated
}

func (s *Session) Config() config.Config { return s.cfg }

// Ocean returns the ocean owned by side.
func (s *Session) Ocean(side Side) *game.Ocean { return s.oceans[side] }

// Shots returns the shots fired by side, in order.
func (s *Session) Shots(side Side) []ShotEvent {
	var out []ShotEvent
	for _, ev := range s.shots {
		if ev.Shooter == side {
			out = append(out, ev)
		}
	}
	return out
}

// Commitment is nil when fair play is off.
func (s *Session) Commitment() *Commitment { return s.commit }

// Reveal opens the computer's commitment. It is only allowed once the game is
// over.
func (s *Session) Reveal() (codec.Reveal, error) {
	if s.stage != StageTerminated {
		return codec.Reveal{}, ErrSessionInProgress
	}
	if s.commit == nil {
		return codec.Reveal{}, errors.New("fair play is off")
	}
	return s.commit.Reveal(), nil
}

// Audit reveals the commitment and checks every answer the computer gave.
func (s *Session) Audit() error {
	reveal, err := s.Reveal()
	if err != nil {
		return err
	}
	return Audit(s.commit.Public(), reveal, s.Shots(Player))
}
