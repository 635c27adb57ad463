package app

import "battleship/internal/game"

// SetCommitment swaps the computer's commitment.
func SetCommitment(s *Session, c *Commitment) { s.commit = c }

// Tracker exposes the guess tracker of side.
func Tracker(s *Session, side Side) *game.GuessTracker { return s.trackers[side] }
