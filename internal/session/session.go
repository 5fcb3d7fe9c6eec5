package session

import (
	"context"
	"errors"
	"time"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/game"
)

//go:generate mockgen -source=session.go -destination=mocks/mock_session.go -package=mocks

var (
	// ErrSessionNotFound is returned when no session exists for an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrGameOver is returned when a move is played after the game ended.
	ErrGameOver = errors.New("game is already over")
)

// MoveCalculator picks the computer's reply for a position.
type MoveCalculator interface {
	SelectMove(board game.Board, difficulty bot.Difficulty) (game.Move, error)
}

// Repository persists sessions.
type Repository interface {
	Save(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Scores is the running tally across games of one session.
type Scores struct {
	Human    int `json:"human"`
	Computer int `json:"computer"`
	Draws    int `json:"draws"`
}

func (s *Scores) record(o game.Outcome) {
	switch o {
	case game.PlayerWin:
		s.Human++
	case game.OpponentWin:
		s.Computer++
	case game.Draw:
		s.Draws++
	}
}

// Session is one human's series of games against the computer.
type Session struct {
	ID               string         `json:"id"`
	Board            game.Board     `json:"board"`
	Difficulty       bot.Difficulty `json:"difficulty"`
	Outcome          game.Outcome   `json:"outcome"`
	Scores           Scores         `json:"scores"`
	LastComputerMove *game.Move     `json:"last_computer_move,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	if s.LastComputerMove != nil {
		m := *s.LastComputerMove
		c.LastComputerMove = &m
	}
	return &c
}

// BeforeComputerMove returns the board as it stood right after the human's
// last placement, before the computer replied.
func (s *Session) BeforeComputerMove() game.Board {
	b := s.Board.Clone()
	if s.LastComputerMove != nil {
		b.Undo(*s.LastComputerMove)
	}
	return b
}

// ScoresBeforeComputerMove returns the tally as it stood on the board from
// BeforeComputerMove. It differs from Scores only when the computer's reply
// ended the game.
func (s *Session) ScoresBeforeComputerMove() Scores {
	scores := s.Scores
	if s.LastComputerMove == nil || !s.Outcome.IsTerminal() {
		return scores
	}
	switch s.Outcome {
	case game.OpponentWin:
		scores.Computer--
	case game.Draw:
		scores.Draws--
	}
	return scores
}
