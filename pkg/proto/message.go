package proto

import (
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/session"
)

// Client message types.
const (
	TypeMove       = "move"
	TypeReset      = "reset"
	TypeDifficulty = "difficulty"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move reset difficulty"`
	Position   []int  `json:"position,omitempty" validate:"required_if=Type move,omitempty,len=2,dive,min=0,max=2"`
	Difficulty string `json:"difficulty,omitempty" validate:"required_if=Type difficulty,omitempty,difficulty"`
}

// Move converts Position into a board move.
func (m *ClientToServerMessage) Move() game.Move {
	return game.Move{Row: m.Position[0], Col: m.Position[1]}
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type       string              `json:"type" validate:"required"`
	Reason     string              `json:"reason,omitempty"`
	SessionID  string              `json:"sessionId,omitempty"`
	Board      [][]game.PlayerMark `json:"board,omitempty"`
	Next       game.PlayerMark     `json:"next,omitempty"`
	Outcome    game.Outcome        `json:"outcome,omitempty"`
	Winner     game.PlayerMark     `json:"winner,omitempty"`
	Difficulty string              `json:"difficulty,omitempty"`
	Scores     *session.Scores     `json:"scores,omitempty"`
	LastMove   *game.Move          `json:"lastMove,omitempty"`
}

// NewUpdate builds an update message for board as part of session s, carrying
// the tally that goes with that board.
func NewUpdate(s *session.Session, board game.Board, scores session.Scores, lastMove *game.Move) *ServerToClientMessage {
	outcome := board.Outcome()
	msg := &ServerToClientMessage{
		Type:       TypeUpdate,
		SessionID:  s.ID,
		Board:      board.Rows(),
		Outcome:    outcome,
		Difficulty: s.Difficulty.String(),
		LastMove:   lastMove,
	}
	msg.Scores = &scores

	switch outcome {
	case game.PlayerWin:
		msg.Winner = game.HumanMark
	case game.OpponentWin:
		msg.Winner = game.ComputerMark
	case game.InProgress:
		msg.Next = game.HumanMark
		if len(board.EmptyCells())%2 == 0 {
			msg.Next = game.ComputerMark
		}
	}
	return msg
}

// NewError builds an error message.
func NewError(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
