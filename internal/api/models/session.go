package models

import "ctchen222/tictactoe-ai/internal/session"

// CreateSessionRequest defines the body of a new-session request.
type CreateSessionRequest struct {
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// CreateSessionResponse carries the new session and the token that authorizes it.
type CreateSessionResponse struct {
	Session *session.Session `json:"session"`
	Token   string           `json:"token"`
}

// MoveRequest defines the human's placement. Pointers let row 0 and col 0 pass `required`.
type MoveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// DifficultyRequest changes the tier of a session.
type DifficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
}
