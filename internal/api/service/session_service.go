package service

import (
	"context"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/session"
)

// SessionService is the game API the HTTP and websocket handlers drive.
// It is satisfied by *session.Service.
type SessionService interface {
	Create(ctx context.Context, difficulty bot.Difficulty) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Play(ctx context.Context, id string, move game.Move) (*session.Session, error)
	Reset(ctx context.Context, id string) (*session.Session, error)
	SetDifficulty(ctx context.Context, id string, difficulty bot.Difficulty) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

var _ SessionService = (*session.Service)(nil)
