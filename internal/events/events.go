package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe-ai/internal/game"
)

//go:generate mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeMarkPlaced = "mark_placed"
	TypeGameOver   = "game_over"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MarkPlacedPayload is the payload for the "mark_placed" event.
type MarkPlacedPayload struct {
	SessionID string          `json:"session_id"`
	Mark      game.PlayerMark `json:"mark"`
	Row       int             `json:"row"`
	Col       int             `json:"col"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	SessionID string       `json:"session_id"`
	Outcome   game.Outcome `json:"outcome"`
}

// New wraps payload into an Event of the given type.
func New(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

// Publisher delivers events to interested listeners.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event Event) error

// Publish calls f(ctx, event).
func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) error { return nil })
