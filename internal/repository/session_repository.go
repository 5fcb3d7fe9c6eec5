package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctchen222/tictactoe-ai/internal/session"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.session")

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepository creates a new Redis-based session.Repository.
// Every save refreshes the key's expiry to ttl; zero disables expiry.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) session.Repository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

// Save stores the session as JSON.
func (r *redisSessionRepository) Save(ctx context.Context, s *session.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save", trace.WithAttributes(attribute.String("session.id", s.ID)))
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal session")
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
		return fmt.Errorf("failed to save session in redis: %w", err)
	}
	return nil
}

// FindByID loads a session, returning session.ErrSessionNotFound for missing or expired keys.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get session")
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to unmarshal session")
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes the session key.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	n, err := r.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}
