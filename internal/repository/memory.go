package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe-ai/internal/session"
)

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewMemorySessionRepository creates an empty in-memory repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*session.Session)}
}

// Save stores a copy of s.
func (r *MemorySessionRepository) Save(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
	return nil
}

// FindByID returns a copy of the stored session.
func (r *MemorySessionRepository) FindByID(_ context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Delete removes the session.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return session.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Prune removes sessions not updated since cutoff and reports how many were removed.
func (r *MemorySessionRepository) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// ExpireEvery prunes sessions idle for longer than ttl on every tick until ctx is done.
func (r *MemorySessionRepository) ExpireEvery(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Prune(now.Add(-ttl)); n > 0 {
				slog.DebugContext(ctx, "Expired idle sessions", "sessions.count", n)
			}
		}
	}
}
