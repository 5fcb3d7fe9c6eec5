package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/events"
	"ctchen222/tictactoe-ai/internal/game"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")
)

// Service runs games between a human and the move engine.
type Service struct {
	repo              Repository
	engine            MoveCalculator
	publisher         events.Publisher
	defaultDifficulty bot.Difficulty
	newID             func() string
	now               func() time.Time

	// mu serializes read-modify-write cycles on sessions.
	mu sync.Mutex

	movesSelected  metric.Int64Counter
	gamesFinished  metric.Int64Counter
	searchDuration metric.Float64Histogram
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultDifficulty sets the tier used when Create receives none.
func WithDefaultDifficulty(d bot.Difficulty) Option {
	return func(s *Service) { s.defaultDifficulty = d }
}

// WithIDGenerator overrides uuid-based session ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock overrides time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService creates a new Service. A nil publisher drops events.
func NewService(repo Repository, engine MoveCalculator, publisher events.Publisher, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.Discard
	}
	s := &Service{
		repo:              repo,
		engine:            engine,
		publisher:         publisher,
		defaultDifficulty: bot.Hard,
		newID:             func() string { return uuid.New().String() },
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initInstruments()
	return s
}

func (s *Service) initInstruments() {
	var err error
	if s.movesSelected, err = meter.Int64Counter("tictactoe.moves.selected",
		metric.WithDescription("Computer moves selected, by difficulty tier")); err != nil {
		slog.Warn("Failed to create moves counter", "error", err)
		s.movesSelected = noop.Int64Counter{}
	}
	if s.gamesFinished, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that reached a terminal outcome")); err != nil {
		slog.Warn("Failed to create games counter", "error", err)
		s.gamesFinished = noop.Int64Counter{}
	}
	if s.searchDuration, err = meter.Float64Histogram("tictactoe.search.duration",
		metric.WithDescription("Time spent selecting a computer move"),
		metric.WithUnit("ms")); err != nil {
		slog.Warn("Failed to create search duration histogram", "error", err)
		s.searchDuration = noop.Float64Histogram{}
	}
}

// Create starts a new session with an empty board. An empty difficulty uses the default tier.
func (s *Service) Create(ctx context.Context, difficulty bot.Difficulty) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Create")
	defer span.End()

	if difficulty == "" {
		difficulty = s.defaultDifficulty
	}
	d, err := bot.ParseDifficulty(string(difficulty))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid difficulty")
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:         s.newID(),
		Board:      game.NewBoard(),
		Difficulty: d,
		Outcome:    game.InProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.String("game.difficulty", d.String()))

	if err := s.repo.Save(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	slog.InfoContext(ctx, "Session created", "session.id", sess.ID, "game.difficulty", d)
	return sess, nil
}

// Get returns the session with the given id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.repo.FindByID(ctx, id)
}

// Play places the human's mark at move and, if the game continues, the computer's reply.
// An illegal move leaves the session unchanged.
func (s *Service) Play(ctx context.Context, id string, move game.Move) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Play", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("move.row", move.Row),
		attribute.Int("move.col", move.Col),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return nil, err
	}
	if sess.Outcome.IsTerminal() {
		return nil, ErrGameOver
	}

	board := sess.Board
	if err := board.Place(move, game.HumanMark); err != nil {
		slog.DebugContext(ctx, "Rejected move", "session.id", id, "move.row", move.Row, "move.col", move.Col, "error", err)
		return nil, err
	}

	placed := []events.MarkPlacedPayload{{SessionID: id, Mark: game.HumanMark, Row: move.Row, Col: move.Col}}
	sess.LastComputerMove = nil
	outcome := board.Outcome()

	if outcome == game.InProgress {
		reply, err := s.selectMove(ctx, board, sess.Difficulty)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to select computer move")
			return nil, err
		}
		if err := board.Place(reply, game.ComputerMark); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Engine returned an illegal move")
			return nil, fmt.Errorf("engine reply %s: %w", reply, err)
		}
		sess.LastComputerMove = &reply
		placed = append(placed, events.MarkPlacedPayload{SessionID: id, Mark: game.ComputerMark, Row: reply.Row, Col: reply.Col})
		outcome = board.Outcome()
	}

	sess.Board = board
	sess.Outcome = outcome
	sess.UpdatedAt = s.now()
	if outcome.IsTerminal() {
		sess.Scores.record(outcome)
		s.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
		slog.InfoContext(ctx, "Game over", "session.id", id, "game.outcome", outcome)
	}
	span.SetAttributes(attribute.String("game.outcome", string(outcome)))

	if err := s.repo.Save(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	for _, p := range placed {
		s.publish(ctx, events.TypeMarkPlaced, p)
	}
	if outcome.IsTerminal() {
		s.publish(ctx, events.TypeGameOver, events.GameOverPayload{SessionID: id, Outcome: outcome})
	}
	return sess, nil
}

// Reset clears the board for another game and keeps the scores.
func (s *Service) Reset(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, "session.Reset", id, func(sess *Session) error {
		sess.Board.Reset()
		sess.Outcome = game.InProgress
		sess.LastComputerMove = nil
		return nil
	})
}

// SetDifficulty changes the tier used for subsequent computer moves.
func (s *Service) SetDifficulty(ctx context.Context, id string, difficulty bot.Difficulty) (*Session, error) {
	d, err := bot.ParseDifficulty(string(difficulty))
	if err != nil {
		return nil, err
	}
	return s.update(ctx, "session.SetDifficulty", id, func(sess *Session) error {
		sess.Difficulty = d
		return nil
	})
}

// Delete removes the session.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "session.Delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return err
	}
	slog.InfoContext(ctx, "Session deleted", "session.id", id)
	return nil
}

func (s *Service) update(ctx context.Context, spanName, id string, fn func(*Session) error) (*Session, error) {
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

func (s *Service) selectMove(ctx context.Context, board game.Board, difficulty bot.Difficulty) (game.Move, error) {
	ctx, span := tracer.Start(ctx, "bot.SelectMove", trace.WithAttributes(
		attribute.String("game.difficulty", difficulty.String()),
		attribute.Int("board.empty", len(board.EmptyCells())),
	))
	defer span.End()

	start := time.Now()
	move, err := s.engine.SelectMove(board, difficulty)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	tier := metric.WithAttributes(attribute.String("tier", difficulty.String()))
	s.searchDuration.Record(ctx, elapsed, tier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Engine failed")
		return game.Move{}, err
	}
	s.movesSelected.Add(ctx, 1, tier)
	span.SetAttributes(attribute.Int("move.row", move.Row), attribute.Int("move.col", move.Col))
	return move, nil
}

func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	ev, err := events.New(eventType, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, ev)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "event.type", eventType, "error", err)
	}
}
