package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/events"
	eventmocks "ctchen222/tictactoe-ai/internal/events/mocks"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/repository"
	"ctchen222/tictactoe-ai/internal/session"
	"ctchen222/tictactoe-ai/internal/session/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	x = game.PlayerX
	o = game.PlayerO
	e = game.None
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	repo      *repository.MemorySessionRepository
	engine    *mocks.MockMoveCalculator
	publisher *eventmocks.MockPublisher
	svc       *session.Service
	published []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:      repository.NewMemorySessionRepository(),
		engine:    mocks.NewMockMoveCalculator(ctrl),
		publisher: eventmocks.NewMockPublisher(ctrl),
	}
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev events.Event) error {
			f.published = append(f.published, ev.Type)
			return nil
		}).AnyTimes()
	f.svc = session.NewService(f.repo, f.engine, f.publisher,
		session.WithIDGenerator(func() string { return "s1" }),
		session.WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

// seed stores a session with the given board and returns its id.
func (f *fixture) seed(t *testing.T, board game.Board, difficulty bot.Difficulty) string {
	t.Helper()
	require.NoError(t, f.repo.Save(context.Background(), &session.Session{
		ID:         "s1",
		Board:      board,
		Difficulty: difficulty,
		Outcome:    board.Outcome(),
	}))
	return "s1"
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	s, err := f.svc.Create(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, bot.Hard, s.Difficulty)
	assert.Equal(t, game.InProgress, s.Outcome)
	assert.Equal(t, game.NewBoard(), s.Board)
	assert.Equal(t, fixedNow, s.CreatedAt)
	assert.Equal(t, 1, f.repo.Len())

	_, err = f.svc.Create(context.Background(), "impossible")
	assert.ErrorIs(t, err, bot.ErrUnknownDifficulty)
}

func TestService_Create_UsesConfiguredDefault(t *testing.T) {
	svc := session.NewService(repository.NewMemorySessionRepository(), bot.NewEngine(nil), nil,
		session.WithDefaultDifficulty(bot.Easy))

	s, err := svc.Create(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, bot.Easy, s.Difficulty)
	assert.NotEmpty(t, s.ID)
}

func TestService_Get_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_Play_HumanThenComputer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, bot.Medium)
	require.NoError(t, err)

	afterHuman := game.Board{{e, e, e}, {e, x, e}, {e, e, e}}
	f.engine.EXPECT().SelectMove(afterHuman, bot.Medium).Return(game.Move{Row: 0, Col: 0}, nil)

	s, err := f.svc.Play(ctx, "s1", game.Move{Row: 1, Col: 1})
	require.NoError(t, err)

	assert.Equal(t, game.Board{{o, e, e}, {e, x, e}, {e, e, e}}, s.Board)
	assert.Equal(t, game.InProgress, s.Outcome)
	require.NotNil(t, s.LastComputerMove)
	assert.Equal(t, game.Move{Row: 0, Col: 0}, *s.LastComputerMove)
	assert.Equal(t, afterHuman, s.BeforeComputerMove())
	assert.Equal(t, []string{events.TypeMarkPlaced, events.TypeMarkPlaced}, f.published)

	stored, err := f.svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s.Board, stored.Board)
}

func TestService_Play_IllegalMoveLeavesSessionUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, game.Board{{x, e, e}, {e, o, e}, {e, e, e}}, bot.Hard)

	tests := map[string]game.Move{
		"occupied by human":    {Row: 0, Col: 0},
		"occupied by computer": {Row: 1, Col: 1},
		"row out of bounds":    {Row: 3, Col: 0},
		"negative column":      {Row: 0, Col: -1},
	}
	for name, move := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Play(ctx, id, move)
			assert.ErrorIs(t, err, game.ErrIllegalMove)

			stored, err := f.svc.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, game.Board{{x, e, e}, {e, o, e}, {e, e, e}}, stored.Board)
		})
	}
	assert.Empty(t, f.published)
}

func TestService_Play_HumanWinSkipsEngine(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, game.Board{{x, x, e}, {o, o, e}, {e, e, e}}, bot.Hard)

	s, err := f.svc.Play(context.Background(), id, game.Move{Row: 0, Col: 2})
	require.NoError(t, err)

	assert.Equal(t, game.PlayerWin, s.Outcome)
	assert.Equal(t, session.Scores{Human: 1}, s.Scores)
	assert.Equal(t, session.Scores{Human: 1}, s.ScoresBeforeComputerMove())
	assert.Nil(t, s.LastComputerMove)
	assert.Equal(t, []string{events.TypeMarkPlaced, events.TypeGameOver}, f.published)
}

func TestService_Play_ComputerWin(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, game.Board{{x, x, e}, {o, o, e}, {e, e, e}}, bot.Hard)
	f.engine.EXPECT().SelectMove(gomock.Any(), bot.Hard).Return(game.Move{Row: 1, Col: 2}, nil)

	s, err := f.svc.Play(context.Background(), id, game.Move{Row: 2, Col: 0})
	require.NoError(t, err)

	assert.Equal(t, game.OpponentWin, s.Outcome)
	assert.Equal(t, session.Scores{Computer: 1}, s.Scores)
	assert.Equal(t, game.InProgress, s.BeforeComputerMove().Outcome())
	assert.Equal(t, session.Scores{}, s.ScoresBeforeComputerMove())
	assert.Equal(t, []string{events.TypeMarkPlaced, events.TypeMarkPlaced, events.TypeGameOver}, f.published)
}

func TestService_Play_Draw(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, game.Board{{x, o, x}, {x, o, o}, {o, x, e}}, bot.Hard)

	s, err := f.svc.Play(context.Background(), id, game.Move{Row: 2, Col: 2})
	require.NoError(t, err)

	assert.Equal(t, game.Draw, s.Outcome)
	assert.Equal(t, session.Scores{Draws: 1}, s.Scores)
}

func TestService_Play_AfterGameOver(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, game.Board{{o, o, o}, {x, x, e}, {x, e, e}}, bot.Hard)

	_, err := f.svc.Play(context.Background(), id, game.Move{Row: 2, Col: 2})
	assert.ErrorIs(t, err, session.ErrGameOver)
}

func TestService_Play_EngineFailure(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, game.NewBoard(), bot.Hard)
	boom := errors.New("boom")
	f.engine.EXPECT().SelectMove(gomock.Any(), gomock.Any()).Return(game.Move{}, boom)

	_, err := f.svc.Play(context.Background(), id, game.Move{Row: 0, Col: 0})
	assert.ErrorIs(t, err, boom)

	stored, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.NewBoard(), stored.Board)
}

func TestService_Play_PublishFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repository.NewMemorySessionRepository()
	publisher := eventmocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(2)
	engine := mocks.NewMockMoveCalculator(ctrl)
	engine.EXPECT().SelectMove(gomock.Any(), gomock.Any()).Return(game.Move{Row: 2, Col: 2}, nil)

	svc := session.NewService(repo, engine, publisher)
	s, err := svc.Create(context.Background(), bot.Hard)
	require.NoError(t, err)

	_, err = svc.Play(context.Background(), s.ID, game.Move{Row: 0, Col: 0})
	assert.NoError(t, err)
}

func TestService_Play_SaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	engine := mocks.NewMockMoveCalculator(ctrl)

	repo.EXPECT().FindByID(gomock.Any(), "s1").Return(&session.Session{
		ID: "s1", Board: game.NewBoard(), Difficulty: bot.Hard, Outcome: game.InProgress,
	}, nil)
	engine.EXPECT().SelectMove(gomock.Any(), bot.Hard).Return(game.Move{Row: 0, Col: 0}, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	svc := session.NewService(repo, engine, nil)
	_, err := svc.Play(context.Background(), "s1", game.Move{Row: 1, Col: 1})
	assert.ErrorContains(t, err, "disk full")
}

func TestService_ResetKeepsScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, game.Board{{x, x, e}, {o, o, e}, {e, e, e}}, bot.Hard)

	_, err := f.svc.Play(ctx, id, game.Move{Row: 0, Col: 2})
	require.NoError(t, err)

	s, err := f.svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.NewBoard(), s.Board)
	assert.Equal(t, game.InProgress, s.Outcome)
	assert.Equal(t, session.Scores{Human: 1}, s.Scores)
	assert.Equal(t, session.Scores{Human: 1}, s.ScoresBeforeComputerMove())
	assert.Nil(t, s.LastComputerMove)

	_, err = f.svc.Reset(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_SetDifficulty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, game.NewBoard(), bot.Hard)

	s, err := f.svc.SetDifficulty(ctx, id, "EASY")
	require.NoError(t, err)
	assert.Equal(t, bot.Easy, s.Difficulty)

	_, err = f.svc.SetDifficulty(ctx, id, "nightmare")
	assert.ErrorIs(t, err, bot.ErrUnknownDifficulty)

	f.engine.EXPECT().SelectMove(gomock.Any(), bot.Easy).Return(game.Move{Row: 2, Col: 2}, nil)
	_, err = f.svc.Play(ctx, id, game.Move{Row: 0, Col: 0})
	require.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, game.NewBoard(), bot.Hard)

	require.NoError(t, f.svc.Delete(ctx, id))
	_, err := f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, id), session.ErrSessionNotFound)
}

func TestService_HardEngineNeverLoses(t *testing.T) {
	svc := session.NewService(repository.NewMemorySessionRepository(), bot.NewEngine(nil), nil)
	ctx := context.Background()
	s, err := svc.Create(ctx, bot.Hard)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for !s.Outcome.IsTerminal() {
			s, err = svc.Play(ctx, s.ID, s.Board.EmptyCells()[0])
			require.NoError(t, err)
		}
		s, err = svc.Reset(ctx, s.ID)
		require.NoError(t, err)
	}

	assert.Zero(t, s.Scores.Human)
	assert.Equal(t, 3, s.Scores.Human+s.Scores.Computer+s.Scores.Draws)
}
