package bot

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"ctchen222/tictactoe-ai/internal/game"
)

// mediumRandomChance is the probability that the medium tier plays a random move.
const mediumRandomChance = 0.5

// ErrNoMovesAvailable is returned when a move is requested on a full board.
var ErrNoMovesAvailable = errors.New("no moves available")

// Random is the source of randomness for the relaxed tiers. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// Engine selects moves for the computer player, which always plays game.ComputerMark.
// It implements the session.MoveCalculator interface.
type Engine struct {
	rnd Random
}

// NewEngine creates an engine drawing randomness from rnd.
// A nil rnd gets a generator seeded from the runtime source.
func NewEngine(rnd Random) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rnd: rnd}
}

// SelectMove picks the computer's next move on board for the given difficulty.
// The board is received by value, so the search never touches the caller's copy.
func (e *Engine) SelectMove(board game.Board, difficulty Difficulty) (game.Move, error) {
	empty := board.EmptyCells()
	if len(empty) == 0 {
		return game.Move{}, ErrNoMovesAvailable
	}

	switch difficulty {
	case Easy:
		return e.randomMove(empty), nil
	case Medium:
		if e.rnd.Float64() < mediumRandomChance {
			return e.randomMove(empty), nil
		}
		return bestMove(&board, empty), nil
	default:
		return bestMove(&board, empty), nil
	}
}

// randomMove makes a uniformly random move among the empty cells.
func (e *Engine) randomMove(empty []game.Move) game.Move {
	return empty[e.rnd.IntN(len(empty))]
}

// bestMove scores every candidate with a full-depth search and keeps the first
// candidate with the strictly greatest score.
func bestMove(board *game.Board, empty []game.Move) game.Move {
	move := empty[0]
	bestScore := -2
	for _, m := range empty {
		mustPlace(board, m, game.ComputerMark)
		score := minimax(board, false)
		board.Undo(m)

		if score > bestScore {
			bestScore = score
			move = m
		}
	}
	return move
}

// minimax returns +1 if the computer can force a win, -1 if the human can, 0 for a draw.
// Terminal checks come first: a full board can also carry a winning line.
func minimax(board *game.Board, maximizing bool) int {
	if board.IsWinner(game.ComputerMark) {
		return 1
	}
	if board.IsWinner(game.HumanMark) {
		return -1
	}
	if board.IsFull() {
		return 0
	}

	mark := game.HumanMark
	best := 2
	if maximizing {
		mark = game.ComputerMark
		best = -2
	}

	for _, m := range board.EmptyCells() {
		mustPlace(board, m, mark)
		score := minimax(board, !maximizing)
		board.Undo(m)

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}

// mustPlace places a mark during search. The search only visits empty cells,
// so a rejected placement means the board itself is corrupt.
func mustPlace(board *game.Board, m game.Move, mark game.PlayerMark) {
	if err := board.Place(m, mark); err != nil {
		panic(fmt.Sprintf("bot: search placed on a non-empty cell: %v", err))
	}
}
