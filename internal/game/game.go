package game

import (
	"errors"
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Outcome is the state of a game derived from a board snapshot.
type Outcome string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// The human always plays X and moves first; the computer plays O.
	HumanMark    = PlayerX
	ComputerMark = PlayerO

	// Game outcomes
	InProgress  Outcome = "in_progress"
	PlayerWin   Outcome = "player_win"
	OpponentWin Outcome = "opponent_win"
	Draw        Outcome = "draw"

	// Board boundaries
	BorderMin = 0
	BorderMax = 2
	Size      = BorderMax + 1
)

// ErrIllegalMove is returned when a mark is placed outside the board or on an occupied cell.
var ErrIllegalMove = errors.New("illegal move")

// lines holds every winning line: 3 rows, 3 columns, 2 diagonals.
var lines = [8][3]Move{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Move is a 0-indexed (row, column) coordinate on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the move addresses a cell of the board.
func (m Move) InBounds() bool {
	return m.Row >= BorderMin && m.Row <= BorderMax && m.Col >= BorderMin && m.Col <= BorderMax
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

// Board is the 3x3 grid. It is a value type, so assigning a Board copies it.
type Board [Size][Size]PlayerMark

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// Place writes mark into the cell addressed by m.
// The board is left untouched when the move is rejected.
func (b *Board) Place(m Move, mark PlayerMark) error {
	if mark != PlayerX && mark != PlayerO {
		return fmt.Errorf("%w: unknown mark %q", ErrIllegalMove, mark)
	}
	if !m.InBounds() {
		return fmt.Errorf("%w: %s is out of bounds", ErrIllegalMove, m)
	}
	if b[m.Row][m.Col] != None {
		return fmt.Errorf("%w: %s is already occupied", ErrIllegalMove, m)
	}

	b[m.Row][m.Col] = mark
	return nil
}

// Undo clears the cell addressed by m. Out of bounds moves are ignored.
func (b *Board) Undo(m Move) {
	if m.InBounds() {
		b[m.Row][m.Col] = None
	}
}

// At returns the mark in the cell addressed by m.
func (b Board) At(m Move) PlayerMark {
	if !m.InBounds() {
		return None
	}
	return b[m.Row][m.Col]
}

// Reset clears every cell.
func (b *Board) Reset() {
	*b = Board{}
}

// Clone returns an independent copy of the board.
func (b Board) Clone() Board {
	return b
}

// IsWinner reports whether any of the 8 lines is fully occupied by mark.
func (b Board) IsWinner(mark PlayerMark) bool {
	if mark == None {
		return false
	}
	for _, line := range lines {
		if b.At(line[0]) == mark && b.At(line[1]) == mark && b.At(line[2]) == mark {
			return true
		}
	}
	return false
}

// IsFull reports whether no empty cells remain.
func (b Board) IsFull() bool {
	for r := range Size {
		for c := range Size {
			if b[r][c] == None {
				return false
			}
		}
	}
	return true
}

// EmptyCells returns the empty coordinates in row-major order.
func (b Board) EmptyCells() []Move {
	moves := make([]Move, 0, Size*Size)
	for r := range Size {
		for c := range Size {
			if b[r][c] == None {
				moves = append(moves, Move{Row: r, Col: c})
			}
		}
	}
	return moves
}

// Outcome derives the game state from the current cells.
func (b Board) Outcome() Outcome {
	switch {
	case b.IsWinner(HumanMark):
		return PlayerWin
	case b.IsWinner(ComputerMark):
		return OpponentWin
	case b.IsFull():
		return Draw
	default:
		return InProgress
	}
}

// Rows converts the board to a slice of slices, the shape used on the wire.
func (b Board) Rows() [][]PlayerMark {
	rows := make([][]PlayerMark, Size)
	for r := range Size {
		rows[r] = make([]PlayerMark, Size)
		copy(rows[r], b[r][:])
	}
	return rows
}

// String renders the board as three lines, with '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	for r := range Size {
		for c := range Size {
			if b[r][c] == None {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(b[r][c]))
			}
		}
		if r < BorderMax {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// IsTerminal reports whether the outcome ends the game.
func (o Outcome) IsTerminal() bool {
	return o != InProgress
}
