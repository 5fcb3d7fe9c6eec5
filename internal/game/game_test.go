package game

import (
	"errors"
	"testing"
)

func TestIsWinner(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		mark  PlayerMark
		want  bool
	}{
		{
			name:  "No winner - empty board",
			board: Board{},
			mark:  PlayerX,
			want:  false,
		},
		{
			name: "No winner - partial board",
			board: Board{
				{PlayerX, None, None},
				{None, PlayerO, None},
				{None, None, None},
			},
			mark: PlayerX,
			want: false,
		},
		{
			name: "X wins - first row",
			board: Board{
				{PlayerX, PlayerX, PlayerX},
				{None, PlayerO, None},
				{None, None, PlayerO},
			},
			mark: PlayerX,
			want: true,
		},
		{
			name: "O does not win when X owns the row",
			board: Board{
				{PlayerX, PlayerX, PlayerX},
				{None, PlayerO, None},
				{None, None, PlayerO},
			},
			mark: PlayerO,
			want: false,
		},
		{
			name: "O wins - second column",
			board: Board{
				{PlayerX, PlayerO, None},
				{PlayerX, PlayerO, None},
				{None, PlayerO, None},
			},
			mark: PlayerO,
			want: true,
		},
		{
			name: "X wins - main diagonal",
			board: Board{
				{PlayerX, None, None},
				{None, PlayerX, None},
				{None, None, PlayerX},
			},
			mark: PlayerX,
			want: true,
		},
		{
			name: "O wins - anti-diagonal",
			board: Board{
				{None, None, PlayerO},
				{None, PlayerO, None},
				{PlayerO, None, None},
			},
			mark: PlayerO,
			want: true,
		},
		{
			name: "X wins - last row of a full board",
			board: Board{
				{PlayerO, PlayerX, PlayerO},
				{PlayerO, PlayerO, PlayerX},
				{PlayerX, PlayerX, PlayerX},
			},
			mark: PlayerX,
			want: true,
		},
		{
			name:  "None never wins",
			board: Board{},
			mark:  None,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.IsWinner(tt.mark); got != tt.want {
				t.Errorf("IsWinner(%q) got = %v, want %v", tt.mark, got, tt.want)
			}
		})
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  Outcome
	}{
		{
			name:  "Empty board is in progress",
			board: Board{},
			want:  InProgress,
		},
		{
			name: "Human wins",
			board: Board{
				{PlayerX, PlayerX, PlayerX},
				{PlayerO, PlayerO, None},
				{None, None, None},
			},
			want: PlayerWin,
		},
		{
			name: "Computer wins",
			board: Board{
				{PlayerX, PlayerX, PlayerO},
				{PlayerX, PlayerO, None},
				{PlayerO, None, None},
			},
			want: OpponentWin,
		},
		{
			name: "Full board without a line is a draw",
			board: Board{
				{PlayerX, PlayerO, PlayerX},
				{PlayerX, PlayerO, PlayerO},
				{PlayerO, PlayerX, PlayerX},
			},
			want: Draw,
		},
		{
			name: "Win on the last cell takes precedence over draw",
			board: Board{
				{PlayerX, PlayerO, PlayerX},
				{PlayerO, PlayerX, PlayerO},
				{PlayerO, PlayerX, PlayerX},
			},
			want: PlayerWin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.Outcome(); got != tt.want {
				t.Errorf("Outcome() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFull(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  bool
	}{
		{
			name:  "Empty board is not full",
			board: Board{},
			want:  false,
		},
		{
			name: "Partial board is not full",
			board: Board{
				{PlayerX, None, None},
				{None, PlayerO, None},
				{None, None, None},
			},
			want: false,
		},
		{
			name: "Full board is full",
			board: Board{
				{PlayerX, PlayerO, PlayerX},
				{PlayerX, PlayerO, PlayerO},
				{PlayerO, PlayerX, PlayerX},
			},
			want: true,
		},
		{
			name: "Full board with winner is full",
			board: Board{
				{PlayerX, PlayerX, PlayerX},
				{PlayerO, PlayerO, PlayerX},
				{PlayerO, PlayerX, PlayerO},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.IsFull(); got != tt.want {
				t.Errorf("IsFull() got = %v, want %v", got, tt.want)
			}
			if got := len(tt.board.EmptyCells()) == 0; got != tt.want {
				t.Errorf("len(EmptyCells()) == 0 got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmptyCellsRowMajor(t *testing.T) {
	b := Board{
		{PlayerX, None, None},
		{None, PlayerO, None},
		{None, None, PlayerX},
	}
	want := []Move{{0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}}

	got := b.EmptyCells()
	if len(got) != len(want) {
		t.Fatalf("EmptyCells() returned %d moves, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EmptyCells()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPlace(t *testing.T) {
	t.Run("Writes a single cell", func(t *testing.T) {
		b := NewBoard()
		if err := b.Place(Move{Row: 1, Col: 2}, PlayerX); err != nil {
			t.Fatalf("Place() returned error: %v", err)
		}
		want := Board{}
		want[1][2] = PlayerX
		if b != want {
			t.Errorf("board after Place():\n%s\nwant:\n%s", b, want)
		}
	})

	t.Run("Occupied cell is rejected and board is unchanged", func(t *testing.T) {
		b := NewBoard()
		_ = b.Place(Move{Row: 0, Col: 0}, PlayerX)
		before := b

		for range 3 {
			err := b.Place(Move{Row: 0, Col: 0}, PlayerO)
			if !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("Place() on occupied cell got err = %v, want ErrIllegalMove", err)
			}
			if b != before {
				t.Fatalf("board changed after rejected move:\n%s", b)
			}
		}
	})

	t.Run("Out of bounds is rejected", func(t *testing.T) {
		for _, m := range []Move{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}} {
			b := NewBoard()
			if err := b.Place(m, PlayerX); !errors.Is(err, ErrIllegalMove) {
				t.Errorf("Place(%s) got err = %v, want ErrIllegalMove", m, err)
			}
			if b != (Board{}) {
				t.Errorf("board changed after out of bounds move %s", m)
			}
		}
	})

	t.Run("Empty mark is rejected", func(t *testing.T) {
		b := NewBoard()
		if err := b.Place(Move{Row: 0, Col: 0}, None); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Place() with None got err = %v, want ErrIllegalMove", err)
		}
	})
}

func TestUndoAndClone(t *testing.T) {
	b := NewBoard()
	_ = b.Place(Move{Row: 1, Col: 1}, PlayerX)

	snapshot := b.Clone()
	_ = b.Place(Move{Row: 0, Col: 0}, PlayerO)
	if snapshot.At(Move{Row: 0, Col: 0}) != None {
		t.Fatal("Clone() shares cells with the original board")
	}

	b.Undo(Move{Row: 0, Col: 0})
	if b != snapshot {
		t.Errorf("Undo() did not restore the board:\n%s\nwant:\n%s", b, snapshot)
	}

	b.Reset()
	if b != (Board{}) {
		t.Errorf("Reset() left marks on the board:\n%s", b)
	}
}

// TestAtMostOneWinner walks every board reachable by alternating play from
// the empty board and checks that no position has two winners.
func TestAtMostOneWinner(t *testing.T) {
	seen := make(map[Board]bool)
	var walk func(b Board, turn PlayerMark)
	walk = func(b Board, turn PlayerMark) {
		if seen[b] {
			return
		}
		seen[b] = true

		if b.IsWinner(PlayerX) && b.IsWinner(PlayerO) {
			t.Fatalf("both marks win on reachable board:\n%s", b)
		}
		if b.Outcome().IsTerminal() {
			return
		}
		for _, m := range b.EmptyCells() {
			child := b
			if err := child.Place(m, turn); err != nil {
				t.Fatalf("Place(%s) on empty cell failed: %v", m, err)
			}
			walk(child, opponent(turn))
		}
	}
	walk(NewBoard(), HumanMark)

	// 5478 distinct legal positions are reachable in tic-tac-toe.
	if len(seen) != 5478 {
		t.Errorf("visited %d positions, want 5478", len(seen))
	}
}

// TestReadOnlyMethodsOnValues exercises the read-only methods on values that
// are not addressable, the way callers chain them off NewBoard.
func TestReadOnlyMethodsOnValues(t *testing.T) {
	if got := NewBoard().Rows(); len(got) != Size || got[0][0] != None {
		t.Errorf("NewBoard().Rows() = %v, want %d empty rows", got, Size)
	}
	if got := NewBoard().Outcome(); got != InProgress {
		t.Errorf("NewBoard().Outcome() = %q, want %q", got, InProgress)
	}
	if got := len(NewBoard().EmptyCells()); got != Size*Size {
		t.Errorf("len(NewBoard().EmptyCells()) = %d, want %d", got, Size*Size)
	}
	if NewBoard().IsFull() || NewBoard().IsWinner(HumanMark) {
		t.Error("empty board reported as full or won")
	}
	if got := NewBoard().At(Move{Row: 1, Col: 1}); got != None {
		t.Errorf("NewBoard().At(1,1) = %q, want empty", got)
	}

	b := NewBoard()
	clone := b.Clone()
	if err := clone.Place(Move{Row: 0, Col: 0}, HumanMark); err != nil {
		t.Fatalf("Place() on clone: %v", err)
	}
	if b.At(Move{Row: 0, Col: 0}) != None {
		t.Error("placing on a clone changed the original board")
	}
}

func opponent(mark PlayerMark) PlayerMark {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func TestBoardString(t *testing.T) {
	b := Board{
		{PlayerX, None, None},
		{None, PlayerO, None},
		{None, None, None},
	}
	want := "X..\n.O.\n..."
	if got := b.String(); got != want {
		t.Errorf("String() got = %q, want %q", got, want)
	}
}
