package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/events"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/session"

	"github.com/muesli/termenv"
)

const (
	colorX = "#00FFFF"
	colorO = "#FFA500"
)

var (
	difficultyChoices = joinDifficulties("|")

	helpText = `Commands:
  <row> <col>              place X (1-3 each, e.g. "2 2")
  reset                    play again, scores are kept
  difficulty <` + difficultyChoices + `>
  score                    show the tally
  help                     show this text
  quit                     leave the game`
)

func joinDifficulties(sep string) string {
	names := make([]string, len(bot.Difficulties))
	for i, d := range bot.Difficulties {
		names[i] = d.String()
	}
	return strings.Join(names, sep)
}

var banners = map[game.Outcome]string{
	game.PlayerWin:   "You Win!",
	game.OpponentWin: "AI Wins!",
	game.Draw:        "It's a Draw!",
}

var errQuit = errors.New("quit")

// Sessions is the slice of the session service the terminal drives.
type Sessions interface {
	Create(ctx context.Context, difficulty bot.Difficulty) (*session.Session, error)
	Play(ctx context.Context, id string, move game.Move) (*session.Session, error)
	Reset(ctx context.Context, id string) (*session.Session, error)
	SetDifficulty(ctx context.Context, id string, difficulty bot.Difficulty) (*session.Session, error)
}

// UI plays a session over a line-oriented reader and a colored writer.
type UI struct {
	in       *bufio.Scanner
	out      *termenv.Output
	sessions Sessions
	current  *session.Session
}

// New creates a UI. Without options the color profile is detected from out.
func New(in io.Reader, out io.Writer, sessions Sessions, opts ...termenv.OutputOption) *UI {
	return &UI{
		in:       bufio.NewScanner(in),
		out:      termenv.NewOutput(out, opts...),
		sessions: sessions,
	}
}

// BellPublisher rings the terminal bell on every placed mark.
func BellPublisher(w io.Writer) events.Publisher {
	return events.PublisherFunc(func(_ context.Context, ev events.Event) error {
		if ev.Type != events.TypeMarkPlaced {
			return nil
		}
		_, err := io.WriteString(w, "\a")
		return err
	})
}

// Run starts a session at the given difficulty and processes commands until
// quit, end of input, or ctx is cancelled.
func (u *UI) Run(ctx context.Context, difficulty bot.Difficulty) error {
	s, err := u.sessions.Create(ctx, difficulty)
	if err != nil {
		return err
	}
	u.current = s

	u.printf("Tic-Tac-Toe: you are %s, the computer is %s. Type \"help\" for commands.\n",
		u.mark(game.HumanMark), u.mark(game.ComputerMark))
	u.render()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.printf("> ")
		if !u.in.Scan() {
			u.printf("\n")
			return u.in.Err()
		}
		if err := u.handle(ctx, strings.TrimSpace(u.in.Text())); err != nil {
			if errors.Is(err, errQuit) {
				u.printf("Final score: %s\n", u.score())
				return nil
			}
			return err
		}
	}
}

func (u *UI) handle(ctx context.Context, line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		u.printf("%s\n", helpText)
		return nil
	case "score":
		u.printf("%s\n", u.score())
		return nil
	case "reset", "new":
		return u.apply(u.sessions.Reset(ctx, u.current.ID))
	case "difficulty":
		if len(fields) != 2 {
			u.printf("Usage: difficulty <%s>\n", difficultyChoices)
			return nil
		}
		return u.apply(u.sessions.SetDifficulty(ctx, u.current.ID, bot.Difficulty(fields[1])))
	}

	move, ok := parseMove(fields)
	if !ok {
		u.printf("Unknown command %q. Type \"help\" for commands.\n", line)
		return nil
	}
	return u.apply(u.sessions.Play(ctx, u.current.ID, move))
}

// apply renders a successful update or reports a recoverable error.
func (u *UI) apply(s *session.Session, err error) error {
	switch {
	case err == nil:
		u.current = s
		u.render()
		return nil
	case errors.Is(err, game.ErrIllegalMove):
		u.printf("That square is not available.\n")
	case errors.Is(err, session.ErrGameOver):
		u.printf("The game is over. Type \"reset\" to play again.\n")
	case errors.Is(err, bot.ErrUnknownDifficulty):
		u.printf("Difficulty must be one of %s.\n", joinDifficulties(", "))
	default:
		return err
	}
	return nil
}

// parseMove accepts "r c" or "r,c" with 1-based coordinates.
func parseMove(fields []string) (game.Move, bool) {
	if len(fields) == 1 {
		fields = strings.Split(fields[0], ",")
	}
	if len(fields) != 2 {
		return game.Move{}, false
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return game.Move{}, false
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return game.Move{}, false
	}
	return game.Move{Row: row - 1, Col: col - 1}, true
}

func (u *UI) render() {
	s := u.current
	if s.LastComputerMove != nil {
		u.printf("Computer plays %d %d\n", s.LastComputerMove.Row+1, s.LastComputerMove.Col+1)
	}

	u.printf("\n    1   2   3\n")
	for r := 0; r < game.Size; r++ {
		cells := make([]string, game.Size)
		for c := 0; c < game.Size; c++ {
			cells[c] = u.mark(s.Board.At(game.Move{Row: r, Col: c}))
		}
		u.printf("%d   %s\n", r+1, strings.Join(cells, " | "))
		if r < game.Size-1 {
			u.printf("   ---+---+---\n")
		}
	}
	u.printf("\nDifficulty: %s   %s\n", s.Difficulty, u.score())

	if banner, ok := banners[s.Outcome]; ok {
		u.printf("%s\n", u.out.String(banner).Bold())
	}
}

func (u *UI) mark(m game.PlayerMark) string {
	switch m {
	case game.PlayerX:
		return u.out.String(string(m)).Foreground(u.out.Color(colorX)).Bold().String()
	case game.PlayerO:
		return u.out.String(string(m)).Foreground(u.out.Color(colorO)).Bold().String()
	default:
		return " "
	}
}

func (u *UI) score() string {
	sc := u.current.Scores
	return fmt.Sprintf("You: %d   AI: %d   Draws: %d", sc.Human, sc.Computer, sc.Draws)
}

func (u *UI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}
