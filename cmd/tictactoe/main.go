package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/logger"
	"ctchen222/tictactoe-ai/internal/repository"
	"ctchen222/tictactoe-ai/internal/session"
	"ctchen222/tictactoe-ai/internal/terminal"

	"github.com/muesli/termenv"
)

func main() {
	difficulty := flag.String("difficulty", string(bot.Hard), "computer difficulty: easy, medium or hard")
	noColor := flag.Bool("no-color", false, "disable colored marks")
	noBell := flag.Bool("no-bell", false, "do not ring the bell when a mark is placed")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger.Init(os.Stderr, level, false)

	d, err := bot.ParseDifficulty(*difficulty)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	publisher := terminal.BellPublisher(os.Stdout)
	if *noBell {
		publisher = nil
	}
	sessions := session.NewService(repository.NewMemorySessionRepository(), bot.NewEngine(nil), publisher)

	var opts []termenv.OutputOption
	if *noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}

	ui := terminal.New(os.Stdin, os.Stdout, sessions, opts...)
	if err := ui.Run(context.Background(), d); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
