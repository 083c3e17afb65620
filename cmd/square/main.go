// Command square plays Complete the Square in the terminal, two players
// taking turns at one keyboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/square-backend/internal/bitboard"
	"github.com/rocketscienceinc/square-backend/internal/suggest"
)

func main() {
	size := flag.Int("size", 5, "board side length")
	suggestURL := flag.String("suggest-url", "", "move-suggestion service base URL, enables hint")
	suggestTimeout := flag.Duration("suggest-timeout", 5*time.Second, "move-suggestion request timeout")
	flag.Parse()

	if err := run(*size, *suggestURL, *suggestTimeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(size int, suggestURL string, suggestTimeout time.Duration) error {
	engine, err := newBoard(size)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	var hints suggester
	if suggestURL != "" {
		if size > bitboard.MaxSize {
			return fmt.Errorf("hints support boards up to %d", bitboard.MaxSize)
		}
		hints = suggest.NewClient(suggestURL, suggestTimeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newConsole(engine, hints, os.Stdin, termenv.NewOutput(os.Stdout)).Run(ctx)
}
