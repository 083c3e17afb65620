package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/square"
	"github.com/rocketscienceinc/square-backend/internal/suggest"
)

// maxSize is bounded by the row letters a..z.
const maxSize = 26

const (
	colorWhite = "2" // green
	colorBlack = "1" // red
)

var (
	errBadInput       = errors.New(`enter a move as "row,col" or "c3"`)
	errHintsDisabled  = errors.New("hints need -suggest-url")
	errGameOver       = errors.New(`game over, type "reset" to play again`)
	errUnknownCommand = errors.New("unknown command")
)

var errBoardTooLarge = fmt.Errorf("boards larger than %d rows cannot be labelled", maxSize)

func newBoard(size int) (*square.Engine, error) {
	if size > maxSize {
		return nil, fmt.Errorf("%w: size %d", errBoardTooLarge, size)
	}

	return square.New(size)
}

type suggester interface {
	Suggest(ctx context.Context, size int, req suggest.Request) (entity.Position, error)
}

// console runs a hot-seat match: both players share one terminal.
type console struct {
	engine    *square.Engine
	suggester suggester

	in  *bufio.Scanner
	out *termenv.Output
}

func newConsole(engine *square.Engine, suggester suggester, in io.Reader, out *termenv.Output) *console {
	return &console{
		engine:    engine,
		suggester: suggester,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run reads commands until "exit" or end of input.
func (that *console) Run(ctx context.Context) error {
	that.render()

	for {
		that.prompt()

		if !that.in.Scan() {
			return that.in.Err()
		}

		line := strings.TrimSpace(strings.ToLower(that.in.Text()))

		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			that.engine.Reset()
			that.render()
			continue
		case "hint":
			if err := that.hint(ctx); err != nil {
				that.printError(err)
				continue
			}
			that.render()
			continue
		}

		pos, err := parseMove(line)
		if err != nil {
			that.printError(err)
			continue
		}

		if err = that.play(pos); err != nil {
			that.printError(err)
			continue
		}

		that.render()
	}
}

func (that *console) play(pos entity.Position) error {
	if that.engine.IsTerminal() {
		return errGameOver
	}

	result, err := that.engine.ApplyMove(pos)
	if err != nil {
		return err
	}

	if len(result.Captured) > 0 {
		fmt.Fprintf(that.out, "captured %s\n", joinPositions(result.Captured))
	}

	return nil
}

func (that *console) hint(ctx context.Context) error {
	if that.suggester == nil {
		return errHintsDisabled
	}

	if that.engine.IsTerminal() {
		return errGameOver
	}

	req, err := suggest.NewRequest(
		that.engine.Size(),
		that.engine.Occupied(entity.MarkWhite),
		that.engine.Occupied(entity.MarkBlack),
		that.engine.Current().Mark(),
	)
	if err != nil {
		return err
	}

	pos, err := that.suggester.Suggest(ctx, that.engine.Size(), req)
	if err != nil {
		return fmt.Errorf("failed to get hint: %w", err)
	}

	fmt.Fprintf(that.out, "hint: %s plays %s\n", that.engine.Current().Mark(), pos)

	return that.play(pos)
}

func (that *console) prompt() {
	if that.engine.IsTerminal() {
		fmt.Fprint(that.out, "> ")
		return
	}

	fmt.Fprintf(that.out, "%s to move> ", that.mark(that.engine.Current().Mark()))
}

func (that *console) printError(err error) {
	fmt.Fprintln(that.out, that.out.String(err.Error()).Italic())
}

func (that *console) render() {
	size := that.engine.Size()

	winning := make(map[entity.Position]bool)
	for _, pos := range that.engine.WinningSquare() {
		winning[pos] = true
	}

	var sb strings.Builder
	sb.WriteString("  ")
	for col := 1; col <= size; col++ {
		sb.WriteString(" " + strconv.Itoa(col))
	}
	sb.WriteString("\n")

	for row := 1; row <= size; row++ {
		sb.WriteString(string(rune('a'+row-1)) + " ")
		for col := 1; col <= size; col++ {
			pos := entity.NewPosition(row, col)
			cell := that.cell(pos)
			if winning[pos] {
				cell = that.out.String(cell.String()).Reverse()
			}
			sb.WriteString(" " + cell.String())
		}
		sb.WriteString("\n")
	}

	fmt.Fprint(that.out, sb.String())

	if that.engine.IsTerminal() {
		fmt.Fprintf(that.out, "%s wins with %s\n", that.mark(that.engine.Winner()), joinPositions(that.engine.WinningSquare()))
	}
}

func (that *console) cell(pos entity.Position) termenv.Style {
	for _, mark := range []string{entity.MarkWhite, entity.MarkBlack} {
		if that.engine.Player(mark).Has(pos) {
			return that.mark(mark)
		}
	}

	return that.out.String(".")
}

func (that *console) mark(mark string) termenv.Style {
	color := colorWhite
	if mark == entity.MarkBlack {
		color = colorBlack
	}

	return that.out.String(mark).Foreground(that.out.Color(color)).Bold()
}

// parseMove accepts "row,col" or a row letter followed by a column digit ("c3").
func parseMove(input string) (entity.Position, error) {
	if row, col, ok := strings.Cut(input, ","); ok {
		r, rowErr := strconv.Atoi(strings.TrimSpace(row))
		c, colErr := strconv.Atoi(strings.TrimSpace(col))
		if rowErr != nil || colErr != nil {
			return entity.Position{}, errBadInput
		}
		return entity.NewPosition(r, c), nil
	}

	if len(input) >= 2 && input[0] >= 'a' && input[0] <= 'z' {
		c, err := strconv.Atoi(input[1:])
		if err != nil {
			return entity.Position{}, errBadInput
		}
		return entity.NewPosition(int(input[0]-'a')+1, c), nil
	}

	if _, err := strconv.Atoi(input); err == nil {
		return entity.Position{}, errBadInput
	}

	return entity.Position{}, fmt.Errorf("%w %q", errUnknownCommand, input)
}

func joinPositions(positions []entity.Position) string {
	parts := make([]string, 0, len(positions))
	for _, pos := range positions {
		parts = append(parts, pos.String())
	}

	return strings.Join(parts, " ")
}
