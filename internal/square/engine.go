// Package square implements the rules of Complete the Square: two players
// alternately claim cells of an N×N board, a player wins by holding all four
// corners of an axis-aligned square, and a placed piece captures opponent
// runs it brackets in any of the eight compass directions.
package square

import (
	"fmt"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
)

const MinSize = 2

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusTerminal   Status = "terminal"
)

// MoveResult describes what a successful move did to the board.
type MoveResult struct {
	Won           bool              `json:"won"`
	WinningSquare []entity.Position `json:"winning_square,omitempty"`
	Captured      []entity.Position `json:"captured"`
}

// Engine owns the board state of a single match. It is not safe for
// concurrent use; callers serialise access to an instance.
type Engine struct {
	size    int
	players [2]*Player
	current int

	moves         []entity.Position
	winningSquare []entity.Position
	winner        string
}

func New(size int) (*Engine, error) {
	if size < MinSize {
		return nil, fmt.Errorf("%w: size %d, want at least %d", apperror.ErrInvalidBoard, size, MinSize)
	}

	return &Engine{
		size:    size,
		players: [2]*Player{newPlayer(entity.MarkWhite), newPlayer(entity.MarkBlack)},
		moves:   []entity.Position{},
	}, nil
}

func (that *Engine) Size() int {
	return that.size
}

// Current returns the side to move.
func (that *Engine) Current() *Player {
	return that.players[that.current]
}

func (that *Engine) Opponent() *Player {
	return that.players[1-that.current]
}

// Player returns the side holding mark, or nil for an unknown mark.
func (that *Engine) Player(mark string) *Player {
	for _, player := range that.players {
		if player.mark == mark {
			return player
		}
	}
	return nil
}

// Occupied returns the cells held by mark, row-major.
func (that *Engine) Occupied(mark string) []entity.Position {
	player := that.Player(mark)
	if player == nil {
		return nil
	}
	return player.Positions()
}

// Moves returns the move log in play order.
func (that *Engine) Moves() []entity.Position {
	return append([]entity.Position{}, that.moves...)
}

func (that *Engine) WinningSquare() []entity.Position {
	if that.winningSquare == nil {
		return nil
	}
	return append([]entity.Position{}, that.winningSquare...)
}

// IsTerminal reports whether a winning square has been completed. The engine
// keeps accepting moves afterwards; gating them is up to the caller.
func (that *Engine) IsTerminal() bool {
	return that.winningSquare != nil
}

func (that *Engine) Status() Status {
	if that.IsTerminal() {
		return StatusTerminal
	}
	return StatusInProgress
}

// Winner returns the mark that completed the winning square, or "" while in progress.
func (that *Engine) Winner() string {
	return that.winner
}

// IsLegal reports whether pos is on the board and free.
func (that *Engine) IsLegal(pos entity.Position) bool {
	return that.checkMove(pos) == nil
}

func (that *Engine) checkMove(pos entity.Position) error {
	if !pos.InBounds(that.size) {
		return apperror.ErrOutOfBounds
	}

	for _, player := range that.players {
		if player.Has(pos) {
			return apperror.ErrCellOccupied
		}
	}

	return nil
}

// ApplyMove places a piece for the side to move. An illegal position leaves
// the state untouched and returns an error wrapping apperror.ErrIllegalMove.
func (that *Engine) ApplyMove(pos entity.Position) (MoveResult, error) {
	if err := that.checkMove(pos); err != nil {
		return MoveResult{}, fmt.Errorf("%w %s: %w", apperror.ErrIllegalMove, pos, err)
	}

	mover, opponent := that.Current(), that.Opponent()

	mover.add(pos)
	that.moves = append(that.moves, pos)

	var result MoveResult

	if corners := that.findSquare(pos, mover); corners != nil {
		that.winningSquare = corners
		that.winner = mover.mark
		result.Won = true
		result.WinningSquare = append([]entity.Position{}, corners...)
	}

	result.Captured = that.capture(pos, mover, opponent)

	that.current = 1 - that.current

	return result, nil
}

// Reset clears the board and hands the move back to the first player.
func (that *Engine) Reset() State {
	for _, player := range that.players {
		player.clear()
	}

	that.current = 0
	that.moves = []entity.Position{}
	that.winningSquare = nil
	that.winner = ""

	return that.State()
}

func (that *Engine) inBounds(pos entity.Position) bool {
	return pos.InBounds(that.size)
}
