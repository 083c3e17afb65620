// Package bitboard converts between occupied-cell sets and the integer
// masks used by the move-suggestion service: bit (row-1)*N + (col-1) is set
// when the cell is occupied.
package bitboard

import (
	"fmt"
	"math/bits"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
)

// MaxSize is the largest board whose cells fit in a uint64 mask.
const MaxSize = 8

// Board is one player's occupancy mask.
type Board uint64

func checkSize(size int) error {
	if size < 1 || size > MaxSize {
		return fmt.Errorf("%w: board size %d outside [1,%d]", apperror.ErrInvalidBitboard, size, MaxSize)
	}
	return nil
}

// Bit returns the mask with only pos set.
func Bit(size int, pos entity.Position) (Board, error) {
	if err := checkSize(size); err != nil {
		return 0, err
	}

	if !pos.InBounds(size) {
		return 0, fmt.Errorf("%w: %s: %w", apperror.ErrInvalidBitboard, pos, apperror.ErrOutOfBounds)
	}

	return Board(1) << uint((pos.Row-1)*size+(pos.Col-1)), nil
}

func Encode(size int, positions []entity.Position) (Board, error) {
	var board Board

	for _, pos := range positions {
		bit, err := Bit(size, pos)
		if err != nil {
			return 0, err
		}
		board |= bit
	}

	return board, nil
}

// Decode returns the positions set in board, row-major.
func Decode(size int, board Board) ([]entity.Position, error) {
	if err := Validate(size, board); err != nil {
		return nil, err
	}

	positions := make([]entity.Position, 0, board.Count())
	for rest := uint64(board); rest != 0; rest &= rest - 1 {
		index := bits.TrailingZeros64(rest)
		positions = append(positions, entity.NewPosition(index/size+1, index%size+1))
	}

	return positions, nil
}

// Validate rejects masks with bits beyond the N*N cells of the board.
func Validate(size int, board Board) error {
	if err := checkSize(size); err != nil {
		return err
	}

	cells := uint(size * size)
	if cells < 64 && uint64(board)>>cells != 0 {
		return fmt.Errorf("%w: mask %#x has bits beyond %d cells", apperror.ErrInvalidBitboard, uint64(board), cells)
	}

	return nil
}

// ValidatePair checks both players' masks and that no cell is claimed twice.
func ValidatePair(size int, boards [2]Board) error {
	for _, board := range boards {
		if err := Validate(size, board); err != nil {
			return err
		}
	}

	if overlap := boards[0] & boards[1]; overlap != 0 {
		return fmt.Errorf("%w: cells %#x held by both players", apperror.ErrInvalidBitboard, uint64(overlap))
	}

	return nil
}

func (that Board) Has(size int, pos entity.Position) bool {
	bit, err := Bit(size, pos)
	if err != nil {
		return false
	}
	return that&bit != 0
}

func (that Board) Count() int {
	return bits.OnesCount64(uint64(that))
}
