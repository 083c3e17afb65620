package entity

import (
	"cmp"
	"fmt"
	"slices"
)

// Position is a 1-indexed (row, col) cell on an N×N board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewPosition(row, col int) Position {
	return Position{Row: row, Col: col}
}

// InBounds reports whether the position lies on a board of the given size.
func (that Position) InBounds(size int) bool {
	return that.Row >= 1 && that.Row <= size && that.Col >= 1 && that.Col <= size
}

// Offset returns the position moved by dr rows and dc columns.
func (that Position) Offset(dr, dc int) Position {
	return Position{Row: that.Row + dr, Col: that.Col + dc}
}

func (that Position) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Compare orders positions row-major.
func (that Position) Compare(other Position) int {
	if c := cmp.Compare(that.Row, other.Row); c != 0 {
		return c
	}
	return cmp.Compare(that.Col, other.Col)
}

// SortPositions sorts positions in place, row-major.
func SortPositions(positions []Position) {
	slices.SortFunc(positions, Position.Compare)
}
