package square

import (
	"fmt"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
)

// State is a detached copy of an engine's board. Two engines in the same
// state produce equal State values.
type State struct {
	Current       string                       `json:"current"`
	Pieces        map[string][]entity.Position `json:"pieces"`
	Moves         []entity.Position            `json:"moves"`
	WinningSquare []entity.Position            `json:"winning_square,omitempty"`
	Winner        string                       `json:"winner,omitempty"`
}

func (that State) IsTerminal() bool {
	return that.WinningSquare != nil
}

func (that *Engine) State() State {
	pieces := make(map[string][]entity.Position, len(that.players))
	for _, player := range that.players {
		pieces[player.mark] = player.Positions()
	}

	return State{
		Current:       that.Current().mark,
		Pieces:        pieces,
		Moves:         that.Moves(),
		WinningSquare: that.WinningSquare(),
		Winner:        that.winner,
	}
}

// Restore builds an engine of the given size holding state. States that put
// a cell off the board or under both players are rejected.
func Restore(size int, state State) (*Engine, error) {
	engine, err := New(size)
	if err != nil {
		return nil, err
	}

	switch state.Current {
	case entity.MarkWhite, "":
		engine.current = 0
	case entity.MarkBlack:
		engine.current = 1
	default:
		return nil, fmt.Errorf("%w: unknown side %q", apperror.ErrInvalidBoard, state.Current)
	}

	for mark, positions := range state.Pieces {
		player := engine.Player(mark)
		if player == nil {
			return nil, fmt.Errorf("%w: unknown side %q", apperror.ErrInvalidBoard, mark)
		}

		for _, pos := range positions {
			if err = engine.checkMove(pos); err != nil {
				return nil, fmt.Errorf("%w: piece %s: %w", apperror.ErrInvalidBoard, pos, err)
			}
			player.add(pos)
		}
	}

	for _, pos := range state.Moves {
		if !engine.inBounds(pos) {
			return nil, fmt.Errorf("%w: move %s: %w", apperror.ErrInvalidBoard, pos, apperror.ErrOutOfBounds)
		}
	}
	engine.moves = append([]entity.Position{}, state.Moves...)

	if state.WinningSquare != nil {
		if len(state.WinningSquare) != 4 {
			return nil, fmt.Errorf("%w: winning square has %d corners", apperror.ErrInvalidBoard, len(state.WinningSquare))
		}
		for _, pos := range state.WinningSquare {
			if !engine.inBounds(pos) {
				return nil, fmt.Errorf("%w: corner %s: %w", apperror.ErrInvalidBoard, pos, apperror.ErrOutOfBounds)
			}
		}
		if engine.Player(state.Winner) == nil {
			return nil, fmt.Errorf("%w: unknown winner %q", apperror.ErrInvalidBoard, state.Winner)
		}
		engine.winningSquare = append([]entity.Position{}, state.WinningSquare...)
		engine.winner = state.Winner
	}

	return engine, nil
}
