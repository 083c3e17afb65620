package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	// RemoteType matches are played by two connected players, one seat each.
	RemoteType = "remote"
	// LocalType matches are driven from a single client for both sides.
	LocalType = "local"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is the stored record of a match: seats plus a snapshot of the board.
type Game struct {
	ID            string                `json:"id"`
	Type          string                `json:"type"`
	Size          int                   `json:"size"`
	Status        string                `json:"status"`
	Turn          string                `json:"turn"`
	Winner        string                `json:"winner,omitempty"`
	Pieces        map[string][]Position `json:"pieces"`
	Moves         []Position            `json:"moves"`
	WinningSquare []Position            `json:"winning_square,omitempty"`
	Players       []*Player             `json:"players,omitempty"`
}

func NewGame(id, gameType string, size int) *Game {
	return &Game{
		ID:     id,
		Type:   gameType,
		Size:   size,
		Status: StatusWaiting,
		Turn:   MarkWhite,
		Pieces: map[string][]Position{
			MarkWhite: {},
			MarkBlack: {},
		},
		Moves: []Position{},
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsLocal() bool {
	return that.Type == LocalType
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// ConfirmTurn checks that the given mark may move now. Local matches accept either seat.
func (that *Game) ConfirmTurn(mark string) error {
	if that.IsLocal() {
		return nil
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	return nil
}

func (that *Game) IsFull() bool {
	if that.IsLocal() {
		return len(that.Players) >= 1
	}
	return len(that.Players) >= 2
}

func (that *Game) HasPlayer(playerID string) bool {
	return that.PlayerByID(playerID) != nil
}

func (that *Game) PlayerByID(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}
	return nil
}

// Occupied returns the cells held by mark.
func (that *Game) Occupied(mark string) []Position {
	return that.Pieces[mark]
}
