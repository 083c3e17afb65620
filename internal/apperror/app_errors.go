package apperror

import "errors"

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrOutOfBounds   = errors.New("position is out of bounds")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidBoard  = errors.New("invalid board")
	ErrNotFound      = errors.New("not found")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrNotInGame     = errors.New("player is not in a game")
	ErrGameFinished  = errors.New("game is already finished")
	ErrGameIsFull    = errors.New("game already has two players")
	ErrNoSuggestions = errors.New("move suggestions are disabled")

	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameIsNotFinished = errors.New("game is not finished")
	ErrAlreadyInGame     = errors.New("player is already in another game")
	ErrInvalidBitboard   = errors.New("invalid bitboard")
	ErrInvalidSuggestion = errors.New("invalid move suggestion")
)
