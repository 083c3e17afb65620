package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/square"
	"github.com/rocketscienceinc/square-backend/internal/suggest"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// Suggester proposes a move for a position; see suggest.Client.
type Suggester interface {
	Suggest(ctx context.Context, size int, req suggest.Request) (entity.Position, error)
}

// GameManager runs matches on top of the rules engine: it owns seating,
// turn order and terminal gating, and keeps each match's board in storage.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	suggester  Suggester

	boardSize int
	locks     *keyedMutex
}

// NewGameManager builds a manager for boards of boardSize. A nil suggester
// disables SuggestTurn.
func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, suggester Suggester, boardSize int) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		suggester:  suggester,

		boardSize: boardSize,
		locks:     newKeyedMutex(),
	}
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		return that.createPlayer(ctx, uuid.NewString())
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return that.createPlayer(ctx, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// CreateGame seats the player as W in a new match, or returns the match the
// player is already in. Remote matches wait for a second player; local ones
// start at once.
func (that *GameManager) CreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	if gameType != entity.RemoteType && gameType != entity.LocalType {
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.InGame() {
		existingGame, err := that.gameRepo.GetByID(ctx, player.GameID)
		if err == nil && !existingGame.IsFinished() {
			return existingGame, nil
		}

		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}
	}

	game := entity.NewGame(uuid.NewString(), gameType, that.boardSize)
	if game.IsLocal() {
		game.Status = entity.StatusOngoing
	}

	player.GameID = game.ID
	player.Mark = entity.MarkWhite
	game.Players = []*entity.Player{player}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "gameID", game.ID, "type", game.Type, "playerID", player.ID)

	return game, nil
}

// CreateLocalGame starts a hot-seat match where one client plays both sides.
func (that *GameManager) CreateLocalGame(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.CreateGame(ctx, playerID, entity.LocalType)
}

// JoinGame takes the B seat of a waiting remote match.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.locks.Lock(gameID)
	defer unlock()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if game.HasPlayer(player.ID) {
		return game, nil
	}

	if game.IsFull() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	if err = that.confirmFreeSeat(ctx, player); err != nil {
		return nil, err
	}

	player.GameID = game.ID
	player.Mark = entity.MarkBlack
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	game.Players = append(game.Players, player)
	game.Status = entity.StatusOngoing
	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("player joined game", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

// MakeTurn plays pos for the player's side. Illegal moves leave the stored
// match untouched and return an error wrapping apperror.ErrIllegalMove.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, pos entity.Position) (*entity.Game, square.MoveResult, error) {
	player, err := that.getSeatedPlayer(ctx, playerID)
	if err != nil {
		return nil, square.MoveResult{}, err
	}

	unlock := that.locks.Lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, square.MoveResult{}, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, square.MoveResult{}, err
	}

	if err = game.ConfirmTurn(player.Mark); err != nil {
		return game, square.MoveResult{}, err
	}

	engine, err := restoreEngine(game)
	if err != nil {
		return nil, square.MoveResult{}, fmt.Errorf("failed to restore board: %w", err)
	}

	result, err := engine.ApplyMove(pos)
	if err != nil {
		return game, square.MoveResult{}, fmt.Errorf("failed to make turn: %w", err)
	}

	storeState(game, engine.State())
	if engine.IsTerminal() {
		game.Status = entity.StatusFinished
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, square.MoveResult{}, err
	}

	log := that.logger.With("gameID", game.ID, "playerID", player.ID, "position", pos.String())
	if result.Won {
		log.Info("game won", "winner", game.Winner)
	} else {
		log.Debug("turn made", "captured", len(result.Captured))
	}

	return game, result, nil
}

// SuggestTurn asks the suggestion service for a move and submits it through
// MakeTurn, so it is checked like any other move. A failed call changes nothing.
func (that *GameManager) SuggestTurn(ctx context.Context, playerID string) (*entity.Game, entity.Position, square.MoveResult, error) {
	if that.suggester == nil {
		return nil, entity.Position{}, square.MoveResult{}, apperror.ErrNoSuggestions
	}

	player, err := that.getSeatedPlayer(ctx, playerID)
	if err != nil {
		return nil, entity.Position{}, square.MoveResult{}, err
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, entity.Position{}, square.MoveResult{}, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, entity.Position{}, square.MoveResult{}, err
	}

	if err = game.ConfirmTurn(player.Mark); err != nil {
		return game, entity.Position{}, square.MoveResult{}, err
	}

	req, err := BoardRequest(game)
	if err != nil {
		return nil, entity.Position{}, square.MoveResult{}, err
	}

	pos, err := that.suggester.Suggest(ctx, game.Size, req)
	if err != nil {
		return game, entity.Position{}, square.MoveResult{}, fmt.Errorf("failed to get suggestion: %w", err)
	}

	game, result, err := that.MakeTurn(ctx, playerID, pos)
	if err != nil {
		return game, pos, square.MoveResult{}, fmt.Errorf("failed to play suggestion %s: %w", pos, err)
	}

	return game, pos, result, nil
}

// RestartGame clears the board of the player's match and starts it again with
// W to move. Remote matches can only be restarted once finished.
func (that *GameManager) RestartGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getSeatedPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	unlock := that.locks.Lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	if !game.IsLocal() && !game.IsFinished() {
		return nil, apperror.ErrGameIsNotFinished
	}

	engine, err := square.New(game.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	storeState(game, engine.Reset())

	game.Status = entity.StatusOngoing
	if !game.IsLocal() && len(game.Players) < 2 {
		game.Status = entity.StatusWaiting
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game restarted", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getSeatedPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return that.getGameByID(ctx, player.GameID)
}

// LeaveGame deletes the player's match and frees every seat in it. The
// returned match is the last stored state, for notifying the other seat.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getSeatedPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	unlock := that.locks.Lock(player.GameID)
	defer unlock()

	game, err := that.getGameByID(ctx, player.GameID)
	if errors.Is(err, apperror.ErrNotFound) {
		player.GameID, player.Mark = "", ""
		return nil, that.updatePlayer(ctx, player)
	}

	if err != nil {
		return nil, err
	}

	that.deleteGame(ctx, game)

	return game, nil
}

// BoardRequest encodes the match position for the suggestion service.
func BoardRequest(game *entity.Game) (suggest.Request, error) {
	req, err := suggest.NewRequest(game.Size, game.Occupied(entity.MarkWhite), game.Occupied(entity.MarkBlack), game.Turn)
	if err != nil {
		return suggest.Request{}, fmt.Errorf("failed to encode board: %w", err)
	}

	return req, nil
}

func restoreEngine(game *entity.Game) (*square.Engine, error) {
	return square.Restore(game.Size, square.State{
		Current:       game.Turn,
		Pieces:        game.Pieces,
		Moves:         game.Moves,
		WinningSquare: game.WinningSquare,
		Winner:        game.Winner,
	})
}

func storeState(game *entity.Game, state square.State) {
	game.Turn = state.Current
	game.Pieces = state.Pieces
	game.Moves = state.Moves
	game.WinningSquare = state.WinningSquare
	game.Winner = state.Winner
}

func (that *GameManager) createPlayer(ctx context.Context, id string) (*entity.Player, error) {
	player := &entity.Player{ID: id}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// confirmFreeSeat rejects players still seated in another live match.
func (that *GameManager) confirmFreeSeat(ctx context.Context, player *entity.Player) error {
	if !player.InGame() {
		return nil
	}

	current, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	if !current.IsFinished() {
		return fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, current.ID)
	}

	return nil
}

func (that *GameManager) getSeatedPlayer(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.getPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		log.Error("failed to delete game", "error", err)
	}

	for _, seat := range game.Players {
		player := &entity.Player{ID: seat.ID}
		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "playerID", seat.ID, "error", err)
		}
	}

	log.Info("game deleted")
}
