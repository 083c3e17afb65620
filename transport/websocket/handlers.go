package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
)

var (
	errPlayerRequired   = errors.New("player is required")
	errGameRequired     = errors.New("game is required")
	errPositionRequired = errors.New("position is required")
)

// decodeRequest unmarshals the payload and checks that a player is named.
// The sender's connection is bound to that player.
func (that *Server) decodeRequest(msg *Message, conn *connection) (Payload, error) {
	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		if sendErr := conn.sendError(msg.Action, fmt.Errorf("malformed payload: %w", err)); sendErr != nil {
			return Payload{}, sendErr
		}
		return Payload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		if err := conn.sendError(msg.Action, errPlayerRequired); err != nil {
			return Payload{}, err
		}
		return Payload{}, errPlayerRequired
	}

	that.register(payloadReq.Player.ID, conn)

	return payloadReq, nil
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return conn.sendError(msg.Action, fmt.Errorf("malformed payload: %w", err))
		}
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return conn.sendError(msg.Action, errors.New("failed to create a new player"))
	}

	that.register(player.ID, conn)

	payloadResp := Payload{Player: player}

	if player.InGame() {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
		}
		payloadResp.Game = maskGameDetails(game)
	}

	if err = conn.send(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	gameType := entity.RemoteType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	game, err := that.gameUseCase.CreateGame(ctx, payloadReq.Player.ID, gameType)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to create game", err)
	}

	that.broadcast(msg.Action, game, Payload{})

	return nil
}

func (that *Server) handleLocalGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	game, err := that.gameUseCase.CreateLocalGame(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to create local game", err)
	}

	that.broadcast(msg.Action, game, Payload{})

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		return conn.sendError(msg.Action, errGameRequired)
	}

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to join game", err)
	}

	that.broadcast(msg.Action, game, Payload{})

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	if payloadReq.Position == nil {
		return conn.sendError(msg.Action, errPositionRequired)
	}

	game, result, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Position)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to make turn", err)
	}

	that.broadcast(msg.Action, game, Payload{Position: payloadReq.Position, Result: &result})

	return nil
}

func (that *Server) handleGameSuggest(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	game, pos, result, err := that.gameUseCase.SuggestTurn(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to play suggestion", err)
	}

	that.broadcast(msg.Action, game, Payload{Position: &pos, Result: &result})

	return nil
}

func (that *Server) handleGameRestart(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	game, err := that.gameUseCase.RestartGame(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to restart game", err)
	}

	that.broadcast(msg.Action, game, Payload{})

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	payloadReq, err := that.decodeRequest(msg, conn)
	if err != nil {
		return err
	}

	game, err := that.gameUseCase.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.fail(conn, msg.Action, "failed to leave game", err)
	}

	if game == nil {
		return conn.send(msg.Action, Payload{Player: &entity.Player{ID: payloadReq.Player.ID}})
	}

	game.Status = gameStatusLeave
	for _, player := range game.Players {
		player.GameID, player.Mark = "", ""
	}

	that.broadcast(msg.Action, game, Payload{})

	return nil
}

// broadcast sends the match to every seated player that has a live connection.
func (that *Server) broadcast(action string, game *entity.Game, extra Payload) {
	log := that.logger.With("method", "broadcast", "action", action, "gameID", game.ID)

	for _, player := range game.Players {
		conn, ok := that.connectionOf(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := extra
		payloadResp.Player = player
		payloadResp.Game = maskGameDetails(game)

		if err := conn.send(action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

// fail reports err to the sender. Rule violations are expected and only
// logged at debug level.
func (that *Server) fail(conn *connection, action, msg string, err error) error {
	log := that.logger.With("action", action)

	switch {
	case errors.Is(err, apperror.ErrIllegalMove),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameIsFull),
		errors.Is(err, apperror.ErrNotInGame),
		errors.Is(err, apperror.ErrAlreadyInGame),
		errors.Is(err, apperror.ErrGameIsNotFinished):
		log.Debug(msg, "error", err)
	default:
		log.Error(msg, "error", err)
	}

	return conn.sendError(action, err)
}
