package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/square"
)

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockGameUseCase) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) CreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	args := that.Called(ctx, playerID, gameType)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) CreateLocalGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) MakeTurn(ctx context.Context, playerID string, pos entity.Position) (*entity.Game, square.MoveResult, error) {
	args := that.Called(ctx, playerID, pos)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Get(1).(square.MoveResult), args.Error(2)
}

func (that *mockGameUseCase) SuggestTurn(ctx context.Context, playerID string) (*entity.Game, entity.Position, square.MoveResult, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Get(1).(entity.Position), args.Get(2).(square.MoveResult), args.Error(3)
}

func (that *mockGameUseCase) RestartGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func startServer(t *testing.T, useCase *mockGameUseCase) string {
	t.Helper()

	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)), useCase)
	ts := httptest.NewServer(server.Handler(context.Background()))
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload Payload) {
	t.Helper()

	message, err := newMessage(action, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(message))
}

func receive(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	var payload Payload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

// connectAs registers conn for an unseated player.
func connectAs(t *testing.T, useCase *mockGameUseCase, conn *websocket.Conn, playerID string) {
	t.Helper()

	useCase.On("GetOrCreatePlayer", mock.Anything, playerID).Return(&entity.Player{ID: playerID}, nil).Once()
	send(t, conn, actionConnect, Payload{Player: &entity.Player{ID: playerID}})

	action, payload := receive(t, conn)
	require.Equal(t, actionConnect, action)
	require.Equal(t, playerID, payload.Player.ID)
}

func twoSeatGame() *entity.Game {
	game := entity.NewGame("g1", entity.RemoteType, 5)
	game.Status = entity.StatusOngoing
	game.Players = []*entity.Player{
		{ID: "p1", Mark: entity.MarkWhite, GameID: "g1"},
		{ID: "p2", Mark: entity.MarkBlack, GameID: "g1"},
	}
	return game
}

func TestServer_Connect(t *testing.T) {
	t.Run("New player gets an id", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		conn := dial(t, startServer(t, useCase))

		useCase.On("GetOrCreatePlayer", mock.Anything, "").Return(&entity.Player{ID: "fresh"}, nil).Once()

		// When: connect is sent without a player
		send(t, conn, actionConnect, Payload{})

		// Then: the created player is returned
		action, payload := receive(t, conn)
		assert.Equal(t, actionConnect, action)
		require.NotNil(t, payload.Player)
		assert.Equal(t, "fresh", payload.Player.ID)
		assert.Nil(t, payload.Game)
	})

	t.Run("Seated player gets the match back", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		conn := dial(t, startServer(t, useCase))

		game := twoSeatGame()
		useCase.On("GetOrCreatePlayer", mock.Anything, "p1").Return(game.Players[0], nil).Once()
		useCase.On("GetGameByPlayerID", mock.Anything, "p1").Return(game, nil).Once()

		send(t, conn, actionConnect, Payload{Player: &entity.Player{ID: "p1"}})

		_, payload := receive(t, conn)
		require.NotNil(t, payload.Game)
		assert.Equal(t, "g1", payload.Game.ID)
		assert.Empty(t, payload.Game.Players)
	})
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Move is broadcast to both seats", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		url := startServer(t, useCase)
		white, black := dial(t, url), dial(t, url)
		connectAs(t, useCase, white, "p1")
		connectAs(t, useCase, black, "p2")

		// Given: W captures two B pieces with its move
		game := twoSeatGame()
		game.Turn = entity.MarkBlack
		result := square.MoveResult{Captured: []entity.Position{entity.NewPosition(3, 1), entity.NewPosition(2, 1)}}
		useCase.On("MakeTurn", mock.Anything, "p1", entity.NewPosition(4, 1)).Return(game, result, nil).Once()

		// When: W sends its turn
		move := entity.NewPosition(4, 1)
		send(t, white, actionGameTurn, Payload{Player: &entity.Player{ID: "p1"}, Position: &move})

		// Then: both players receive the update with their own seat
		for _, tc := range []struct {
			conn *websocket.Conn
			mark string
		}{{white, entity.MarkWhite}, {black, entity.MarkBlack}} {
			action, payload := receive(t, tc.conn)
			assert.Equal(t, actionGameTurn, action)
			assert.Equal(t, tc.mark, payload.Player.Mark)
			assert.Equal(t, entity.MarkBlack, payload.Game.Turn)
			require.NotNil(t, payload.Result)
			assert.Equal(t, result.Captured, payload.Result.Captured)
			assert.Equal(t, &move, payload.Position)
		}
		useCase.AssertExpectations(t)
	})

	t.Run("Rejected move is reported to the sender only", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		url := startServer(t, useCase)
		white := dial(t, url)
		connectAs(t, useCase, white, "p1")

		move := entity.NewPosition(1, 1)
		useCase.On("MakeTurn", mock.Anything, "p1", move).
			Return(nil, square.MoveResult{}, fmt.Errorf("failed to make turn: %w", apperror.ErrNotYourTurn)).Once()

		send(t, white, actionGameTurn, Payload{Player: &entity.Player{ID: "p1"}, Position: &move})

		action, payload := receive(t, white)
		assert.Equal(t, actionGameTurn, action)
		assert.Contains(t, payload.Error, apperror.ErrNotYourTurn.Error())
	})

	t.Run("Position is required", func(t *testing.T) {
		useCase := &mockGameUseCase{}
		white := dial(t, startServer(t, useCase))

		send(t, white, actionGameTurn, Payload{Player: &entity.Player{ID: "p1"}})

		_, payload := receive(t, white)
		assert.Equal(t, errPositionRequired.Error(), payload.Error)
		useCase.AssertNotCalled(t, "MakeTurn", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServer_GameLeave(t *testing.T) {
	useCase := &mockGameUseCase{}
	url := startServer(t, useCase)
	white, black := dial(t, url), dial(t, url)
	connectAs(t, useCase, white, "p1")
	connectAs(t, useCase, black, "p2")

	useCase.On("LeaveGame", mock.Anything, "p1").Return(twoSeatGame(), nil).Once()

	// When: W leaves
	send(t, white, actionGameLeave, Payload{Player: &entity.Player{ID: "p1"}})

	// Then: the opponent is told the match is over and its seat is free
	action, payload := receive(t, black)
	assert.Equal(t, actionGameLeave, action)
	assert.Equal(t, gameStatusLeave, payload.Game.Status)
	assert.False(t, payload.Player.InGame())
}

func TestServer_BadRequests(t *testing.T) {
	t.Run("Unknown action", func(t *testing.T) {
		conn := dial(t, startServer(t, &mockGameUseCase{}))

		send(t, conn, "game:resign", Payload{})

		action, payload := receive(t, conn)
		assert.Equal(t, actionError, action)
		assert.Contains(t, payload.Error, "game:resign")
	})

	t.Run("Player is required", func(t *testing.T) {
		conn := dial(t, startServer(t, &mockGameUseCase{}))

		send(t, conn, actionGameNew, Payload{})

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameNew, action)
		assert.Equal(t, errPlayerRequired.Error(), payload.Error)
	})
}
