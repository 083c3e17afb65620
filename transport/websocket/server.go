package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/square"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	CreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	CreateLocalGame(ctx context.Context, playerID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, pos entity.Position) (*entity.Game, square.MoveResult, error)
	SuggestTurn(ctx context.Context, playerID string) (*entity.Game, entity.Position, square.MoveResult, error)
	RestartGame(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	connections      map[string]*connection
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*connection),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameLocal] = server.handleLocalGame
	server.handlers[actionGameJoin] = server.handleJoinGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameSuggest] = server.handleGameSuggest
	server.handlers[actionGameRestart] = server.handleGameRestart
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Handler serves the WebSocket endpoint on /ws. Message handlers run with ctx.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(wsConn)
	defer func() {
		that.handleDisconnect(conn)
		wsConn.Close()
	}()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	that.handleMessages(ctx, conn)
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := conn.send(actionError, Payload{Error: "unknown action " + message.Action}); err != nil {
				log.Error("failed to send error response", "error", err)
			}
			continue
		}

		if err := handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = conn
	that.connectionsMutex.Unlock()
}

func (that *Server) connectionOf(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]
	return conn, ok
}

func (that *Server) handleDisconnect(conn *connection) {
	log := that.logger.With("method", "handleDisconnect")

	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, registered := range that.connections {
		if registered == conn {
			delete(that.connections, playerID)
			log.Info("player disconnected", "playerID", playerID)
		}
	}
}
