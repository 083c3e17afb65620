package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/square-backend/internal/config"
	"github.com/rocketscienceinc/square-backend/internal/repository"
	"github.com/rocketscienceinc/square-backend/internal/repository/storage"
	"github.com/rocketscienceinc/square-backend/internal/suggest"
	"github.com/rocketscienceinc/square-backend/internal/usecase"
	"github.com/rocketscienceinc/square-backend/transport/rest"
	"github.com/rocketscienceinc/square-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage, conf.Game.TTL)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Game.TTL)

	var suggester usecase.Suggester
	if conf.Suggest.Enabled() {
		suggester = suggest.NewClient(conf.Suggest.URL, conf.Suggest.Timeout)
		log.Info("move suggestions enabled", "url", conf.Suggest.URL)
	}

	gameUseCase := usecase.NewGameManager(logger, playerRepo, gameRepo, suggester, conf.Game.BoardSize)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, gameUseCase).Start(groupCtx, conf.HTTPPort); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.New(logger, gameUseCase).Start(groupCtx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
