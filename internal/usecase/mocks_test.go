package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/repository"
	"github.com/rocketscienceinc/square-backend/internal/suggest"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockSuggester struct {
	mock.Mock
}

func (that *mockSuggester) Suggest(ctx context.Context, size int, req suggest.Request) (entity.Position, error) {
	args := that.Called(ctx, size, req)
	return args.Get(0).(entity.Position), args.Error(1)
}

// memoryStore keeps JSON copies like the redis repositories do, so callers
// never share pointers with what is stored.
type memoryStore struct {
	mu      sync.Mutex
	games   map[string][]byte
	players map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		games:   make(map[string][]byte),
		players: make(map[string][]byte),
	}
}

type memoryGames struct{ *memoryStore }

type memoryPlayers struct{ *memoryStore }

func (that memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.games[game.ID] = data
	return nil
}

func (that memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, ok := that.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return repository.ErrGameNotFound
	}

	delete(that.games, id)
	return nil
}

func (that memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	that.players[player.ID] = data
	return nil
}

func (that memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, ok := that.players[id]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	return &player, nil
}
