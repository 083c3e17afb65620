package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/testing/suite"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage, time.Hour)

	// Given: a new match
	game := entity.NewGame("123", entity.RemoteType, 5)

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and the key expires with the ttl
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "game:123").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: a match with pieces, moves and a winning square
		game := entity.NewGame("123", entity.RemoteType, 5)
		game.Status = entity.StatusFinished
		game.Pieces[entity.MarkWhite] = []entity.Position{{Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}
		game.Pieces[entity.MarkBlack] = []entity.Position{{Row: 5, Col: 5}}
		game.Moves = []entity.Position{{Row: 1, Col: 1}, {Row: 5, Col: 5}, {Row: 1, Col: 2}}
		game.WinningSquare = []entity.Position{{Row: 2, Col: 2}, {Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 1}}
		game.Winner = entity.MarkWhite
		game.Players = []*entity.Player{{ID: "p1", Mark: entity.MarkWhite, GameID: "123"}}

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved match should match the saved one
		require.NoError(t, err)
		require.Equal(t, game, retrievedGame)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: a stored match
		game := entity.NewGame("123", entity.LocalType, 5)

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: DeleteByID is called with existing ID
		err = gameRepo.DeleteByID(ctx, game.ID)

		// Then: no error should be returned and the match is gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
	})
}
