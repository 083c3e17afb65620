package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/suggest"
	"github.com/rocketscienceinc/square-backend/internal/usecase"
)

// BitboardResponse is the suggestion-service encoding of a match position.
type BitboardResponse struct {
	GameID string `json:"game_id"`
	Size   int    `json:"size"`
	suggest.Request
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, ok := that.lookupGame(w, r)
	if !ok {
		return
	}

	that.writeJSON(w, http.StatusOK, publicGame(game))
}

func (that *Server) handleGetBitboard(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetBitboard")

	game, ok := that.lookupGame(w, r)
	if !ok {
		return
	}

	req, err := usecase.BoardRequest(game)
	if err != nil {
		log.Error("failed to encode board", "gameID", game.ID, "error", err)
		that.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	that.writeJSON(w, http.StatusOK, BitboardResponse{GameID: game.ID, Size: game.Size, Request: req})
}

func (that *Server) lookupGame(w http.ResponseWriter, r *http.Request) (*entity.Game, bool) {
	gameID := r.PathValue("id")

	game, err := that.gameUseCase.GetGame(r.Context(), gameID)
	if errors.Is(err, apperror.ErrNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return nil, false
	}

	if err != nil {
		that.logger.Error("failed to get game", "gameID", gameID, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return nil, false
	}

	return game, true
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// publicGame hides player seats from the match payload.
func publicGame(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	return &masked
}
