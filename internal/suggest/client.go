// Package suggest talks to the remote move-suggestion service. Suggestions
// are advisory: callers feed the returned position through the normal move
// path like any other candidate.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/square-backend/internal/apperror"
	"github.com/rocketscienceinc/square-backend/internal/bitboard"
	"github.com/rocketscienceinc/square-backend/internal/entity"
)

const (
	movePath        = "/ai-move"
	maxResponseSize = 1 << 16
)

// Request is the position sent to the service: one mask per player and the
// index (0 or 1) of the side to move.
type Request struct {
	Boards        [2]uint64 `json:"boards"`
	CurrentPlayer int       `json:"current_player"`
}

// Response carries the suggested cell, 0-indexed as [row, col].
type Response struct {
	Move []int `json:"move"`
}

// NewRequest encodes both players' cells and the side to move.
func NewRequest(size int, white, black []entity.Position, current string) (Request, error) {
	whiteBoard, err := bitboard.Encode(size, white)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode %s board: %w", entity.MarkWhite, err)
	}

	blackBoard, err := bitboard.Encode(size, black)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode %s board: %w", entity.MarkBlack, err)
	}

	req := Request{Boards: [2]uint64{uint64(whiteBoard), uint64(blackBoard)}}

	switch current {
	case entity.MarkWhite:
		req.CurrentPlayer = 0
	case entity.MarkBlack:
		req.CurrentPlayer = 1
	default:
		return Request{}, fmt.Errorf("%w: unknown side %q", apperror.ErrInvalidBitboard, current)
	}

	return req, req.Validate(size)
}

func (that Request) Validate(size int) error {
	if that.CurrentPlayer != 0 && that.CurrentPlayer != 1 {
		return fmt.Errorf("%w: current player %d", apperror.ErrInvalidBitboard, that.CurrentPlayer)
	}

	boards := [2]bitboard.Board{bitboard.Board(that.Boards[0]), bitboard.Board(that.Boards[1])}
	if err := bitboard.ValidatePair(size, boards); err != nil {
		return err
	}

	return nil
}

// Position validates the suggested cell and converts it to a 1-indexed Position.
func (that Response) Position(size int) (entity.Position, error) {
	if len(that.Move) != 2 {
		return entity.Position{}, fmt.Errorf("%w: want 2 coordinates, got %d", apperror.ErrInvalidSuggestion, len(that.Move))
	}

	row, col := that.Move[0], that.Move[1]
	if row < 0 || row >= size || col < 0 || col >= size {
		return entity.Position{}, fmt.Errorf("%w: cell [%d,%d] outside %dx%d board", apperror.ErrInvalidSuggestion, row, col, size, size)
	}

	return entity.NewPosition(row+1, col+1), nil
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Suggest asks the service for a move in the given position.
func (that *Client) Suggest(ctx context.Context, size int, req Request) (entity.Position, error) {
	if err := req.Validate(size); err != nil {
		return entity.Position{}, fmt.Errorf("failed to validate request: %w", err)
	}

	if that.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return entity.Position{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, that.baseURL+movePath, bytes.NewReader(body))
	if err != nil {
		return entity.Position{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := that.httpClient.Do(httpReq)
	if err != nil {
		return entity.Position{}, fmt.Errorf("failed to call suggestion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.Position{}, fmt.Errorf("suggestion service returned status %d", resp.StatusCode)
	}

	var suggestion Response
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&suggestion); err != nil {
		return entity.Position{}, fmt.Errorf("%w: failed to decode response: %w", apperror.ErrInvalidSuggestion, err)
	}

	pos, err := suggestion.Position(size)
	if err != nil {
		return entity.Position{}, err
	}

	return pos, nil
}
