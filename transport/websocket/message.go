package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/square-backend/internal/entity"
	"github.com/rocketscienceinc/square-backend/internal/square"
)

const (
	actionConnect     = "connect"
	actionGameNew     = "game:new"
	actionGameLocal   = "game:local"
	actionGameJoin    = "game:join"
	actionGameTurn    = "game:turn"
	actionGameSuggest = "game:suggest"
	actionGameRestart = "game:restart"
	actionGameLeave   = "game:leave"
	actionError       = "error"
)

const gameStatusLeave = "leave"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is used both for requests and for the responses echoing them.
type Payload struct {
	Player   *entity.Player     `json:"player,omitempty"`
	Game     *entity.Game       `json:"game,omitempty"`
	Position *entity.Position   `json:"position,omitempty"`
	Result   *square.MoveResult `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func newMessage(action string, payload Payload) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: data}, nil
}

// maskGameDetails hides the seats from a match before it is sent out.
func maskGameDetails(game *entity.Game) *entity.Game {
	if game == nil {
		return nil
	}

	masked := *game
	masked.Players = nil
	return &masked
}
