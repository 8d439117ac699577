package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/supertictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player  *entity.Player `json:"player,omitempty"`
	Game    *entity.Game   `json:"game,omitempty"`
	GameID  string         `json:"game_id,omitempty"`
	Variant string         `json:"variant,omitempty"`
	Move    *engine.Move   `json:"move,omitempty"`
	Error   string         `json:"error,omitempty"`
}
