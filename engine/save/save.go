// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

// Version is written into every save. It is recorded, not migrated.
const Version = "1"

// ErrMalformed is returned when save data cannot be decoded into a state.
var ErrMalformed = errors.New("malformed save data")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version string         `json:"version"`
	Turn    int            `json:"turn"`
	Player  types.Player   `json:"player"`
	World   *world.World   `json:"world"`
	Log     []string       `json:"log"`
	History []*world.World `json:"history"`
}

// Save serializes game state to JSON bytes, history included.
func Save(gs *types.GameState) ([]byte, error) {
	data := SaveData{
		Version: Version,
		Turn:    gs.Turn,
		Player:  gs.Player,
		World:   gs.World,
		Log:     gs.Log,
		History: gs.History,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into a game state.
func Load(data []byte) (*types.GameState, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if sd.World == nil {
		return nil, fmt.Errorf("%w: missing world", ErrMalformed)
	}
	if sd.Turn < 0 {
		return nil, fmt.Errorf("%w: negative turn %d", ErrMalformed, sd.Turn)
	}

	// Ensure maps and slices are never nil after load.
	normalizeWorld(sd.World)
	for i, h := range sd.History {
		if h == nil {
			return nil, fmt.Errorf("%w: empty history entry %d", ErrMalformed, i)
		}
		normalizeWorld(h)
	}
	if sd.Player.Inventory == nil {
		sd.Player.Inventory = []string{}
	}
	if sd.Player.Attributes == nil {
		sd.Player.Attributes = map[string]string{}
	}
	if sd.Log == nil {
		sd.Log = []string{}
	}
	if sd.History == nil {
		sd.History = []*world.World{}
	}

	return &types.GameState{
		Player:  sd.Player,
		World:   sd.World,
		Turn:    sd.Turn,
		Log:     sd.Log,
		History: sd.History,
	}, nil
}

func normalizeWorld(w *world.World) {
	if w.Nodes == nil {
		w.Nodes = map[string]*world.Node{}
	}
	if w.Items == nil {
		w.Items = map[string]world.Item{}
	}
}
