// Package state builds fresh game states and provides the player
// inventory lookups shared by the interpreter and the condition evaluator.
package state

import (
	"fmt"

	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

// Starting hit points for a new player.
const DefaultHP = 100

// NewState creates a fresh game state for the given player in the world.
// The player starts at the world's start node.
func NewState(playerName string, w *world.World) *types.GameState {
	if w == nil {
		w = world.New()
	}
	welcome := fmt.Sprintf("Welcome, %s!", playerName)
	if w.Title != "" {
		welcome = fmt.Sprintf("Welcome to %s, %s!", w.Title, playerName)
	}
	return &types.GameState{
		Player: types.Player{
			Name:       playerName,
			Node:       w.StartNode(),
			HP:         DefaultHP,
			MaxHP:      DefaultHP,
			Inventory:  []string{},
			Attributes: map[string]string{},
		},
		World:   w,
		Turn:    0,
		Log:     []string{welcome},
		History: []*world.World{},
	}
}

// HasItem returns true if the player has the given item in inventory.
func HasItem(p *types.Player, itemID string) bool {
	return CountItem(p, itemID) > 0
}

// CountItem returns how many copies of an item the player carries.
func CountItem(p *types.Player, itemID string) int {
	n := 0
	for _, id := range p.Inventory {
		if id == itemID {
			n++
		}
	}
	return n
}

// RemoveOne removes a single copy of an item from the inventory, keeping
// the order of the rest. Returns false if the item was not carried.
func RemoveOne(p *types.Player, itemID string) bool {
	for i, id := range p.Inventory {
		if id == itemID {
			p.Inventory = append(p.Inventory[:i:i], p.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// CurrentNode returns the node the player stands in, or nil if the player's
// location does not exist in the world.
func CurrentNode(s *types.GameState) *world.Node {
	return s.World.Node(s.Player.Node)
}
