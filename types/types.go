// Package types defines the shared data structures for the dotiam engine.
// This package contains only type definitions: no logic, no methods.
package types

import "github.com/nathoo/dotiam/engine/world"

// ActionKind names a player action.
type ActionKind string

const (
	ActHelp      ActionKind = "help"
	ActLook      ActionKind = "look"
	ActMove      ActionKind = "move"
	ActExplore   ActionKind = "explore"
	ActPickup    ActionKind = "pickup"
	ActDrop      ActionKind = "drop"
	ActInventory ActionKind = "inventory"
	ActUse       ActionKind = "use"
	ActCombine   ActionKind = "combine"
	ActInvalid   ActionKind = "invalid"
)

// Action is the parsed representation of a player command.
type Action struct {
	Kind   ActionKind
	Object string // node id for move; item id for explore, pickup, drop, use; first operand of combine
	Target string // second operand of combine
	Text   string // raw input for invalid
}

// Player holds the player's runtime state.
type Player struct {
	Name       string            `json:"name"`
	Node       string            `json:"node"`
	HP         int               `json:"hp"`
	MaxHP      int               `json:"max_hp"`
	Inventory  []string          `json:"inventory"`
	Attributes map[string]string `json:"attributes"`
}

// GameState is the complete mutable state of one run.
type GameState struct {
	Player  Player         `json:"player"`
	World   *world.World   `json:"world"`
	Turn    int            `json:"turn"`
	Log     []string       `json:"log"`
	History []*world.World `json:"history"`
}

// Result is the output of a single game step.
type Result struct {
	Action Action
	Output []string
	Turned bool // true when the turn counter advanced
}
