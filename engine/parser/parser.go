// Package parser converts command strings into Actions.
// Intentionally dumb: no NLP, just an alias table and edge-label matching.
package parser

import (
	"strings"

	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

var verbAliases = map[string]types.ActionKind{
	// Help
	"h":    types.ActHelp,
	"help": types.ActHelp,
	"?":    types.ActHelp,

	// Look
	"l":    types.ActLook,
	"look": types.ActLook,

	// Movement
	"g":      types.ActMove,
	"go":     types.ActMove,
	"walk":   types.ActMove,
	"move":   types.ActMove,
	"travel": types.ActMove,
	"head":   types.ActMove,

	// Explore / Examine
	"x":       types.ActExplore,
	"explore": types.ActExplore,
	"examine": types.ActExplore,
	"inspect": types.ActExplore,
	"search":  types.ActExplore,

	// Pickup
	"p":      types.ActPickup,
	"pickup": types.ActPickup,
	"get":    types.ActPickup,
	"take":   types.ActPickup,
	"grab":   types.ActPickup,

	// Drop
	"d":       types.ActDrop,
	"drop":    types.ActDrop,
	"discard": types.ActDrop,

	// Inventory
	"i":         types.ActInventory,
	"inv":       types.ActInventory,
	"inventory": types.ActInventory,

	// Use
	"u":   types.ActUse,
	"use": types.ActUse,

	// Combine
	"c":       types.ActCombine,
	"combine": types.ActCombine,
	"craft":   types.ActCombine,
}

// Parse converts a raw command string into an Action. It never fails:
// input that cannot be understood becomes an ActInvalid action.
//
// For movement the argument is matched case-insensitively against the
// labels of the current node's edges, then against their target ids. An
// unknown verb gets the same treatment applied to the whole input, so a
// bare edge label ("north", "the old bridge") moves the player.
func Parse(input string, w *world.World, current string) types.Action {
	words := strings.Fields(strings.ToLower(input))
	text := strings.Join(words, " ")
	if len(words) == 0 {
		return types.Action{Kind: types.ActInvalid, Text: ""}
	}

	// Handle multi-word verb phrases before alias lookup.
	words = expandMultiWordVerbs(words)

	kind, ok := verbAliases[words[0]]
	if !ok {
		if target, ok := MatchEdge(text, w, current); ok {
			return types.Action{Kind: types.ActMove, Object: target}
		}
		return types.Action{Kind: types.ActInvalid, Text: text}
	}

	rest := words[1:]
	arg := strings.Join(rest, " ")

	switch kind {
	case types.ActHelp, types.ActLook, types.ActInventory:
		return types.Action{Kind: kind}

	case types.ActMove:
		if target, ok := MatchEdge(arg, w, current); ok {
			return types.Action{Kind: types.ActMove, Object: target}
		}
		return types.Action{Kind: types.ActMove, Object: arg}

	case types.ActCombine:
		// Operands are single tokens; multi-word item ids cannot be combined.
		var a, b string
		if len(rest) > 0 {
			a = rest[0]
		}
		if len(rest) > 1 {
			b = rest[1]
		}
		return types.Action{Kind: types.ActCombine, Object: a, Target: b}

	default:
		return types.Action{Kind: kind, Object: arg}
	}
}

// MatchEdge resolves text to the target id of one of the current node's
// edges: first by label, then by target id, both case-insensitive.
func MatchEdge(text string, w *world.World, current string) (string, bool) {
	text = collapseSpaces(text)
	if text == "" {
		return "", false
	}
	node := w.Node(current)
	if node == nil {
		return "", false
	}
	for _, e := range node.Edges {
		if strings.EqualFold(collapseSpaces(e.Label), text) {
			return e.Target, true
		}
	}
	for _, e := range node.Edges {
		if strings.EqualFold(e.Target, text) {
			return e.Target, true
		}
	}
	return "", false
}

// expandMultiWordVerbs handles "pick up", "look at", "put down".
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "pick":
		if words[1] == "up" {
			return append([]string{"pickup"}, words[2:]...)
		}
	case "look":
		if words[1] == "at" {
			return append([]string{"explore"}, words[2:]...)
		}
	case "put":
		if words[1] == "down" {
			return append([]string{"drop"}, words[2:]...)
		}
	}

	return words
}

// collapseSpaces trims s and folds every run of whitespace to one space,
// the shape Parse gives its input.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
