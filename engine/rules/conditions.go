// Package rules evaluates edge conditions against the player.
package rules

import (
	"github.com/nathoo/dotiam/engine/state"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

// EvalCondition evaluates a single condition against the player.
// Unknown attribute keys compare as not equal.
func EvalCondition(c world.Condition, p *types.Player) bool {
	switch c := c.(type) {
	case world.HasItem:
		return state.HasItem(p, c.Item)

	case world.HasAttribute:
		v, ok := p.Attributes[c.Key]
		return ok && v == c.Value

	case world.MinHP:
		return p.HP >= c.HP

	default:
		return false
	}
}

// CanTraverse returns true if all conditions pass (AND logic), stopping at
// the first failure. An empty condition list is vacuously true.
func CanTraverse(p *types.Player, conditions []world.Condition) bool {
	for _, c := range conditions {
		if !EvalCondition(c, p) {
			return false
		}
	}
	return true
}

// FirstFailing returns the first condition that does not hold, or nil.
func FirstFailing(p *types.Player, conditions []world.Condition) world.Condition {
	for _, c := range conditions {
		if !EvalCondition(c, p) {
			return c
		}
	}
	return nil
}
