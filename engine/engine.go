// Package engine provides the Step() orchestrator that wires together
// parsing, condition checks, and the action interpreter into a single turn.
package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/dotiam/engine/parser"
	"github.com/nathoo/dotiam/engine/rules"
	"github.com/nathoo/dotiam/engine/state"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

// Engine holds the mutable state of one run.
type Engine struct {
	State *types.GameState
}

// New creates an engine over an existing game state.
func New(gs *types.GameState) *Engine {
	return &Engine{State: gs}
}

// Step processes one player command and returns the result. Output holds
// only the log lines appended by this command.
func (e *Engine) Step(input string) types.Result {
	gs := e.State
	action := parser.Parse(input, gs.World, gs.Player.Node)

	before := len(gs.Log)
	turn := gs.Turn
	Apply(gs, action)

	return types.Result{
		Action: action,
		Output: append([]string(nil), gs.Log[before:]...),
		Turned: gs.Turn > turn,
	}
}

// Apply executes an action against the game state. Failures never
// propagate: they are appended to the log and leave the rest of the state
// untouched. The turn counter advances only when the action takes effect
// (Explore always advances it).
func Apply(gs *types.GameState, a types.Action) {
	switch a.Kind {
	case types.ActHelp:
		say(gs, helpLines...)

	case types.ActLook:
		say(gs, Describe(gs)...)

	case types.ActMove:
		applyMove(gs, a.Object)

	case types.ActExplore:
		applyExplore(gs, a.Object)

	case types.ActPickup:
		applyPickup(gs, a.Object)

	case types.ActDrop:
		applyDrop(gs, a.Object)

	case types.ActInventory:
		say(gs, inventoryLine(gs))

	case types.ActUse:
		applyUse(gs, a.Object)

	case types.ActCombine:
		applyCombine(gs, a.Object, a.Target)

	default:
		say(gs, "Unknown command: "+a.Text)
	}
}

var helpLines = []string{
	"Commands:",
	"  look (l)                 describe where you are",
	"  go <path> (g)            follow a path by its label or destination",
	"  explore [item] (x)       search around, or examine an item",
	"  pickup <item> (p, take)  pick up an item",
	"  drop <item> (d)          drop an item",
	"  inventory (i, inv)       list what you carry",
	"  use <item> (u)           use an item",
	"  combine <a> <b> (c)      combine two items",
	"  help (h)                 show this list",
}

func say(gs *types.GameState, lines ...string) {
	gs.Log = append(gs.Log, lines...)
}

func applyMove(gs *types.GameState, target string) {
	if target == "" {
		say(gs, "Go where?")
		return
	}

	node := state.CurrentNode(gs)
	if node == nil {
		say(gs, "You can't go that way.")
		return
	}

	var (
		found   bool
		blocked world.Edge
		failing world.Condition
	)
	for _, edge := range node.Edges {
		if edge.Target != target {
			continue
		}
		if c := rules.FirstFailing(&gs.Player, edge.Conditions); c != nil {
			if !found {
				blocked, failing = edge, c
			}
			found = true
			continue
		}

		if gs.World.Node(edge.Target) == nil {
			say(gs, "The path leads nowhere.")
			return
		}
		gs.Player.Node = edge.Target
		gs.Turn++
		say(gs, fmt.Sprintf("You go %s.", edgeLabel(edge)))
		say(gs, Describe(gs)...)
		return
	}

	if !found {
		say(gs, "You can't go that way.")
		return
	}
	say(gs, blockedLine(gs.World, blocked, failing))
}

func blockedLine(w *world.World, edge world.Edge, c world.Condition) string {
	label := edgeLabel(edge)
	switch c := c.(type) {
	case world.HasItem:
		return fmt.Sprintf("You need the %s to go %s.", w.ItemName(c.Item), label)
	case world.HasAttribute:
		return fmt.Sprintf("You must have %s %s to go %s.", c.Key, c.Value, label)
	case world.MinHP:
		return fmt.Sprintf("You are too weak to go %s (need %d HP).", label, c.HP)
	default:
		return fmt.Sprintf("The way %s is blocked.", label)
	}
}

func applyExplore(gs *types.GameState, itemID string) {
	gs.Turn++

	if itemID == "" {
		say(gs, "Exploring the surroundings revealed nothing new.")
		return
	}

	visible := state.HasItem(&gs.Player, itemID) || state.CurrentNode(gs).HasItem(itemID)
	it, known := gs.World.Item(itemID)
	if !visible || !known {
		say(gs, fmt.Sprintf("You don't find any %s here.", itemID))
		return
	}
	say(gs, fmt.Sprintf("%s: %s", gs.World.ItemName(itemID), it.Description))
}

func applyPickup(gs *types.GameState, itemID string) {
	if itemID == "" {
		say(gs, "Pick up what?")
		return
	}

	name := gs.World.ItemName(itemID)
	node := state.CurrentNode(gs)
	if !node.HasItem(itemID) {
		say(gs, fmt.Sprintf("The %s is not here.", name))
		return
	}
	if !gs.World.CanPickup(itemID) {
		say(gs, fmt.Sprintf("You can't pick up the %s.", name))
		return
	}

	node.RemoveItem(itemID)
	gs.Player.Inventory = append(gs.Player.Inventory, itemID)
	gs.Turn++
	say(gs, fmt.Sprintf("You pick up the %s.", name))
}

func applyDrop(gs *types.GameState, itemID string) {
	if itemID == "" {
		say(gs, "Drop what?")
		return
	}

	name := gs.World.ItemName(itemID)
	if !state.HasItem(&gs.Player, itemID) {
		say(gs, fmt.Sprintf("You don't have the %s.", name))
		return
	}
	node := state.CurrentNode(gs)
	if node == nil {
		say(gs, "There is nowhere to drop it.")
		return
	}

	state.RemoveOne(&gs.Player, itemID)
	node.Items = append(node.Items, itemID)
	gs.Turn++
	say(gs, fmt.Sprintf("You drop the %s.", name))
}

func applyUse(gs *types.GameState, itemID string) {
	if itemID == "" {
		say(gs, "Use what?")
		return
	}

	name := gs.World.ItemName(itemID)
	if !state.HasItem(&gs.Player, itemID) {
		say(gs, fmt.Sprintf("You don't have the %s.", name))
		return
	}
	gs.Turn++
	say(gs, fmt.Sprintf("You use the %s, but nothing happens.", name))
}

func applyCombine(gs *types.GameState, a, b string) {
	if a == "" || b == "" {
		say(gs, "Combine what with what?")
		return
	}

	p := &gs.Player
	need := map[string]int{a: 1}
	need[b]++
	for _, id := range []string{a, b} {
		if state.CountItem(p, id) < need[id] {
			say(gs, fmt.Sprintf("You don't have the %s.", gs.World.ItemName(id)))
			return
		}
	}

	combo, ok := gs.World.FindCombination(a, b)
	if !ok {
		say(gs, fmt.Sprintf("You can't combine the %s and the %s.",
			gs.World.ItemName(a), gs.World.ItemName(b)))
		return
	}

	state.RemoveOne(p, a)
	state.RemoveOne(p, b)
	p.Inventory = append(p.Inventory, combo.Result)
	gs.Turn++
	say(gs, fmt.Sprintf("You combine the %s and the %s into a %s.",
		gs.World.ItemName(a), gs.World.ItemName(b), gs.World.ItemName(combo.Result)))
}

func inventoryLine(gs *types.GameState) string {
	inv := gs.Player.Inventory
	if len(inv) == 0 {
		return "You are carrying nothing."
	}
	names := make([]string, 0, len(inv))
	for _, id := range inv {
		names = append(names, gs.World.ItemName(id))
	}
	return "You are carrying: " + strings.Join(names, ", ") + "."
}

// Describe returns the description of the player's current node followed
// by the items lying there and the labels of its paths.
func Describe(gs *types.GameState) []string {
	node := state.CurrentNode(gs)
	if node == nil {
		return []string{"You are somewhere unknown."}
	}

	var lines []string
	if node.Description != "" {
		lines = append(lines, node.Description)
	}

	if len(node.Items) > 0 {
		names := make([]string, 0, len(node.Items))
		for _, id := range node.Items {
			names = append(names, gs.World.ItemName(id))
		}
		lines = append(lines, "You see: "+strings.Join(names, ", ")+".")
	}

	if labels := PathLabels(node); len(labels) > 0 {
		lines = append(lines, "Paths: "+strings.Join(labels, ", ")+".")
	}

	return lines
}

// PathLabels returns the display labels of a node's edges in order.
func PathLabels(node *world.Node) []string {
	if node == nil {
		return nil
	}
	labels := make([]string, 0, len(node.Edges))
	for _, e := range node.Edges {
		labels = append(labels, edgeLabel(e))
	}
	return labels
}

func edgeLabel(e world.Edge) string {
	if e.Label != "" {
		return e.Label
	}
	return e.Target
}
