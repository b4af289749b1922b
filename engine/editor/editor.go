// Package editor applies authoring edits to a run's world. Every accepted
// edit snapshots the world first so it can be undone; rejected edits leave
// both the world and the history untouched.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/dotiam/engine/history"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownEdge   = errors.New("unknown edge")
	ErrDuplicateNode = errors.New("node already exists")
	ErrInvalidEdit   = errors.New("invalid edit")
)

// SetDescription replaces a node's description.
func SetDescription(gs *types.GameState, nodeID, text string) error {
	if _, err := node(gs, nodeID); err != nil {
		return err
	}
	history.Snapshot(gs)
	gs.World.Nodes[nodeID].Description = text
	return nil
}

// SetAttribute sets a node attribute.
func SetAttribute(gs *types.GameState, nodeID, key, value string) error {
	if _, err := node(gs, nodeID); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty attribute key", ErrInvalidEdit)
	}
	history.Snapshot(gs)
	n := gs.World.Nodes[nodeID]
	if n.Attributes == nil {
		n.Attributes = map[string]string{}
	}
	n.Attributes[key] = value
	return nil
}

// ClearAttribute removes a node attribute. Clearing an absent key is
// rejected so that it does not consume an undo slot.
func ClearAttribute(gs *types.GameState, nodeID, key string) error {
	n, err := node(gs, nodeID)
	if err != nil {
		return err
	}
	if _, ok := n.Attributes[key]; !ok {
		return fmt.Errorf("%w: node %q has no attribute %q", ErrInvalidEdit, nodeID, key)
	}
	history.Snapshot(gs)
	delete(gs.World.Nodes[nodeID].Attributes, key)
	return nil
}

// AddNode creates an empty node.
func AddNode(gs *types.GameState, id, description string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty node id", ErrInvalidEdit)
	}
	if gs.World.Node(id) != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	history.Snapshot(gs)
	if gs.World.Nodes == nil {
		gs.World.Nodes = map[string]*world.Node{}
	}
	gs.World.Nodes[id] = &world.Node{ID: id, Description: description}
	return nil
}

// AddEdge appends an edge to a node. The target must exist.
func AddEdge(gs *types.GameState, from string, edge world.Edge) error {
	if _, err := node(gs, from); err != nil {
		return err
	}
	if gs.World.Node(edge.Target) == nil {
		return fmt.Errorf("%w: edge target %q", ErrUnknownNode, edge.Target)
	}
	history.Snapshot(gs)
	n := gs.World.Nodes[from]
	n.Edges = append(n.Edges, edge)
	return nil
}

// RemoveEdge removes the first edge from a node to target.
func RemoveEdge(gs *types.GameState, from, target string) error {
	n, err := node(gs, from)
	if err != nil {
		return err
	}
	if _, ok := n.EdgeTo(target); !ok {
		return fmt.Errorf("%w: %s -> %s", ErrUnknownEdge, from, target)
	}
	history.Snapshot(gs)
	n = gs.World.Nodes[from]
	for i, e := range n.Edges {
		if e.Target == target {
			n.Edges = append(n.Edges[:i:i], n.Edges[i+1:]...)
			break
		}
	}
	return nil
}

// PlaceItem puts an item into a node.
func PlaceItem(gs *types.GameState, nodeID, itemID string) error {
	if _, err := node(gs, nodeID); err != nil {
		return err
	}
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: empty item id", ErrInvalidEdit)
	}
	history.Snapshot(gs)
	n := gs.World.Nodes[nodeID]
	n.Items = append(n.Items, itemID)
	return nil
}

// RemoveItem takes one occurrence of an item out of a node.
func RemoveItem(gs *types.GameState, nodeID, itemID string) error {
	n, err := node(gs, nodeID)
	if err != nil {
		return err
	}
	if !n.HasItem(itemID) {
		return fmt.Errorf("%w: %q is not in node %q", ErrInvalidEdit, itemID, nodeID)
	}
	history.Snapshot(gs)
	gs.World.Nodes[nodeID].RemoveItem(itemID)
	return nil
}

// DefineItem adds or replaces a catalog entry.
func DefineItem(gs *types.GameState, it world.Item) error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("%w: empty item id", ErrInvalidEdit)
	}
	history.Snapshot(gs)
	if gs.World.Items == nil {
		gs.World.Items = map[string]world.Item{}
	}
	gs.World.Items[it.ID] = it
	return nil
}

// AddCombination appends a crafting rule. It goes to the end of the list,
// so an earlier rule for the same pair keeps precedence.
func AddCombination(gs *types.GameState, c world.Combination) error {
	if c.Item1 == "" || c.Item2 == "" || c.Result == "" {
		return fmt.Errorf("%w: combination needs two items and a result", ErrInvalidEdit)
	}
	history.Snapshot(gs)
	gs.World.Combinations = append(gs.World.Combinations, c)
	return nil
}

func node(gs *types.GameState, id string) (*world.Node, error) {
	n := gs.World.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return n, nil
}
