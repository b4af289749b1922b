// Package world defines the world graph: nodes connected by conditional
// edges, the item catalog, and crafting combinations.
package world

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Node is a location in the world graph.
type Node struct {
	ID          string            `json:"id" yaml:"id"`
	Description string            `json:"description" yaml:"description"`
	Attributes  map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Edges       []Edge            `json:"edges,omitempty" yaml:"edges,omitempty"`
	Items       []string          `json:"items,omitempty" yaml:"items,omitempty"`
}

// Edge is a directed connection from one node to another. It can only be
// traversed when every condition holds for the player.
type Edge struct {
	Target     string
	Label      string
	Conditions []Condition
}

// Item is a static catalog entry.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	CanPickup   bool   `json:"can_pickup" yaml:"can_pickup"`
}

// Combination is an unordered crafting rule: Item1 + Item2 -> Result.
type Combination struct {
	Item1  string `json:"item1" yaml:"item1"`
	Item2  string `json:"item2" yaml:"item2"`
	Result string `json:"result" yaml:"result"`
}

// Matches reports whether the combination applies to the pair a, b in
// either order.
func (c Combination) Matches(a, b string) bool {
	return (c.Item1 == a && c.Item2 == b) || (c.Item1 == b && c.Item2 == a)
}

// World owns the node graph, the item catalog, and the combination list.
type World struct {
	Title        string           `json:"title,omitempty" yaml:"title,omitempty"`
	Start        string           `json:"start,omitempty" yaml:"start,omitempty"`
	Nodes        map[string]*Node `json:"nodes" yaml:"nodes"`
	Items        map[string]Item  `json:"items,omitempty" yaml:"items,omitempty"`
	Combinations []Combination    `json:"combinations,omitempty" yaml:"combinations,omitempty"`
}

// New returns an empty world with initialized maps.
func New() *World {
	return &World{
		Nodes: map[string]*Node{},
		Items: map[string]Item{},
	}
}

// Node returns the node with the given id, or nil if it does not exist.
func (w *World) Node(id string) *Node {
	if w == nil || w.Nodes == nil {
		return nil
	}
	return w.Nodes[id]
}

// Item returns the catalog entry for an item id.
func (w *World) Item(id string) (Item, bool) {
	if w == nil || w.Items == nil {
		return Item{}, false
	}
	it, ok := w.Items[id]
	return it, ok
}

// ItemName returns the display name of an item. Ids missing from the
// catalog (or catalog entries without a name) fall back to the raw id.
func (w *World) ItemName(id string) string {
	if it, ok := w.Item(id); ok && it.Name != "" {
		return it.Name
	}
	return id
}

// CanPickup reports whether an item may be picked up. Items unknown to the
// catalog can be.
func (w *World) CanPickup(id string) bool {
	if it, ok := w.Item(id); ok {
		return it.CanPickup
	}
	return true
}

// FindCombination returns the first combination in list order that matches
// the unordered pair a, b.
func (w *World) FindCombination(a, b string) (Combination, bool) {
	if w == nil {
		return Combination{}, false
	}
	for _, c := range w.Combinations {
		if c.Matches(a, b) {
			return c, true
		}
	}
	return Combination{}, false
}

// StartNode returns the node a new player begins in: the declared start,
// or "start" when undeclared.
func (w *World) StartNode() string {
	if w.Start != "" {
		return w.Start
	}
	return "start"
}

// Clone returns a deep copy of the world. Snapshots held in history never
// share memory with the live world.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}
	c := &World{
		Title:        w.Title,
		Start:        w.Start,
		Nodes:        make(map[string]*Node, len(w.Nodes)),
		Items:        make(map[string]Item, len(w.Items)),
		Combinations: append([]Combination(nil), w.Combinations...),
	}
	for id, n := range w.Nodes {
		c.Nodes[id] = n.Clone()
	}
	for id, it := range w.Items {
		c.Items[id] = it
	}
	return c
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:          n.ID,
		Description: n.Description,
		Items:       append([]string(nil), n.Items...),
	}
	if n.Attributes != nil {
		c.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	if n.Edges != nil {
		c.Edges = make([]Edge, len(n.Edges))
		for i, e := range n.Edges {
			c.Edges[i] = Edge{
				Target:     e.Target,
				Label:      e.Label,
				Conditions: append([]Condition(nil), e.Conditions...),
			}
		}
	}
	return c
}

// EdgeTo returns the first edge of the node leading to target.
func (n *Node) EdgeTo(target string) (Edge, bool) {
	if n == nil {
		return Edge{}, false
	}
	for _, e := range n.Edges {
		if e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// HasItem reports whether the item id is lying in the node.
func (n *Node) HasItem(id string) bool {
	if n == nil {
		return false
	}
	for _, it := range n.Items {
		if it == id {
			return true
		}
	}
	return false
}

// RemoveItem removes one occurrence of id from the node's item list.
func (n *Node) RemoveItem(id string) bool {
	if n == nil {
		return false
	}
	for i, it := range n.Items {
		if it == id {
			n.Items = append(n.Items[:i:i], n.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes an item; an omitted can_pickup means true.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	p := plain{CanPickup: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}

// UnmarshalYAML decodes an item; an omitted can_pickup means true.
func (it *Item) UnmarshalYAML(value *yaml.Node) error {
	type plain Item
	p := plain{CanPickup: true}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*it = Item(p)
	return nil
}
