package editor

import (
	"errors"
	"testing"

	"github.com/nathoo/dotiam/engine/history"
	"github.com/nathoo/dotiam/engine/state"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

func testState() *types.GameState {
	w := world.New()
	w.Nodes["start"] = &world.Node{
		ID:          "start",
		Description: "A clearing.",
		Attributes:  map[string]string{"light": "day"},
		Edges:       []world.Edge{{Target: "forest", Label: "north"}},
		Items:       []string{"stick"},
	}
	w.Nodes["forest"] = &world.Node{ID: "forest", Description: "Trees."}
	return state.NewState("Tester", w)
}

func TestEdits_SnapshotAndUndo(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(gs *types.GameState) error
		check func(gs *types.GameState) bool
	}{
		{
			name:  "set description",
			edit:  func(gs *types.GameState) error { return SetDescription(gs, "start", "A burnt clearing.") },
			check: func(gs *types.GameState) bool { return gs.World.Nodes["start"].Description == "A burnt clearing." },
		},
		{
			name:  "set attribute",
			edit:  func(gs *types.GameState) error { return SetAttribute(gs, "forest", "light", "dark") },
			check: func(gs *types.GameState) bool { return gs.World.Nodes["forest"].Attributes["light"] == "dark" },
		},
		{
			name: "clear attribute",
			edit: func(gs *types.GameState) error { return ClearAttribute(gs, "start", "light") },
			check: func(gs *types.GameState) bool {
				_, ok := gs.World.Nodes["start"].Attributes["light"]
				return !ok
			},
		},
		{
			name:  "add node",
			edit:  func(gs *types.GameState) error { return AddNode(gs, "cave", "Dark.") },
			check: func(gs *types.GameState) bool { return gs.World.Node("cave") != nil },
		},
		{
			name: "add edge",
			edit: func(gs *types.GameState) error {
				return AddEdge(gs, "forest", world.Edge{Target: "start", Label: "south"})
			},
			check: func(gs *types.GameState) bool {
				_, ok := gs.World.Nodes["forest"].EdgeTo("start")
				return ok
			},
		},
		{
			name: "remove edge",
			edit: func(gs *types.GameState) error { return RemoveEdge(gs, "start", "forest") },
			check: func(gs *types.GameState) bool {
				return len(gs.World.Nodes["start"].Edges) == 0
			},
		},
		{
			name:  "place item",
			edit:  func(gs *types.GameState) error { return PlaceItem(gs, "forest", "flint") },
			check: func(gs *types.GameState) bool { return gs.World.Nodes["forest"].HasItem("flint") },
		},
		{
			name:  "remove item",
			edit:  func(gs *types.GameState) error { return RemoveItem(gs, "start", "stick") },
			check: func(gs *types.GameState) bool { return !gs.World.Nodes["start"].HasItem("stick") },
		},
		{
			name: "define item",
			edit: func(gs *types.GameState) error {
				return DefineItem(gs, world.Item{ID: "flint", Name: "Flint", CanPickup: true})
			},
			check: func(gs *types.GameState) bool { return gs.World.ItemName("flint") == "Flint" },
		},
		{
			name: "add combination",
			edit: func(gs *types.GameState) error {
				return AddCombination(gs, world.Combination{Item1: "a", Item2: "b", Result: "c"})
			},
			check: func(gs *types.GameState) bool {
				_, ok := gs.World.FindCombination("b", "a")
				return ok
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := testState()
			if err := tt.edit(gs); err != nil {
				t.Fatalf("edit: %v", err)
			}
			if !tt.check(gs) {
				t.Fatal("edit not applied")
			}
			if history.Depth(gs) != 1 {
				t.Fatalf("Depth = %d, want 1", history.Depth(gs))
			}
			if !history.Undo(gs) {
				t.Fatal("undo failed")
			}
			if tt.check(gs) {
				t.Error("undo did not revert the edit")
			}
		})
	}
}

func TestEdits_Rejected(t *testing.T) {
	tests := []struct {
		name string
		edit func(gs *types.GameState) error
		want error
	}{
		{"description of unknown node", func(gs *types.GameState) error { return SetDescription(gs, "moon", "x") }, ErrUnknownNode},
		{"attribute with empty key", func(gs *types.GameState) error { return SetAttribute(gs, "start", " ", "x") }, ErrInvalidEdit},
		{"clear missing attribute", func(gs *types.GameState) error { return ClearAttribute(gs, "forest", "light") }, ErrInvalidEdit},
		{"duplicate node", func(gs *types.GameState) error { return AddNode(gs, "forest", "") }, ErrDuplicateNode},
		{"empty node id", func(gs *types.GameState) error { return AddNode(gs, "", "") }, ErrInvalidEdit},
		{"edge to unknown node", func(gs *types.GameState) error {
			return AddEdge(gs, "start", world.Edge{Target: "moon"})
		}, ErrUnknownNode},
		{"edge from unknown node", func(gs *types.GameState) error {
			return AddEdge(gs, "moon", world.Edge{Target: "start"})
		}, ErrUnknownNode},
		{"remove missing edge", func(gs *types.GameState) error { return RemoveEdge(gs, "forest", "start") }, ErrUnknownEdge},
		{"remove missing item", func(gs *types.GameState) error { return RemoveItem(gs, "forest", "stick") }, ErrInvalidEdit},
		{"place empty item", func(gs *types.GameState) error { return PlaceItem(gs, "forest", "") }, ErrInvalidEdit},
		{"define item without id", func(gs *types.GameState) error { return DefineItem(gs, world.Item{Name: "x"}) }, ErrInvalidEdit},
		{"incomplete combination", func(gs *types.GameState) error {
			return AddCombination(gs, world.Combination{Item1: "a", Result: "c"})
		}, ErrInvalidEdit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := testState()
			err := tt.edit(gs)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if history.Depth(gs) != 0 {
				t.Errorf("rejected edit took a snapshot")
			}
		})
	}
}

func TestEdits_DoNotAdvanceTurn(t *testing.T) {
	gs := testState()
	_ = SetDescription(gs, "start", "x")
	_ = AddNode(gs, "cave", "y")
	if gs.Turn != 0 {
		t.Errorf("Turn = %d", gs.Turn)
	}
}
