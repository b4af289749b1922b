package save

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/nathoo/dotiam/engine/history"
	"github.com/nathoo/dotiam/engine/state"
	"github.com/nathoo/dotiam/engine/world"
)

func testWorld() *world.World {
	w := world.New()
	w.Title = "Test Realm"
	w.Nodes["start"] = &world.Node{
		ID:          "start",
		Description: "A clearing.",
		Attributes:  map[string]string{"light": "day"},
		Edges: []world.Edge{
			{Target: "cave", Label: "down", Conditions: []world.Condition{
				world.HasItem{Item: "torch"},
				world.HasAttribute{Key: "class", Value: "miner"},
				world.MinHP{HP: 20},
			}},
		},
		Items: []string{"stick", "stick"},
	}
	w.Nodes["cave"] = &world.Node{ID: "cave", Description: "Dark."}
	w.Items["stick"] = world.Item{ID: "stick", Name: "Stick", CanPickup: true}
	w.Combinations = []world.Combination{{Item1: "flint", Item2: "dry_wood", Result: "torch"}}
	return w
}

func TestRoundTrip(t *testing.T) {
	s := state.NewState("Tester", testWorld())

	// Modify state.
	s.Player.Inventory = []string{"flint", "flint"}
	s.Player.Node = "cave"
	s.Player.HP = 55
	s.Player.Attributes["class"] = "miner"
	s.Turn = 7
	s.Log = append(s.Log, "You go down.")
	history.Snapshot(s)
	s.World.Nodes["cave"].Description = "Darker."
	history.Snapshot(s)

	data, err := Save(s)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s2, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(s2.Player, s.Player) {
		t.Errorf("Player = %+v, want %+v", s2.Player, s.Player)
	}
	if s2.Turn != 7 {
		t.Errorf("Turn = %d", s2.Turn)
	}
	if !reflect.DeepEqual(s2.Log, s.Log) {
		t.Errorf("Log = %v", s2.Log)
	}
	if !reflect.DeepEqual(s2.World, s.World) {
		t.Errorf("World differs after round trip")
	}
	if len(s2.History) != 2 {
		t.Fatalf("History len = %d", len(s2.History))
	}
	if s2.History[0].Nodes["cave"].Description != "Dark." {
		t.Errorf("oldest snapshot = %q", s2.History[0].Nodes["cave"].Description)
	}
	if !reflect.DeepEqual(s2.History[1], s.History[1]) {
		t.Error("newest snapshot differs")
	}

	// Undo still works on the restored state.
	if !history.Undo(s2) || s2.World.Nodes["cave"].Description != "Darker." {
		t.Error("undo after load did not restore the newest snapshot")
	}
}

func TestSave_RecordsVersionAndTurn(t *testing.T) {
	s := state.NewState("Tester", testWorld())
	s.Turn = 3
	data, err := Save(s)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["version"] != Version {
		t.Errorf("version = %v", raw["version"])
	}
	if raw["turn"] != float64(3) {
		t.Errorf("turn = %v", raw["turn"])
	}
}

func TestLoad_NilDefaults(t *testing.T) {
	data := []byte(`{"version":"1","turn":0,"player":{"name":"A","node":"start","hp":1,"max_hp":1},"world":{"nodes":null}}`)
	s, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Player.Inventory == nil || s.Player.Attributes == nil {
		t.Error("player collections should be non-nil")
	}
	if s.Log == nil || s.History == nil {
		t.Error("log and history should be non-nil")
	}
	if s.World.Nodes == nil || s.World.Items == nil {
		t.Error("world maps should be non-nil")
	}
}

func TestLoad_Malformed(t *testing.T) {
	inputs := map[string]string{
		"not json":        `{`,
		"missing world":   `{"version":"1","turn":0}`,
		"negative turn":   `{"turn":-1,"world":{}}`,
		"null snapshot":   `{"world":{},"history":[null]}`,
		"bad condition":   `{"world":{"nodes":{"a":{"id":"a","edges":[{"target":"b","conditions":[{}]}]}}}}`,
		"wrong turn type": `{"turn":"three","world":{}}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(in))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoad_PreservesDuplicateInventory(t *testing.T) {
	s := state.NewState("Tester", testWorld())
	s.Player.Inventory = []string{"stick", "stick"}
	data, _ := Save(s)
	s2, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s2.Player.Inventory, []string{"stick", "stick"}) {
		t.Errorf("Inventory = %v", s2.Player.Inventory)
	}
}
