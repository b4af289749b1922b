package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/types"
)

func testWorld() *world.World {
	w := world.New()
	w.Nodes["start"] = &world.Node{
		ID: "start",
		Edges: []world.Edge{
			{Target: "forest", Label: "North"},
			{Target: "old_bridge", Label: "The Old Bridge"},
			{Target: "cellar", Label: "down", Conditions: []world.Condition{world.HasItem{Item: "torch"}}},
		},
		Items: []string{"stick", "stone"},
	}
	w.Nodes["forest"] = &world.Node{ID: "forest", Edges: []world.Edge{{Target: "start", Label: "south"}}}
	return w
}

func TestParse(t *testing.T) {
	w := testWorld()

	tests := []struct {
		name  string
		input string
		want  types.Action
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Action{Kind: types.ActInvalid},
		},
		{
			name:  "whitespace only",
			input: "  \t ",
			want:  types.Action{Kind: types.ActInvalid},
		},

		// Argument-less verbs
		{
			name:  "h → help",
			input: "h",
			want:  types.Action{Kind: types.ActHelp},
		},
		{
			name:  "l → look",
			input: "l",
			want:  types.Action{Kind: types.ActLook},
		},
		{
			name:  "LOOK with trailing noise",
			input: "  LOOK around ",
			want:  types.Action{Kind: types.ActLook},
		},
		{
			name:  "inv → inventory",
			input: "inv",
			want:  types.Action{Kind: types.ActInventory},
		},
		{
			name:  "i → inventory",
			input: "i",
			want:  types.Action{Kind: types.ActInventory},
		},

		// Movement
		{
			name:  "go by label, case-insensitive",
			input: "go north",
			want:  types.Action{Kind: types.ActMove, Object: "forest"},
		},
		{
			name:  "g by multi-word label",
			input: "g the   old bridge",
			want:  types.Action{Kind: types.ActMove, Object: "old_bridge"},
		},
		{
			name:  "go by target id",
			input: "go Forest",
			want:  types.Action{Kind: types.ActMove, Object: "forest"},
		},
		{
			name:  "go to unknown falls through to raw argument",
			input: "go swamp",
			want:  types.Action{Kind: types.ActMove, Object: "swamp"},
		},
		{
			name:  "go with no argument",
			input: "go",
			want:  types.Action{Kind: types.ActMove, Object: ""},
		},
		{
			name:  "conditioned edges still resolve",
			input: "go down",
			want:  types.Action{Kind: types.ActMove, Object: "cellar"},
		},
		{
			name:  "bare edge label",
			input: "north",
			want:  types.Action{Kind: types.ActMove, Object: "forest"},
		},
		{
			name:  "bare multi-word edge label",
			input: "The Old Bridge",
			want:  types.Action{Kind: types.ActMove, Object: "old_bridge"},
		},
		{
			name:  "bare target id",
			input: "cellar",
			want:  types.Action{Kind: types.ActMove, Object: "cellar"},
		},

		// Explore
		{
			name:  "x without argument",
			input: "x",
			want:  types.Action{Kind: types.ActExplore},
		},
		{
			name:  "explore item",
			input: "explore stick",
			want:  types.Action{Kind: types.ActExplore, Object: "stick"},
		},
		{
			name:  "look at → explore",
			input: "look at stone",
			want:  types.Action{Kind: types.ActExplore, Object: "stone"},
		},

		// Pickup / Drop / Use
		{
			name:  "p → pickup",
			input: "p stick",
			want:  types.Action{Kind: types.ActPickup, Object: "stick"},
		},
		{
			name:  "get → pickup",
			input: "get stick",
			want:  types.Action{Kind: types.ActPickup, Object: "stick"},
		},
		{
			name:  "take multi-word item",
			input: "take dry wood",
			want:  types.Action{Kind: types.ActPickup, Object: "dry wood"},
		},
		{
			name:  "pick up → pickup",
			input: "pick up stick",
			want:  types.Action{Kind: types.ActPickup, Object: "stick"},
		},
		{
			name:  "d → drop",
			input: "d stick",
			want:  types.Action{Kind: types.ActDrop, Object: "stick"},
		},
		{
			name:  "put down → drop",
			input: "put down stick",
			want:  types.Action{Kind: types.ActDrop, Object: "stick"},
		},
		{
			name:  "u → use",
			input: "u torch",
			want:  types.Action{Kind: types.ActUse, Object: "torch"},
		},

		// Combine
		{
			name:  "combine two operands",
			input: "combine flint dry_wood",
			want:  types.Action{Kind: types.ActCombine, Object: "flint", Target: "dry_wood"},
		},
		{
			name:  "c takes only the first two tokens",
			input: "c flint dry_wood extra",
			want:  types.Action{Kind: types.ActCombine, Object: "flint", Target: "dry_wood"},
		},
		{
			name:  "combine with one operand",
			input: "combine flint",
			want:  types.Action{Kind: types.ActCombine, Object: "flint"},
		},

		// Unknown
		{
			name:  "unknown verb",
			input: "Dance wildly",
			want:  types.Action{Kind: types.ActInvalid, Text: "dance wildly"},
		},
		{
			name:  "edge label from another node is not matched",
			input: "south",
			want:  types.Action{Kind: types.ActInvalid, Text: "south"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input, w, "start")
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_DanglingCurrentNode(t *testing.T) {
	w := testWorld()

	got := Parse("go north", w, "nowhere")
	want := types.Action{Kind: types.ActMove, Object: "north"}
	if got != want {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}

	got = Parse("north", w, "nowhere")
	if got.Kind != types.ActInvalid {
		t.Errorf("expected invalid, got %+v", got)
	}
}

func TestParse_LabelWithExtraSpaces(t *testing.T) {
	w := testWorld()
	w.Nodes["start"].Edges = append(w.Nodes["start"].Edges,
		world.Edge{Target: "attic", Label: "up  the   ladder"})

	for _, input := range []string{"go up the ladder", "up  the ladder", "  Up The Ladder "} {
		got := Parse(input, w, "start")
		want := types.Action{Kind: types.ActMove, Object: "attic"}
		if got != want {
			t.Errorf("Parse(%q) = %+v, want %+v", input, got, want)
		}
	}
}

func TestParse_NilWorld(t *testing.T) {
	got := Parse("go north", nil, "start")
	want := types.Action{Kind: types.ActMove, Object: "north"}
	if got != want {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParse_IsTotal(t *testing.T) {
	w := testWorld()
	inputs := []string{
		"", " ", "\x00", "go", "c", "combine", "💥", "pick", "pick up", "look at",
		"go \t\n north", "put", "x x x x x", "?", "ÄÖÜ take", string([]byte{0xff, 0xfe}),
	}
	for _, in := range inputs {
		got := Parse(in, w, "start")
		if got.Kind == "" {
			t.Errorf("Parse(%q) returned an action without a kind", in)
		}
	}
}

func TestSuggest(t *testing.T) {
	w := testWorld()

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"verb prefix", "in", []string{"inventory"}},
		{"g covers go and edges", "go ", []string{"go north", "go the old bridge", "go down"}},
		{"edge prefix", "go th", []string{"go the old bridge"}},
		{"pickup items", "pickup s", []string{"pickup stick", "pickup stone"}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.prefix, w, "start")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}
