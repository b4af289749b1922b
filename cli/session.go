package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/dotiam/engine"
	"github.com/nathoo/dotiam/engine/editor"
	"github.com/nathoo/dotiam/engine/history"
	"github.com/nathoo/dotiam/engine/parser"
	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/internal/runs"
	"github.com/nathoo/dotiam/types"
)

// Session is the interactive state shared by the line interface and the
// TUI: the run being played and the meta-command dispatcher.
type Session struct {
	Runs   *runs.Service
	World  *world.World // template for /new
	Player string
	RunID  string
	State  *types.GameState
	Trace  bool

	lastCmd string
}

// Reply is the outcome of one line of input.
type Reply struct {
	Lines  []string
	System bool // meta-command output
	Quit   bool
}

// NewSession resumes runID, or starts a new run in w when runID is empty.
func NewSession(ctx context.Context, svc *runs.Service, w *world.World, player, runID string) (*Session, []string, error) {
	s := &Session{Runs: svc, World: w, Player: player}
	if runID != "" {
		gs, err := svc.Load(ctx, runID)
		if err != nil {
			return nil, nil, err
		}
		s.RunID, s.State = runID, gs
		intro := append([]string{fmt.Sprintf("Resuming run %s (turn %d).", runID, gs.Turn)}, engine.Describe(gs)...)
		return s, intro, nil
	}

	intro, err := s.newRun(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, intro, nil
}

func (s *Session) newRun(ctx context.Context) ([]string, error) {
	id, gs, err := s.Runs.Create(ctx, s.Player, s.World)
	if err != nil {
		return nil, err
	}
	s.RunID, s.State, s.lastCmd = id, gs, ""
	return append(append([]string(nil), gs.Log...), engine.Describe(gs)...), nil
}

// Exec runs one line of input: a game command, "again", or a /meta command.
func (s *Session) Exec(ctx context.Context, input string) Reply {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "/") {
		return s.meta(ctx, input)
	}

	lower := strings.ToLower(input)
	if lower == "again" {
		if s.lastCmd == "" {
			return Reply{Lines: []string{"Nothing to repeat."}, System: true}
		}
		input = s.lastCmd
	} else {
		s.lastCmd = input
	}

	res, gs, err := s.Runs.Command(ctx, s.RunID, input)
	if err != nil {
		return Reply{Lines: []string{fmt.Sprintf("Command failed: %v", err)}, System: true}
	}
	s.State = gs

	lines := res.Output
	if s.Trace {
		lines = append(lines, traceLine(res))
	}
	return Reply{Lines: lines}
}

func traceLine(res types.Result) string {
	return fmt.Sprintf("[trace] action=%s object=%q target=%q turned=%t",
		res.Action.Kind, res.Action.Object, res.Action.Target, res.Turned)
}

// meta dispatches /commands.
func (s *Session) meta(ctx context.Context, input string) Reply {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	var lines []string
	switch cmd {
	case "/quit", "/exit":
		return Reply{Lines: []string{"Goodbye."}, System: true, Quit: true}
	case "/help":
		lines = helpLines()
	case "/state":
		lines = s.cmdState()
	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			lines = []string{"Trace output enabled."}
		} else {
			lines = []string{"Trace output disabled."}
		}
	case "/runs":
		lines = s.cmdRuns(ctx)
	case "/load":
		lines = s.cmdLoad(ctx, rest)
	case "/new":
		out, err := s.newRun(ctx)
		if err != nil {
			lines = []string{fmt.Sprintf("New run failed: %v", err)}
		} else {
			lines = append([]string{fmt.Sprintf("Started run %s.", s.RunID)}, out...)
		}
	case "/undo":
		lines = s.cmdUndo(ctx)
	case "/describe":
		lines = s.cmdDescribe(ctx, rest)
	case "/attr":
		lines = s.cmdAttr(ctx, rest)
	case "/link":
		lines = s.cmdLink(ctx, rest)
	case "/unlink":
		lines = s.cmdUnlink(ctx, rest)
	case "/node":
		lines = s.cmdNode(ctx, rest)
	case "/place":
		lines = s.cmdPlace(ctx, rest)
	case "/remove":
		lines = s.cmdRemove(ctx, rest)
	case "/item":
		lines = s.cmdItem(ctx, rest)
	case "/recipe":
		lines = s.cmdRecipe(ctx, rest)
	case "/export":
		lines = s.cmdExport(ctx, rest)
	case "/suggest":
		lines = s.cmdSuggest(rest)
	default:
		lines = []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}
	}
	return Reply{Lines: lines, System: true}
}

func helpLines() []string {
	return []string{
		"System:",
		"  /help                  Show this help",
		"  /quit                  Exit",
		"  /state                 Dump the current state",
		"  /trace                 Toggle parsed-action trace",
		"  /runs                  List stored runs",
		"  /load <run>            Switch to a stored run",
		"  /new                   Start a new run",
		"",
		"Authoring:",
		"  /describe <text>       Rewrite the current node's description",
		"  /attr <key> [value]    Set (or clear) a current node attribute",
		"  /link <target> [label] Add a path from the current node",
		"  /unlink <target>       Remove the first path to target",
		"  /node <id> <text>      Add a node",
		"  /place <item>          Put an item in the current node",
		"  /remove <item>         Take an item out of the current node",
		"  /item <id> [name]      Add an item to the catalog",
		"  /recipe <a> <b> <out>  Add a combination",
		"  /undo                  Undo the last authoring edit",
		"  /export [file]         Export the world as YAML",
		"  /suggest <prefix>      Suggest commands",
		"",
		"Type 'help' for game commands; 'again' repeats the last one.",
	}
}

func (s *Session) cmdState() []string {
	p := s.State.Player
	lines := []string{
		fmt.Sprintf("Run: %s", s.RunID),
		fmt.Sprintf("Turn: %d", s.State.Turn),
		fmt.Sprintf("Location: %s", p.Node),
		fmt.Sprintf("HP: %d/%d", p.HP, p.MaxHP),
		fmt.Sprintf("Inventory: %v", p.Inventory),
		fmt.Sprintf("Undo depth: %d", history.Depth(s.State)),
	}
	if len(p.Attributes) > 0 {
		keys := make([]string, 0, len(p.Attributes))
		for k := range p.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+p.Attributes[k])
		}
		lines = append(lines, "Attributes: "+strings.Join(pairs, ", "))
	}
	return lines
}

func (s *Session) cmdRuns(ctx context.Context) []string {
	infos, err := s.Runs.List(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Listing runs failed: %v", err)}
	}
	if len(infos) == 0 {
		return []string{"No stored runs."}
	}
	lines := make([]string, 0, len(infos))
	for _, r := range infos {
		mark := " "
		if r.ID == s.RunID {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s  turn %d", mark, r.ID, r.PlayerName, r.Turn))
	}
	return lines
}

func (s *Session) cmdLoad(ctx context.Context, id string) []string {
	if id == "" {
		return []string{"Usage: /load <run>"}
	}
	gs, err := s.Runs.Load(ctx, id)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	s.RunID, s.State, s.lastCmd = id, gs, ""
	return append([]string{fmt.Sprintf("Run %s loaded (turn %d).", id, gs.Turn)}, engine.Describe(gs)...)
}

func (s *Session) cmdUndo(ctx context.Context) []string {
	undone, err := s.Runs.Undo(ctx, s.RunID)
	if err != nil {
		return []string{fmt.Sprintf("Undo failed: %v", err)}
	}
	if !undone {
		return []string{"Nothing to undo."}
	}
	if gs, err := s.Runs.Load(ctx, s.RunID); err == nil {
		s.State = gs
	}
	return []string{"Last edit undone."}
}

// edit applies fn to the current node through the run service.
func (s *Session) edit(ctx context.Context, done string, fn func(gs *types.GameState, node string) error) []string {
	gs, err := s.Runs.Edit(ctx, s.RunID, func(gs *types.GameState) error {
		return fn(gs, gs.Player.Node)
	})
	if err != nil {
		return []string{fmt.Sprintf("Edit failed: %v", err)}
	}
	s.State = gs
	return []string{done}
}

func (s *Session) cmdDescribe(ctx context.Context, text string) []string {
	if text == "" {
		return []string{"Usage: /describe <text>"}
	}
	return s.edit(ctx, "Description updated.", func(gs *types.GameState, node string) error {
		return editor.SetDescription(gs, node, text)
	})
}

func (s *Session) cmdAttr(ctx context.Context, args string) []string {
	key, value, _ := strings.Cut(args, " ")
	value = strings.TrimSpace(value)
	if key == "" {
		return []string{"Usage: /attr <key> [value]"}
	}
	if value == "" {
		return s.edit(ctx, fmt.Sprintf("Attribute %s cleared.", key), func(gs *types.GameState, node string) error {
			return editor.ClearAttribute(gs, node, key)
		})
	}
	return s.edit(ctx, fmt.Sprintf("Attribute %s set to %s.", key, value), func(gs *types.GameState, node string) error {
		return editor.SetAttribute(gs, node, key, value)
	})
}

func (s *Session) cmdLink(ctx context.Context, args string) []string {
	target, label, _ := strings.Cut(args, " ")
	label = strings.TrimSpace(label)
	if target == "" {
		return []string{"Usage: /link <target> [label]"}
	}
	return s.edit(ctx, fmt.Sprintf("Path to %s added.", target), func(gs *types.GameState, node string) error {
		return editor.AddEdge(gs, node, world.Edge{Target: target, Label: label})
	})
}

func (s *Session) cmdExport(ctx context.Context, path string) []string {
	doc, err := s.Runs.Export(ctx, s.RunID)
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	if path == "" {
		return strings.Split(strings.TrimRight(string(doc), "\n"), "\n")
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	return []string{fmt.Sprintf("World exported to %s.", path)}
}

func (s *Session) cmdSuggest(prefix string) []string {
	if prefix == "" {
		return []string{"Usage: /suggest <prefix>"}
	}
	suggestions := parser.Suggest(prefix, s.State.World, s.State.Player.Node)
	if len(suggestions) == 0 {
		return []string{"No suggestions."}
	}
	return []string{"Suggestions: " + strings.Join(suggestions, ", ")}
}

func (s *Session) cmdUnlink(ctx context.Context, target string) []string {
	if target == "" {
		return []string{"Usage: /unlink <target>"}
	}
	return s.edit(ctx, fmt.Sprintf("Path to %s removed.", target), func(gs *types.GameState, node string) error {
		return editor.RemoveEdge(gs, node, target)
	})
}

func (s *Session) cmdNode(ctx context.Context, args string) []string {
	id, text, _ := strings.Cut(args, " ")
	if id == "" {
		return []string{"Usage: /node <id> <text>"}
	}
	return s.edit(ctx, fmt.Sprintf("Node %s added.", id), func(gs *types.GameState, _ string) error {
		return editor.AddNode(gs, id, strings.TrimSpace(text))
	})
}

func (s *Session) cmdPlace(ctx context.Context, item string) []string {
	if item == "" {
		return []string{"Usage: /place <item>"}
	}
	return s.edit(ctx, fmt.Sprintf("Placed %s.", item), func(gs *types.GameState, node string) error {
		return editor.PlaceItem(gs, node, item)
	})
}

func (s *Session) cmdRemove(ctx context.Context, item string) []string {
	if item == "" {
		return []string{"Usage: /remove <item>"}
	}
	return s.edit(ctx, fmt.Sprintf("Removed %s.", item), func(gs *types.GameState, node string) error {
		return editor.RemoveItem(gs, node, item)
	})
}

func (s *Session) cmdItem(ctx context.Context, args string) []string {
	id, name, _ := strings.Cut(args, " ")
	name = strings.TrimSpace(name)
	if id == "" {
		return []string{"Usage: /item <id> [name]"}
	}
	if name == "" {
		name = id
	}
	return s.edit(ctx, fmt.Sprintf("Item %s defined.", id), func(gs *types.GameState, _ string) error {
		return editor.DefineItem(gs, world.Item{ID: id, Name: name, CanPickup: true})
	})
}

func (s *Session) cmdRecipe(ctx context.Context, args string) []string {
	f := strings.Fields(args)
	if len(f) != 3 {
		return []string{"Usage: /recipe <a> <b> <out>"}
	}
	c := world.Combination{Item1: f[0], Item2: f[1], Result: f[2]}
	return s.edit(ctx, fmt.Sprintf("%s + %s now makes %s.", c.Item1, c.Item2, c.Result), func(gs *types.GameState, _ string) error {
		return editor.AddCombination(gs, c)
	})
}
