package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/dotiam/engine/world"
	"github.com/nathoo/dotiam/internal/runs"
	"github.com/nathoo/dotiam/internal/storage"
)

// testWorld returns a minimal world for CLI testing.
func testWorld() *world.World {
	w := world.New()
	w.Title = "Test Game"
	w.Start = "hall"
	w.Nodes["hall"] = &world.Node{
		ID:          "hall",
		Description: "A grand hall.",
		Edges:       []world.Edge{{Target: "garden", Label: "north"}},
		Items:       []string{"key"},
	}
	w.Nodes["garden"] = &world.Node{
		ID:          "garden",
		Description: "A peaceful garden.",
		Edges:       []world.Edge{{Target: "hall", Label: "south"}},
	}
	w.Items["key"] = world.Item{ID: "key", Name: "rusty key", Description: "An old key.", CanPickup: true}
	return w
}

func testService() *runs.Service {
	return runs.NewService(storage.NewMemoryStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestCLI(t *testing.T, svc *runs.Service, runID, input string) (*CLI, []string, *bytes.Buffer) {
	t.Helper()
	s, intro, err := NewSession(context.Background(), svc, testWorld(), "Tester", runID)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	var out bytes.Buffer
	c := &CLI{
		Session: s,
		In:      strings.NewReader(input),
		Out:     &out,
	}
	return c, intro, &out
}

func run(t *testing.T, input string) string {
	t.Helper()
	c, intro, out := newTestCLI(t, testService(), "", input)
	c.Run(context.Background(), intro)
	return out.String()
}

func TestCLI_IntroAndStartingNode(t *testing.T) {
	output := run(t, "/quit\n")

	if !strings.Contains(output, "Welcome to Test Game, Tester!") {
		t.Error("expected welcome line in output")
	}
	if !strings.Contains(output, "A grand hall.") {
		t.Error("expected starting node description in output")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye on /quit")
	}
}

func TestCLI_BasicGameplay(t *testing.T) {
	output := run(t, "take key\ninventory\n/quit\n")

	if !strings.Contains(output, "You pick up the rusty key.") {
		t.Errorf("expected pickup line, got:\n%s", output)
	}
	if !strings.Contains(output, "You are carrying: rusty key.") {
		t.Error("expected inventory line")
	}
}

func TestCLI_Navigation(t *testing.T) {
	output := run(t, "go north\n/quit\n")

	if !strings.Contains(output, "A peaceful garden.") {
		t.Error("expected garden description after going north")
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	output := run(t, "/help\n/quit\n")

	for _, want := range []string{"/load", "/undo", "/export", "/quit"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in help output", want)
		}
	}
}

func TestCLI_ResumeRun(t *testing.T) {
	svc := testService()

	c, intro, _ := newTestCLI(t, svc, "", "go north\n/quit\n")
	c.Run(context.Background(), intro)
	id := c.Session.RunID

	c2, intro2, out2 := newTestCLI(t, svc, id, "/state\n/quit\n")
	c2.Run(context.Background(), intro2)

	output := out2.String()
	if !strings.Contains(output, "Resuming run "+id+" (turn 1).") {
		t.Errorf("expected resume line, got:\n%s", output)
	}
	if !strings.Contains(output, "Location: garden") {
		t.Error("expected resumed location in state output")
	}
}

func TestCLI_RunsNewAndLoad(t *testing.T) {
	svc := testService()
	c, intro, out := newTestCLI(t, svc, "", "go north\n/new\n/runs\n/quit\n")
	first := c.Session.RunID
	c.Run(context.Background(), intro)
	second := c.Session.RunID

	if first == second {
		t.Fatal("expected /new to start a different run")
	}
	output := out.String()
	if !strings.Contains(output, "Started run "+second+".") {
		t.Error("expected new run confirmation")
	}
	if !strings.Contains(output, "* "+second) {
		t.Error("expected current run to be marked in /runs")
	}
	if !strings.Contains(output, first+"  Tester  turn 1") {
		t.Errorf("expected first run listed with its turn, got:\n%s", output)
	}

	c.In = strings.NewReader("/load " + first + "\n/quit\n")
	out.Reset()
	c.Run(context.Background(), nil)
	if !strings.Contains(out.String(), "A peaceful garden.") {
		t.Error("expected garden after loading first run")
	}
	if c.Session.RunID != first {
		t.Errorf("RunID = %q, want %q", c.Session.RunID, first)
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	output := run(t, "/load nonexistent\n/load\n/quit\n")

	if !strings.Contains(output, "Load failed") {
		t.Error("expected load failure message")
	}
	if !strings.Contains(output, "Usage: /load <run>") {
		t.Error("expected usage without an id")
	}
}

func TestCLI_EditAndUndo(t *testing.T) {
	output := run(t, "/describe A ruined hall.\nlook\n/undo\nlook\n/undo\n/quit\n")

	if !strings.Contains(output, "[Description updated.]") {
		t.Error("expected edit confirmation")
	}
	if !strings.Contains(output, "A ruined hall.") {
		t.Error("expected edited description on look")
	}
	if !strings.Contains(output, "[Last edit undone.]") {
		t.Error("expected undo confirmation")
	}
	if strings.Count(output, "A grand hall.") < 2 {
		t.Error("expected original description after undo")
	}
	if !strings.Contains(output, "[Nothing to undo.]") {
		t.Error("expected empty history message")
	}
}

func TestCLI_AttrAndLink(t *testing.T) {
	output := run(t, "/attr mood gloomy\n/attr mood\n/attr mood\n/link garden back door\nlook\n/link attic\n/quit\n")

	for _, want := range []string{
		"[Attribute mood set to gloomy.]",
		"[Attribute mood cleared.]",
		"[Path to garden added.]",
		"Paths: north, back door.",
		"[Edit failed: ",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestCLI_WorldBuilding(t *testing.T) {
	output := run(t, "/item lamp brass lamp\n/place lamp\n/remove key\nlook\n"+
		"/node cellar A damp cellar.\n/link cellar down\n/unlink garden\nlook\n"+
		"/recipe lamp key lantern\n/recipe lamp\n/remove ghost\n/quit\n")

	for _, want := range []string{
		"[Item lamp defined.]",
		"[Placed lamp.]",
		"[Removed key.]",
		"You see: brass lamp.",
		"[Node cellar added.]",
		"[Path to cellar added.]",
		"[Path to garden removed.]",
		"Paths: down.",
		"[lamp + key now makes lantern.]",
		"[Usage: /recipe <a> <b> <out>]",
		"[Edit failed: ",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestCLI_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	output := run(t, "/describe Edited hall.\n/export "+path+"\n/export\n/quit\n")

	if !strings.Contains(output, "[World exported to "+path+".]") {
		t.Error("expected export confirmation")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "Edited hall.") {
		t.Error("expected edited description in exported document")
	}
	if !strings.Contains(output, "[start: hall]") {
		t.Error("expected inline export to print the document")
	}
}

func TestCLI_Suggest(t *testing.T) {
	output := run(t, "/suggest go\n/suggest zz\n/quit\n")

	if !strings.Contains(output, "go north") {
		t.Errorf("expected edge suggestion, got:\n%s", output)
	}
	if !strings.Contains(output, "[No suggestions.]") {
		t.Error("expected no suggestions for unknown prefix")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	output := run(t, "/bogus\n/quit\n")

	if !strings.Contains(output, "Unknown command: /bogus") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	output := run(t, "/trace\nlook\n/trace\n/quit\n")

	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace] action=look") {
		t.Error("expected trace line for look")
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	output := run(t, "/state\n/quit\n")

	for _, want := range []string{"Location: hall", "Turn: 0", "HP: 100/100", "Undo depth: 0"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in state output", want)
		}
	}
}

func TestCLI_EmptyInputAndComments(t *testing.T) {
	output := run(t, "\n\n# a comment\n/quit\n")

	// Empty lines should be skipped (no "Unknown command" spam).
	if strings.Contains(output, "Unknown command") {
		t.Error("empty lines should be silently skipped by CLI")
	}
	if strings.Contains(output, "Unknown command: #") {
		t.Error("comment lines should be skipped")
	}
}

func TestCLI_EchoInput(t *testing.T) {
	c, intro, out := newTestCLI(t, testService(), "", "look\n/quit\n")
	c.EchoInput = true
	c.Run(context.Background(), intro)

	if !strings.Contains(out.String(), "> look\n") {
		t.Error("expected echoed input after prompt")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	output := run(t, "look\nagain\n/quit\n")

	// intro + look + repeat
	if count := strings.Count(output, "A grand hall."); count < 3 {
		t.Errorf("expected 'A grand hall.' at least 3 times, got %d", count)
	}
}

func TestCLI_BareGIsGo(t *testing.T) {
	output := run(t, "look\ng\ng north\n/quit\n")

	if strings.Contains(output, "Nothing to repeat") {
		t.Error("bare g should not repeat the last command")
	}
	if count := strings.Count(output, "A grand hall."); count != 2 {
		t.Errorf("expected 'A grand hall.' twice (intro and look), got %d", count)
	}
	if !strings.Contains(output, "Go where?") {
		t.Error("expected bare g to ask where to go")
	}
	if !strings.Contains(output, "A peaceful garden.") {
		t.Error("expected g north to move to the garden")
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	output := run(t, "again\n/quit\n")

	if !strings.Contains(output, "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}

func TestCLI_EndOfInput(t *testing.T) {
	output := run(t, "look\n")

	if strings.Contains(output, "Goodbye.") {
		t.Error("end of input should not print goodbye")
	}
}
