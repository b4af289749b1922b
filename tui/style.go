package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNodeDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	stylePaths = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleGain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNodeDesc lineKind = iota
	kindYouSee
	kindPaths
	kindGain
	kindSystem
	kindError
	kindTrace
)

// refusals open the narration lines of failed actions.
var refusals = []string{
	"You can't",
	"You don't",
	"You need",
	"You must",
	"You are too weak",
	"The path leads nowhere",
	"There is nowhere",
	"Unknown command",
}

// prompts are the engine's questions when a verb is missing its object.
var prompts = map[string]bool{
	"Go where?":               true,
	"Pick up what?":           true,
	"Drop what?":              true,
	"Use what?":               true,
	"Combine what with what?": true,
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Paths:"):
		return kindPaths
	case strings.HasPrefix(line, "You pick up"),
		strings.HasPrefix(line, "You combine"):
		return kindGain
	}
	for _, p := range refusals {
		if strings.HasPrefix(line, p) {
			return kindError
		}
	}
	if prompts[line] || (strings.HasPrefix(line, "The ") && strings.HasSuffix(line, " is not here.")) {
		return kindError
	}
	return kindNodeDesc
}

// styledYouSee renders "You see: item1, item2." with item names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleNodeDesc.Render(line)
	}
	return styleNodeDesc.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
