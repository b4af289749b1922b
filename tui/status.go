package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/dotiam/engine"
	"github.com/nathoo/dotiam/engine/state"
)

var titleCaser = cases.Title(language.English)

// nodeDisplayName derives a human-readable name from a node ID.
// "great_hall" -> "Great Hall", "far-bank" -> "Far Bank".
func nodeDisplayName(id string) string {
	if id == "" {
		return "Nowhere"
	}
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	return titleCaser.String(strings.Join(words, " "))
}

// renderStatusBar produces a full-width inverted status line showing
// current node, paths, inventory, hit points, and turn count.
func (m Model) renderStatusBar() string {
	gs := m.session.State

	left := fmt.Sprintf(" %s | Paths: %s", nodeDisplayName(gs.Player.Node),
		strings.Join(engine.PathLabels(state.CurrentNode(gs)), ","))
	tail := fmt.Sprintf("HP:%d/%d | T:%d ", gs.Player.HP, gs.Player.MaxHP, gs.Turn)
	right := tail

	// Show inventory items if they fit, otherwise just count.
	if invCount := len(gs.Player.Inventory); invCount > 0 {
		names := make([]string, 0, invCount)
		for _, id := range gs.Player.Inventory {
			names = append(names, gs.World.ItemName(id))
		}
		candidate := fmt.Sprintf("Inv: %s | %s", strings.Join(names, ", "), tail)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | %s", invCount, tail)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
