package parser

import (
	"strings"

	"github.com/nathoo/dotiam/engine/world"
)

// canonicalVerbs are offered as completions, in display order.
var canonicalVerbs = []string{
	"help", "look", "go", "explore", "pickup", "drop", "inventory", "use", "combine",
}

// Suggest returns command completions for a partially typed command:
// canonical verbs, "go <label>" for each edge of the current node, and
// "pickup <item>" for each item lying there. An empty prefix yields none.
func Suggest(prefix string, w *world.World, current string) []string {
	prefix = strings.ToLower(strings.TrimLeft(prefix, " \t"))
	if strings.TrimSpace(prefix) == "" {
		return nil
	}

	var candidates []string
	candidates = append(candidates, canonicalVerbs...)
	if node := w.Node(current); node != nil {
		for _, e := range node.Edges {
			if e.Label != "" {
				candidates = append(candidates, "go "+strings.ToLower(e.Label))
			}
		}
		for _, id := range node.Items {
			candidates = append(candidates, "pickup "+id)
		}
	}

	seen := map[string]bool{}
	var out []string
	for _, c := range candidates {
		if seen[c] || !strings.HasPrefix(c, prefix) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
