package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/dotiam/engine/world"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks a world for referential integrity. Broken graph links
// are errors; references to items missing from the catalog are warnings,
// since the engine falls back to the raw id for those.
func validate(w *world.World) error {
	ve := check(w)

	logWarnings(ve.Warnings)

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func check(w *world.World) *ValidationError {
	ve := &ValidationError{}

	if len(w.Nodes) == 0 {
		ve.Errors = append(ve.Errors, "world has no nodes")
		return ve
	}

	// Start node exists.
	if _, ok := w.Nodes[w.StartNode()]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start node %q not found in defined nodes", w.StartNode()))
	}

	for _, id := range sortedKeys(w.Nodes) {
		node := w.Nodes[id]
		if node == nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("node %q is empty", id))
			continue
		}
		if node.ID != id {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"node key %q does not match its id %q", id, node.ID))
		}

		// Edge targets valid.
		for i, e := range node.Edges {
			if e.Target == "" {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"node %q edge %d has no target", id, i))
				continue
			}
			if _, ok := w.Nodes[e.Target]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"node %q edge %q points to undefined node %q", id, e.Label, e.Target))
			}
			for _, c := range e.Conditions {
				if hi, ok := c.(world.HasItem); ok {
					if _, ok := w.Items[hi.Item]; !ok {
						ve.Warnings = append(ve.Warnings, fmt.Sprintf(
							"node %q edge %q requires item %q missing from the catalog", id, e.Label, hi.Item))
					}
				}
			}
		}

		// Warnings: items lying in nodes but not cataloged.
		for _, item := range node.Items {
			if _, ok := w.Items[item]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"node %q holds item %q missing from the catalog", id, item))
			}
		}
	}

	for id, it := range w.Items {
		if it.ID != id {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"item key %q does not match its id %q", id, it.ID))
		}
	}

	for i, c := range w.Combinations {
		if c.Item1 == "" || c.Item2 == "" || c.Result == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"combination %d needs item1, item2 and result", i))
			continue
		}
		for _, id := range []string{c.Item1, c.Item2, c.Result} {
			if _, ok := w.Items[id]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"combination %d references item %q missing from the catalog", i, id))
			}
		}
		for j := 0; j < i; j++ {
			if w.Combinations[j].Matches(c.Item1, c.Item2) {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"combination %d is shadowed by combination %d for %s + %s", i, j, c.Item1, c.Item2))
				break
			}
		}
	}

	return ve
}

func sortedKeys(m map[string]*world.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
