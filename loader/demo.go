package loader

import (
	_ "embed"
	"fmt"

	"github.com/nathoo/dotiam/engine/world"
)

//go:embed demo.yaml
var demoDocument []byte

// Demo returns the built-in world used when no document is configured.
// Each call returns a fresh copy.
func Demo() (*world.World, error) {
	w, err := ParseDocument(demoDocument)
	if err != nil {
		return nil, fmt.Errorf("built-in world: %w", err)
	}
	return w, nil
}
