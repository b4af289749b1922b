// Package history keeps a bounded stack of world snapshots so authoring
// edits can be undone. Play actions never snapshot.
package history

import "github.com/nathoo/dotiam/types"

// MaxSnapshots bounds the history stack. Pushing beyond it evicts the
// oldest snapshot.
const MaxSnapshots = 50

// Snapshot pushes a deep copy of the current world onto the history.
// Call it immediately before an edit that should be undoable.
func Snapshot(gs *types.GameState) {
	gs.History = append(gs.History, gs.World.Clone())
	if over := len(gs.History) - MaxSnapshots; over > 0 {
		gs.History = append(gs.History[:0:0], gs.History[over:]...)
	}
}

// Undo restores the most recent snapshot as the live world. It reports
// false, changing nothing, when the history is empty.
func Undo(gs *types.GameState) bool {
	n := len(gs.History)
	if n == 0 {
		return false
	}
	gs.World = gs.History[n-1]
	gs.History[n-1] = nil
	gs.History = gs.History[:n-1]
	return true
}

// Depth returns the number of snapshots available to undo.
func Depth(gs *types.GameState) int {
	return len(gs.History)
}
