// Package tui provides a Bubble Tea terminal UI for the dotiam engine.
package tui

// History keeps the most recent submitted lines for Up/Down recall.
// The cursor equals len(entries) while the player is typing fresh input.
type History struct {
	entries []string
	max     int
	cursor  int
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records a submitted line. Repeating the previous line is a no-op,
// and the oldest line is dropped once the history is full. Push leaves
// the cursor on fresh input.
func (h *History) Push(line string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != line {
		if len(h.entries) == h.max {
			copy(h.entries, h.entries[1:])
			h.entries = h.entries[:h.max-1]
		}
		h.entries = append(h.entries, line)
	}
	h.cursor = len(h.entries)
}

// Prev moves to the next older line. It stays on the oldest line once
// reached and reports false only when the history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves to the next newer line. Stepping past the newest line
// returns to fresh input and reports false.
func (h *History) Next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor returns to fresh input.
func (h *History) ResetCursor() {
	h.cursor = len(h.entries)
}

// Len reports how many lines are stored.
func (h *History) Len() int {
	return len(h.entries)
}
