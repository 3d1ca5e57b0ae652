package history

import (
	"fmt"
	"strings"
)

// DefaultMaxTurns matches the window size the answer prompts were tuned for.
const DefaultMaxTurns = 5

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Window is a bounded, ordered log of the most recent conversation turns.
// Oldest turns are evicted first once the window is full. A Window belongs
// to exactly one session and must not be shared across sessions.
type Window struct {
	maxTurns int
	turns    []Turn
}

// NewWindow creates a window holding at most maxTurns turns.
// Non-positive values fall back to DefaultMaxTurns.
func NewWindow(maxTurns int) *Window {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Window{
		maxTurns: maxTurns,
		turns:    make([]Turn, 0, maxTurns),
	}
}

// Append records a completed turn, evicting the oldest one when full.
func (w *Window) Append(turn Turn) {
	if len(w.turns) == w.maxTurns {
		copy(w.turns, w.turns[1:])
		w.turns = w.turns[:len(w.turns)-1]
	}
	w.turns = append(w.turns, turn)
}

// Len returns the number of turns currently held.
func (w *Window) Len() int {
	return len(w.turns)
}

// Turns returns a copy of the current window, oldest first.
func (w *Window) Turns() []Turn {
	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Render serializes the window for prompt injection, oldest first.
// Calling Render twice without an intervening Append yields identical output.
func (w *Window) Render() string {
	if len(w.turns) == 0 {
		return "No previous conversation."
	}

	var sb strings.Builder
	for i, turn := range w.turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("User: %s\nAssistant: %s", turn.Question, turn.Answer))
	}
	return sb.String()
}
