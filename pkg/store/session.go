package store

import (
	"time"

	"afcon-assistant-be/pkg/rag/history"
)

// Session represents one active conversation. Each session exclusively owns
// its history window; the relational store and vector index are shared.
type Session struct {
	ID        string          `json:"id"`
	Language  string          `json:"language"`
	History   *history.Window `json:"-"`
	LastQuery string          `json:"last_query"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewSession creates a session with an empty history window.
func NewSession(id string, maxHistory int) *Session {
	return &Session{
		ID:        id,
		Language:  "en",
		History:   history.NewWindow(maxHistory),
		CreatedAt: time.Now(),
	}
}
