package conversation

import (
	"context"
	"time"
)

const (
	WindowSize      = 10
	DefaultCapacity = 1000
	DefaultTTL      = 30 * time.Minute

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store is an append-only message log per session. Recent returns at most WindowSize
// messages, oldest first; older entries stay in the log.
type Store interface {
	Append(ctx context.Context, sessionID string, m Message) error
	Recent(ctx context.Context, sessionID string) ([]Message, error)
}

func lastN(msgs []Message, n int) []Message {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
