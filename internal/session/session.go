// ABOUTME: Session and message types plus monotonic message ID generation
// ABOUTME: Message order is defined by ascending ID comparison

package session

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Status is a session's activity state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusWorking Status = "working"
)

// Session is one conversation with the backend.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Directory string    `json:"directory,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session rooted at dir.
func NewSession(dir string) Session {
	return Session{
		ID:        uuid.NewString(),
		Directory: dir,
		CreatedAt: time.Now(),
	}
}

// Annotation marks a file reference carried by a message.
type Annotation struct {
	Path  string `json:"path"`
	Range string `json:"range,omitempty"`
}

// Message is one transcript entry. IDs sort lexicographically in
// creation order, so insertion keyed on ID keeps transcripts stable.
type Message struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations,omitempty"`
	ImageIDs    []string     `json:"image_ids,omitempty"`
	Time        time.Time    `json:"time"`
	Pending     bool         `json:"pending,omitempty"`
}

var msgCounter atomic.Uint64

// NextMessageID returns an ID greater than any previously returned in
// this process. The nanosecond prefix keeps IDs ordered across restarts.
func NextMessageID() string {
	return fmt.Sprintf("msg_%020d_%06d", time.Now().UnixNano(), msgCounter.Add(1))
}
