// ABOUTME: In-memory session store with ordered message insertion and change events
// ABOUTME: Transcripts persist as per-session JSONL files under the sessions directory

package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ternchat/tern/internal/eventbus"
	"github.com/ternchat/tern/internal/log"
)

// EventKind distinguishes store change events.
type EventKind int

const (
	EventMessageInserted EventKind = iota
	EventMessageRemoved
	EventMessageUpdated
	EventStatusChanged
)

// Event is published on every store mutation.
type Event struct {
	Kind      EventKind
	SessionID string
	Message   Message
	Status    Status
}

// Store keeps sessions and their transcripts, ordered by message ID.
type Store struct {
	mu       sync.Mutex
	dir      string
	sessions map[string]Session
	messages map[string][]Message
	status   map[string]Status
	bus      *eventbus.Bus[Event]
}

// NewStore creates a store persisting transcripts under dir. An empty
// dir disables persistence.
func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		sessions: map[string]Session{},
		messages: map[string][]Message{},
		status:   map[string]Status{},
		bus:      eventbus.New[Event](),
	}
}

// Subscribe registers a change handler and returns its unsubscribe func.
func (s *Store) Subscribe(h func(Event)) func() {
	return s.bus.Subscribe(h)
}

// AddSession registers a session with the store.
func (s *Store) AddSession(sess Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.status[sess.ID] = StatusIdle
	s.mu.Unlock()
}

// GetSession looks up a session by ID.
func (s *Store) GetSession(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Insert places msg into its session's transcript at the position given
// by ascending ID order, then persists and publishes the change.
func (s *Store) Insert(msg Message) {
	s.mu.Lock()
	list := s.messages[msg.SessionID]
	i := sort.Search(len(list), func(i int) bool { return list[i].ID >= msg.ID })
	list = append(list, Message{})
	copy(list[i+1:], list[i:])
	list[i] = msg
	s.messages[msg.SessionID] = list
	s.persistLocked(msg.SessionID)
	s.mu.Unlock()

	s.bus.Publish(Event{Kind: EventMessageInserted, SessionID: msg.SessionID, Message: msg})
}

// Update replaces the message with msg.ID in place. Reports whether a
// message with that ID existed.
func (s *Store) Update(msg Message) bool {
	s.mu.Lock()
	list := s.messages[msg.SessionID]
	found := false
	for i := range list {
		if list[i].ID == msg.ID {
			list[i] = msg
			found = true
			break
		}
	}
	if found {
		s.persistLocked(msg.SessionID)
	}
	s.mu.Unlock()

	if found {
		s.bus.Publish(Event{Kind: EventMessageUpdated, SessionID: msg.SessionID, Message: msg})
	}
	return found
}

// Remove deletes the message with id from the session's transcript.
// Used to roll back optimistic inserts.
func (s *Store) Remove(sessionID, id string) bool {
	s.mu.Lock()
	list := s.messages[sessionID]
	var removed Message
	found := false
	for i := range list {
		if list[i].ID == id {
			removed = list[i]
			s.messages[sessionID] = append(list[:i], list[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked(sessionID)
	}
	s.mu.Unlock()

	if found {
		s.bus.Publish(Event{Kind: EventMessageRemoved, SessionID: sessionID, Message: removed})
	}
	return found
}

// Messages returns a copy of the session's transcript in ID order.
func (s *Store) Messages(sessionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages[sessionID]))
	copy(out, s.messages[sessionID])
	return out
}

// Clear drops the session's transcript.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	s.messages[sessionID] = nil
	s.persistLocked(sessionID)
	s.mu.Unlock()
}

// SetStatus records the session's activity state.
func (s *Store) SetStatus(sessionID string, st Status) {
	s.mu.Lock()
	prev := s.status[sessionID]
	s.status[sessionID] = st
	s.mu.Unlock()

	if prev != st {
		s.bus.Publish(Event{Kind: EventStatusChanged, SessionID: sessionID, Status: st})
	}
}

// Status returns the session's activity state.
func (s *Store) Status(sessionID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[sessionID]; ok {
		return st
	}
	return StatusIdle
}

// LoadTranscript reads a previously persisted transcript into the store.
func (s *Store) LoadTranscript(sessionID string) error {
	if s.dir == "" {
		return nil
	}
	f, err := os.Open(s.transcriptPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	var list []Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return fmt.Errorf("decoding transcript line: %w", err)
		}
		list = append(list, msg)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	s.mu.Lock()
	s.messages[sessionID] = list
	s.mu.Unlock()
	return nil
}

// persistLocked rewrites the session's JSONL file. Must be called with
// s.mu held. Persistence failures are logged, not fatal.
func (s *Store) persistLocked(sessionID string) {
	if s.dir == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		log.Warn("creating sessions directory", "err", err)
		return
	}

	var buf []byte
	for _, msg := range s.messages[sessionID] {
		line, err := json.Marshal(msg)
		if err != nil {
			log.Warn("encoding message", "id", msg.ID, "err", err)
			continue
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	if err := os.WriteFile(s.transcriptPath(sessionID), buf, 0o600); err != nil {
		log.Warn("writing transcript", "session", sessionID, "err", err)
	}
}

func (s *Store) transcriptPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".jsonl")
}
