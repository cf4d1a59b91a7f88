// ABOUTME: Tracks in-flight submissions keyed by session ID
// ABOUTME: Abort cancels the pending dispatch; Working gates double submission

package submit

import "sync"

type pending struct {
	messageID string
	cancel    func()
}

// Registry records at most one in-flight submission per session.
type Registry struct {
	mu      sync.Mutex
	pending map[string]pending
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]pending)}
}

// begin records a submission. Reports false when the session already
// has one in flight.
func (r *Registry) begin(sessionID, messageID string, cancel func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[sessionID]; ok {
		return false
	}
	r.pending[sessionID] = pending{messageID: messageID, cancel: cancel}
	return true
}

// finish clears the session's in-flight record.
func (r *Registry) finish(sessionID string) {
	r.mu.Lock()
	delete(r.pending, sessionID)
	r.mu.Unlock()
}

// Working reports whether the session has a submission in flight.
func (r *Registry) Working(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[sessionID]
	return ok
}

// PendingMessage returns the optimistic message ID of the session's
// in-flight submission, if any.
func (r *Registry) PendingMessage(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[sessionID]
	return p.messageID, ok
}

// Abort cancels the session's in-flight submission. Reports whether
// one existed.
func (r *Registry) Abort(sessionID string) bool {
	r.mu.Lock()
	p, ok := r.pending[sessionID]
	r.mu.Unlock()

	if ok && p.cancel != nil {
		p.cancel()
	}
	return ok
}
