// ABOUTME: Consumes the backend event stream and applies it to the session store
// ABOUTME: Reconnects with a fixed delay; exits when the context ends

package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ternchat/tern/internal/log"
	"github.com/ternchat/tern/internal/session"
	"github.com/ternchat/tern/pkg/sdk"
)

const reconnectDelay = 2 * time.Second

// Receiver yields decoded backend events. *sdk.Stream satisfies it.
type Receiver interface {
	Next() (sdk.StreamEvent, error)
	Close() error
}

// Dial opens the event stream for a session.
type Dial func(ctx context.Context, sessionID string) (Receiver, error)

// Run consumes the session's event stream until ctx ends, applying each
// event to the store. Store subscribers see the resulting mutations, so
// the TUI re-renders without polling. Connection failures retry.
func Run(ctx context.Context, dial Dial, store *session.Store, sessionID string) {
	for {
		receiver, err := dial(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("opening event stream", "session", sessionID, "err", err)
			if !sleep(ctx, reconnectDelay) {
				return
			}
			continue
		}

		err = consume(ctx, receiver, store, sessionID)
		receiver.Close()
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, io.EOF) {
			log.Warn("reading event stream", "session", sessionID, "err", err)
		}
		if !sleep(ctx, reconnectDelay) {
			return
		}
	}
}

func consume(ctx context.Context, receiver Receiver, store *session.Store, sessionID string) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		ev, err := receiver.Next()
		if err != nil {
			return err
		}
		apply(store, sessionID, ev)
	}
}

// apply translates one stream event into a store mutation. Message
// events carry the full current text, so a known ID is an in-place
// replacement.
func apply(store *session.Store, sessionID string, ev sdk.StreamEvent) {
	switch ev.Type {
	case sdk.EventMessage:
		if ev.MessageID == "" {
			return
		}
		msg := session.Message{
			ID:        ev.MessageID,
			SessionID: sessionID,
			Role:      session.Role(ev.Role),
			Text:      ev.Text,
			Time:      time.Now(),
		}
		if !store.Update(msg) {
			store.Insert(msg)
		}

	case sdk.EventStatus:
		st := session.StatusIdle
		if ev.Status == "working" {
			st = session.StatusWorking
		}
		store.SetStatus(sessionID, st)

	case sdk.EventError:
		if ev.Error == "" {
			return
		}
		store.Insert(session.Message{
			ID:        session.NextMessageID(),
			SessionID: sessionID,
			Role:      session.RoleSystem,
			Text:      ev.Error,
			Time:      time.Now(),
		})
		store.SetStatus(sessionID, session.StatusIdle)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
