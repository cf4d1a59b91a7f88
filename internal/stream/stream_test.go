// ABOUTME: Tests stream consumption: message insert/replace, status, errors
// ABOUTME: A fake receiver feeds canned events and cancels the loop when drained

package stream

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/ternchat/tern/internal/session"
	"github.com/ternchat/tern/pkg/sdk"
)

type fakeReceiver struct {
	events []sdk.StreamEvent
	pos    int
	// drained ends the surrounding Run loop once every event is consumed.
	drained func()
}

func (f *fakeReceiver) Next() (sdk.StreamEvent, error) {
	if f.pos >= len(f.events) {
		f.drained()
		return sdk.StreamEvent{}, io.EOF
	}
	ev := f.events[f.pos]
	f.pos++
	return ev, nil
}

func (f *fakeReceiver) Close() error { return nil }

func runOnce(t *testing.T, store *session.Store, events []sdk.StreamEvent) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dial := func(ctx context.Context, sessionID string) (Receiver, error) {
		return &fakeReceiver{events: events, drained: cancel}, nil
	}

	done := make(chan struct{})
	go func() {
		Run(ctx, dial, store, "s1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("Run did not exit")
	}
}

func TestRunAppliesMessageEvents(t *testing.T) {
	store := session.NewStore("")
	runOnce(t, store, []sdk.StreamEvent{
		{Type: sdk.EventMessage, MessageID: "msg_a", Role: "assistant", Text: "thinking"},
		{Type: sdk.EventMessage, MessageID: "msg_a", Role: "assistant", Text: "thinking about it"},
		{Type: sdk.EventMessage, MessageID: "msg_b", Role: "assistant", Text: "done"},
	})

	msgs := store.Messages("s1")
	if len(msgs) != 2 {
		t.Fatalf("messages = %d; want 2 (updates replace in place)", len(msgs))
	}
	if msgs[0].Text != "thinking about it" {
		t.Errorf("msgs[0].Text = %q; want latest text", msgs[0].Text)
	}
	if msgs[0].Role != session.RoleAssistant {
		t.Errorf("msgs[0].Role = %v; want assistant", msgs[0].Role)
	}
	if msgs[1].Text != "done" {
		t.Errorf("msgs[1].Text = %q; want done", msgs[1].Text)
	}
}

func TestRunAppliesStatusEvents(t *testing.T) {
	store := session.NewStore("")
	store.SetStatus("s1", session.StatusWorking)

	runOnce(t, store, []sdk.StreamEvent{
		{Type: sdk.EventStatus, Status: "idle"},
	})

	if got := store.Status("s1"); got != session.StatusIdle {
		t.Errorf("status = %v; want idle after status event", got)
	}
}

func TestRunAppliesErrorEvents(t *testing.T) {
	store := session.NewStore("")
	store.SetStatus("s1", session.StatusWorking)

	runOnce(t, store, []sdk.StreamEvent{
		{Type: sdk.EventError, Error: "model overloaded"},
	})

	msgs := store.Messages("s1")
	if len(msgs) != 1 || msgs[0].Role != session.RoleSystem {
		t.Fatalf("messages = %+v; want one system message", msgs)
	}
	if msgs[0].Text != "model overloaded" {
		t.Errorf("text = %q; want error text", msgs[0].Text)
	}
	if got := store.Status("s1"); got != session.StatusIdle {
		t.Errorf("status = %v; want idle after error", got)
	}
}

func TestRunIgnoresMessageWithoutID(t *testing.T) {
	store := session.NewStore("")
	runOnce(t, store, []sdk.StreamEvent{
		{Type: sdk.EventMessage, Role: "assistant", Text: "orphan"},
	})
	if got := len(store.Messages("s1")); got != 0 {
		t.Errorf("messages = %d; want 0", got)
	}
}
