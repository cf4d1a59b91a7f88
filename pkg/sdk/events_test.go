// ABOUTME: Tests SSE frame parsing and event payload decoding
// ABOUTME: The stream test serves canned frames from an httptest server

package sdk

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEventsStream(t *testing.T) {
	frames := "" +
		": keepalive\n" +
		"\n" +
		"event: message\n" +
		"data: {\"session_id\":\"s1\",\"message_id\":\"msg_1\",\"role\":\"assistant\",\"text\":\"hi\"}\n" +
		"\n" +
		"event: status\n" +
		"data: {\"session_id\":\"s1\",\"status\":\"idle\"}\n" +
		"\n"

	var gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("session")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, frames)
	}))
	defer srv.Close()

	stream, err := New(srv.URL).Events(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Events = %v; want nil", err)
	}
	defer stream.Close()

	if gotQuery != "s1" {
		t.Errorf("session query = %q; want s1", gotQuery)
	}
	if gotAccept != "text/event-stream" {
		t.Errorf("Accept = %q; want text/event-stream", gotAccept)
	}

	ev, err := stream.Next()
	if err != nil {
		t.Fatalf("Next = %v; want nil", err)
	}
	if ev.Type != EventMessage || ev.MessageID != "msg_1" || ev.Text != "hi" {
		t.Errorf("first event = %+v; want message msg_1 %q", ev, "hi")
	}

	ev, err = stream.Next()
	if err != nil {
		t.Fatalf("Next = %v; want nil", err)
	}
	if ev.Type != EventStatus || ev.Status != "idle" {
		t.Errorf("second event = %+v; want status idle", ev)
	}

	if _, err = stream.Next(); err != io.EOF {
		t.Errorf("Next at end = %v; want io.EOF", err)
	}
}

func TestEventsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Events(context.Background(), "nope")
	if err == nil {
		t.Fatal("Events = nil; want error")
	}
}

func TestDecodeStreamEvent(t *testing.T) {
	tests := []struct {
		name string
		data string
		want StreamEvent
	}{
		{
			"message",
			`{"type":"message","session_id":"s1","role":"user","text":"hello"}`,
			StreamEvent{Type: "message", SessionID: "s1", Role: "user", Text: "hello"},
		},
		{
			"error",
			`{"type":"error","error":"model overloaded"}`,
			StreamEvent{Type: "error", Error: "model overloaded"},
		},
		{
			"unknown fields skipped",
			`{"type":"status","status":"working","extra":{"nested":[1,2,3]},"n":42}`,
			StreamEvent{Type: "status", Status: "working"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeStreamEvent([]byte(tt.data))
			if err != nil {
				t.Fatalf("decodeStreamEvent = %v; want nil", err)
			}
			if got != tt.want {
				t.Errorf("event = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeStreamEventMalformed(t *testing.T) {
	if _, err := decodeStreamEvent([]byte(`{"type":`)); err == nil {
		t.Error("decodeStreamEvent(truncated) = nil; want error")
	}
}
