// ABOUTME: Server-sent event stream from the backend's /events endpoint
// ABOUTME: Frames are parsed line-wise; payloads decode via easyjson's lexer

package sdk

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mailru/easyjson/jlexer"
)

// Stream event types emitted by the backend.
const (
	EventMessage = "message"
	EventStatus  = "status"
	EventError   = "error"
)

// StreamEvent is one decoded event from the backend stream.
type StreamEvent struct {
	Type      string
	SessionID string
	MessageID string
	Role      string
	Text      string
	Status    string
	Error     string
}

// Stream reads backend events until closed or the context ends.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Events opens the event stream for a session. The stream stays open
// until Close or context cancellation; Next returns io.EOF when the
// server ends it.
func (c *Client) Events(ctx context.Context, sessionID string) (*Stream, error) {
	u, err := url.JoinPath(c.baseURL, "events")
	if err != nil {
		return nil, fmt.Errorf("building events url: %w", err)
	}
	u += "?session=" + url.QueryEscape(sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building events request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.directory != "" {
		req.Header.Set("X-Tern-Directory", c.directory)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, newAPIError("events", resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: resp.Body, scanner: scanner}, nil
}

// Next returns the next decoded event, or io.EOF at end of stream.
func (s *Stream) Next() (StreamEvent, error) {
	eventType := ""
	var data []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if len(data) == 0 {
				eventType = ""
				continue
			}
			ev, err := decodeStreamEvent([]byte(strings.Join(data, "\n")))
			if err != nil {
				return StreamEvent{}, err
			}
			if ev.Type == "" {
				ev.Type = eventType
			}
			return ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			eventType = value
		case "data":
			data = append(data, value)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return StreamEvent{}, err
	}
	return StreamEvent{}, io.EOF
}

// Close terminates the stream.
func (s *Stream) Close() error {
	return s.body.Close()
}

// decodeStreamEvent unmarshals an event payload. Unknown fields are
// skipped so the client tolerates newer backends.
func decodeStreamEvent(data []byte) (StreamEvent, error) {
	l := jlexer.Lexer{Data: data}
	var ev StreamEvent

	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "type":
			ev.Type = l.String()
		case "session_id":
			ev.SessionID = l.String()
		case "message_id":
			ev.MessageID = l.String()
		case "role":
			ev.Role = l.String()
		case "text":
			ev.Text = l.String()
		case "status":
			ev.Status = l.String()
		case "error":
			ev.Error = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')

	if err := l.Error(); err != nil {
		return StreamEvent{}, fmt.Errorf("decoding event payload: %w", err)
	}
	return ev, nil
}
