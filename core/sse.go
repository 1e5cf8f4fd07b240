package core

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// DoneSentinel is the data payload that terminates an event stream.
const DoneSentinel = "[DONE]"

// Event names assigned by the decoder.
const (
	EventMessage = "message"
	EventDone    = "done"
)

// SSEEvent is one decoded server-sent event.
type SSEEvent struct {
	Event string `json:"event"`
	ID    string `json:"id,omitempty"`
	// Retry is the reconnection hint in milliseconds, nil if absent.
	Retry *int `json:"retry,omitempty"`
	// Data is the parsed JSON value, the raw string when the payload is not
	// JSON, or DoneSentinel for the terminal event.
	Data any `json:"data"`
}

// IsDone reports whether e is the terminal sentinel event.
func (e SSEEvent) IsDone() bool {
	return e.Event == EventDone && e.Data == DoneSentinel
}

var (
	blockSeparator = regexp.MustCompile(`\r?\n\r?\n`)
	lineSeparator  = regexp.MustCompile(`\r?\n`)
)

// DecodeSSE parses a fully buffered event stream. It never fails: blocks
// that carry nothing recognizable still produce an event, and payloads that
// are not JSON are kept verbatim. Output order equals block order.
func DecodeSSE(raw string) []SSEEvent {
	var events []SSEEvent

	for _, block := range blockSeparator.Split(raw, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		events = append(events, decodeBlock(block))
	}

	return events
}

func decodeBlock(block string) SSEEvent {
	ev := SSEEvent{Event: EventMessage}
	var data []string

	for _, line := range lineSeparator.Split(block, -1) {
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "id:"):
			ev.ID = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
		case strings.HasPrefix(line, "retry:"):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "retry:"))); err == nil {
				ev.Retry = &n
			}
		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			data = append(data, strings.TrimPrefix(value, " "))
		}
	}

	payload := strings.Join(data, "\n")
	if payload == DoneSentinel {
		ev.Event = EventDone
		ev.Data = DoneSentinel
		return ev
	}

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err == nil {
		ev.Data = parsed
	} else {
		ev.Data = payload
	}
	return ev
}
