package lineup

import (
	"sync"
	"time"
)

// TrailEvent is one append-only diagnostic record of a scrape's decision path.
type TrailEvent struct {
	At      time.Time      `json:"at"`
	Stage   string         `json:"stage"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Trail accumulates diagnostics for a single request. It is owned by the
// request and never shared between scrapes.
type Trail struct {
	mu       sync.Mutex
	events   []TrailEvent
	now      func() time.Time
	observer func(TrailEvent)
}

func NewTrail() *Trail {
	return &Trail{now: time.Now}
}

// Observe registers a callback invoked for every appended event.
func (t *Trail) Observe(fn func(TrailEvent)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.observer = fn
	t.mu.Unlock()
}

// Add appends an event. Fields are given as alternating key/value pairs.
func (t *Trail) Add(stage, message string, kv ...any) {
	if t == nil {
		return
	}

	var fields map[string]any
	if len(kv) > 0 {
		fields = make(map[string]any, (len(kv)+1)/2)
		for i := 0; i < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok || key == "" {
				key = "arg"
			}
			if i+1 >= len(kv) {
				fields[key] = nil
				break
			}
			fields[key] = kv[i+1]
		}
	}

	t.mu.Lock()
	now := t.now
	if now == nil {
		now = time.Now
	}
	event := TrailEvent{At: now(), Stage: stage, Message: message, Fields: fields}
	t.events = append(t.events, event)
	observer := t.observer
	t.mu.Unlock()

	if observer != nil {
		observer(event)
	}
}

func (t *Trail) Events() []TrailEvent {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TrailEvent(nil), t.events...)
}

// Has reports whether any event was recorded for the stage with the message.
func (t *Trail) Has(stage, message string) bool {
	for _, event := range t.Events() {
		if event.Stage == stage && event.Message == message {
			return true
		}
	}
	return false
}
