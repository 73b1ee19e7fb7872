// Package analytics records wizard funnel events.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"application-builder/internal/common/logger"
)

// EventsKey is the store list every event is appended to.
const EventsKey = "analytics:events"

// MaxEvents caps the events list; older events are trimmed on append.
const MaxEvents = 10000

type EventName string

const (
	EventWizardStarted        EventName = "wizard_started"
	EventTemplateSelected     EventName = "template_selected"
	EventStepChanged          EventName = "step_changed"
	EventApplicationSubmitted EventName = "application_submitted"
	EventSubmissionFailed     EventName = "submission_failed"
	EventWizardCancelled      EventName = "wizard_cancelled"
)

func (n EventName) Valid() bool {
	switch n {
	case EventWizardStarted, EventTemplateSelected, EventStepChanged,
		EventApplicationSubmitted, EventSubmissionFailed, EventWizardCancelled:
		return true
	default:
		return false
	}
}

type Event struct {
	Name       EventName              `json:"name"`
	SessionID  string                 `json:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Store is the list half of the session store.
type Store interface {
	Append(ctx context.Context, key, value string, maxLen int) error
	Range(ctx context.Context, key string, n int) ([]string, error)
}

type Tracker struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewTracker(store Store, log logger.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "analytics"}),
		now:    time.Now,
	}
}

// Track records an event. Failures are logged and swallowed.
func (t *Tracker) Track(ctx context.Context, event Event) {
	if t == nil {
		return
	}
	if !event.Name.Valid() {
		t.logger.Warn("dropping unknown analytics event", map[string]interface{}{"name": string(event.Name)})
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.logger.Warn("failed to encode analytics event", map[string]interface{}{"name": string(event.Name), "error": err.Error()})
		return
	}
	if err := t.store.Append(ctx, EventsKey, string(data), MaxEvents); err != nil {
		t.logger.Warn("failed to record analytics event", map[string]interface{}{"name": string(event.Name), "error": err.Error()})
	}
}

// Recent returns up to n of the latest events, oldest first. n <= 0 or
// above MaxEvents reads at most MaxEvents.
func (t *Tracker) Recent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 || n > MaxEvents {
		n = MaxEvents
	}
	raw, err := t.store.Range(ctx, EventsKey, n)
	if err != nil {
		return nil, fmt.Errorf("read analytics events: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		var e Event
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			t.logger.Debug("skipping undecodable analytics event", map[string]interface{}{"error": err.Error()})
			continue
		}
		events = append(events, e)
	}
	return events, nil
}
