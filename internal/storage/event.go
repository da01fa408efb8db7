package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
)

// Tier identifies which storage backend served a request. The value is
// reported verbatim in API responses for diagnosability.
type Tier string

const (
	TierCache  Tier = "cache"
	TierRestKV Tier = "kv"
	TierFile   Tier = "file"
)

const (
	// eventsKey is the list key under which all events are stored in
	// the networked tiers.
	eventsKey = "events"

	// maxEvents caps the stored event list. Insertion beyond the cap
	// evicts from the head, oldest first.
	maxEvents = 10000
)

// ErrCountersUnsupported is returned by ReadCounters on backends that
// have no counter concept (currently only the file tier). Distinct from
// an empty counter map.
var ErrCountersUnsupported = errors.New("storage: counters not supported by this backend")

// Event is one recorded user action. Field names match the wire format
// used by the in-store clients.
type Event struct {
	SessionID string `json:"sessionId"`
	Store     string `json:"store"`
	EventType string `json:"event_type"`

	// EventData is an arbitrary structured payload, opaque to storage.
	EventData json.RawMessage `json:"event_data"`

	Client    string `json:"client"`
	Timestamp string `json:"timestamp"`

	// ServerTime is seconds since epoch, stamped by the ingestion
	// handler at receipt time. Never trusted from the caller.
	ServerTime float64 `json:"server_time"`
}

// counterKeys maps known event types to the counter key that tracks
// their running total. Unknown event types are stored but increment
// nothing.
var counterKeys = map[string]string{
	"scan":         "count:scans",
	"chat_message": "count:chats",
	"lead_submit":  "count:leads",
	"recap_email":  "count:recaps",
	"voice_input":  "count:voice",
}

// CounterKey returns the counter key for an event type, if one exists.
func CounterKey(eventType string) (string, bool) {
	k, ok := counterKeys[eventType]
	return k, ok
}

// allCounterKeys returns every known counter key in a stable order, so
// pipelined reads map results back to keys deterministically.
func allCounterKeys() []string {
	keys := make([]string, 0, len(counterKeys))
	for _, k := range counterKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store is the narrow contract every storage tier implements.
type Store interface {
	// Append records one event, evicting the oldest entry if the list
	// exceeds its cap. Write failures propagate to the caller.
	Append(ctx context.Context, ev Event) error

	// ReadAll returns the stored events, oldest first.
	ReadAll(ctx context.Context) ([]Event, error)

	// ReadCounters returns the running totals for every known counter
	// key, or ErrCountersUnsupported.
	ReadCounters(ctx context.Context) (map[string]int64, error)
}
