package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileStore keeps events in a single JSON array on local disk. It is
// the last-resort tier, used only when no networked store is
// configured. The read-modify-write cycle is not safe under concurrent
// writers; the last writer wins. That is accepted for a throwaway
// cache of analytics.
type FileStore struct {
	path string
}

// NewFileStore returns a file-backed store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Append(ctx context.Context, ev Event) error {
	events := s.read()
	events = append(events, ev)
	if len(events) > maxEvents {
		events = events[len(events)-maxEvents:]
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write events file: %w", err)
	}
	return nil
}

func (s *FileStore) ReadAll(ctx context.Context) ([]Event, error) {
	return s.read(), nil
}

// ReadCounters always reports unsupported: the file tier has no
// counter concept.
func (s *FileStore) ReadCounters(ctx context.Context) (map[string]int64, error) {
	return nil, ErrCountersUnsupported
}

// read returns the current event list. A missing or unparsable file
// reads as empty, never as an error.
func (s *FileStore) read() []Event {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []Event{}
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return []Event{}
	}
	return events
}
