package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// Write pipelines are latency-sensitive to the caller; the bulk read
// path tolerates more.
const (
	writeTimeout = 3 * time.Second
	readTimeout  = 10 * time.Second
)

// Command is one key-value store command with its arguments, e.g.
// {"RPUSH", "events", payload}.
type Command []string

// Transport executes commands against a key-value backend. The two
// networked tiers differ only here: the cache tier speaks over a
// persistent connection, the REST tier over discrete HTTP calls. All
// append/read/counter semantics live in kvStore, which guarantees the
// tiers produce identical observable results for the same operations.
type Transport interface {
	// Pipeline sends cmds as one batch, executed server-side in
	// order, and returns one result per command. A nil result means
	// the key was absent.
	Pipeline(ctx context.Context, cmds []Command) ([]any, error)

	// Read sends a single command on the (longer-timeout) read path.
	Read(ctx context.Context, cmd Command) (any, error)
}

// kvStore implements Store on top of a Transport.
type kvStore struct {
	transport Transport
}

func newKVStore(t Transport) *kvStore {
	return &kvStore{transport: t}
}

// Append pushes the serialized event, bumps the event type's counter
// if it has one, and trims the list to its cap, all in one pipeline.
// The store executes the commands sequentially; there is no retry or
// rollback on partial failure.
func (s *kvStore) Append(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	cmds := []Command{{"RPUSH", eventsKey, string(payload)}}
	if key, ok := CounterKey(ev.EventType); ok {
		cmds = append(cmds, Command{"INCR", key})
	}
	cmds = append(cmds, Command{"LTRIM", eventsKey, strconv.Itoa(-maxEvents), "-1"})

	_, err = s.transport.Pipeline(ctx, cmds)
	return err
}

// ReadAll fetches the full event list. Elements that fail to parse are
// dropped rather than aborting the whole read.
func (s *kvStore) ReadAll(ctx context.Context) ([]Event, error) {
	res, err := s.transport.Read(ctx, Command{"LRANGE", eventsKey, "0", "-1"})
	if err != nil {
		return nil, err
	}

	items, _ := res.([]any)
	events := make([]Event, 0, len(items))
	for _, item := range items {
		raw, ok := item.(string)
		if !ok {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// ReadCounters issues one pipelined GET per known counter key. Absent
// or unparsable values read as zero.
func (s *kvStore) ReadCounters(ctx context.Context) (map[string]int64, error) {
	keys := allCounterKeys()
	cmds := make([]Command, len(keys))
	for i, k := range keys {
		cmds[i] = Command{"GET", k}
	}

	res, err := s.transport.Pipeline(ctx, cmds)
	if err != nil {
		return nil, err
	}

	counters := make(map[string]int64, len(keys))
	for i, k := range keys {
		var v any
		if i < len(res) {
			v = res[i]
		}
		counters[k] = toInt64(v)
	}
	return counters, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
