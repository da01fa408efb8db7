package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeKV implements the list and counter semantics of the networked
// stores in memory, so the shared pipeline logic can be exercised
// without a server.
type fakeKV struct {
	lists    map[string][]string
	counters map[string]int64
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		lists:    make(map[string][]string),
		counters: make(map[string]int64),
	}
}

func (f *fakeKV) exec(cmd []string) (any, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	switch strings.ToUpper(cmd[0]) {
	case "RPUSH":
		f.lists[cmd[1]] = append(f.lists[cmd[1]], cmd[2])
		return int64(len(f.lists[cmd[1]])), nil
	case "INCR":
		f.counters[cmd[1]]++
		return f.counters[cmd[1]], nil
	case "LTRIM":
		start, _ := strconv.Atoi(cmd[2])
		stop, _ := strconv.Atoi(cmd[3])
		f.lists[cmd[1]] = trimRange(f.lists[cmd[1]], start, stop)
		return "OK", nil
	case "LRANGE":
		start, _ := strconv.Atoi(cmd[2])
		stop, _ := strconv.Atoi(cmd[3])
		items := trimRange(f.lists[cmd[1]], start, stop)
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out, nil
	case "GET":
		if v, ok := f.counters[cmd[1]]; ok {
			return strconv.FormatInt(v, 10), nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported command %q", cmd[0])
}

func trimRange(list []string, start, stop int) []string {
	n := len(list)
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return nil
	}
	return list[start : stop+1]
}

// fakeTransport runs commands against a fakeKV and records every
// command it sees.
type fakeTransport struct {
	kv       *fakeKV
	commands []Command
}

func (t *fakeTransport) Pipeline(ctx context.Context, cmds []Command) ([]any, error) {
	out := make([]any, len(cmds))
	for i, cmd := range cmds {
		t.commands = append(t.commands, cmd)
		v, err := t.kv.exec(cmd)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t *fakeTransport) Read(ctx context.Context, cmd Command) (any, error) {
	t.commands = append(t.commands, cmd)
	return t.kv.exec(cmd)
}

func newTestKVStore() (*kvStore, *fakeTransport) {
	tr := &fakeTransport{kv: newFakeKV()}
	return newKVStore(tr), tr
}

func TestKVStoreAppendCommandSequence(t *testing.T) {
	s, tr := newTestKVStore()

	require.NoError(t, s.Append(context.Background(), Event{EventType: "scan"}))

	require.Len(t, tr.commands, 3)
	require.Equal(t, "RPUSH", tr.commands[0][0])
	require.Equal(t, eventsKey, tr.commands[0][1])
	require.Equal(t, Command{"INCR", "count:scans"}, tr.commands[1])
	require.Equal(t, Command{"LTRIM", eventsKey, "-10000", "-1"}, tr.commands[2])
}

func TestKVStoreAppendUnknownTypeSkipsCounter(t *testing.T) {
	s, tr := newTestKVStore()

	require.NoError(t, s.Append(context.Background(), Event{EventType: "mystery"}))

	require.Len(t, tr.commands, 2)
	require.Equal(t, "RPUSH", tr.commands[0][0])
	require.Equal(t, "LTRIM", tr.commands[1][0])
	require.Empty(t, tr.kv.counters)
}

func TestKVStoreReadAllPreservesOrder(t *testing.T) {
	s, _ := newTestKVStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(ctx, testEvent(i)))
	}

	events, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 10)
	for i, ev := range events {
		require.Equal(t, fmt.Sprintf("session-%d", i), ev.SessionID)
	}
}

func TestKVStoreReadAllDropsUnparsableElements(t *testing.T) {
	s, tr := newTestKVStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, testEvent(0)))
	tr.kv.lists[eventsKey] = append(tr.kv.lists[eventsKey], "{{not json")
	require.NoError(t, s.Append(ctx, testEvent(1)))

	events, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "session-0", events[0].SessionID)
	require.Equal(t, "session-1", events[1].SessionID)
}

func TestKVStoreCounters(t *testing.T) {
	s, _ := newTestKVStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := testEvent(i)
		ev.EventType = "lead_submit"
		require.NoError(t, s.Append(ctx, ev))
	}
	require.NoError(t, s.Append(ctx, Event{EventType: "scan"}))
	require.NoError(t, s.Append(ctx, Event{EventType: "unknown_thing"}))

	counters, err := s.ReadCounters(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), counters["count:leads"])
	require.Equal(t, int64(1), counters["count:scans"])

	// Untouched counters read as explicit zeroes, not missing keys.
	require.Equal(t, int64(0), counters["count:chats"])
	require.Len(t, counters, len(counterKeys))
}

func TestKVStoreEvictsOldestBeyondCap(t *testing.T) {
	s, tr := newTestKVStore()
	ctx := context.Background()

	// Pre-fill the backing list at the cap, then append through the
	// store so LTRIM runs.
	for i := 0; i < maxEvents; i++ {
		payload, err := json.Marshal(testEvent(i))
		require.NoError(t, err)
		tr.kv.lists[eventsKey] = append(tr.kv.lists[eventsKey], string(payload))
	}

	require.NoError(t, s.Append(ctx, testEvent(maxEvents)))

	events, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, maxEvents)
	require.Equal(t, "session-1", events[0].SessionID)
	require.Equal(t, fmt.Sprintf("session-%d", maxEvents), events[len(events)-1].SessionID)
}

func TestKVStoreReadsAreIdempotent(t *testing.T) {
	s, _ := newTestKVStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Append(ctx, testEvent(i)))
	}

	first, err := s.ReadAll(ctx)
	require.NoError(t, err)
	second, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	c1, err := s.ReadCounters(ctx)
	require.NoError(t, err)
	c2, err := s.ReadCounters(ctx)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
}
