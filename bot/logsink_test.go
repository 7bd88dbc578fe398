package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// recordingStore captures Append calls and can be made to fail.
type recordingStore struct {
	mu      sync.Mutex
	rows    []Entry
	failAll bool
}

func (r *recordingStore) Append(_ context.Context, kind, author, message string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return fmt.Errorf("store unavailable")
	}
	r.rows = append(r.rows, Entry{Kind: EntryKind(kind), Author: author, Message: message, Timestamp: ts})
	return nil
}

func (r *recordingStore) MessagesByAuthor(_ context.Context, author string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].Author == author && r.rows[i].Kind == EntryUser {
			out = append(out, r.rows[i].Message)
		}
	}
	return out, nil
}

func TestLogSinkRingBounded(t *testing.T) {
	sink := NewLogSink(nil)
	ctx := context.Background()
	for i := 0; i < ringCapacity+10; i++ {
		sink.Record(ctx, EntryUser, "alice", fmt.Sprintf("msg-%d", i))
	}
	got := sink.Recent()
	if len(got) != ringCapacity {
		t.Fatalf("ring holds %d entries, want %d", len(got), ringCapacity)
	}
	// Oldest evicted first: ring starts at msg-10, ends at msg-59.
	if got[0].Message != "msg-10" {
		t.Errorf("first entry = %q, want msg-10", got[0].Message)
	}
	if got[len(got)-1].Message != fmt.Sprintf("msg-%d", ringCapacity+9) {
		t.Errorf("last entry = %q", got[len(got)-1].Message)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("entries out of arrival order at %d", i)
		}
	}
}

func TestLogSinkWritesStoreAndRingIdentically(t *testing.T) {
	store := &recordingStore{}
	sink := NewLogSink(store)
	ctx := context.Background()
	sink.Record(ctx, EntrySystem, "livebot", "joined")
	sink.Record(ctx, EntryUser, "bob", "!hello")
	sink.Record(ctx, EntryBot, "livebot", "Hello, bob!")

	ring := sink.Recent()
	if len(ring) != 3 || len(store.rows) != 3 {
		t.Fatalf("ring=%d store=%d, want 3/3", len(ring), len(store.rows))
	}
	for i := range ring {
		if ring[i].Kind != store.rows[i].Kind || ring[i].Message != store.rows[i].Message || ring[i].Author != store.rows[i].Author {
			t.Errorf("entry %d diverged: ring=%+v store=%+v", i, ring[i], store.rows[i])
		}
	}
}

func TestLogSinkStoreFailureNonFatal(t *testing.T) {
	store := &recordingStore{failAll: true}
	sink := NewLogSink(store)
	// Must not panic or propagate; ring still receives the entry.
	sink.Record(context.Background(), EntryBot, "livebot", "reply")
	if got := sink.Recent(); len(got) != 1 || got[0].Message != "reply" {
		t.Fatalf("ring = %+v, want single reply entry", got)
	}
}

func TestLogSinkRecentReturnsCopy(t *testing.T) {
	sink := NewLogSink(nil)
	sink.Record(context.Background(), EntryUser, "alice", "one")
	a := sink.Recent()
	a[0].Message = "mutated"
	if b := sink.Recent(); b[0].Message != "one" {
		t.Errorf("Recent exposed internal ring storage")
	}
}
