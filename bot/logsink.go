package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/soratane/livebot/telemetry"
)

// EntryKind classifies a log entry.
type EntryKind string

const (
	EntrySystem EntryKind = "system"
	EntryUser   EntryKind = "user"
	EntryBot    EntryKind = "bot"
)

// Entry is one chat-log record. Ordering is arrival order.
type Entry struct {
	Kind      EntryKind `json:"type"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ringCapacity bounds the in-memory log; the durable store keeps full history.
const ringCapacity = 50

// LogSink appends entries to a bounded most-recent ring and, best effort, to
// the durable store. The ring and the store receive the same entries; they
// differ only in retention. Safe for concurrent use.
type LogSink struct {
	mu    sync.Mutex
	ring  []Entry
	store LogStore
	now   func() time.Time
}

// NewLogSink creates a sink over the given durable store. A nil store keeps
// only the in-memory ring.
func NewLogSink(store LogStore) *LogSink {
	return &LogSink{store: store, now: time.Now}
}

// Record appends one entry. A durable-write failure is logged and counted but
// never surfaces to the caller; the chat loop's liveness wins over persistence.
func (s *LogSink) Record(ctx context.Context, kind EntryKind, author, message string) {
	e := Entry{Kind: kind, Author: author, Message: message, Timestamp: s.now().UTC()}

	s.mu.Lock()
	s.ring = append(s.ring, e)
	if len(s.ring) > ringCapacity {
		s.ring = s.ring[len(s.ring)-ringCapacity:]
	}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.Append(ctx, string(kind), author, message, e.Timestamp); err != nil {
		slog.Warn("durable log write failed", slog.Any("err", err), slog.String("author", author))
		inc(telemetry.LogPersistErrors)
	}
}

// Recent returns the ring contents in insertion order, newest last.
func (s *LogSink) Recent() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.ring))
	copy(out, s.ring)
	return out
}

// inc bumps a counter, tolerating uninitialized telemetry in tests.
func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}
