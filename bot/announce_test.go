package bot

import (
	"testing"
	"time"
)

func TestAnnouncerInterval(t *testing.T) {
	a := NewAnnouncer(30 * time.Minute)
	a.Intn = func(int) int { return 0 }
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	a.Reset(start)

	if _, ok := a.Maybe(start.Add(10 * time.Minute)); ok {
		t.Errorf("announced before interval elapsed")
	}
	msg, ok := a.Maybe(start.Add(31 * time.Minute))
	if !ok {
		t.Fatalf("expected announcement after interval")
	}
	if msg != announcementPool[0] {
		t.Errorf("msg = %q", msg)
	}
	// Timer resets: a second call within the interval yields none.
	if _, ok := a.Maybe(start.Add(32 * time.Minute)); ok {
		t.Errorf("announced twice within one interval")
	}
	if _, ok := a.Maybe(start.Add(62 * time.Minute)); !ok {
		t.Errorf("expected announcement after a further interval")
	}
}

func TestAnnouncerCoversPool(t *testing.T) {
	a := NewAnnouncer(time.Minute)
	now := time.Unix(0, 0)
	seen := map[string]bool{}
	for i := range a.Pool {
		idx := i
		a.Intn = func(n int) int {
			if n != len(a.Pool) {
				t.Fatalf("Intn bound = %d, want %d", n, len(a.Pool))
			}
			return idx
		}
		now = now.Add(2 * time.Minute)
		msg, ok := a.Maybe(now)
		if !ok {
			t.Fatalf("expected announcement at step %d", i)
		}
		seen[msg] = true
	}
	if len(seen) != len(a.Pool) {
		t.Errorf("drew %d distinct announcements, want %d", len(seen), len(a.Pool))
	}
}

func TestAnnouncerDisabled(t *testing.T) {
	a := NewAnnouncer(0)
	if _, ok := a.Maybe(time.Now()); ok {
		t.Errorf("zero interval must disable announcements")
	}
	a = NewAnnouncer(time.Minute)
	a.Pool = nil
	if _, ok := a.Maybe(time.Now().Add(time.Hour)); ok {
		t.Errorf("empty pool must disable announcements")
	}
}
