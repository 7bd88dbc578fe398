package bot

import (
	"math/rand"
	"time"
)

// announcementPool is the fixed set of periodic unsolicited messages.
var announcementPool = []string{
	"Thanks for watching! Try !fortune to test your luck.",
	"The bot is listening. Commands: !hello, !time, !fortune.",
	"Enjoying the stream? Say hi with !hello.",
}

// Announcer emits one unsolicited message whenever the configured interval
// has elapsed since the last announcement. The timer is reset at session
// start; state is session-scoped like the SeenSet.
type Announcer struct {
	Interval time.Duration
	Pool     []string
	Intn     func(n int) int

	last time.Time
}

func NewAnnouncer(interval time.Duration) *Announcer {
	return &Announcer{
		Interval: interval,
		Pool:     announcementPool,
		Intn:     rand.Intn, //nolint:gosec // G404: outcome draws, not security
	}
}

// Reset restarts the interval timer, normally at session start.
func (a *Announcer) Reset(now time.Time) { a.last = now }

// Maybe returns an announcement when the interval has elapsed, resetting the
// timer; otherwise ok is false. Evaluated once per poll cycle.
func (a *Announcer) Maybe(now time.Time) (string, bool) {
	if a.Interval <= 0 || len(a.Pool) == 0 {
		return "", false
	}
	if now.Sub(a.last) < a.Interval {
		return "", false
	}
	a.last = now
	return a.Pool[a.Intn(len(a.Pool))], true
}
