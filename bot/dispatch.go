package bot

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/soratane/livebot/telemetry"
)

// Sigil marks text as a structured command rather than free chat.
const Sigil = "!"

// fallbackApology is sent when the responder produces no usable output.
const fallbackApology = "Sorry, I can't come up with a reply right now."

// fortunePool is the fixed outcome set for the !fortune draw.
var fortunePool = []string{
	"Great fortune ✨",
	"Good fortune 😊",
	"Modest fortune 🙂",
	"Fortune 😉",
	"Late-blooming fortune 🤔",
	"Misfortune 😥",
	"Great misfortune 😱",
}

// CommandRule maps a command prefix to its reply handler. Rules are evaluated
// in order; the first prefix match wins.
type CommandRule struct {
	Prefix string
	Handle func(author, text string) string
}

// Dispatcher turns inbound chat text into reply text using an ordered rule
// table, falling back to the Responder for free text. Now and Intn are
// injectable so tests can pin the clock and the random draws.
type Dispatcher struct {
	Rules     []CommandRule
	Responder Responder
	Now       func() time.Time
	Intn      func(n int) int
}

// NewDispatcher builds a dispatcher with the built-in rule table.
func NewDispatcher(responder Responder) *Dispatcher {
	d := &Dispatcher{
		Responder: responder,
		Now:       time.Now,
		Intn:      rand.Intn, //nolint:gosec // G404: outcome draws, not security
	}
	d.Rules = []CommandRule{
		{Prefix: Sigil + "hello", Handle: d.handleHello},
		{Prefix: Sigil + "time", Handle: d.handleTime},
		{Prefix: Sigil + "fortune", Handle: d.handleFortune},
	}
	return d
}

// Dispatch returns the reply for one inbound message, or "" when the message
// should not be answered (an unknown command). Matched rules never invoke the
// Responder.
func (d *Dispatcher) Dispatch(ctx context.Context, author, text string) string {
	for _, r := range d.Rules {
		if strings.HasPrefix(text, r.Prefix) {
			return r.Handle(author, text)
		}
	}
	if strings.HasPrefix(text, Sigil) {
		// Unknown command: stay quiet rather than routing bot syntax to the responder.
		return ""
	}
	reply := ""
	if d.Responder != nil {
		reply = d.Responder.Respond(ctx, text)
	}
	if strings.TrimSpace(reply) == "" {
		reply = fallbackApology
		inc(telemetry.ResponderFallbacks)
	}
	return author + ": " + reply
}

func (d *Dispatcher) handleHello(author, _ string) string {
	return "Hello, " + author + "!"
}

func (d *Dispatcher) handleTime(author, _ string) string {
	return author + ", it is now " + d.Now().Format("15:04:05") + "."
}

func (d *Dispatcher) handleFortune(author, _ string) string {
	result := fortunePool[d.Intn(len(fortunePool))]
	return author + ", your fortune today is... " + result
}
