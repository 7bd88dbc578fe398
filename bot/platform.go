package bot

import (
	"context"
	"time"
)

// InboundMessage is a single text chat event retrieved from the platform.
// Identity is ID; uniqueness within a session is enforced by SeenSet.
type InboundMessage struct {
	ID     string
	Author string
	Text   string
}

// PlatformClient is the streaming-platform transport consumed by the supervisor.
// Implementations must filter non-text events out of ListNewMessages and apply
// the platform's length limit inside PostMessage.
type PlatformClient interface {
	// FindActiveLiveVideo returns the id of a currently-live video on the
	// channel, or "" when the channel is not live.
	FindActiveLiveVideo(ctx context.Context, channelID string) (string, error)
	// ResolveChatID returns the active chat id for a live video, or "" when
	// the video has no resolvable chat.
	ResolveChatID(ctx context.Context, videoID string) (string, error)
	// ListNewMessages returns the newest batch of text messages for a chat.
	// Batches may overlap across calls; callers dedupe by message id.
	ListNewMessages(ctx context.Context, chatID string) ([]InboundMessage, error)
	PostMessage(ctx context.Context, chatID, text string) error
	// LiveEndTime returns the broadcast's actual end time, or the zero time
	// while the broadcast is still live.
	LiveEndTime(ctx context.Context, videoID string) (time.Time, error)
}

// Responder produces a free-text reply for messages no command rule matched.
// Implementations must not fail past this boundary: on internal error they
// return a fixed apology (or empty output, which the dispatcher substitutes).
type Responder interface {
	Respond(ctx context.Context, text string) string
}

// LogStore is the durable append target behind the LogSink. Append failures
// are reported by the sink but never abort the chat loop.
type LogStore interface {
	Append(ctx context.Context, kind, author, message string, ts time.Time) error
	MessagesByAuthor(ctx context.Context, author string, limit int) ([]string, error)
}
