package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/soratane/livebot/telemetry"
)

const (
	defaultPollInterval     = 5 * time.Second
	defaultIdleCooldown     = 30 * time.Second
	defaultErrorBackoff     = 15 * time.Second
	defaultAnnounceInterval = 30 * time.Minute

	defaultGreeting = "🎉 The bot has joined the chat. Hello everyone!"
	defaultFarewell = "🎤 That's a wrap! Thanks for watching, see you next stream!"
)

// SupervisorConfig carries the knobs for the monitoring loop. Zero durations
// fall back to the defaults above.
type SupervisorConfig struct {
	ChannelID        string
	BotName          string
	PollInterval     time.Duration
	IdleCooldown     time.Duration
	ErrorBackoff     time.Duration
	AnnounceInterval time.Duration
}

// Supervisor is the top-level control loop: detection, session loop,
// teardown, restart. Exactly one Run goroutine owns all session-local state;
// the Status and LogSink it publishes are safe for concurrent readers.
type Supervisor struct {
	platform   PlatformClient
	dispatcher *Dispatcher
	announcer  *Announcer
	logs       *LogSink
	status     *Status

	channelID string
	botName   string

	pollInterval time.Duration
	idleCooldown time.Duration
	errorBackoff time.Duration

	greeting string
	farewell string

	now func() time.Time
}

// NewSupervisor wires the loop over its injected collaborators. responder may
// be nil (the dispatcher then answers free text with the fixed apology);
// store may be nil (ring-only logging).
func NewSupervisor(cfg SupervisorConfig, platform PlatformClient, responder Responder, store LogStore) *Supervisor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.IdleCooldown <= 0 {
		cfg.IdleCooldown = defaultIdleCooldown
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}
	if cfg.AnnounceInterval <= 0 {
		cfg.AnnounceInterval = defaultAnnounceInterval
	}
	if cfg.BotName == "" {
		cfg.BotName = "livebot"
	}
	return &Supervisor{
		platform:     platform,
		dispatcher:   NewDispatcher(responder),
		announcer:    NewAnnouncer(cfg.AnnounceInterval),
		logs:         NewLogSink(store),
		status:       &Status{},
		channelID:    cfg.ChannelID,
		botName:      cfg.BotName,
		pollInterval: cfg.PollInterval,
		idleCooldown: cfg.IdleCooldown,
		errorBackoff: cfg.ErrorBackoff,
		greeting:     defaultGreeting,
		farewell:     defaultFarewell,
		now:          time.Now,
	}
}

// Status returns the published session state for the HTTP layer.
func (s *Supervisor) Status() *Status { return s.status }

// Logs returns the log sink backing /api/chat-log.
func (s *Supervisor) Logs() *LogSink { return s.logs }

// Dispatcher exposes the command table, mainly for tests and startup tweaks.
func (s *Supervisor) Dispatcher() *Dispatcher { return s.dispatcher }

// SendMessage posts text to the active chat on behalf of an external caller.
// Fails with ErrNoActiveSession when no session is published.
func (s *Supervisor) SendMessage(ctx context.Context, text string) error {
	chatID, ok := s.status.ChatID()
	if !ok {
		return ErrNoActiveSession
	}
	if err := s.platform.PostMessage(ctx, chatID, text); err != nil {
		return failAt(StageSend, err)
	}
	s.logs.Record(ctx, EntryBot, s.botName, text)
	return nil
}

// Run executes the monitoring loop until ctx is cancelled. It never returns
// early on failure: recoverable errors are logged and answered with a
// backoff, then detection starts over.
func (s *Supervisor) Run(ctx context.Context) {
	slog.Info("supervisor started", slog.String("channel", s.channelID))
	for ctx.Err() == nil {
		s.runOnce(ctx)
	}
	s.status.Clear()
	telemetry.SetLive(false)
	slog.Info("supervisor stopped")
}

// runOnce performs one IDLE-state iteration: detect a session, and if one is
// found run it to completion.
func (s *Supervisor) runOnce(ctx context.Context) {
	videoID, err := s.platform.FindActiveLiveVideo(ctx, s.channelID)
	if err != nil {
		s.detectionFailed(failAt(StageDetect, err))
		s.sleep(ctx, s.errorBackoff)
		return
	}
	if videoID == "" {
		s.status.Clear()
		telemetry.SetLive(false)
		slog.Debug("no live broadcast", slog.String("channel", s.channelID))
		s.sleep(ctx, s.idleCooldown)
		return
	}
	chatID, err := s.platform.ResolveChatID(ctx, videoID)
	if err != nil {
		s.detectionFailed(failAt(StageDetect, err))
		s.sleep(ctx, s.errorBackoff)
		return
	}
	if chatID == "" {
		// Live video without a resolvable chat is treated the same as no session.
		s.status.Clear()
		telemetry.SetLive(false)
		slog.Debug("live video has no chat", slog.String("video_id", videoID))
		s.sleep(ctx, s.idleCooldown)
		return
	}
	s.runSession(ctx, videoID, chatID)
}

func (s *Supervisor) detectionFailed(err error) {
	inc(telemetry.DetectErrors)
	slog.Error("live detection failed", slog.Any("err", err), slog.String("channel", s.channelID))
	s.status.Clear()
	telemetry.SetLive(false)
}

// runSession owns the ACTIVE state: greeting, poll/dispatch cycles, and the
// ENDING transition with its farewell. SeenSet and the announcement timer are
// created fresh here and die with the session.
func (s *Supervisor) runSession(ctx context.Context, videoID, chatID string) {
	s.status.Set(chatID, videoID)
	telemetry.SetLive(true)
	inc(telemetry.SessionsStarted)
	slog.Info("live session detected", slog.String("video_id", videoID), slog.String("chat_id", chatID))

	seen := NewSeenSet()
	s.announcer.Reset(s.now())

	if err := s.platform.PostMessage(ctx, chatID, s.greeting); err != nil {
		slog.Warn("greeting send failed", slog.Any("err", err))
	}
	s.logs.Record(ctx, EntrySystem, s.botName, s.greeting)

	for ctx.Err() == nil {
		if s.liveEnded(ctx, videoID) {
			if err := s.platform.PostMessage(ctx, chatID, s.farewell); err != nil {
				slog.Warn("farewell send failed", slog.Any("err", err))
			}
			s.logs.Record(ctx, EntrySystem, s.botName, s.farewell)
			slog.Info("live session ended", slog.String("video_id", videoID), slog.Int("distinct_messages", seen.Len()))
			s.endSession()
			return
		}

		if msg, ok := s.announcer.Maybe(s.now()); ok {
			if err := s.platform.PostMessage(ctx, chatID, msg); err != nil {
				slog.Warn("announcement send failed", slog.Any("err", err))
			} else {
				s.logs.Record(ctx, EntryBot, s.botName, msg)
				inc(telemetry.AnnouncementsSent)
			}
		}

		var msgs []InboundMessage
		var pollErr error
		telemetry.TimeFunc(telemetry.PollDuration, func() {
			msgs, pollErr = s.platform.ListNewMessages(ctx, chatID)
		})
		if pollErr != nil {
			inc(telemetry.PollErrors)
			slog.Error("chat poll failed", slog.Any("err", failAt(StagePoll, pollErr)), slog.String("video_id", videoID))
			// Session-local state is not safely resumable; drop to IDLE and re-detect.
			s.endSession()
			s.sleep(ctx, s.errorBackoff)
			return
		}

		for _, m := range msgs {
			if seen.Seen(m.ID) {
				continue
			}
			seen.Mark(m.ID)
			inc(telemetry.MessagesReceived)
			s.logs.Record(ctx, EntryUser, m.Author, m.Text)

			var reply string
			telemetry.TimeFunc(telemetry.DispatchDuration, func() {
				reply = s.dispatcher.Dispatch(ctx, m.Author, m.Text)
			})
			if reply == "" {
				continue
			}
			if err := s.platform.PostMessage(ctx, chatID, reply); err != nil {
				slog.Warn("reply send failed", slog.Any("err", failAt(StageSend, err)), slog.String("message_id", m.ID))
				continue
			}
			s.logs.Record(ctx, EntryBot, s.botName, reply)
			inc(telemetry.MessagesDispatched)
		}

		s.sleep(ctx, s.pollInterval)
	}
	s.endSession()
}

// liveEnded reports whether the platform observed an end timestamp for the
// broadcast. Transient probe errors keep the session running.
func (s *Supervisor) liveEnded(ctx context.Context, videoID string) bool {
	endAt, err := s.platform.LiveEndTime(ctx, videoID)
	if err != nil {
		slog.Warn("live end check failed", slog.Any("err", failAt(StageEnd, err)), slog.String("video_id", videoID))
		return false
	}
	return !endAt.IsZero()
}

func (s *Supervisor) endSession() {
	s.status.Clear()
	telemetry.SetLive(false)
	inc(telemetry.SessionsEnded)
}

// sleep blocks for d or until ctx is cancelled. These sleeps are the loop's
// only intentional suspension points.
func (s *Supervisor) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
