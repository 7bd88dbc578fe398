// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	SessionsStarted    prometheus.Counter
	SessionsEnded      prometheus.Counter
	MessagesReceived   prometheus.Counter
	MessagesDispatched prometheus.Counter
	AnnouncementsSent  prometheus.Counter
	ResponderFallbacks prometheus.Counter
	PollErrors         prometheus.Counter
	DetectErrors       prometheus.Counter
	LogPersistErrors   prometheus.Counter

	// Histograms (seconds)
	DispatchDuration prometheus.Observer
	PollDuration     prometheus.Observer

	// Gauges
	LiveGauge prometheus.Gauge // 1=live session active, 0=idle
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_sessions_started_total", Help: "Number of live chat sessions entered"})
		SessionsEnded = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_sessions_ended_total", Help: "Number of live chat sessions that ended"})
		MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_messages_received_total", Help: "Number of inbound chat messages after dedup"})
		MessagesDispatched = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_messages_dispatched_total", Help: "Number of replies sent by the dispatcher"})
		AnnouncementsSent = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_announcements_sent_total", Help: "Number of periodic announcements posted"})
		ResponderFallbacks = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_responder_fallbacks_total", Help: "Number of messages answered by the fallback responder"})
		PollErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_poll_errors_total", Help: "Number of chat poll failures"})
		DetectErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_detect_errors_total", Help: "Number of live detection failures"})
		LogPersistErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "livebot_log_persist_errors_total", Help: "Number of durable log writes that failed"})
		DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "livebot_dispatch_duration_seconds", Help: "Dispatch duration seconds (including responder calls)", Buckets: prometheus.DefBuckets})
		PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "livebot_poll_duration_seconds", Help: "Chat poll duration seconds", Buckets: prometheus.DefBuckets})
		LiveGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "livebot_live", Help: "Live session active=1 idle=0"})
	})
}

// SetLive sets the live gauge to 1 when a session is active, else 0.
func SetLive(live bool) {
	if LiveGauge == nil {
		return
	}
	if live {
		LiveGauge.Set(1)
	} else {
		LiveGauge.Set(0)
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
