// Command livebot is the main entrypoint for the YouTube live chat bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Starts the chat supervisor: live detection, chat polling, command
//     dispatch, periodic announcements.
//   - Starts the OAuth token refresher for the stored YouTube credential.
//   - Exposes an HTTP server with /healthz, /readyz, /status, /metrics,
//     the chat-log/send-message/analyze-user API, and the OAuth flow.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/joho/godotenv"
	"github.com/soratane/livebot/bot"
	"github.com/soratane/livebot/config"
	"github.com/soratane/livebot/db"
	"github.com/soratane/livebot/oauth"
	"github.com/soratane/livebot/responder"
	"github.com/soratane/livebot/server"
	"github.com/soratane/livebot/telemetry"
	"github.com/soratane/livebot/youtubeapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("livebot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.Migrate(context.Background(), database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Gemini responder is optional; without a key the bot answers free text
	// with its fixed fallback reply.
	var gem *responder.Gemini
	if cfg.GeminiAPIKey != "" {
		gem, err = responder.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("gemini responder unavailable", slog.Any("err", err))
			gem = nil
		} else {
			defer func() {
				if err := gem.Close(); err != nil {
					slog.Warn("gemini client close failed", slog.Any("err", err))
				}
			}()
		}
	} else {
		slog.Info("GEMINI_API_KEY not set, conversational replies disabled")
	}

	store := &db.Store{DB: database}

	// Chat supervisor runs only when the YouTube side is configured.
	var supervisor *bot.Supervisor
	if err := cfg.ValidateBotReady(); err != nil {
		slog.Warn("chat supervisor disabled", slog.Any("err", err))
	} else {
		yts := youtubeapi.New(cfg, &db.TokenStoreAdapter{DB: database})
		platform := youtubeapi.NewLiveChat(yts)
		var rsp bot.Responder
		if gem != nil {
			rsp = gem
		}
		supervisor = bot.NewSupervisor(bot.SupervisorConfig{
			ChannelID:        cfg.ChannelID,
			BotName:          cfg.BotName,
			PollInterval:     cfg.PollInterval,
			IdleCooldown:     cfg.IdleCooldown,
			ErrorBackoff:     cfg.ErrorBackoff,
			AnnounceInterval: cfg.AnnounceInterval,
		}, platform, rsp, store)
		go supervisor.Run(ctx)

		// Keep the stored YouTube credential fresh so session detection does
		// not stall on an expired token.
		oauth.StartRefresher(ctx, database, "youtube", 10*time.Minute, 20*time.Minute, func(rctx context.Context, refreshToken string) (string, string, time.Time, string, error) {
			oc := &oauth2.Config{ClientID: cfg.YTClientID, ClientSecret: cfg.YTClientSecret, Endpoint: google.Endpoint, RedirectURL: cfg.YTRedirectURI}
			newTok, err := oc.TokenSource(rctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
			if err != nil {
				return "", "", time.Time{}, "", err
			}
			return newTok.AccessToken, newTok.RefreshToken, newTok.Expiry, "", nil
		})
	}

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics + bot API)
	deps := server.Deps{DB: database, History: store}
	if supervisor != nil {
		deps.Bot = supervisor
	}
	if gem != nil {
		deps.Analyzer = gem
	}
	addr := server.NormalizeAddr(os.Getenv("HTTP_ADDR"))
	go func() {
		if err := server.Start(ctx, deps, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
