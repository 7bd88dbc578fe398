package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/soratane/livebot/config"
	dbpkg "github.com/soratane/livebot/db"
	"github.com/soratane/livebot/youtubeapi"
)

// HandleYouTubeOAuthStart initiates the YouTube OAuth flow.
func (h *Handlers) HandleYouTubeOAuthStart(w http.ResponseWriter, r *http.Request) {
	cfg, _ := config.Load()
	if cfg.YTClientID == "" || cfg.YTRedirectURI == "" {
		http.Error(w, "youtube oauth not configured (need YT_CLIENT_ID + YT_REDIRECT_URI)", http.StatusBadRequest)
		return
	}
	// generate state
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		http.Error(w, "state gen error", 500)
		return
	}
	st := hex.EncodeToString(b)
	h.addOAuthState(st, time.Now().Add(10*time.Minute))
	ts := &dbpkg.TokenStoreAdapter{DB: h.db}
	yts := youtubeapi.New(cfg, ts)
	http.Redirect(w, r, yts.AuthCodeURL(st), http.StatusFound)
}

// HandleYouTubeOAuthCallback handles the OAuth callback from YouTube and stores tokens.
func (h *Handlers) HandleYouTubeOAuthCallback(w http.ResponseWriter, r *http.Request) {
	cfg, _ := config.Load()
	code := r.URL.Query().Get("code")
	st := r.URL.Query().Get("state")
	if code == "" || st == "" {
		http.Error(w, "missing code/state", 400)
		return
	}
	if !h.consumeOAuthState(st) {
		http.Error(w, "invalid state", 400)
		return
	}
	ts := &dbpkg.TokenStoreAdapter{DB: h.db}
	yts := youtubeapi.New(cfg, ts)
	tok, err := yts.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"status": "ok", "expiry": tok.Expiry, "access_token_present": tok.AccessToken != "", "refresh_token_present": tok.RefreshToken != ""}); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}
