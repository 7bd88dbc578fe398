package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/soratane/livebot/bot"
)

// HandleStatus reports whether the supervisor is running and, when a session
// is active, which broadcast it is attached to.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"bot_running": h.bot != nil,
		"is_live":     false,
	}
	if h.bot != nil {
		snap := h.bot.Status().Get()
		resp["is_live"] = snap.IsLive
		if snap.VideoID != "" {
			resp["video_id"] = snap.VideoID
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}

// HandleChatLog returns the in-memory tail of recent chat activity.
func (h *Handlers) HandleChatLog(w http.ResponseWriter, r *http.Request) {
	entries := []bot.Entry{}
	if h.bot != nil {
		entries = h.bot.Logs().Recent()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"log": entries}); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}

// HandleSendMessage posts an operator-supplied message into the live chat.
// Returns 404 when no chat session is active.
func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.bot == nil {
		http.Error(w, "bot not configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if err := h.bot.SendMessage(r.Context(), msg); err != nil {
		if errors.Is(err, bot.ErrNoActiveSession) {
			http.Error(w, "no active live chat session", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "sent"}); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}

// HandleAnalyzeUser summarizes a viewer from their stored chat history.
func (h *Handlers) HandleAnalyzeUser(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")
	if author == "" && r.Method == http.MethodPost {
		var req struct {
			Author string `json:"author"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			author = req.Author
		}
	}
	author = strings.TrimSpace(author)
	if author == "" {
		http.Error(w, "author is required", http.StatusBadRequest)
		return
	}
	if h.analyzer == nil {
		http.Error(w, "analysis not configured", http.StatusServiceUnavailable)
		return
	}
	if h.history == nil {
		http.Error(w, "chat history not configured", http.StatusServiceUnavailable)
		return
	}
	limit := parseIntQuery(r, "limit", 20)
	comments, err := h.history.MessagesByAuthor(r.Context(), author, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(comments) == 0 {
		http.Error(w, "no messages recorded for author", http.StatusNotFound)
		return
	}
	summary, err := h.analyzer.AnalyzeComments(r.Context(), author, comments)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"author":        author,
		"message_count": len(comments),
		"analysis":      summary,
	}); err != nil {
		slog.Warn("failed to encode JSON response", slog.Any("err", err))
	}
}
