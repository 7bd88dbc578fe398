package server

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/soratane/livebot/bot"
)

const (
	// Maximum number of OAuth states to keep in memory
	maxOAuthStates = 10000
)

// BotControl is the slice of the chat supervisor the HTTP surface needs.
type BotControl interface {
	Status() *bot.Status
	Logs() *bot.LogSink
	SendMessage(ctx context.Context, text string) error
}

// Analyzer summarizes a viewer from their recent chat messages.
type Analyzer interface {
	AnalyzeComments(ctx context.Context, author string, comments []string) (string, error)
}

// ChatHistory reads a viewer's durable chat history.
type ChatHistory interface {
	MessagesByAuthor(ctx context.Context, author string, limit int) ([]string, error)
}

// Deps collects handler dependencies. Bot and Analyzer may be nil when the
// corresponding feature is not configured; handlers degrade per-endpoint.
type Deps struct {
	DB       *sql.DB
	Bot      BotControl
	Analyzer Analyzer
	History  ChatHistory
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db         *sql.DB
	bot        BotControl
	analyzer   Analyzer
	history    ChatHistory
	ctx        context.Context
	stateStore map[string]time.Time
	stateMu    sync.RWMutex
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(ctx context.Context, deps Deps) *Handlers {
	return &Handlers{
		db:         deps.DB,
		bot:        deps.Bot,
		analyzer:   deps.Analyzer,
		history:    deps.History,
		ctx:        ctx,
		stateStore: make(map[string]time.Time),
	}
}

// cleanExpiredStates removes expired OAuth states from the store.
// This should be called with stateMu locked.
func (h *Handlers) cleanExpiredStates() {
	now := time.Now()
	for state, expiry := range h.stateStore {
		if now.After(expiry) {
			delete(h.stateStore, state)
		}
	}
}

// addOAuthState adds a new OAuth state to the store with cleanup if needed.
func (h *Handlers) addOAuthState(state string, expiry time.Time) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	// Clean expired states periodically to prevent unbounded growth
	if len(h.stateStore)%100 == 0 {
		h.cleanExpiredStates()
	}

	// If we're still over the limit after cleanup, refuse to add more
	if len(h.stateStore) >= maxOAuthStates {
		// Don't add the state - this will cause the OAuth flow to fail
		// which is better than a memory exhaustion attack
		return
	}

	h.stateStore[state] = expiry
}

// consumeOAuthState validates and removes a state; returns false when the
// state is unknown or expired.
func (h *Handlers) consumeOAuthState(state string) bool {
	h.stateMu.RLock()
	exp, ok := h.stateStore[state]
	h.stateMu.RUnlock()
	if !ok || time.Now().After(exp) {
		return false
	}
	h.stateMu.Lock()
	delete(h.stateStore, state)
	h.stateMu.Unlock()
	return true
}
