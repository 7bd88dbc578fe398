package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soratane/livebot/bot"
)

type fakeBot struct {
	status  *bot.Status
	logs    *bot.LogSink
	sendErr error
	sent    []string
}

func (f *fakeBot) Status() *bot.Status { return f.status }
func (f *fakeBot) Logs() *bot.LogSink  { return f.logs }
func (f *fakeBot) SendMessage(ctx context.Context, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func newFakeBot() *fakeBot {
	return &fakeBot{status: &bot.Status{}, logs: bot.NewLogSink(nil)}
}

type fakeAnalyzer struct {
	summary string
	err     error
}

func (f *fakeAnalyzer) AnalyzeComments(ctx context.Context, author string, comments []string) (string, error) {
	return f.summary, f.err
}

type fakeHistory struct {
	messages []string
	err      error
}

func (f *fakeHistory) MessagesByAuthor(ctx context.Context, author string, limit int) ([]string, error) {
	return f.messages, f.err
}

func newTestMux(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "0")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewMux(ctx, deps)
}

func TestHandleStatusNotConfigured(t *testing.T) {
	mux := newTestMux(t, Deps{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["bot_running"] != false {
		t.Errorf("bot_running = %v, want false", body["bot_running"])
	}
	if body["is_live"] != false {
		t.Errorf("is_live = %v, want false", body["is_live"])
	}
}

func TestHandleStatusLive(t *testing.T) {
	fb := newFakeBot()
	fb.status.Set("chat-1", "vid-1")
	mux := newTestMux(t, Deps{Bot: fb})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["bot_running"] != true || body["is_live"] != true {
		t.Errorf("unexpected status body: %v", body)
	}
	if body["video_id"] != "vid-1" {
		t.Errorf("video_id = %v, want vid-1", body["video_id"])
	}
}

func TestHandleChatLog(t *testing.T) {
	fb := newFakeBot()
	fb.logs.Record(context.Background(), bot.EntryUser, "alice", "hello")
	fb.logs.Record(context.Background(), bot.EntryBot, "livebot", "hi alice")
	mux := newTestMux(t, Deps{Bot: fb})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat-log", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var body struct {
		Log []bot.Entry `json:"log"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Log) != 2 {
		t.Fatalf("got %d log entries, want 2", len(body.Log))
	}
	if body.Log[0].Author != "alice" || body.Log[1].Kind != bot.EntryBot {
		t.Errorf("unexpected log contents: %+v", body.Log)
	}
}

func TestHandleSendMessage(t *testing.T) {
	fb := newFakeBot()
	mux := newTestMux(t, Deps{Bot: fb})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{"message":"hello chat"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(fb.sent) != 1 || fb.sent[0] != "hello chat" {
		t.Fatalf("sent = %v, want [hello chat]", fb.sent)
	}
}

func TestHandleSendMessageNoSession(t *testing.T) {
	fb := newFakeBot()
	fb.sendErr = bot.ErrNoActiveSession
	mux := newTestMux(t, Deps{Bot: fb})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{"message":"hi"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want 404", rec.Code)
	}
}

func TestHandleSendMessageValidation(t *testing.T) {
	fb := newFakeBot()
	mux := newTestMux(t, Deps{Bot: fb})

	cases := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty message", http.MethodPost, `{"message":"  "}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/api/send-message", strings.NewReader(tc.body))
			mux.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status code = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHandleSendMessageSendFailure(t *testing.T) {
	fb := newFakeBot()
	fb.sendErr = errors.New("insert failed")
	mux := newTestMux(t, Deps{Bot: fb})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{"message":"hi"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status code = %d, want 502", rec.Code)
	}
}

func TestHandleSendMessageBotUnconfigured(t *testing.T) {
	mux := newTestMux(t, Deps{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{"message":"hi"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want 503", rec.Code)
	}
}

func TestHandleAnalyzeUser(t *testing.T) {
	mux := newTestMux(t, Deps{
		Analyzer: &fakeAnalyzer{summary: "likes cats"},
		History:  &fakeHistory{messages: []string{"cats!", "more cats"}},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze-user?author=alice", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["analysis"] != "likes cats" {
		t.Errorf("analysis = %v, want likes cats", body["analysis"])
	}
	if body["message_count"] != float64(2) {
		t.Errorf("message_count = %v, want 2", body["message_count"])
	}
}

func TestHandleAnalyzeUserPostBody(t *testing.T) {
	mux := newTestMux(t, Deps{
		Analyzer: &fakeAnalyzer{summary: "summary"},
		History:  &fakeHistory{messages: []string{"hi"}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-user", strings.NewReader(`{"author":"bob"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAnalyzeUserErrors(t *testing.T) {
	cases := []struct {
		name string
		deps Deps
		url  string
		want int
	}{
		{"missing author", Deps{Analyzer: &fakeAnalyzer{}, History: &fakeHistory{}}, "/api/analyze-user", http.StatusBadRequest},
		{"no analyzer", Deps{History: &fakeHistory{}}, "/api/analyze-user?author=a", http.StatusServiceUnavailable},
		{"no history rows", Deps{Analyzer: &fakeAnalyzer{}, History: &fakeHistory{}}, "/api/analyze-user?author=a", http.StatusNotFound},
		{"analyzer failure", Deps{Analyzer: &fakeAnalyzer{err: errors.New("quota")}, History: &fakeHistory{messages: []string{"x"}}}, "/api/analyze-user?author=a", http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(t, tc.deps)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if rec.Code != tc.want {
				t.Fatalf("status code = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCorrelationIDHeader(t *testing.T) {
	mux := newTestMux(t, Deps{Bot: newFakeBot()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("missing generated X-Correlation-ID header")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	mux.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-123" {
		t.Errorf("correlation id = %q, want corr-123", got)
	}
}
