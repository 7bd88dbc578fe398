// Package responder generates conversational replies with Google's Gemini
// models. It is an optional dependency of the bot: when no API key is
// configured the bot falls back to a canned apology, and any generation
// failure is swallowed at this boundary so chat handling never stalls on the
// model.
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = "You are a friendly live-stream chat bot. Reply to the viewer's message in one or two short sentences, in the same language the viewer used. Be warm and casual; never use markdown."

// Gemini wraps a generative model client. A nil Gemini is valid and always
// reports no reply.
type Gemini struct {
	client *genai.Client
	model  string
}

// New dials the Gemini API. Callers should skip construction entirely when no
// API key is configured.
func New(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Respond produces a chat reply for free-form viewer text. It returns "" when
// generation fails or produces nothing; the caller substitutes its own
// fallback.
func (g *Gemini) Respond(ctx context.Context, text string) string {
	if g == nil || g.client == nil {
		return ""
	}
	m := g.client.GenerativeModel(g.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	resp, err := m.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		slog.Warn("gemini generation failed", "error", err)
		return ""
	}
	return firstText(resp)
}

// AnalyzeComments summarizes a viewer's recent chat history.
func (g *Gemini) AnalyzeComments(ctx context.Context, author string, comments []string) (string, error) {
	if g == nil || g.client == nil {
		return "", fmt.Errorf("responder not configured")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the personality and interests of the chat participant %q based on their recent messages. Answer in a few sentences, in the same language as the messages.\n\n", author)
	for _, c := range comments {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	m := g.client.GenerativeModel(g.model)
	resp, err := m.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return "", fmt.Errorf("gemini analysis: %w", err)
	}
	out := firstText(resp)
	if out == "" {
		return "", fmt.Errorf("gemini analysis: empty response")
	}
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
