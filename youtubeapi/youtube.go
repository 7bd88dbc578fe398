// Package youtubeapi wraps Google OAuth2 client config and the YouTube Data API
// for live-chat monitoring: finding the channel's active broadcast, resolving
// and polling its live chat, and posting messages. Tokens are persisted via the
// provided TokenStore interface so they can be refreshed and reused.
package youtubeapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/soratane/livebot/bot"
	"github.com/soratane/livebot/config"
)

const provider = "youtube"

// chatMessageLimit is YouTube's live chat message length cap.
const chatMessageLimit = 200

type TokenStore interface {
	UpsertOAuthToken(ctx context.Context, provider string, accessToken string, refreshToken string, expiry time.Time, scope string) error
	GetOAuthToken(ctx context.Context, provider string) (accessToken string, refreshToken string, expiry time.Time, scope string, err error)
}

// Service holds the OAuth client config and token persistence for the
// YouTube Data API.
type Service struct {
	cfg   *config.Config
	db    TokenStore
	oauth *oauth2.Config
}

func New(cfg *config.Config, ts TokenStore) *Service {
	scopes := []string{"https://www.googleapis.com/auth/youtube"}
	if cfg.YTScopes != "" {
		// allow comma or space separated
		s := strings.ReplaceAll(cfg.YTScopes, ",", " ")
		if fields := strings.Fields(s); len(fields) > 0 {
			scopes = fields
		}
	}
	oauth := &oauth2.Config{
		ClientID:     cfg.YTClientID,
		ClientSecret: cfg.YTClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.YTRedirectURI,
		Scopes:       scopes,
	}
	return &Service{cfg: cfg, db: ts, oauth: oauth}
}

func (s *Service) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	_ = s.db.UpsertOAuthToken(ctx, provider, tok.AccessToken, tok.RefreshToken, tok.Expiry, strings.Join(s.oauth.Scopes, " "))
	return tok, nil
}

func (s *Service) refreshIfNeeded(ctx context.Context) (*oauth2.Token, error) {
	access, refresh, expiry, scope, err := s.db.GetOAuthToken(ctx, provider)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, errors.New("no youtube token stored; complete /auth/youtube/start first")
	}
	tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh, Expiry: expiry}
	if time.Until(tok.Expiry) > 2*time.Minute {
		return tok, nil
	}
	newTok, err := s.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		return tok, err
	}
	_ = s.db.UpsertOAuthToken(ctx, provider, newTok.AccessToken, newTok.RefreshToken, newTok.Expiry, scope)
	return newTok, nil
}

// Client returns an authenticated YouTube Data API service, refreshing the
// stored token when it is about to expire.
func (s *Service) Client(ctx context.Context) (*yt.Service, error) {
	tok, err := s.refreshIfNeeded(ctx)
	if err != nil {
		return nil, err
	}
	return yt.NewService(ctx, option.WithHTTPClient(s.oauth.Client(ctx, tok)))
}

// LiveChat implements bot.PlatformClient over the YouTube Data API.
type LiveChat struct {
	yt func(ctx context.Context) (*yt.Service, error)
}

// NewLiveChat builds the platform client over an OAuth-backed Service.
func NewLiveChat(s *Service) *LiveChat {
	return &LiveChat{yt: s.Client}
}

// FindActiveLiveVideo searches the channel for a currently-live video and
// returns its id, or "" when the channel is not live.
func (c *LiveChat) FindActiveLiveVideo(ctx context.Context, channelID string) (string, error) {
	svc, err := c.yt(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube client: %w", err)
	}
	res, err := svc.Search.List([]string{"id"}).
		ChannelId(channelID).
		EventType("live").
		Type("video").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("live search: %w", err)
	}
	if len(res.Items) == 0 || res.Items[0].Id == nil {
		return "", nil
	}
	return res.Items[0].Id.VideoId, nil
}

// ResolveChatID returns the active live chat id for a video, or "" when the
// video has no resolvable chat.
func (c *LiveChat) ResolveChatID(ctx context.Context, videoID string) (string, error) {
	svc, err := c.yt(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube client: %w", err)
	}
	res, err := svc.Videos.List([]string{"liveStreamingDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("video details: %w", err)
	}
	if len(res.Items) == 0 || res.Items[0].LiveStreamingDetails == nil {
		return "", nil
	}
	return res.Items[0].LiveStreamingDetails.ActiveLiveChatId, nil
}

// ListNewMessages retrieves the newest chat batch, dropping events that carry
// no message text (stickers, membership events, textless super-chats).
func (c *LiveChat) ListNewMessages(ctx context.Context, chatID string) ([]bot.InboundMessage, error) {
	svc, err := c.yt(ctx)
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}
	res, err := svc.LiveChatMessages.List(chatID, []string{"snippet", "authorDetails"}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("live chat list: %w", err)
	}
	out := make([]bot.InboundMessage, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Snippet == nil || item.Snippet.TextMessageDetails == nil {
			continue
		}
		author := ""
		if item.AuthorDetails != nil {
			author = item.AuthorDetails.DisplayName
		}
		out = append(out, bot.InboundMessage{
			ID:     item.Id,
			Author: author,
			Text:   item.Snippet.TextMessageDetails.MessageText,
		})
	}
	return out, nil
}

// PostMessage inserts a text message into the live chat after sanitizing it
// to the platform's constraints.
func (c *LiveChat) PostMessage(ctx context.Context, chatID, text string) error {
	svc, err := c.yt(ctx)
	if err != nil {
		return fmt.Errorf("youtube client: %w", err)
	}
	msg := &yt.LiveChatMessage{
		Snippet: &yt.LiveChatMessageSnippet{
			LiveChatId: chatID,
			Type:       "textMessageEvent",
			TextMessageDetails: &yt.LiveChatTextMessageDetails{
				MessageText: SanitizeMessage(text),
			},
		},
	}
	if _, err := svc.LiveChatMessages.Insert([]string{"snippet"}, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("live chat insert: %w", err)
	}
	return nil
}

// LiveEndTime returns the broadcast's actual end time. While the broadcast is
// live it returns the zero time. A video that can no longer be found is
// reported as ended at the current time.
func (c *LiveChat) LiveEndTime(ctx context.Context, videoID string) (time.Time, error) {
	svc, err := c.yt(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("youtube client: %w", err)
	}
	res, err := svc.Videos.List([]string{"liveStreamingDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return time.Time{}, fmt.Errorf("video details: %w", err)
	}
	if len(res.Items) == 0 {
		return time.Now().UTC(), nil
	}
	details := res.Items[0].LiveStreamingDetails
	if details == nil || details.ActualEndTime == "" {
		return time.Time{}, nil
	}
	endAt, err := time.Parse(time.RFC3339, details.ActualEndTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse actual end time %q: %w", details.ActualEndTime, err)
	}
	return endAt, nil
}

// SanitizeMessage collapses newlines and carriage returns to spaces and
// enforces the 200-character chat limit: longer texts become 197 characters
// plus an ellipsis marker. Counting is rune-wise so multibyte text is not
// split mid-character.
func SanitizeMessage(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return "(no response generated)"
	}
	runes := []rune(text)
	if len(runes) > chatMessageLimit {
		return string(runes[:chatMessageLimit-3]) + "..."
	}
	return text
}
