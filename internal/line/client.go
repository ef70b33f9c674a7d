package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"line-reservation-bot/internal/config"
)

const (
	defaultReplyURL = "https://api.line.me/v2/bot/message/reply"
	defaultPushURL  = "https://api.line.me/v2/bot/message/push"
	tokenURL        = "https://api.line.me/v2/oauth/accessToken"

	// maxMessages is the per-call limit of the LINE reply and push APIs.
	maxMessages = 5

	maxAttempts = 3
)

// Client delivers messages through the LINE Messaging API. Every call
// is bounded by the underlying HTTP client timeout; failed calls are
// retried with a fixed backoff, longer when the API reports 429.
type Client struct {
	httpClient      *http.Client
	tokens          oauth2.TokenSource
	replyURL        string
	pushURL         string
	backoff         time.Duration
	rateLimitedWait time.Duration
}

// NewClient creates a Client. A configured long-lived channel token is
// used as-is; otherwise a short-lived token is issued and refreshed
// through the LINE OAuth endpoint using the channel id and secret.
func NewClient(cfg *config.LineConfig) *Client {
	var tokens oauth2.TokenSource
	if cfg.ChannelToken != "" {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.ChannelToken})
	} else {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ChannelID,
			ClientSecret: cfg.ChannelSecret,
			TokenURL:     tokenURL,
		}
		tokens = cc.TokenSource(context.Background())
	}

	return &Client{
		httpClient:      &http.Client{Timeout: 5 * time.Second},
		tokens:          tokens,
		replyURL:        defaultReplyURL,
		pushURL:         defaultPushURL,
		backoff:         500 * time.Millisecond,
		rateLimitedWait: time.Second,
	}
}

type replyPayload struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushPayload struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// Reply sends messages in answer to a webhook event. The reply token
// is single-use and expires within about a minute, so exhausting
// retries means the reply is lost; the caller logs the outcome and
// moves on.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	if len(messages) == 0 || len(messages) > maxMessages {
		return fmt.Errorf("reply must carry between 1 and %d messages, got %d", maxMessages, len(messages))
	}
	return c.send(ctx, c.replyURL, replyPayload{ReplyToken: replyToken, Messages: messages})
}

// Push sends messages directly to a user, outside any reply window.
// Used by the reminder job.
func (c *Client) Push(ctx context.Context, userID string, messages []Message) error {
	if len(messages) == 0 || len(messages) > maxMessages {
		return fmt.Errorf("push must carry between 1 and %d messages, got %d", maxMessages, len(messages))
	}
	return c.send(ctx, c.pushURL, pushPayload{To: userID, Messages: messages})
}

func (c *Client) send(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal LINE payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := c.post(ctx, url, body)
		if err == nil {
			return nil
		}
		lastErr = err
		logrus.Warnf("Failed to deliver LINE message (attempt %d/%d): %v", attempt, maxAttempts, err)

		if attempt == maxAttempts {
			break
		}

		wait := c.backoff
		if status == http.StatusTooManyRequests {
			wait = c.rateLimitedWait
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("delivery cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("failed to deliver LINE message after %d attempts: %w", maxAttempts, lastErr)
}

// post performs one delivery attempt. It returns the HTTP status code
// when a response was received, or 0 on a transport error.
func (c *Client) post(ctx context.Context, url string, body []byte) (int, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return 0, fmt.Errorf("failed to obtain channel access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, fmt.Errorf("LINE API error (%d): %s", resp.StatusCode, string(detail))
	}
	return resp.StatusCode, nil
}
