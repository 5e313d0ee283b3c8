package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postcraft/postcraft/internal/config"
	"github.com/postcraft/postcraft/internal/models"
)

// TimestampLayout is the ISO-8601 form sent in every payload
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrStatus          = errors.New("webhook returned non-2xx status")
	ErrInvalidResponse = errors.New("invalid response from generation webhook")
)

// Client sends requests to the user's webhooks
type Client struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a webhook client
func NewClient(cfg config.WebhookConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		now: time.Now,
	}
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(TimestampLayout)
}

// Generate asks the generation webhook for a post about topic
func (c *Client) Generate(ctx context.Context, topic string, s models.ResolvedSettings) (*GenerateResponse, error) {
	body, err := c.postJSON(ctx, s.GenerateWebhook, NewGenerateRequest(topic, s, c.timestamp()))
	if err != nil {
		return nil, err
	}

	return ParseGenerateResponse(body)
}

// Publish hands the final post to the publishing webhook. The response body
// is not interpreted; any 2xx completion is success.
func (c *Client) Publish(ctx context.Context, post models.Post, s models.ResolvedSettings) error {
	_, err := c.postJSON(ctx, s.PublishWebhook, NewPublishRequest(post, s, c.timestamp()))
	return err
}

// Notify posts a Slack-style {"text": ...} message to url
func (c *Client) Notify(ctx context.Context, url, text string) error {
	_, err := c.postJSON(ctx, url, SlackMessage{Text: text})
	return err
}

// postJSON performs a single POST attempt and returns the response body
func (c *Client) postJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
