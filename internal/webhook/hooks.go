package webhook

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/postcraft/postcraft/internal/config"
	"github.com/postcraft/postcraft/internal/models"
)

// topicPreviewLength is how much of the topic a notification shows
const topicPreviewLength = 50

// PublishHook runs after a post has been published. Hooks are best effort:
// their errors are logged by the caller and never change the publish result.
type PublishHook interface {
	Name() string
	AfterPublish(ctx context.Context, post models.Post, s models.ResolvedSettings) error
}

// NotificationText is the message announcing a published post
func NotificationText(post models.Post) string {
	return fmt.Sprintf("🚀 New LinkedIn post published: \"%s\"", TruncateTopic(post.Topic, topicPreviewLength))
}

// SlackHook posts to the Slack webhook configured in the user's integrations
type SlackHook struct {
	client *Client
}

func NewSlackHook(client *Client) *SlackHook {
	return &SlackHook{client: client}
}

func (h *SlackHook) Name() string { return "slack" }

// AfterPublish is a no-op when no Slack webhook is configured
func (h *SlackHook) AfterPublish(ctx context.Context, post models.Post, s models.ResolvedSettings) error {
	url := s.IntegrationSettings.SlackWebhook
	if url == "" {
		return nil
	}
	return h.client.Notify(ctx, url, NotificationText(post))
}

// messageSender is the part of *tgbotapi.BotAPI the hook uses
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramHook sends the publish notification to a Telegram chat
type TelegramHook struct {
	bot    messageSender
	chatID int64
}

// NewTelegramHook connects to the Bot API with the configured token
func NewTelegramHook(cfg config.TelegramConfig) (*TelegramHook, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return &TelegramHook{bot: bot, chatID: cfg.ChatID}, nil
}

func (h *TelegramHook) Name() string { return "telegram" }

func (h *TelegramHook) AfterPublish(ctx context.Context, post models.Post, s models.ResolvedSettings) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	msg := tgbotapi.NewMessage(h.chatID, NotificationText(post))
	msg.DisableWebPagePreview = true

	// the Bot API client takes no context; stop waiting when ctx ends
	done := make(chan error, 1)
	go func() {
		_, err := h.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send telegram message: %w", ctx.Err())
	}
}
