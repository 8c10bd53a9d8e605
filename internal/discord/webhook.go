package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cjjwisniewski/seeker-functions/pkg/httpclient"
)

// Embed is one rich block inside a webhook message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
}

// EmbedField is a name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedImage references an image by URL.
type EmbedImage struct {
	URL string `json:"url"`
}

// WebhookMessage is the payload posted to a Discord webhook.
type WebhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// WebhookSender posts digest messages to a fixed Discord webhook URL.
type WebhookSender struct {
	webhookURL string
	http       *httpclient.CircuitBreakerClient
	logger     *slog.Logger
}

// NewWebhookSender creates a webhook sender.
func NewWebhookSender(webhookURL string, logger *slog.Logger) *WebhookSender {
	base := httpclient.New(httpclient.DefaultConfig())
	return &WebhookSender{
		webhookURL: webhookURL,
		http:       httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("discord-webhook"), logger),
		logger:     logger,
	}
}

// Send posts one message to the webhook. Discord answers 204 on success.
func (s *WebhookSender) Send(ctx context.Context, msg WebhookMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	resp, err := s.http.Post(ctx, s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "discord-webhook")
	}
	return nil
}
