// Package slack delivers crash reports to Slack incoming webhooks.
package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Nivl/crashnotify"
	"github.com/ashwanthkumar/slack-go-webhook"
	"github.com/sethvargo/go-envconfig"
)

const envPrefix = "CRASHNOTIFY_SLACK_"

// Config contains the configuration needed for Slack.
type Config struct {
	WebhookURLs []string `env:"WEBHOOKS"`
	Username    string   `env:"USERNAME,default=crashnotify"`
	IconEmoji   string   `env:"ICON_EMOJI,default=:rotating_light:"`
}

// Client is a crash-report sink backed by Slack incoming webhooks.
type Client struct {
	cfg Config
}

// NewClient creates a new Slack sink. Fields left empty in cfg fall back
// to the CRASHNOTIFY_SLACK_* environment variables.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var envCfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &envCfg,
		Lookuper: envconfig.PrefixLookuper(envPrefix, envconfig.OsLookuper()),
	})
	if err != nil {
		return nil, fmt.Errorf("parse the env: %w", err)
	}

	if len(cfg.WebhookURLs) == 0 {
		cfg.WebhookURLs = envCfg.WebhookURLs
	}
	if cfg.Username == "" {
		cfg.Username = envCfg.Username
	}
	if cfg.IconEmoji == "" {
		cfg.IconEmoji = envCfg.IconEmoji
	}

	if len(cfg.WebhookURLs) == 0 {
		return nil, &crashnotify.ConfigError{Missing: "slack webhook URL"}
	}

	return &Client{cfg: cfg}, nil
}

// SendText posts body to every configured webhook.
func (c *Client) SendText(ctx context.Context, body string, _ crashnotify.SendOptions) error {
	return c.post(ctx, body)
}

// SendAttachment posts the caption with the payload fenced in a code
// block. Incoming webhooks cannot upload files, so the trace is delivered
// inline.
func (c *Client) SendAttachment(ctx context.Context, caption string, payload []byte, filename string, _ crashnotify.SendOptions) error {
	return c.post(ctx, attachmentText(caption, filename, payload))
}

func attachmentText(caption, filename string, payload []byte) string {
	return caption + "\n`" + filename + "`\n```\n" + string(payload) + "\n```"
}

// post sends text to every webhook. A webhook that fails does not prevent
// delivery to the remaining ones; the first failure is kept.
func (c *Client) post(ctx context.Context, text string) error {
	var firstError error
	for _, wh := range c.cfg.WebhookURLs {
		payload := slack.Payload{
			Text:      text,
			Username:  c.cfg.Username,
			IconEmoji: c.cfg.IconEmoji,
		}
		errs := slack.Send(wh, "", payload)
		if len(errs) > 0 {
			if firstError == nil {
				firstError = fmt.Errorf("post to webhook: %w", errs[0])
			}
			slog.ErrorContext(ctx, "failed sending slack message", "errors", errs, "webhookURL", wh)
		}
	}
	return firstError
}
