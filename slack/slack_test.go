package slack

import (
	"context"
	"testing"

	"github.com/Nivl/crashnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientMissingWebhook(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), Config{})
	var cfgErr *crashnotify.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "webhook")
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	c, err := NewClient(context.Background(), Config{
		WebhookURLs: []string{"https://hooks.slack.com/services/T0/B0/XX"},
	})
	require.NoError(t, err)
	assert.Equal(t, "crashnotify", c.cfg.Username)
	assert.Equal(t, ":rotating_light:", c.cfg.IconEmoji)
}

func TestNewClientFallsBackToEnv(t *testing.T) {
	t.Setenv("CRASHNOTIFY_SLACK_WEBHOOKS", "https://hooks.slack.com/services/T0/B0/XX")
	t.Setenv("CRASHNOTIFY_SLACK_USERNAME", "ops-bot")

	c, err := NewClient(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://hooks.slack.com/services/T0/B0/XX"}, c.cfg.WebhookURLs)
	assert.Equal(t, "ops-bot", c.cfg.Username)
}

func TestAttachmentText(t *testing.T) {
	t.Parallel()

	text := attachmentText("it crashed", "crash.txt", []byte("full trace"))
	assert.Contains(t, text, "it crashed\n")
	assert.Contains(t, text, "`crash.txt`")
	assert.Contains(t, text, "```\nfull trace\n```")
}
