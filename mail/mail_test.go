package mail

import (
	"context"
	"testing"

	"github.com/Nivl/crashnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientMissingHost(t *testing.T) {
	t.Setenv("CRASHNOTIFY_MAILER_HOST", "")

	_, err := NewClient(context.Background(), Config{
		From: "alerts@example.org",
		To:   []string{"oncall@example.org"},
	})
	var cfgErr *crashnotify.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "host")
}

func TestNewClientMissingRecipients(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), Config{
		Host: "smtp.example.org",
		From: "alerts@example.org",
	})
	var cfgErr *crashnotify.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "recipients")
}

func TestNewClientFallsBackToEnv(t *testing.T) {
	t.Setenv("CRASHNOTIFY_MAILER_HOST", "smtp.example.org")
	t.Setenv("CRASHNOTIFY_MAILER_FROM", "alerts@example.org")
	t.Setenv("CRASHNOTIFY_MAILER_TO", "oncall@example.org,lead@example.org")

	c, err := NewClient(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.org", c.cfg.Host)
	assert.Equal(t, 587, c.cfg.Port)
	assert.Equal(t, []string{"oncall@example.org", "lead@example.org"}, c.cfg.To)
}

func TestNewClientExplicitConfigWins(t *testing.T) {
	t.Setenv("CRASHNOTIFY_MAILER_HOST", "smtp.env.example.org")
	t.Setenv("CRASHNOTIFY_MAILER_FROM", "env@example.org")
	t.Setenv("CRASHNOTIFY_MAILER_TO", "env@example.org")

	c, err := NewClient(context.Background(), Config{
		Host: "smtp.example.org",
		From: "alerts@example.org",
		To:   []string{"oncall@example.org"},
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.org", c.cfg.Host)
	assert.Equal(t, "alerts@example.org", c.cfg.From)
	assert.Equal(t, []string{"oncall@example.org"}, c.cfg.To)
}

func TestSubject(t *testing.T) {
	t.Parallel()

	c := &Client{cfg: Config{}}
	assert.Equal(t, "first line", c.subject("first line\nsecond line"))

	c = &Client{cfg: Config{Subject: "prod crash"}}
	assert.Equal(t, "prod crash", c.subject("first line\nsecond line"))
}
