// Package mail delivers crash reports over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Nivl/crashnotify"
	"github.com/sethvargo/go-envconfig"
	gomail "github.com/wneessen/go-mail"
)

const envPrefix = "CRASHNOTIFY_MAILER_"

// Config contains the configuration needed for the SMTP mailer.
type Config struct {
	Host     string   `env:"HOST"`
	Port     int      `env:"PORT,default=587"`
	Login    string   `env:"LOGIN"`
	Password string   `env:"PASSWORD"`
	From     string   `env:"FROM"`
	To       []string `env:"TO"`
	SSL      bool     `env:"SSL"`
	// Subject overrides the generated subject, which is the first line
	// of the report.
	Subject string `env:"SUBJECT"`
}

// Client is a crash-report sink that emails reports.
type Client struct {
	cfg  Config
	smtp *gomail.Client
}

// NewClient creates a new mailer sink. Fields left empty in cfg fall back
// to the CRASHNOTIFY_MAILER_* environment variables; a host, sender, or
// recipient list that is resolvable from neither yields a
// crashnotify.ConfigError.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var envCfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &envCfg,
		Lookuper: envconfig.PrefixLookuper(envPrefix, envconfig.OsLookuper()),
	})
	if err != nil {
		return nil, fmt.Errorf("parse the env: %w", err)
	}

	if cfg.Host == "" {
		cfg.Host = envCfg.Host
	}
	if cfg.Port == 0 {
		cfg.Port = envCfg.Port
	}
	if cfg.Login == "" {
		cfg.Login = envCfg.Login
	}
	if cfg.Password == "" {
		cfg.Password = envCfg.Password
	}
	if cfg.From == "" {
		cfg.From = envCfg.From
	}
	if len(cfg.To) == 0 {
		cfg.To = envCfg.To
	}
	if !cfg.SSL {
		cfg.SSL = envCfg.SSL
	}
	if cfg.Subject == "" {
		cfg.Subject = envCfg.Subject
	}

	if cfg.Host == "" {
		return nil, &crashnotify.ConfigError{Missing: "mailer host"}
	}
	if cfg.From == "" {
		return nil, &crashnotify.ConfigError{Missing: "mailer sender address"}
	}
	if len(cfg.To) == 0 {
		return nil, &crashnotify.ConfigError{Missing: "mailer recipients"}
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Login != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Login),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.SSL {
		opts = append(opts, gomail.WithSSLPort(false))
	}

	smtp, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create SMTP client: %w", err)
	}

	return &Client{
		cfg:  cfg,
		smtp: smtp,
	}, nil
}

// SendText emails body to every configured recipient.
func (c *Client) SendText(ctx context.Context, body string, _ crashnotify.SendOptions) error {
	return c.send(ctx, body, nil)
}

// SendAttachment emails the caption with payload attached as filename.
func (c *Client) SendAttachment(ctx context.Context, caption string, payload []byte, filename string, _ crashnotify.SendOptions) error {
	return c.send(ctx, caption, func(m *gomail.Msg) error {
		return m.AttachReader(filename, bytes.NewReader(payload))
	})
}

func (c *Client) send(ctx context.Context, body string, attach func(*gomail.Msg) error) error {
	m := gomail.NewMsg()
	if err := m.From(c.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(c.cfg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(c.subject(body))
	m.SetBodyString(gomail.TypeTextPlain, body)

	if attach != nil {
		if err := attach(m); err != nil {
			return fmt.Errorf("attach report: %w", err)
		}
	}

	if err := c.smtp.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// subject returns the configured subject, else the first line of the
// report.
func (c *Client) subject(body string) string {
	if c.cfg.Subject != "" {
		return c.cfg.Subject
	}
	line, _, _ := strings.Cut(body, "\n")
	return line
}
