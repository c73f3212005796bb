// Package telegram delivers crash reports through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/Nivl/crashnotify"
	"github.com/Nivl/crashnotify/internal/errutil"
	"github.com/sethvargo/go-envconfig"
)

// envPrefix is prepended to the env names of Config fields when they are
// resolved from the environment.
const envPrefix = "CRASHNOTIFY_TELEGRAM_"

//go:generate mockgen -destination=../internal/mocks/doer.go -package=mocks github.com/Nivl/crashnotify/telegram Doer

// Doer performs HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains the configuration needed for Telegram.
type Config struct {
	// Token is the bot token. See https://core.telegram.org/bots#botfather.
	Token string `env:"TOKEN"`
	// ChatIDs lists the chats the reports are delivered to.
	ChatIDs []int64 `env:"CHAT_ID"`
	// APIURL is the base URL of the Bot API.
	APIURL string `env:"API_URL,default=https://api.telegram.org"`
}

// Client is a crash-report sink backed by a Telegram bot.
type Client struct {
	cfg  Config
	http Doer
}

// NewClient creates a new Telegram sink. Fields left empty in cfg fall
// back to the CRASHNOTIFY_TELEGRAM_* environment variables; a token or
// chat ID that is resolvable from neither yields a
// crashnotify.ConfigError.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	return NewClientWithDoer(ctx, cfg, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewClientWithDoer is NewClient with an injectable HTTP client.
func NewClientWithDoer(ctx context.Context, cfg Config, doer Doer) (*Client, error) {
	var envCfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &envCfg,
		Lookuper: envconfig.PrefixLookuper(envPrefix, envconfig.OsLookuper()),
	})
	if err != nil {
		return nil, fmt.Errorf("parse the env: %w", err)
	}

	if cfg.Token == "" {
		cfg.Token = envCfg.Token
	}
	if len(cfg.ChatIDs) == 0 {
		cfg.ChatIDs = envCfg.ChatIDs
	}
	if cfg.APIURL == "" {
		cfg.APIURL = envCfg.APIURL
	}

	if cfg.Token == "" {
		return nil, &crashnotify.ConfigError{Missing: "telegram token"}
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, &crashnotify.ConfigError{Missing: "telegram chat ID"}
	}

	return &Client{
		cfg:  cfg,
		http: doer,
	}, nil
}

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: api error %d: %s", e.Code, e.Description)
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SendText sends body to every configured chat. A chat that fails does
// not prevent delivery to the remaining ones; the failures are
// aggregated.
func (c *Client) SendText(ctx context.Context, body string, opts crashnotify.SendOptions) error {
	var errs []error
	for _, chatID := range c.cfg.ChatIDs {
		if err := c.sendMessage(ctx, chatID, body, opts); err != nil {
			errs = append(errs, fmt.Errorf("send message to chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// SendAttachment uploads payload as a document to every configured chat,
// with body as the caption. Same best-effort fan-out as SendText.
func (c *Client) SendAttachment(ctx context.Context, caption string, payload []byte, filename string, opts crashnotify.SendOptions) error {
	var errs []error
	for _, chatID := range c.cfg.ChatIDs {
		if err := c.sendDocument(ctx, chatID, caption, payload, filename, opts); err != nil {
			errs = append(errs, fmt.Errorf("send document to chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) sendMessage(ctx context.Context, chatID int64, text string, opts crashnotify.SendOptions) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableNotification:   opts.DisableNotification,
		DisableWebPagePreview: opts.DisableWebPagePreview,
	})
	if err != nil {
		return fmt.Errorf("marshal the body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create new HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) sendDocument(ctx context.Context, chatID int64, caption string, payload []byte, filename string, opts crashnotify.SendOptions) error {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}
	if _, err = part.Write(payload); err != nil {
		return fmt.Errorf("write document part: %w", err)
	}

	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"caption": caption,
	}
	if opts.DisableNotification {
		fields["disable_notification"] = "true"
	}
	for name, value := range fields {
		if err = w.WriteField(name, value); err != nil {
			return fmt.Errorf("write %s field: %w", name, err)
		}
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendDocument"), body)
	if err != nil {
		return fmt.Errorf("create new HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// do sends the request and decodes the Bot API response envelope.
func (c *Client) do(req *http.Request) (err error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send HTTP request: %w", err)
	}
	defer errutil.RunAndSetError(resp.Body.Close, &err, "close response body")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var apiResp apiResponse
	if err = json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response (http %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		return &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Description,
		}
	}
	return nil
}

func (c *Client) methodURL(method string) string {
	return c.cfg.APIURL + "/bot" + c.cfg.Token + "/" + method
}
