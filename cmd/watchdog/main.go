// Package main contains the entrypoint of the watchdog binary. It runs a
// configured command on a schedule and reports crashes through the
// configured sinks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/Nivl/crashnotify"
	"github.com/Nivl/crashnotify/mail"
	"github.com/Nivl/crashnotify/slack"
	"github.com/Nivl/crashnotify/telegram"
	"github.com/robfig/cron"
	"github.com/sethvargo/go-envconfig"
)

type appConfig struct {
	Telegram   telegram.Config `env:",prefix=TELEGRAM_"`
	Slack      slack.Config    `env:",prefix=SLACK_"`
	Mailer     mail.Config     `env:",prefix=MAILER_"`
	Command    string          `env:"COMMAND,required"`
	CronSpecs  string          `env:"CRON_SPECS,default=@hourly"`
	Header     string          `env:"HEADER"`
	AsAttached bool            `env:"AS_ATTACHED"`
}

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "something went wrong", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	var cfg appConfig
	if err = envconfig.Process(ctx, &cfg); err != nil {
		return fmt.Errorf("parse the env: %w", err)
	}

	command := strings.Fields(cfg.Command)
	if len(command) == 0 {
		return errors.New("COMMAND is empty")
	}

	sinks, err := buildSinks(ctx, &cfg)
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		return errors.New("no sink configured, set at least one of TELEGRAM_*, SLACK_*, MAILER_*")
	}

	opts := []crashnotify.Option{}
	if cfg.Header != "" {
		opts = append(opts, crashnotify.WithHeader(cfg.Header))
	}
	if cfg.AsAttached {
		opts = append(opts, crashnotify.AsAttachment())
	}
	reporter := crashnotify.New(sinks, opts...)

	job := reporter.WrapContext(command[0], func(ctx context.Context) error {
		out, err := exec.CommandContext(ctx, command[0], command[1:]...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("run %q: %w\n\n%s", cfg.Command, err, out)
		}
		return nil
	})

	slog.InfoContext(ctx, "watchdog: starting", "command", cfg.Command, "cron", cfg.CronSpecs)

	crn := cron.New()
	err = crn.AddFunc(cfg.CronSpecs, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := job(jobCtx); err != nil {
			slog.ErrorContext(jobCtx, "monitored command failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("setup cron: %w", err)
	}
	crn.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.InfoContext(ctx, "watchdog: stopping")

	crn.Stop()
	return nil
}

// buildSinks creates a sink for every transport with usable configuration.
// A transport whose credentials are simply absent is skipped; any other
// construction failure aborts startup.
func buildSinks(ctx context.Context, cfg *appConfig) ([]crashnotify.Sink, error) {
	var sinks []crashnotify.Sink
	var cfgErr *crashnotify.ConfigError

	tg, err := telegram.NewClient(ctx, cfg.Telegram)
	switch {
	case err == nil:
		sinks = append(sinks, tg)
	case !errors.As(err, &cfgErr):
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	sl, err := slack.NewClient(ctx, cfg.Slack)
	switch {
	case err == nil:
		sinks = append(sinks, sl)
	case !errors.As(err, &cfgErr):
		return nil, fmt.Errorf("create slack client: %w", err)
	}

	ml, err := mail.NewClient(ctx, cfg.Mailer)
	switch {
	case err == nil:
		sinks = append(sinks, ml)
	case !errors.As(err, &cfgErr):
		return nil, fmt.Errorf("create mailer client: %w", err)
	}

	return sinks, nil
}
