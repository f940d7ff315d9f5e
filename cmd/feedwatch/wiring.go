package main

import (
	"context"
	"time"

	"github.com/maine/feedwatch/internal/app"
	"github.com/maine/feedwatch/internal/filter"
	"github.com/maine/feedwatch/internal/gemini"
	"github.com/maine/feedwatch/internal/ledger"
	"github.com/maine/feedwatch/internal/notify"
	"github.com/maine/feedwatch/internal/ntfy"
	"github.com/maine/feedwatch/internal/ranking"
	"github.com/maine/feedwatch/internal/sources"
	"github.com/maine/feedwatch/internal/telegram"
)

func newTransport(a *appEnv) *sources.HTTPTransport {
	return sources.NewHTTPTransport(a.cfg.Pipeline, nil)
}

// newPipeline собирает пайплайн. Реестр уведомлений живёт, пока жив процесс.
func newPipeline(ctx context.Context, a *appEnv, withNotifications bool) *app.Pipeline {
	deps := app.PipelineDeps{
		Fetcher:              sources.NewFetcher(newTransport(a), time.Now, a.logger),
		Scorer:               ranking.NewScorer(),
		Filter:               filter.New(time.Now),
		Ledger:               ledger.New(),
		Clock:                time.Now,
		Logger:               a.logger,
		MaxConcurrentFetches: a.cfg.Pipeline.MaxConcurrentFetches,
	}
	if withNotifications {
		deps.Notifier = newDispatcher(ctx, a)
	}
	return app.NewPipeline(deps)
}

// notificationChannels возвращает все каналы, для которых есть настройки и токены.
func notificationChannels(a *appEnv) notify.Multi {
	cfg := a.cfg.Notify

	channels := notify.Multi{notify.LogNotifier{Logger: a.logger}}
	if cfg.NtfyTopic != "" {
		channels = append(channels, ntfy.New(cfg.NtfyTopic, a.env.NtfyToken))
	}
	if a.env.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		client := telegram.NewBotClient(a.env.TelegramBotToken)
		channels = append(channels, telegram.NewNotifier(client, cfg.TelegramChatID, a.logger))
	}
	return channels
}

// newDispatcher собирает рассылку по всем настроенным каналам.
func newDispatcher(ctx context.Context, a *appEnv) *notify.Dispatcher {
	cfg := a.cfg.Notify
	channels := notificationChannels(a)

	var opts []notify.Option
	if a.env.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, a.env.GeminiAPIKey, a.logger)
		if err != nil {
			a.logger.Warn("gemini summaries disabled", "err", err)
		} else {
			opts = append(opts, notify.WithSummarizer(gemini.NewSummarizer(client, cfg.GeminiModel, cfg.BodyLength)))
		}
	}

	a.logger.Debug("notification channels configured", "count", len(channels))
	return notify.NewDispatcher(channels, cfg, a.logger, opts...)
}
