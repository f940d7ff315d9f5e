package notify

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/maine/feedwatch/internal/config"
	"github.com/maine/feedwatch/internal/news"
)

// Dispatcher превращает статьи в уведомления и отправляет их с ограничением частоты.
// Ошибки доставки логируются и не прерывают рассылку.
type Dispatcher struct {
	notifier   Notifier
	summarizer Summarizer
	limiter    *rate.Limiter
	bodyLength int
	logger     *slog.Logger
}

// Option настраивает Dispatcher.
type Option func(*Dispatcher)

// WithSummarizer подключает генерацию текста уведомления.
func WithSummarizer(s Summarizer) Option {
	return func(d *Dispatcher) {
		d.summarizer = s
	}
}

// NewDispatcher создаёт диспетчер поверх канала доставки.
func NewDispatcher(notifier Notifier, cfg config.Notify, logger *slog.Logger, opts ...Option) *Dispatcher {
	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(cfg.RatePerMinute / 60)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	bodyLength := cfg.BodyLength
	if bodyLength <= 0 {
		bodyLength = 100
	}

	d := &Dispatcher{
		notifier:   notifier,
		limiter:    rate.NewLimiter(limit, burst),
		bodyLength: bodyLength,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch отправляет по уведомлению на каждую статью и возвращает число доставленных.
func (d *Dispatcher) Dispatch(ctx context.Context, articles []news.Article) int {
	if len(articles) == 0 {
		return 0
	}
	if !d.notifier.Permitted() {
		d.logger.DebugContext(ctx, "notifications not permitted, skipping", "count", len(articles))
		return 0
	}

	delivered := 0
	for _, article := range articles {
		if err := d.limiter.Wait(ctx); err != nil {
			d.logger.WarnContext(ctx, "notification dispatch interrupted", "err", err, "pending", len(articles)-delivered)
			break
		}

		if err := d.notifier.Deliver(ctx, Title(article), d.body(ctx, article)); err != nil {
			d.logger.WarnContext(ctx, "notification delivery failed", "link", article.Link, "err", err)
			continue
		}
		delivered++
	}

	d.logger.InfoContext(ctx, "notifications dispatched", "delivered", delivered, "total", len(articles))
	return delivered
}

func (d *Dispatcher) body(ctx context.Context, article news.Article) string {
	if d.summarizer == nil {
		return Body(article, d.bodyLength)
	}
	summary, err := d.summarizer.Summarize(ctx, article)
	if err != nil {
		d.logger.DebugContext(ctx, "summary failed, using description", "link", article.Link, "err", err)
		return Body(article, d.bodyLength)
	}
	return summary
}
