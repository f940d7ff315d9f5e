// Package notify доставляет уведомления о новых статьях в настроенные каналы.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maine/feedwatch/internal/news"
)

const titlePrefix = "New Article: "

// Notifier: канал доставки уведомлений.
type Notifier interface {
	// Permitted сообщает, можно ли сейчас отправлять в этот канал.
	Permitted() bool
	Deliver(ctx context.Context, title, body string) error
}

// Summarizer готовит короткий текст уведомления вместо обрезанного описания.
type Summarizer interface {
	Summarize(ctx context.Context, article news.Article) (string, error)
}

// Title собирает заголовок уведомления.
func Title(article news.Article) string {
	return titlePrefix + article.Title
}

// Body возвращает первые limit символов описания и многоточие.
func Body(article news.Article, limit int) string {
	runes := []rune(article.Description)
	if limit > 0 && len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}

// Multi рассылает уведомление во все разрешённые каналы.
type Multi []Notifier

// Permitted истинно, если разрешён хотя бы один канал.
func (m Multi) Permitted() bool {
	for _, n := range m {
		if n.Permitted() {
			return true
		}
	}
	return false
}

// Deliver отправляет во все разрешённые каналы и объединяет ошибки.
func (m Multi) Deliver(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if !n.Permitted() {
			continue
		}
		if err := n.Deliver(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier пишет уведомления в лог. Всегда разрешён.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Permitted() bool {
	return true
}

func (l LogNotifier) Deliver(ctx context.Context, title, body string) error {
	l.Logger.InfoContext(ctx, "notification", "title", title, "body", body)
	return nil
}
