package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// retryAttempts - количество попыток отправки при ошибке
	retryAttempts = 3
	// defaultRetryDelay - базовая задержка между попытками
	defaultRetryDelay = 2 * time.Second
)

// Notifier доставляет уведомления о статьях в один чат Telegram.
type Notifier struct {
	client     TelegramClient
	chatID     int64
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewNotifier создаёт канал уведомлений. client может быть nil: тогда канал выключен.
func NewNotifier(client TelegramClient, chatID int64, logger *slog.Logger) *Notifier {
	return &Notifier{
		client:     client,
		chatID:     chatID,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

// Permitted сообщает, настроен ли канал (есть токен и чат).
func (n *Notifier) Permitted() bool {
	return n.client != nil && n.chatID != 0
}

// Deliver отправляет заголовок и текст одним HTML-сообщением.
func (n *Notifier) Deliver(ctx context.Context, title, body string) error {
	if !n.Permitted() {
		return fmt.Errorf("telegram notifier is not configured")
	}
	return n.sendWithRetry(ctx, FormatMessage(title, body))
}

// FormatMessage собирает текст сообщения для ModeHTML.
func FormatMessage(title, body string) string {
	var b strings.Builder
	b.WriteString("📰 <b>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</b>")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(body))
	}
	return b.String()
}

// sendWithRetry отправляет сообщение с повторными попытками при ошибках.
func (n *Notifier) sendWithRetry(ctx context.Context, message string) error {
	var lastErr error

	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			delay := n.retryDelay * time.Duration(attempt)
			if delay > 10*time.Second {
				delay = 10 * time.Second
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := n.client.SendMessage(ctx, n.chatID, message, tgbotapi.ModeHTML)
		if err == nil {
			return nil
		}

		lastErr = err

		// Для ошибок вроде "chat not found" повтор не поможет
		if !isRetryableError(err) {
			return err
		}
		n.logger.Debug("telegram send failed, retrying", "attempt", attempt+1, "err", err)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryableError определяет, можно ли повторить отправку при данной ошибке.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	nonRetryableErrors := []string{
		"chat not found",
		"bot was blocked",
		"user is deactivated",
		"chat_id is empty",
		"message is too long",
		"bad request",
		"unauthorized",
	}

	for _, nonRetryable := range nonRetryableErrors {
		if containsIgnoreCase(errStr, nonRetryable) {
			return false
		}
	}

	// Сетевые ошибки и временные проблемы API повторяем
	return true
}

// containsIgnoreCase проверяет, содержит ли строка подстроку (без учёта регистра).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
