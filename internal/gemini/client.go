package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrQuotaExceeded возвращается, когда дневная квота исчерпана; повтор бессмыслен.
var ErrQuotaExceeded = errors.New("gemini quota exceeded")

// GeminiClient определяет интерфейс для работы с Gemini API.
type GeminiClient interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// Client инкапсулирует работу с Gemini API через официальный SDK.
type Client struct {
	client     *genai.Client
	logger     *slog.Logger
	maxRetries int
	baseDelay  time.Duration
}

// Убеждаемся, что Client реализует интерфейс GeminiClient.
var _ GeminiClient = (*Client)(nil)

// NewClient создаёт клиент с явно переданным ключом.
func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client:     client,
		logger:     logger,
		maxRetries: 3,
		baseDelay:  5 * time.Second,
	}, nil
}

// GenerateText отправляет промпт и возвращает текст ответа.
// Лимиты RPM и временные ошибки 5xx повторяются с растущей задержкой, квота не повторяется.
func (c *Client) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(attempt)
			c.logger.Debug("retrying gemini request", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err == nil {
			text, textErr := result.Text()
			if textErr != nil {
				return "", fmt.Errorf("get text from result: %w", textErr)
			}
			return text, nil
		}

		lastErr = err
		switch classifyError(err.Error()) {
		case errorQuota:
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		case errorRetryable:
			c.logger.Warn("gemini request failed, will retry", "err", err)
			continue
		default:
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

type errorKind int

const (
	errorPermanent errorKind = iota
	errorRetryable
	errorQuota
)

// classifyError разбирает текст ошибки SDK: кодов ошибок он не отдаёт.
func classifyError(errStr string) errorKind {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "generate_content_free_tier_requests") ||
		strings.Contains(errLower, "daily limit") ||
		strings.Contains(errLower, "quota exceeded") {
		return errorQuota
	}

	for _, marker := range []string{
		"429", "rate limit", "too many requests", "resource exhausted",
		"500", "502", "503", "504", "overloaded", "service unavailable",
		"bad gateway", "gateway timeout", "internal server error",
	} {
		if strings.Contains(errLower, marker) {
			return errorRetryable
		}
	}

	return errorPermanent
}
