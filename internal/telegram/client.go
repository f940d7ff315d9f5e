package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient определяет интерфейс для работы с Telegram Bot API.
type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, parseMode string) error
}

// BotClient отправляет сообщения через tgbotapi.
// Соединение с API (getMe) устанавливается при первой отправке.
type BotClient struct {
	token      string
	httpClient *http.Client

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// Убеждаемся, что BotClient реализует интерфейс TelegramClient.
var _ TelegramClient = (*BotClient)(nil)

// NewBotClient создаёт клиента. token обязателен.
func NewBotClient(token string) *BotClient {
	return &BotClient{
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *BotClient) connect() (*tgbotapi.BotAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(c.token, tgbotapi.APIEndpoint, c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	c.api = api
	return api, nil
}

// SendMessage отправляет текстовое сообщение.
func (c *BotClient) SendMessage(ctx context.Context, chatID int64, text string, parseMode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	api, err := c.connect()
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
