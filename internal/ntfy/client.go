package ntfy

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client отправляет push-уведомления через ntfy.sh (или собственный сервер ntfy).
type Client struct {
	url        string // полный адрес: https://ntfy.sh/{topic}
	token      string // bearer-токен для зарезервированных топиков
	priority   string
	tags       string
	httpClient *http.Client
}

// New создаёт клиента. topic: имя топика (раскрывается в https://ntfy.sh/{topic})
// или полный адрес (https://ntfy.example.com/mytopic). Пустой topic выключает канал.
func New(topic, token string) *Client {
	topic = strings.TrimSpace(topic)
	url := topic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		url = "https://ntfy.sh/" + topic
	}
	return &Client{
		url:        url,
		token:      token,
		priority:   "default",
		tags:       "newspaper",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Permitted сообщает, задан ли топик.
func (c *Client) Permitted() bool {
	return c.url != ""
}

// Deliver публикует одно уведомление.
func (c *Client) Deliver(ctx context.Context, title, body string) error {
	if !c.Permitted() {
		return fmt.Errorf("ntfy: topic is not configured")
	}
	return c.post(ctx, title, body)
}

// SendTest отправляет тестовое уведомление.
func (c *Client) SendTest(ctx context.Context) error {
	return c.Deliver(ctx, "feedwatch test", "Push notifications are working!")
}

func (c *Client) post(ctx context.Context, title, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("ntfy: build request: %w", err)
	}
	req.Header.Set("Title", title)
	req.Header.Set("Priority", c.priority)
	req.Header.Set("Tags", c.tags)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy: post: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ntfy: HTTP %d", resp.StatusCode)
	}
	return nil
}
