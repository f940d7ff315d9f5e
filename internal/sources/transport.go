package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maine/feedwatch/internal/config"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultMaxBody   = 5 * 1024 * 1024
)

// Transport отдаёт текст документа по адресу.
type Transport interface {
	FetchText(ctx context.Context, address string) (string, error)
}

// RetrievalError: сетевая ошибка или неуспешный HTTP-статус.
type RetrievalError struct {
	Address    string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retrieve %s: unexpected status %d", e.Address, e.StatusCode)
	}
	return fmt.Sprintf("retrieve %s: %v", e.Address, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ErrEmptyProxyEnvelope возвращается, когда прокси ответил без поля contents.
var ErrEmptyProxyEnvelope = errors.New("proxy response has no contents")

// HTTPTransport загружает документы напрямую или через CORS-прокси
// вида https://api.allorigins.win/get?url=, который оборачивает ответ в {"contents": "..."}.
type HTTPTransport struct {
	client    *http.Client
	proxyURL  string
	userAgent string
	maxBody   int64
}

// Убеждаемся, что HTTPTransport реализует интерфейс Transport.
var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport создаёт транспорт. client может быть nil.
func NewHTTPTransport(cfg config.Pipeline, client *http.Client) *HTTPTransport {
	if client == nil {
		timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &HTTPTransport{
		client:    client,
		proxyURL:  cfg.ProxyURL,
		userAgent: userAgent,
		maxBody:   maxBody,
	}
}

// FetchText реализует Transport.
func (t *HTTPTransport) FetchText(ctx context.Context, address string) (string, error) {
	if t.proxyURL == "" {
		body, err := t.get(ctx, address)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}

	body, err := t.get(ctx, t.proxyURL+url.QueryEscape(address))
	if err != nil {
		return "", err
	}

	var envelope struct {
		Contents *string `json:"contents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &RetrievalError{Address: address, Err: fmt.Errorf("decode proxy envelope: %w", err)}
	}
	if envelope.Contents == nil {
		return "", &RetrievalError{Address: address, Err: ErrEmptyProxyEnvelope}
	}
	return *envelope.Contents, nil
}

func (t *HTTPTransport) get(ctx context.Context, address string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, &RetrievalError{Address: address, Err: fmt.Errorf("build request: %w", err)}
	}

	// Заголовки браузера, чтобы часть сайтов не отвечала 403
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, text/html, application/json, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &RetrievalError{Address: address, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RetrievalError{Address: address, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody))
	if err != nil {
		return nil, &RetrievalError{Address: address, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
