package config

import (
	"os"
	"strings"
)

// EnvConfig содержит токены и другие переменные окружения.
type EnvConfig struct {
	TelegramBotToken string
	NtfyToken        string
	GeminiAPIKey     string
	ConfigPath       string
	LogLevel         string // Переопределяет log.level из YAML
}

// LoadEnvConfig читает переменные окружения.
// Все токены необязательны: канал без токена просто не подключается.
func LoadEnvConfig() *EnvConfig {
	path := strings.TrimSpace(os.Getenv("FEEDWATCH_CONFIG"))
	if path == "" {
		path = DefaultPath
	}

	return &EnvConfig{
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		NtfyToken:        strings.TrimSpace(os.Getenv("NTFY_TOKEN")),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		ConfigPath:       path,
		LogLevel:         strings.TrimSpace(os.Getenv("FEEDWATCH_LOG_LEVEL")),
	}
}
