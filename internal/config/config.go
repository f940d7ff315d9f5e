package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath используется, когда ни флаг, ни FEEDWATCH_CONFIG не заданы.
const DefaultPath = "configs/feedwatch.yaml"

type (
	// Root объединяет все конфигурационные блоки.
	Root struct {
		Pipeline Pipeline `yaml:"pipeline"`
		Store    Store    `yaml:"store"`
		Notify   Notify   `yaml:"notify"`
		Log      Log      `yaml:"log"`
	}

	// Pipeline описывает загрузку лент.
	Pipeline struct {
		FetchTimeoutSeconds  int    `yaml:"fetch_timeout_seconds"`
		MaxConcurrentFetches int    `yaml:"max_concurrent_fetches"`
		MaxBodyBytes         int64  `yaml:"max_body_bytes"`
		UserAgent            string `yaml:"user_agent"`
		ProxyURL             string `yaml:"proxy_url"` // Пусто: прямые запросы
	}

	// Store выбирает хранилище настроек.
	Store struct {
		Driver string `yaml:"driver"` // file | sqlite
		Path   string `yaml:"path"`
	}

	// Notify содержит настройки каналов уведомлений. Токены живут только в окружении.
	Notify struct {
		NtfyTopic      string  `yaml:"ntfy_topic"`
		TelegramChatID int64   `yaml:"telegram_chat_id"`
		RatePerMinute  float64 `yaml:"rate_per_minute"`
		Burst          int     `yaml:"burst"`
		GeminiModel    string  `yaml:"gemini_model"`
		BodyLength     int     `yaml:"body_length"`
	}

	// Log задаёт уровень и необязательный файл логов.
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	}
)

const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

// LoadRoot читает основной файл конфигурации.
// Отсутствующий файл не ошибка: возвращаются значения по умолчанию.
func LoadRoot(path string) (Root, error) {
	var cfg Root

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Root{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Root{}, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Root) {
	if cfg.Pipeline.FetchTimeoutSeconds <= 0 {
		cfg.Pipeline.FetchTimeoutSeconds = 15
	}
	if cfg.Pipeline.MaxConcurrentFetches <= 0 {
		cfg.Pipeline.MaxConcurrentFetches = 8
	}
	if cfg.Pipeline.MaxBodyBytes <= 0 {
		cfg.Pipeline.MaxBodyBytes = 5 * 1024 * 1024
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverFile
	}
	if cfg.Store.Path == "" {
		if cfg.Store.Driver == StoreDriverSQLite {
			cfg.Store.Path = "data/feedwatch.db"
		} else {
			cfg.Store.Path = "data/preferences.json"
		}
	}
	if cfg.Notify.RatePerMinute <= 0 {
		cfg.Notify.RatePerMinute = 30
	}
	if cfg.Notify.Burst <= 0 {
		cfg.Notify.Burst = 5
	}
	if cfg.Notify.GeminiModel == "" {
		cfg.Notify.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.Notify.BodyLength <= 0 {
		cfg.Notify.BodyLength = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (cfg Root) validate() error {
	switch cfg.Store.Driver {
	case StoreDriverFile, StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return nil
}
