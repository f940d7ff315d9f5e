package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/maine/feedwatch/internal/news"
)

const preferencesKey = "preferences"

// SQLiteStore держит документ настроек в таблице settings (key/value).
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Убеждаемся, что SQLiteStore реализует интерфейс Store.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite открывает базу по пути и создаёт схему.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Одно соединение: записи сериализуются, :memory: не теряет таблицы
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close закрывает базу.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load читает настройки. Отсутствующая запись даёт настройки по умолчанию,
// повреждённый документ логируется и тоже заменяется умолчаниями.
func (s *SQLiteStore) Load(ctx context.Context) (news.Preferences, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, preferencesKey)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return news.DefaultPreferences(), nil
		}
		return news.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}

	prefs, err := decodePreferences([]byte(value), news.DefaultPreferences())
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("stored preferences are corrupted, using defaults", "err", err)
		}
		return news.DefaultPreferences(), nil
	}
	return prefs, nil
}

// Save сохраняет настройки одной записью.
func (s *SQLiteStore) Save(ctx context.Context, prefs news.Preferences) error {
	if prefs.Feeds == nil {
		prefs.Feeds = []string{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, preferencesKey, string(data))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
