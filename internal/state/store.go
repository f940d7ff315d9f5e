package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maine/feedwatch/internal/news"
)

// Store загружает и сохраняет пользовательские настройки.
type Store interface {
	Load(ctx context.Context) (news.Preferences, error)
	Save(ctx context.Context, prefs news.Preferences) error
}

// FileStore хранит настройки в JSON-файле.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// Убеждаемся, что FileStore реализует интерфейс Store.
var _ Store = (*FileStore)(nil)

// NewFileStore создаёт новый файловый стор. logger может быть nil.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path возвращает путь к файлу настроек.
func (s *FileStore) Path() string {
	return s.path
}

// Load читает настройки из файла. Отсутствующий файл даёт настройки по умолчанию.
func (s *FileStore) Load(ctx context.Context) (news.Preferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return news.DefaultPreferences(), nil
		}
		return news.Preferences{}, fmt.Errorf("read preferences file: %w", err)
	}

	prefs, err := decodePreferences(data, news.DefaultPreferences())
	if err != nil {
		// Повреждённый файл сохраняем как .broken и продолжаем с настройками по умолчанию
		brokenPath := s.path + ".broken"
		if werr := os.WriteFile(brokenPath, data, 0o644); werr != nil {
			s.logger.ErrorContext(ctx, "preferences file is corrupted and could not be backed up",
				"path", s.path, "err", err, "backup_err", werr)
			return news.DefaultPreferences(), nil
		}
		s.logger.WarnContext(ctx, "preferences file is corrupted, using defaults",
			"path", s.path, "backup", brokenPath, "err", err)
		return news.DefaultPreferences(), nil
	}

	return prefs, nil
}

// Save записывает настройки в файл атомарно (через временный файл).
func (s *FileStore) Save(ctx context.Context, prefs news.Preferences) error {
	if prefs.Feeds == nil {
		prefs.Feeds = []string{}
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp preferences file: %w", err)
	}

	// Переименование атомарно на большинстве файловых систем
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp preferences file: %w", err)
	}

	return nil
}
