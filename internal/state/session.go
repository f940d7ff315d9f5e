package state

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/maine/feedwatch/internal/news"
)

// Export пишет настройки как документ сессии с отступами.
func Export(w io.Writer, prefs news.Preferences) error {
	if prefs.Feeds == nil {
		prefs.Feeds = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(prefs); err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return nil
}

// Import читает документ сессии и накладывает его на current.
// При ErrSessionParse возвращается current без изменений.
func Import(r io.Reader, current news.Preferences) (news.Preferences, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return current, fmt.Errorf("read session: %w", err)
	}
	prefs, err := decodePreferences(data, current)
	if err != nil {
		return current, err
	}
	return prefs, nil
}
