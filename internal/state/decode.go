package state

import (
	"encoding/json"
	"errors"

	"github.com/maine/feedwatch/internal/news"
)

// ErrSessionParse возвращается, когда документ сессии не является JSON-объектом.
var ErrSessionParse = errors.New("session file is not valid JSON")

// decodePreferences накладывает документ на base.
// Синтаксическая ошибка отклоняет документ целиком; поле неверного типа пропускается,
// остальные присутствующие поля заменяют значения из base.
func decodePreferences(data []byte, base news.Preferences) (news.Preferences, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return base, errors.Join(ErrSessionParse, err)
	}
	if fields == nil {
		return base, errors.Join(ErrSessionParse, errors.New("document is null"))
	}

	prefs := base
	prefs.Feeds = append([]string(nil), base.Feeds...)

	if raw, ok := fields["feeds"]; ok {
		var feeds []string
		if err := json.Unmarshal(raw, &feeds); err == nil && feeds != nil {
			prefs.Feeds = feeds
		}
	}
	if raw, ok := fields["keywords"]; ok {
		var keywords string
		if err := json.Unmarshal(raw, &keywords); err == nil && keywords != "" {
			prefs.Keywords = keywords
		}
	}
	if raw, ok := fields["autoRefresh"]; ok {
		var interval news.RefreshInterval
		if err := json.Unmarshal(raw, &interval); err == nil {
			prefs.AutoRefresh = interval
		}
	}
	if raw, ok := fields["dateFilter"]; ok {
		var window news.DateWindow
		if err := json.Unmarshal(raw, &window); err == nil {
			prefs.DateFilter = window
		}
	}
	if raw, ok := fields["sort"]; ok {
		var value string
		if err := json.Unmarshal(raw, &value); err == nil {
			if order, err := news.ParseSortOrder(value); err == nil {
				prefs.Sort = order
			}
		}
	}

	return prefs, nil
}
