package filter

import (
	"time"

	"github.com/maine/feedwatch/internal/news"
)

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// Filter отсекает статьи вне окна свежести.
type Filter struct {
	clock Clock
}

// New создаёт экземпляр фильтра.
func New(clock Clock) *Filter {
	if clock == nil {
		clock = time.Now
	}
	return &Filter{clock: clock}
}

// Apply реализует app.DateFilter.
// Оставляет статьи с PublishedAt не раньше now − window.Days дней; окно "all" пропускает всё.
// Порядок статей сохраняется.
func (f *Filter) Apply(articles []news.Article, window news.DateWindow) []news.Article {
	if window.All() {
		out := make([]news.Article, len(articles))
		copy(out, articles)
		return out
	}

	cutoff := Cutoff(f.clock(), window)
	filtered := make([]news.Article, 0, len(articles))
	for _, article := range articles {
		if article.PublishedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, article)
	}
	return filtered
}

// Cutoff возвращает границу окна: тот же час, window.Days календарных дней назад.
func Cutoff(now time.Time, window news.DateWindow) time.Time {
	return now.AddDate(0, 0, -window.Days)
}
