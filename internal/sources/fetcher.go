package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/maine/feedwatch/internal/logger"
	"github.com/maine/feedwatch/internal/news"
)

// Fetcher загружает ленту и нормализует записи в news.Article.
type Fetcher struct {
	transport Transport
	clock     func() time.Time
	logger    *slog.Logger
}

// NewFetcher создаёт новый экземпляр. clock и logger могут быть nil.
func NewFetcher(transport Transport, clock func() time.Time, logger *slog.Logger) *Fetcher {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		transport: transport,
		clock:     clock,
		logger:    logger,
	}
}

// Fetch реализует app.FeedFetcher.
// Ошибка загрузки или разбора логируется, а лента даёт пустой результат.
func (f *Fetcher) Fetch(ctx context.Context, source string) []news.Article {
	log := logger.FromContext(ctx, f.logger)
	articles, err := f.fetch(ctx, source)
	if err != nil {
		log.WarnContext(ctx, "feed fetch failed", "source", source, "err", err)
		return []news.Article{}
	}
	log.DebugContext(ctx, "feed fetched", "source", source, "count", len(articles))
	return articles
}

func (f *Fetcher) fetch(ctx context.Context, source string) ([]news.Article, error) {
	text, err := f.transport.FetchText(ctx, source)
	if err != nil {
		return nil, err
	}

	// gofeed.Parser хранит состояние разбора, поэтому на каждую ленту свой
	feed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	host := SourceHost(source)
	fetchedAt := f.clock()

	articles := make([]news.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		link := firstText(item, linkExtractors)
		if link == "" {
			continue
		}
		articles = append(articles, news.Article{
			Title:       firstText(item, titleExtractors),
			Description: StripHTML(firstText(item, descriptionExtractors)),
			Link:        link,
			PublishedAt: firstTime(item, timeExtractors, fetchedAt),
			SourceHost:  host,
		})
	}
	return articles, nil
}

// SourceHost возвращает имя хоста ленты для подписи статей.
func SourceHost(address string) string {
	address = strings.TrimSpace(address)
	raw := address
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return address
	}
	return u.Hostname()
}

// --- извлечение полей ---

// У разных форматов одно логическое поле лежит в разных тегах.
// Для каждого поля: упорядоченный список кандидатов, берётся первый непустой.

type textExtractor func(item *gofeed.Item) string

type timeExtractor func(item *gofeed.Item) (time.Time, bool)

var titleExtractors = []textExtractor{
	func(item *gofeed.Item) string { return item.Title },
}

var descriptionExtractors = []textExtractor{
	func(item *gofeed.Item) string { return item.Description },
	func(item *gofeed.Item) string { return item.Content },
}

var linkExtractors = []textExtractor{
	func(item *gofeed.Item) string { return item.Link },
	func(item *gofeed.Item) string {
		for _, link := range item.Links {
			if strings.TrimSpace(link) != "" {
				return link
			}
		}
		return ""
	},
	func(item *gofeed.Item) string {
		if strings.HasPrefix(item.GUID, "http://") || strings.HasPrefix(item.GUID, "https://") {
			return item.GUID
		}
		return ""
	},
}

var timeExtractors = []timeExtractor{
	func(item *gofeed.Item) (time.Time, bool) { return parsedTime(item.PublishedParsed) },
	func(item *gofeed.Item) (time.Time, bool) { return parsedTime(item.UpdatedParsed) },
	func(item *gofeed.Item) (time.Time, bool) { return parseLooseTime(item.Published) },
	func(item *gofeed.Item) (time.Time, bool) { return parseLooseTime(item.Updated) },
}

func firstText(item *gofeed.Item, extractors []textExtractor) string {
	for _, extract := range extractors {
		if value := strings.TrimSpace(extract(item)); value != "" {
			return value
		}
	}
	return ""
}

func firstTime(item *gofeed.Item, extractors []timeExtractor, fallback time.Time) time.Time {
	for _, extract := range extractors {
		if t, ok := extract(item); ok {
			return t
		}
	}
	return fallback
}

func parsedTime(t *time.Time) (time.Time, bool) {
	if t == nil || t.IsZero() {
		return time.Time{}, false
	}
	return *t, true
}

func parseLooseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
