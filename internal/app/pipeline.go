package app

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maine/feedwatch/internal/keywords"
	"github.com/maine/feedwatch/internal/logger"
	"github.com/maine/feedwatch/internal/news"
	"github.com/maine/feedwatch/internal/ranking"
)

const defaultMaxConcurrentFetches = 8

var (
	// ErrNotConfigured возвращается, когда пайплайн запущен без обязательных зависимостей.
	ErrNotConfigured = errors.New("pipeline dependencies not configured")
	// ErrNoSearchCriteria возвращается, если в ключевых словах нет ни одной фразы для включения.
	ErrNoSearchCriteria = errors.New("please enter at least one keyword to search for")
)

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// FeedFetcher загружает статьи одного источника. Ошибки поглощаются внутри.
type FeedFetcher interface {
	Fetch(ctx context.Context, source string) []news.Article
}

// Scorer отбирает и оценивает статьи по ключевым словам.
type Scorer interface {
	Score(articles []news.Article, spec news.KeywordSpec) []news.Article
}

// DateFilter отсекает статьи старше окна.
type DateFilter interface {
	Apply(articles []news.Article, window news.DateWindow) []news.Article
}

// Ledger помнит ссылки, о которых уже уведомляли.
type Ledger interface {
	CheckAndMark(link string) bool
}

// Notifier рассылает уведомления о новых статьях.
type Notifier interface {
	Dispatch(ctx context.Context, articles []news.Article) int
}

// PipelineDeps перечисляет зависимости пайплайна.
type PipelineDeps struct {
	Fetcher              FeedFetcher
	Scorer               Scorer
	Filter               DateFilter
	Ledger               Ledger
	Notifier             Notifier // Может быть nil: уведомления не отправляются
	Clock                Clock
	Logger               *slog.Logger
	MaxConcurrentFetches int
}

// Request: параметры одного прогона.
type Request struct {
	Keywords   string
	Sources    []string
	DateWindow news.DateWindow
	Sort       news.SortOrder
	// Notify разрешает уведомления; первый завершённый прогон процесса их всё равно не шлёт.
	Notify bool
}

// Result: итог прогона.
type Result struct {
	RunID         string         `json:"run_id"`
	Articles      []news.Article `json:"articles"`
	Notifications []news.Article `json:"notifications"`
	Delivered     int            `json:"delivered"`
	Fetched       int            `json:"fetched"`
	Sources       int            `json:"sources"`
}

// Pipeline инкапсулирует цикл загрузки, отбора и уведомления.
type Pipeline struct {
	fetcher     FeedFetcher
	scorer      Scorer
	filter      DateFilter
	ledger      Ledger
	notifier    Notifier
	clock       Clock
	logger      *slog.Logger
	concurrency int

	// completed становится true после первого успешного прогона в процессе
	completed atomic.Bool
}

// NewPipeline создаёт новый экземпляр пайплайна.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	concurrency := deps.MaxConcurrentFetches
	if concurrency <= 0 {
		concurrency = defaultMaxConcurrentFetches
	}

	return &Pipeline{
		fetcher:     deps.Fetcher,
		scorer:      deps.Scorer,
		filter:      deps.Filter,
		ledger:      deps.Ledger,
		notifier:    deps.Notifier,
		clock:       clock,
		logger:      log,
		concurrency: concurrency,
	}
}

// Run исполняет полный цикл: разбор, загрузка, фильтр по дате, оценка, уведомления, сортировка.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if err := p.validateDeps(); err != nil {
		return Result{}, err
	}

	started := p.clock()
	result := Result{
		RunID:         uuid.NewString(),
		Articles:      []news.Article{},
		Notifications: []news.Article{},
		Sources:       len(req.Sources),
	}
	runLog := p.logger.With("run_id", result.RunID)
	ctx = logger.WithContext(ctx, runLog)

	spec := keywords.Parse(req.Keywords)
	if !spec.HasCriteria() {
		return result, ErrNoSearchCriteria
	}

	runLog.InfoContext(ctx, "fetching feeds", "sources", len(req.Sources))
	fetched := p.fetchAll(ctx, req.Sources)
	result.Fetched = len(fetched)

	recent := p.filter.Apply(fetched, req.DateWindow)
	runLog.DebugContext(ctx, "date filter applied", "window", req.DateWindow.String(), "kept", len(recent))

	scored := p.scorer.Score(recent, spec)

	// Реестр обновляется для каждой отобранной статьи, даже если уведомления выключены
	fresh := make([]news.Article, 0)
	for _, article := range scored {
		if p.ledger.CheckAndMark(article.Link) {
			fresh = append(fresh, article)
		}
	}

	if req.Notify && p.completed.Load() && len(fresh) > 0 {
		result.Notifications = fresh
		if p.notifier != nil {
			result.Delivered = p.notifier.Dispatch(ctx, fresh)
		}
	}

	result.Articles = ranking.Sort(scored, req.Sort)
	p.completed.Store(true)

	runLog.InfoContext(ctx, "run finished",
		"fetched", result.Fetched,
		"matched", len(result.Articles),
		"new", len(fresh),
		"notified", len(result.Notifications),
		"duration", p.clock().Sub(started),
	)
	return result, nil
}

// fetchAll загружает источники параллельно и склеивает результаты в порядке источников.
func (p *Pipeline) fetchAll(ctx context.Context, sources []string) []news.Article {
	perSource := make([][]news.Article, len(sources))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, source := range sources {
		g.Go(func() error {
			perSource[i] = p.fetcher.Fetch(ctx, source)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, articles := range perSource {
		total += len(articles)
	}
	merged := make([]news.Article, 0, total)
	for _, articles := range perSource {
		merged = append(merged, articles...)
	}
	return merged
}

func (p *Pipeline) validateDeps() error {
	switch {
	case p.fetcher == nil,
		p.scorer == nil,
		p.filter == nil,
		p.ledger == nil,
		p.clock == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}
