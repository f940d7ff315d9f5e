package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/maine/feedwatch/internal/filter"
	"github.com/maine/feedwatch/internal/ledger"
	"github.com/maine/feedwatch/internal/logger"
	"github.com/maine/feedwatch/internal/news"
	"github.com/maine/feedwatch/internal/ranking"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// mockFetcher - мок загрузчика: статьи по адресу источника
type mockFetcher struct {
	mu       sync.Mutex
	feeds    map[string][]news.Article
	delays   map[string]time.Duration
	calls    int
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, source string) []news.Article {
	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if current <= seen || m.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	m.mu.Lock()
	m.calls++
	delay := m.delays[source]
	articles := m.feeds[source]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	// несуществующий источник ведёт себя как упавшая лента
	if articles == nil {
		return []news.Article{}
	}
	return append([]news.Article(nil), articles...)
}

func (m *mockFetcher) setFeed(source string, articles ...news.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeds[source] = articles
}

// mockNotifier - мок рассылки
type mockNotifier struct {
	batches [][]string
}

func (m *mockNotifier) Dispatch(ctx context.Context, articles []news.Article) int {
	m.batches = append(m.batches, links(articles))
	return len(articles)
}

func links(articles []news.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Link)
	}
	return out
}

func article(link, title, description string, age time.Duration) news.Article {
	return news.Article{
		Title:       title,
		Description: description,
		Link:        link,
		PublishedAt: testNow.Add(-age),
		SourceHost:  "example.com",
	}
}

func newTestPipeline(fetcher FeedFetcher, notifier Notifier) *Pipeline {
	clock := func() time.Time { return testNow }
	return NewPipeline(PipelineDeps{
		Fetcher:  fetcher,
		Scorer:   ranking.NewScorer(),
		Filter:   filter.New(clock),
		Ledger:   ledger.New(),
		Notifier: notifier,
		Clock:    clock,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestPipeline_Run_NoSearchCriteria(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{}}
	p := newTestPipeline(fetcher, nil)

	for _, kw := range []string{"", "   \n", "-sports\n-celebrity"} {
		_, err := p.Run(context.Background(), Request{Keywords: kw, Sources: []string{"a"}})
		if !errors.Is(err, ErrNoSearchCriteria) {
			t.Errorf("Run(%q) error = %v, want ErrNoSearchCriteria", kw, err)
		}
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times, want 0", fetcher.calls)
	}
}

func TestPipeline_Run_NotConfigured(t *testing.T) {
	p := NewPipeline(PipelineDeps{})
	if _, err := p.Run(context.Background(), Request{Keywords: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Run() error = %v, want ErrNotConfigured", err)
	}
}

func TestPipeline_Run_ScoresAndExcludes(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{
		"feed": {
			article("excluded", "Election results", "A climate summit ignored sports", time.Hour),
			article("match", "Election night", "climate was not mentioned", time.Hour),
			article("miss", "Local bakery", "Fresh bread", time.Hour),
		},
	}}
	p := newTestPipeline(fetcher, nil)

	result, err := p.Run(context.Background(), Request{
		Keywords: "election:3\nclimate\n-sports",
		Sources:  []string{"feed"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.Fetched != 3 || result.Sources != 1 {
		t.Errorf("Fetched = %d, Sources = %d, want 3 and 1", result.Fetched, result.Sources)
	}
	if len(result.Articles) != 1 {
		t.Fatalf("Articles = %v, want only the matching article", links(result.Articles))
	}
	got := result.Articles[0]
	if got.Link != "match" || got.Score != 4 {
		t.Errorf("article = %s score %d, want match score 4", got.Link, got.Score)
	}
	if diff := cmp.Diff([]string{"election", "climate"}, got.MatchedPhrases); diff != "" {
		t.Errorf("MatchedPhrases mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Run_MergeOrderAndFailures(t *testing.T) {
	fetcher := &mockFetcher{
		feeds: map[string][]news.Article{
			"slow": {article("s1", "go one", "", time.Hour), article("s2", "go two", "", time.Hour)},
			"fast": {article("f1", "go three", "", time.Hour)},
		},
		delays: map[string]time.Duration{"slow": 30 * time.Millisecond},
	}
	p := newTestPipeline(fetcher, nil)

	result, err := p.Run(context.Background(), Request{
		Keywords: "go",
		Sources:  []string{"slow", "broken", "fast"},
		Sort:     news.SortRelevance,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// равные оценки сохраняют порядок источников, а не порядок завершения загрузки
	if diff := cmp.Diff([]string{"s1", "s2", "f1"}, links(result.Articles)); diff != "" {
		t.Errorf("merge order mismatch (-want +got):\n%s", diff)
	}
	if result.Sources != 3 || result.Fetched != 3 {
		t.Errorf("Sources = %d, Fetched = %d, want 3 and 3", result.Sources, result.Fetched)
	}
}

func TestPipeline_Run_BoundedConcurrency(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{}, delays: map[string]time.Duration{}}
	sources := make([]string, 10)
	for i := range sources {
		sources[i] = string(rune('a' + i))
		fetcher.delays[sources[i]] = 10 * time.Millisecond
	}

	clock := func() time.Time { return testNow }
	p := NewPipeline(PipelineDeps{
		Fetcher:              fetcher,
		Scorer:               ranking.NewScorer(),
		Filter:               filter.New(clock),
		Ledger:               ledger.New(),
		Clock:                clock,
		Logger:               slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxConcurrentFetches: 3,
	})

	if _, err := p.Run(context.Background(), Request{Keywords: "x", Sources: sources}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := fetcher.maxSeen.Load(); got > 3 {
		t.Errorf("max concurrent fetches = %d, want <= 3", got)
	}
	if fetcher.calls != 10 {
		t.Errorf("fetch calls = %d, want 10", fetcher.calls)
	}
}

func TestPipeline_Run_DateWindow(t *testing.T) {
	window := 7 * 24 * time.Hour
	fetcher := &mockFetcher{feeds: map[string][]news.Article{
		"feed": {
			article("inside", "mars", "", window),
			article("outside", "mars", "", window+time.Second),
		},
	}}
	p := newTestPipeline(fetcher, nil)

	result, err := p.Run(context.Background(), Request{
		Keywords:   "mars",
		Sources:    []string{"feed"},
		DateWindow: news.DateWindow{Days: 7},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"inside"}, links(result.Articles)); diff != "" {
		t.Errorf("date window mismatch (-want +got):\n%s", diff)
	}

	result, _ = p.Run(context.Background(), Request{Keywords: "mars", Sources: []string{"feed"}})
	if len(result.Articles) != 2 {
		t.Errorf("window all kept %d articles, want 2", len(result.Articles))
	}
}

func TestPipeline_Run_Notifications(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{
		"feed": {article("a", "nasa launch", "", time.Hour)},
	}}
	notifier := &mockNotifier{}
	p := newTestPipeline(fetcher, notifier)
	req := Request{Keywords: "nasa", Sources: []string{"feed"}, Notify: true}
	ctx := context.Background()

	// первый прогон процесса ничего не шлёт, но помечает статьи
	first, err := p.Run(ctx, req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(first.Notifications) != 0 || len(notifier.batches) != 0 {
		t.Fatalf("initial run notified %v", first.Notifications)
	}

	fetcher.setFeed("feed", article("a", "nasa launch", "", time.Hour), article("b", "nasa landing", "", time.Minute))
	second, _ := p.Run(ctx, req)
	if diff := cmp.Diff([]string{"b"}, links(second.Notifications)); diff != "" {
		t.Errorf("second run notifications mismatch (-want +got):\n%s", diff)
	}
	if second.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", second.Delivered)
	}

	third, _ := p.Run(ctx, req)
	if len(third.Notifications) != 0 {
		t.Errorf("third run re-notified %v", links(third.Notifications))
	}
	if diff := cmp.Diff([][]string{{"b"}}, notifier.batches); diff != "" {
		t.Errorf("dispatched batches mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Run_LedgerMarkedWithoutNotify(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{
		"feed": {article("a", "nasa", "", time.Hour)},
	}}
	notifier := &mockNotifier{}
	p := newTestPipeline(fetcher, notifier)
	ctx := context.Background()

	p.Run(ctx, Request{Keywords: "nasa", Sources: []string{"feed"}, Notify: true})

	fetcher.setFeed("feed", article("a", "nasa", "", time.Hour), article("quiet", "nasa", "", time.Hour))
	quiet, _ := p.Run(ctx, Request{Keywords: "nasa", Sources: []string{"feed"}, Notify: false})
	if len(quiet.Notifications) != 0 {
		t.Errorf("manual run notified %v", links(quiet.Notifications))
	}

	loud, _ := p.Run(ctx, Request{Keywords: "nasa", Sources: []string{"feed"}, Notify: true})
	if len(loud.Notifications) != 0 {
		t.Errorf("article seen by a manual run was notified later: %v", links(loud.Notifications))
	}
	if len(notifier.batches) != 0 {
		t.Errorf("dispatched %v, want nothing", notifier.batches)
	}
}

func TestPipeline_Run_FailedRunDoesNotPrime(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{}}
	notifier := &mockNotifier{}
	p := newTestPipeline(fetcher, notifier)
	ctx := context.Background()

	p.Run(ctx, Request{Keywords: "", Sources: []string{"feed"}, Notify: true})

	fetcher.setFeed("feed", article("a", "nasa", "", time.Hour))
	result, _ := p.Run(ctx, Request{Keywords: "nasa", Sources: []string{"feed"}, Notify: true})
	if len(result.Notifications) != 0 {
		t.Errorf("first completed run notified %v", links(result.Notifications))
	}
}

func TestPipeline_Run_SortOrders(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{
		"feed": {
			article("old-strong", "mars rover", "", 3*time.Hour),
			article("new-weak", "rover", "", time.Hour),
			article("mid-strong", "mars rover", "", 2*time.Hour),
		},
	}}
	p := newTestPipeline(fetcher, nil)

	tests := []struct {
		order news.SortOrder
		want  []string
	}{
		{order: news.SortDateDesc, want: []string{"new-weak", "mid-strong", "old-strong"}},
		{order: news.SortDateAsc, want: []string{"old-strong", "mid-strong", "new-weak"}},
		{order: news.SortRelevance, want: []string{"old-strong", "mid-strong", "new-weak"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			result, err := p.Run(context.Background(), Request{Keywords: "mars:3\nrover", Sources: []string{"feed"}, Sort: tt.order})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, links(result.Articles)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// loggingFetcher пишет строку через логгер из контекста, как sources.Fetcher
type loggingFetcher struct{}

func (loggingFetcher) Fetch(ctx context.Context, source string) []news.Article {
	logger.FromContext(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))).
		WarnContext(ctx, "feed fetch failed", "source", source)
	return []news.Article{}
}

func TestPipeline_Run_RunIDReachesFetcher(t *testing.T) {
	var buf bytes.Buffer
	clock := func() time.Time { return testNow }
	p := NewPipeline(PipelineDeps{
		Fetcher: loggingFetcher{},
		Scorer:  ranking.NewScorer(),
		Filter:  filter.New(clock),
		Ledger:  ledger.New(),
		Clock:   clock,
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	})

	result, err := p.Run(context.Background(), Request{Keywords: "x", Sources: []string{"https://a.example/rss"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.Contains(line, "run_id="+result.RunID) {
			t.Errorf("log line without run_id: %q", line)
		}
	}
	if !strings.Contains(buf.String(), "feed fetch failed") {
		t.Errorf("fetcher line missing from run log: %q", buf.String())
	}
}

func TestResult_JSON(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string][]news.Article{
		"feed": {article("a", "Mars rover", "", time.Hour)},
	}}
	result, err := newTestPipeline(fetcher, nil).Run(context.Background(), Request{Keywords: "mars", Sources: []string{"feed"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"run_id", "articles", "notifications", "delivered", "fetched", "sources"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("key %q missing in %s", key, data)
		}
	}
	if got := string(doc["notifications"]); got != "[]" {
		t.Errorf("notifications = %s, want []", got)
	}
	if !strings.Contains(string(doc["articles"]), `"link":"a"`) {
		t.Errorf("articles = %s, want link a", doc["articles"])
	}
}
