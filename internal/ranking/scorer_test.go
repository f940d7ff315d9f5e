package ranking

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/maine/feedwatch/internal/keywords"
	"github.com/maine/feedwatch/internal/news"
)

func TestScorer_Score(t *testing.T) {
	spec := keywords.Parse("election:3\nclimate\n-sports")
	s := NewScorer()

	tests := []struct {
		name        string
		article     news.Article
		wantMatch   bool
		wantScore   int
		wantPhrases []string
	}{
		{
			name: "excluded even though include terms match",
			article: news.Article{
				Title:       "Election results",
				Description: "A climate summit ignored sports",
			},
			wantMatch: false,
		},
		{
			name: "weighted and plain phrases add up",
			article: news.Article{
				Title:       "Election night",
				Description: "climate was not mentioned",
			},
			wantMatch:   true,
			wantScore:   4,
			wantPhrases: []string{"election", "climate"},
		},
		{
			name: "case insensitive",
			article: news.Article{
				Title: "CLIMATE",
			},
			wantMatch:   true,
			wantScore:   1,
			wantPhrases: []string{"climate"},
		},
		{
			name: "nothing matches",
			article: news.Article{
				Title:       "Local bakery opens",
				Description: "Fresh bread daily",
			},
			wantMatch: false,
		},
		{
			name: "exclude matches inside a longer word",
			article: news.Article{
				Title: "Election: motorsports roundup",
			},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score([]news.Article{tt.article}, spec)
			if !tt.wantMatch {
				if len(got) != 0 {
					t.Fatalf("Score() = %+v, want no results", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("Score() len = %d, want 1", len(got))
			}
			if got[0].Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got[0].Score, tt.wantScore)
			}
			if diff := cmp.Diff(tt.wantPhrases, got[0].MatchedPhrases); diff != "" {
				t.Errorf("MatchedPhrases mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScorer_MultiWordPhrase(t *testing.T) {
	spec := keywords.Parse("climate change:2")
	s := NewScorer()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "words apart", text: "climate policy and change", want: true},
		{name: "missing word", text: "climate policy", want: false},
		{name: "across punctuation", text: "climate-change", want: true},
		{name: "substring of longer words", text: "microclimates exchange", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score([]news.Article{{Description: tt.text}}, spec)
			if (len(got) == 1) != tt.want {
				t.Errorf("Score(%q) matched = %v, want %v", tt.text, len(got) == 1, tt.want)
			}
		})
	}
}

func TestScorer_RepeatedPhraseListedOnce(t *testing.T) {
	spec := keywords.Parse("nasa:2\nnasa:5\nmars")
	got := NewScorer().Score([]news.Article{{Title: "NASA to Mars, NASA again"}}, spec)
	if len(got) != 1 {
		t.Fatalf("Score() len = %d, want 1", len(got))
	}
	if got[0].Score != 8 {
		t.Errorf("Score = %d, want 8 (both nasa weights + mars)", got[0].Score)
	}
	if diff := cmp.Diff([]string{"nasa", "mars"}, got[0].MatchedPhrases); diff != "" {
		t.Errorf("MatchedPhrases mismatch (-want +got):\n%s", diff)
	}
}

func TestScorer_ZeroWeightOnlyIsDiscarded(t *testing.T) {
	spec := keywords.Parse("rumor:0")
	if got := NewScorer().Score([]news.Article{{Title: "rumor mill"}}, spec); len(got) != 0 {
		t.Errorf("Score() = %+v, want empty for zero total score", got)
	}
}

func TestScorer_Idempotent(t *testing.T) {
	spec := keywords.Parse("go:2\nrust\ncompiler release:4\n-crypto")
	articles := []news.Article{
		{Title: "Go 1.30 compiler release", Description: "faster builds", Link: "a"},
		{Title: "Rust and Go", Description: "a comparison", Link: "b"},
		{Title: "crypto go", Link: "c"},
	}
	s := NewScorer()

	first := s.Score(articles, spec)
	second := s.Score(articles, spec)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-scoring changed the result (-first +second):\n%s", diff)
	}
	// входные статьи не изменяются
	for _, a := range articles {
		if a.Score != 0 || a.MatchedPhrases != nil {
			t.Errorf("input article %q was mutated: %+v", a.Link, a)
		}
	}
}

func TestSort(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	articles := []news.Article{
		{Link: "a", Score: 4, PublishedAt: base.Add(2 * time.Hour)},
		{Link: "b", Score: 1, PublishedAt: base},
		{Link: "c", Score: 4, PublishedAt: base.Add(time.Hour)},
	}

	tests := []struct {
		order news.SortOrder
		want  []string
	}{
		{order: news.SortRelevance, want: []string{"a", "c", "b"}},
		{order: news.SortDateDesc, want: []string{"a", "c", "b"}},
		{order: news.SortDateAsc, want: []string{"b", "c", "a"}},
		{order: "", want: []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			sorted := Sort(articles, tt.order)
			if diff := cmp.Diff(tt.want, links(sorted)); diff != "" {
				t.Errorf("Sort(%q) mismatch (-want +got):\n%s", tt.order, diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, links(articles)); diff != "" {
		t.Errorf("Sort() mutated its input (-want +got):\n%s", diff)
	}
}

func TestSort_RelevanceStableTies(t *testing.T) {
	same := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	articles := []news.Article{
		{Link: "first", Score: 4, PublishedAt: same},
		{Link: "low", Score: 1, PublishedAt: same},
		{Link: "second", Score: 4, PublishedAt: same},
	}
	got := links(Sort(articles, news.SortRelevance))
	if diff := cmp.Diff([]string{"first", "second", "low"}, got); diff != "" {
		t.Errorf("ties must keep merge order (-want +got):\n%s", diff)
	}
	got = links(Sort(articles, news.SortDateDesc))
	if diff := cmp.Diff([]string{"first", "low", "second"}, got); diff != "" {
		t.Errorf("equal dates must keep merge order (-want +got):\n%s", diff)
	}
}

func links(articles []news.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Link)
	}
	return out
}
