package ranking

import (
	"sort"
	"strings"

	"github.com/maine/feedwatch/internal/news"
)

// Scorer реализует app.Scorer: считает релевантность статей по KeywordSpec.
type Scorer struct{}

// NewScorer создаёт новый экземпляр скорера.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score реализует app.Scorer.
// Возвращает только совпавшие и не исключённые статьи с заполненными Score и MatchedPhrases.
// Входной срез не изменяется.
func (s *Scorer) Score(articles []news.Article, spec news.KeywordSpec) []news.Article {
	results := make([]news.Article, 0, len(articles))
	for _, article := range articles {
		scored, ok := scoreArticle(article, spec)
		if !ok {
			continue
		}
		results = append(results, scored)
	}
	return results
}

func scoreArticle(article news.Article, spec news.KeywordSpec) (news.Article, bool) {
	haystack := strings.ToLower(article.Title) + " " + strings.ToLower(article.Description)

	// Исключение важнее любых совпадений
	for _, term := range spec.Exclude {
		if strings.Contains(haystack, term) {
			return news.Article{}, false
		}
	}

	score := 0
	var matched []string
	seen := make(map[string]struct{}, len(spec.Include))
	for _, term := range spec.Include {
		if !phraseMatches(haystack, term.Phrase) {
			continue
		}
		// Повторённая в спецификации фраза добавляет свой вес, но в списке совпадений одна
		score += term.Weight
		if _, dup := seen[term.Phrase]; dup {
			continue
		}
		seen[term.Phrase] = struct{}{}
		matched = append(matched, term.Phrase)
	}

	if score <= 0 {
		return news.Article{}, false
	}

	article.Score = score
	article.MatchedPhrases = matched
	return article, true
}

// phraseMatches: каждое слово фразы должно встречаться в тексте как подстрока.
// Границы слов не учитываются.
func phraseMatches(haystack, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}

// Sort возвращает новый срез, упорядоченный по order.
// Сортировка стабильная: при равенстве сохраняется порядок слияния лент.
func Sort(articles []news.Article, order news.SortOrder) []news.Article {
	sorted := make([]news.Article, len(articles))
	copy(sorted, articles)

	switch order {
	case news.SortDateAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
		})
	case news.SortRelevance:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Score > sorted[j].Score
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
		})
	}

	return sorted
}
