package formatter

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/maine/feedwatch/internal/news"
)

const (
	// descriptionLength - сколько символов описания показывать в списке
	descriptionLength = 200
	// ellipsis - символы, добавляемые при обрезке описания
	ellipsis = "..."

	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Formatter печатает результаты поиска в терминал.
type Formatter struct {
	now       func() time.Time
	highlight bool
}

// NewFormatter создаёт форматтер. highlight включает ANSI-выделение совпадений.
func NewFormatter(now func() time.Time, highlight bool) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now, highlight: highlight}
}

// Render выводит список статей или сообщение об их отсутствии.
func (f *Formatter) Render(w io.Writer, articles []news.Article) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "No matching articles found.\nTry adjusting your keywords or date filter.")
		return err
	}

	for i, article := range articles {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, f.FormatArticle(i+1, article)); err != nil {
			return err
		}
	}
	return nil
}

// FormatArticle собирает блок одной статьи:
//
//	1. Заголовок
//	   host • 2024-03-01 (3 hours ago) • Relevance: 4
//	   Описание...
//	   Matches: election, climate
//	   https://...
func (f *Formatter) FormatArticle(index int, article news.Article) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%d. %s\n", index, f.mark(article.Title, article.MatchedPhrases)))
	sb.WriteString(fmt.Sprintf("   %s • %s (%s) • Relevance: %d\n",
		article.SourceHost,
		article.PublishedAt.Local().Format("2006-01-02"),
		humanize.RelTime(article.PublishedAt, f.now(), "ago", "from now"),
		article.Score,
	))

	description := truncate(article.Description, descriptionLength)
	if description != "" {
		sb.WriteString("   " + f.mark(description, article.MatchedPhrases) + ellipsis + "\n")
	}
	if len(article.MatchedPhrases) > 0 {
		sb.WriteString("   Matches: " + strings.Join(article.MatchedPhrases, ", ") + "\n")
	}
	sb.WriteString("   " + article.Link + "\n")

	return sb.String()
}

// Summary: строка итога прогона.
func Summary(shown, fetched, sources int) string {
	return fmt.Sprintf("%d matching of %d fetched articles from %d sources", shown, fetched, sources)
}

func (f *Formatter) mark(text string, matches []string) string {
	if !f.highlight {
		return text
	}
	return Highlight(text, matches, ansiBold, ansiReset)
}

// Highlight оборачивает каждое слово из совпавших фраз в open/close без учёта регистра.
func Highlight(text string, matches []string, open, close string) string {
	if text == "" || len(matches) == 0 {
		return text
	}

	seen := make(map[string]struct{})
	var words []string
	for _, phrase := range matches {
		for _, word := range strings.Fields(phrase) {
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, regexp.QuoteMeta(word))
		}
	}
	if len(words) == 0 {
		return text
	}

	re := regexp.MustCompile("(?i)(" + strings.Join(words, "|") + ")")
	return re.ReplaceAllString(text, open+"${1}"+close)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
