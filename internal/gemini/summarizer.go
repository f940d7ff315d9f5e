package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/maine/feedwatch/internal/news"
)

const maxPromptDescription = 2000

// Summarizer сжимает статью в одно предложение для текста уведомления.
type Summarizer struct {
	client    GeminiClient
	model     string
	maxLength int
}

// NewSummarizer создаёт суммаризатор. maxLength ограничивает длину ответа в символах.
func NewSummarizer(client GeminiClient, model string, maxLength int) *Summarizer {
	return &Summarizer{
		client:    client,
		model:     model,
		maxLength: maxLength,
	}
}

// Summarize возвращает краткое резюме статьи.
func (s *Summarizer) Summarize(ctx context.Context, article news.Article) (string, error) {
	description := article.Description
	if runes := []rune(description); len(runes) > maxPromptDescription {
		description = string(runes[:maxPromptDescription])
	}

	responseText, err := s.client.GenerateText(ctx, s.model, s.buildPrompt(article.Title, description))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	summary := cleanSummary(responseText)
	if summary == "" {
		return "", fmt.Errorf("empty summary for %s", article.Link)
	}
	if runes := []rune(summary); s.maxLength > 0 && len(runes) > s.maxLength {
		summary = string(runes[:s.maxLength]) + "..."
	}
	return summary, nil
}

func (s *Summarizer) buildPrompt(title, description string) string {
	return fmt.Sprintf(`You write push notification text for a news reader.
Summarize the article below in one neutral sentence of at most %d characters.
Do not add facts that are not in the text. Reply with the sentence only, no quotes or markdown.

Title: %s
Text: %s`, s.maxLength, title, description)
}

// cleanSummary убирает markdown-обёртку и кавычки, которые модель иногда добавляет.
func cleanSummary(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"“”`)
	return strings.Join(strings.Fields(text), " ")
}
