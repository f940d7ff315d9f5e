package news

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Article описывает статью из ленты после нормализации.
// Link служит идентификатором статьи между циклами опроса.
type Article struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Link           string    `json:"link"`
	PublishedAt    time.Time `json:"published_at"`
	SourceHost     string    `json:"source_host"`
	Score          int       `json:"score,omitempty"`
	MatchedPhrases []string  `json:"matched_phrases,omitempty"`
}

// KeywordTerm: взвешенная фраза для включения.
type KeywordTerm struct {
	Phrase string `json:"phrase"`
	Weight int    `json:"weight"`
}

// KeywordSpec: разобранная спецификация ключевых слов.
type KeywordSpec struct {
	Include []KeywordTerm `json:"include"`
	Exclude []string      `json:"exclude"`
}

// HasCriteria сообщает, есть ли хотя бы одна фраза для включения.
func (s KeywordSpec) HasCriteria() bool {
	return len(s.Include) > 0
}

// SortOrder задаёт порядок итоговой выдачи.
type SortOrder string

const (
	SortDateDesc  SortOrder = "date-desc"
	SortDateAsc   SortOrder = "date-asc"
	SortRelevance SortOrder = "relevance"
)

// ParseSortOrder разбирает значение флага или настройки.
func ParseSortOrder(value string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(value))); order {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortRelevance:
		return order, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want date-desc, date-asc or relevance)", value)
	}
}

// DateWindow: окно свежести в днях. Нулевое значение означает "all".
type DateWindow struct {
	Days int
}

// All сообщает, что окно не ограничено.
func (w DateWindow) All() bool {
	return w.Days <= 0
}

func (w DateWindow) String() string {
	if w.All() {
		return "all"
	}
	return strconv.Itoa(w.Days)
}

// ParseDateWindow принимает "all" или число дней.
func ParseDateWindow(value string) (DateWindow, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return DateWindow{}, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 0 {
		return DateWindow{}, fmt.Errorf("invalid date window %q", value)
	}
	return DateWindow{Days: days}, nil
}

// MarshalJSON пишет окно строкой, как в файле сессии.
func (w DateWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON принимает строку ("all", "7") или число.
func (w *DateWindow) UnmarshalJSON(data []byte) error {
	text, err := flexibleString(data)
	if err != nil {
		return fmt.Errorf("date window: %w", err)
	}
	parsed, err := ParseDateWindow(text)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// RefreshInterval: интервал автообновления в минутах, 0 отключает его.
type RefreshInterval int

// Duration переводит интервал в time.Duration.
func (r RefreshInterval) Duration() time.Duration {
	return time.Duration(r) * time.Minute
}

// MarshalJSON пишет интервал строкой, как в файле сессии.
func (r RefreshInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(r)))
}

// UnmarshalJSON принимает строку или число.
func (r *RefreshInterval) UnmarshalJSON(data []byte) error {
	text, err := flexibleString(data)
	if err != nil {
		return fmt.Errorf("refresh interval: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		*r = 0
		return nil
	}
	minutes, err := strconv.Atoi(text)
	if err != nil || minutes < 0 {
		return fmt.Errorf("invalid refresh interval %q", text)
	}
	*r = RefreshInterval(minutes)
	return nil
}

func flexibleString(data []byte) (string, error) {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text, nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(data))
	}
	return number.String(), nil
}

// Preferences хранит пользовательские настройки: ленты, ключевые слова, интервал и окно.
// Та же форма используется для экспорта/импорта сессии.
type Preferences struct {
	Feeds       []string        `json:"feeds"`
	Keywords    string          `json:"keywords"`
	AutoRefresh RefreshInterval `json:"autoRefresh"`
	DateFilter  DateWindow      `json:"dateFilter"`
	Sort        SortOrder       `json:"sort,omitempty"`
}

// DefaultFeeds используются, пока пользователь не настроил свои ленты.
var DefaultFeeds = []string{
	"http://rss.cnn.com/rss/cnn_topstories.rss",
	"https://feeds.bbci.co.uk/news/world/rss.xml",
	"https://www.nytimes.com/svc/collections/v1/publish/https://www.nytimes.com/section/world/rss.xml",
}

// DefaultPreferences возвращает настройки для первого запуска.
func DefaultPreferences() Preferences {
	feeds := make([]string, len(DefaultFeeds))
	copy(feeds, DefaultFeeds)
	return Preferences{
		Feeds: feeds,
		Sort:  SortDateDesc,
	}
}
