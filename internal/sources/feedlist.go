package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var feedSeparators = regexp.MustCompile(`[\s,]+`)

// AddFeeds добавляет адреса из extra и из введённого текста (через пробелы, запятые
// или переводы строк). Повторы и некорректные адреса пропускаются.
// Возвращает новый список и число добавленных лент.
func AddFeeds(feeds []string, input string, extra ...string) ([]string, int) {
	candidates := append([]string{}, extra...)
	candidates = append(candidates, feedSeparators.Split(input, -1)...)

	result := append([]string{}, feeds...)
	existing := make(map[string]struct{}, len(result))
	for _, feed := range result {
		existing[feed] = struct{}{}
	}

	added := 0
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, dup := existing[candidate]; dup {
			continue
		}
		if err := ValidateFeedURL(candidate); err != nil {
			continue
		}
		existing[candidate] = struct{}{}
		result = append(result, candidate)
		added++
	}
	return result, added
}

// ValidateFeedURL проверяет адрес; адрес без схемы проверяется как http://.
func ValidateFeedURL(raw string) error {
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed URL %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid feed URL %q: missing host", raw)
	}
	return nil
}

// RemoveFeed удаляет ленту по индексу.
func RemoveFeed(feeds []string, index int) ([]string, error) {
	if index < 0 || index >= len(feeds) {
		return feeds, fmt.Errorf("feed index %d out of range (have %d feeds)", index, len(feeds))
	}
	result := make([]string, 0, len(feeds)-1)
	result = append(result, feeds[:index]...)
	return append(result, feeds[index+1:]...), nil
}
