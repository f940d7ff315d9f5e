// Package keywords разбирает текст ключевых слов в KeywordSpec.
//
// Формат построчный:
//
//	election:3   фраза с весом 3
//	climate      фраза с весом 1
//	-sports      исключающий термин
//
// Некорректный вес не считается ошибкой: строка целиком становится фразой с весом 1.
package keywords

import (
	"strconv"
	"strings"

	"github.com/maine/feedwatch/internal/news"
)

const excludeMarker = "-"

// Parse превращает многострочный текст в спецификацию. Ошибок не бывает.
func Parse(raw string) news.KeywordSpec {
	spec := news.KeywordSpec{
		Include: []news.KeywordTerm{},
		Exclude: []string{},
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, excludeMarker) {
			term := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, excludeMarker)))
			if term != "" {
				spec.Exclude = append(spec.Exclude, term)
			}
			continue
		}

		term := parseIncludeLine(line)
		if term.Phrase == "" {
			continue
		}
		spec.Include = append(spec.Include, term)
	}

	return spec
}

func parseIncludeLine(line string) news.KeywordTerm {
	parts := strings.Split(line, ":")
	if len(parts) == 2 {
		if weight, ok := leadingInt(parts[1]); ok {
			return news.KeywordTerm{
				Phrase: strings.ToLower(strings.TrimSpace(parts[0])),
				Weight: weight,
			}
		}
	}
	return news.KeywordTerm{Phrase: strings.ToLower(line), Weight: 1}
}

// leadingInt читает целое в начале строки: пробелы, необязательный знак, цифры.
// "3", " 3 ", "3x" дают 3; "x3" и "" не числа.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MergeUpload добавляет загруженный файл ключевых слов к текущему тексту.
// Запятые в файле становятся переводами строк.
func MergeUpload(current, uploaded string) string {
	uploaded = strings.ReplaceAll(uploaded, ",", "\n")
	if current == "" {
		return uploaded
	}
	return current + "\n" + uploaded
}
