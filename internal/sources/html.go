package sources

import (
	"strings"

	"golang.org/x/net/html"
)

// Теги без полезного текста
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
}

// После блочных тегов вставляется пробел, чтобы слова соседних абзацев не слипались
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "figcaption": true,
}

// StripHTML сводит разметку к обычному тексту и схлопывает пробелы.
func StripHTML(content string) string {
	if content == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			sb.WriteString(" ")
		}
	}
	extract(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
