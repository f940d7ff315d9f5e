package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoFeedsFound возвращается, если на странице нет ссылок на RSS/Atom.
var ErrNoFeedsFound = errors.New("no RSS or Atom feeds found on page")

const feedLinkSelector = `link[type="application/rss+xml"], link[type="application/atom+xml"]`

// DiscoveredFeed: лента, объявленная на HTML-странице.
type DiscoveredFeed struct {
	URL   string
	Title string
}

// Discoverer ищет ленты в <link rel="alternate"> HTML-страницы.
type Discoverer struct {
	transport Transport
}

// NewDiscoverer создаёт новый экземпляр.
func NewDiscoverer(transport Transport) *Discoverer {
	return &Discoverer{transport: transport}
}

// Discover загружает страницу и возвращает найденные ленты с абсолютными адресами.
func (d *Discoverer) Discover(ctx context.Context, pageURL string) ([]DiscoveredFeed, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("page URL is empty")
	}
	if !strings.HasPrefix(strings.ToLower(pageURL), "http") {
		pageURL = "https://" + pageURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}

	page, err := d.transport.FetchText(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	feeds, err := ExtractFeedLinks(page, base)
	if err != nil {
		return nil, err
	}
	if len(feeds) == 0 {
		return nil, ErrNoFeedsFound
	}
	return feeds, nil
}

// ExtractFeedLinks разбирает HTML и собирает объявленные ленты без повторов.
func ExtractFeedLinks(page string, base *url.URL) ([]DiscoveredFeed, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page HTML: %w", err)
	}

	var feeds []DiscoveredFeed
	seen := make(map[string]struct{})
	doc.Find(feedLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}

		title := strings.TrimSpace(sel.AttrOr("title", ""))
		if title == "" {
			title = resolved
		}
		feeds = append(feeds, DiscoveredFeed{URL: resolved, Title: title})
	})

	return feeds, nil
}
