package api

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/damon-houk/fx-monitor/internal/domain/entity"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/cache"
	"github.com/damon-houk/fx-monitor/internal/infrastructure/metrics"
)

const (
	newsSourceName = "news"
	newsTTL        = 10 * time.Minute
	operationFeed  = "feed"
)

// DefaultNewsFeeds are FX news RSS feeds
var DefaultNewsFeeds = []string{
	"https://www.fxstreet.com/rss/news",
	"https://www.forexlive.com/feed/news",
}

// NewsFeed collects recent headlines from RSS/Atom feeds. Each feed is cached
// as a whole; filtering by currency happens per call.
type NewsFeed struct {
	source
	feeds []string
	cache *cache.TTLCache[[]entity.Headline]
}

// NewNewsFeed creates a headline source over feeds
func NewNewsFeed(feeds []string, opts ...Option) *NewsFeed {
	o := buildOptions("", newsTTL, 0, opts)
	if len(feeds) == 0 {
		feeds = DefaultNewsFeeds
	}

	n := &NewsFeed{
		source: newSource(newsSourceName, o),
		feeds:  feeds,
	}
	n.cache = cache.NewTTLCache[[]entity.Headline]("news", o.ttl, n.cacheOptions()...)
	return n
}

// Headlines returns up to limit of the newest headlines that mention any of codes.
// Feeds that fail are skipped.
func (n *NewsFeed) Headlines(ctx context.Context, codes []entity.CurrencyCode, limit int) []entity.Headline {
	var matched []entity.Headline
	for _, feedURL := range n.feeds {
		for _, h := range n.fetch(ctx, feedURL) {
			if mentionsAny(h, codes) {
				matched = append(matched, h)
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Published.After(matched[j].Published) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (n *NewsFeed) fetch(ctx context.Context, feedURL string) []entity.Headline {
	if cached, ok := n.cache.Get(feedURL); ok {
		return cached
	}

	feed, err := n.newParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		n.log.Warn("Feed unavailable", map[string]interface{}{
			"feed":  feedURL,
			"error": err.Error(),
		})
		n.metrics.ObserveSource(n.name, operationFeed, metrics.OutcomeUnavailable)
		return nil
	}

	headlines := make([]entity.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := entity.Headline{
			Title:   strings.TrimSpace(item.Title),
			Summary: cleanHTML(item.Description),
			Link:    item.Link,
			Feed:    feed.Title,
		}
		if item.PublishedParsed != nil {
			h.Published = *item.PublishedParsed
		}
		headlines = append(headlines, h)
	}

	n.cache.Put(feedURL, headlines)
	n.succeeded(operationFeed)
	return headlines
}

// newParser returns a parser for one fetch. gofeed.Parser fills in its
// translators lazily on first use, so a parser must not be shared between
// goroutines.
func (n *NewsFeed) newParser() *gofeed.Parser {
	parser := gofeed.NewParser()
	parser.Client = n.httpClient
	return parser
}

func mentionsAny(h entity.Headline, codes []entity.CurrencyCode) bool {
	text := strings.ToUpper(h.Title + " " + h.Summary)
	for _, code := range codes {
		if code != "" && strings.Contains(text, string(code)) {
			return true
		}
	}
	return false
}

// cleanHTML strips HTML tags from a feed summary using goquery
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
