// Package discover walks a news site's /page/N/ archive to collect article
// URLs without any model calls.
package discover

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/roboscout/roboscout/internal/logger"
)

// DefaultMaxPages bounds the archive walk when no limit is given.
const DefaultMaxPages = 5

// Client fetches paginated archive pages and extracts article links.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a discover client. httpClient may be nil.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// ArticleURLs walks baseURL/page/1/ through baseURL/page/maxPages/ and
// returns the deduplicated article links found. The walk stops at the first
// non-200 page, which marks the end of the archive. Links are recognized by
// a year segment ("/20") in the href; pagination links themselves are
// excluded.
func (c *Client) ArticleURLs(ctx context.Context, baseURL string, maxPages int) ([]string, error) {
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	base := strings.TrimRight(baseURL, "/")

	seen := make(map[string]bool)
	var urls []string

	for page := 1; page <= maxPages; page++ {
		pageURL := fmt.Sprintf("%s/page/%d/", base, page)

		links, status, err := c.fetchLinks(ctx, pageURL)
		if err != nil {
			logger.Warn("failed to fetch archive page, continuing", "url", pageURL, "error", err)
			continue
		}
		if status != http.StatusOK {
			logger.Debug("archive walk finished", "url", pageURL, "status", status)
			break
		}

		for _, link := range links {
			if !seen[link] {
				seen[link] = true
				urls = append(urls, link)
			}
		}
	}

	logger.Info("article discovery complete", "base_url", base, "articles", len(urls))
	return urls, nil
}

// fetchLinks fetches one archive page and returns the article hrefs on it.
func (c *Client) fetchLinks(ctx context.Context, pageURL string) ([]string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.Contains(href, "/20") && !strings.Contains(href, "page") {
			links = append(links, href)
		}
	})

	return links, resp.StatusCode, nil
}
