package fetcher

import (
	"context"
	"sync"

	"github.com/roboscout/roboscout/internal/logger"
)

// Pool fans fetches out across a bounded number of workers. Individual
// failures never fail the batch: a URL that cannot be fetched yields an
// empty text so downstream stages can skip it uniformly.
type Pool struct {
	fetcher     Fetcher
	opts        Options
	concurrency int
}

// NewPool wraps a fetcher with bounded concurrent fan-out.
func NewPool(f Fetcher, opts Options, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{fetcher: f, opts: opts, concurrency: concurrency}
}

// FetchAll fetches every URL concurrently and returns extracted text keyed
// by URL. Every input URL has an entry in the result; failed fetches map to
// the empty string.
func (p *Pool) FetchAll(ctx context.Context, urls []string) map[string]string {
	results := make(map[string]string, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, p.concurrency)

	for _, u := range urls {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				results[target] = ""
				mu.Unlock()
				return
			}

			text := ""
			content, err := p.fetcher.Fetch(ctx, target, p.opts)
			if err != nil {
				logger.Warn("fetch failed, continuing with empty content",
					"url", target, "error", err)
			} else {
				text = content.Text
			}

			mu.Lock()
			results[target] = text
			mu.Unlock()
		}(u)
	}

	wg.Wait()
	return results
}
