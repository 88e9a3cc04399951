package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/roboscout/roboscout/internal/fetcher"
	"github.com/roboscout/roboscout/internal/llm"
)

// routedProvider answers each request based on markers in the prompt text,
// so one provider can serve every pipeline stage in a test.
type routedProvider struct {
	paginationJSON string
	listingsJSON   string
	profileJSON    string
	reasoning      string
	score          string
	launchDateJSON string

	calls []string
}

func (p *routedProvider) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	var all strings.Builder
	for _, m := range req.Messages {
		all.WriteString(m.Content)
		all.WriteString("\n")
	}
	text := all.String()

	var stage, content string
	switch {
	case strings.Contains(text, "pagination URLs"):
		stage, content = "pagination", p.paginationJSON
	case strings.Contains(text, "Robotics Strategy AI Assistant"):
		stage, content = "listings", p.listingsJSON
	case strings.Contains(text, "Robotics Company Profiling AI"):
		stage, content = "profile", p.profileJSON
	case strings.Contains(text, "assign a Relevancy Score"):
		stage, content = "score", p.score
	case strings.Contains(text, "expert analyst"):
		stage, content = "reasoning", p.reasoning
	case strings.Contains(text, "date extraction assistant"):
		stage, content = "launch_date", p.launchDateJSON
	default:
		return llm.CompletionResponse{}, fmt.Errorf("unexpected prompt: %.80s", text)
	}

	p.calls = append(p.calls, stage)
	return llm.CompletionResponse{
		Content: content,
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func (p *routedProvider) Name() string { return "routed" }

func (p *routedProvider) callCount(stage string) int {
	n := 0
	for _, c := range p.calls {
		if c == stage {
			n++
		}
	}
	return n
}

// stubFetcher serves fixed text per URL and fails on unknown URLs.
type stubFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string, _ fetcher.Options) (fetcher.Content, error) {
	f.fetched = append(f.fetched, url)
	text, ok := f.pages[url]
	if !ok {
		return fetcher.Content{URL: url}, fmt.Errorf("no such page: %s", url)
	}
	return fetcher.Content{URL: url, Text: text, StatusCode: 200}, nil
}

func (f *stubFetcher) Close() error { return nil }

func (f *stubFetcher) Type() string { return "stub" }

// countingMentions records lookups and returns a fixed count.
type countingMentions struct {
	count   int
	lookups []string
}

func (m *countingMentions) Mentions(_ context.Context, company string) (int, error) {
	m.lookups = append(m.lookups, company)
	return m.count, nil
}
