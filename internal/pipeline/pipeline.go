package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/fetcher"
	"github.com/roboscout/roboscout/internal/listing"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/internal/logger"
	"github.com/roboscout/roboscout/internal/store"
)

// contextCharBudget bounds free-text context embedded in prompts.
const contextCharBudget = extract.ContextCharBudget

// Config controls one pipeline run.
type Config struct {
	// Paginate enables LLM pagination discovery before extraction.
	Paginate bool

	// PaginationIndications are optional operator hints about the site's
	// pagination mechanism.
	PaginationIndications string

	// ExtraFields extends the listing schema beyond the required keys.
	ExtraFields []string

	// BusinessContext is the briefing summary injected into prompts.
	BusinessContext string

	// Concurrency bounds parallel fetches and parallel listing enrichment.
	Concurrency int
}

// DocumentResult is the outcome for one seed URL.
type DocumentResult struct {
	ID       string
	URL      string
	PageURLs []string
	Listings []listing.Listing
	Fallback bool
	RawText  string
}

// RunResult aggregates a full pipeline run.
type RunResult struct {
	RunID     string
	Documents []DocumentResult
	Usage     llm.Usage
}

// Listings flattens all document listings into one slice.
func (r RunResult) Listings() []listing.Listing {
	var out []listing.Listing
	for _, doc := range r.Documents {
		out = append(out, doc.Listings...)
	}
	return out
}

// Pipeline wires fetching, persistence, extraction, and enrichment into the
// full scrape flow.
type Pipeline struct {
	pool       *fetcher.Pool
	store      store.Store
	pagination *PaginationResolver
	listings   *ListingExtractor
	enricher   *Enricher
	config     Config
}

// New assembles a pipeline from its stages.
func New(pool *fetcher.Pool, st store.Store, client *extract.Client, mentions MentionSource, cfg Config) *Pipeline {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Pipeline{
		pool:       pool,
		store:      st,
		pagination: NewPaginationResolver(client, st),
		listings:   NewListingExtractor(client, st, cfg.ExtraFields),
		enricher:   NewEnricher(client, mentions, cfg.Concurrency),
		config:     cfg,
	}
}

// Run executes the pipeline over the seed URLs: fetch, persist raw text,
// optionally discover and fold in paginated pages, extract listings, then
// enrich and score them. URLs that fail to fetch flow through with empty
// raw text and are skipped by the downstream stages.
func (p *Pipeline) Run(ctx context.Context, seedURLs []string) (RunResult, error) {
	result := RunResult{RunID: NewRunID()}
	if len(seedURLs) == 0 {
		return result, nil
	}

	urls := make([]string, 0, len(seedURLs))
	ids := make([]string, 0, len(seedURLs))
	for _, raw := range seedURLs {
		u := NormalizeURL(raw)
		urls = append(urls, u)
		ids = append(ids, NewTargetID(u))
	}

	logger.Info("pipeline run starting", "run_id", result.RunID, "urls", len(urls))

	// Fetch and persist raw text for every seed.
	texts := p.pool.FetchAll(ctx, urls)
	rawByID := make(map[string]string, len(ids))
	for i, id := range ids {
		raw := texts[urls[i]]
		rawByID[id] = raw
		if err := p.store.UpsertRaw(ctx, id, urls[i], raw); err != nil {
			return result, fmt.Errorf("failed to persist raw data: %w", err)
		}
	}

	// Discover additional pages and fold their text into each document.
	pagesByID := make(map[string][]string)
	if p.config.Paginate {
		pagResults, usage, err := p.pagination.Resolve(ctx, ids, urls,
			p.config.PaginationIndications, p.config.BusinessContext)
		result.Usage.Add(usage)
		if err != nil {
			return result, err
		}

		for _, pr := range pagResults {
			if len(pr.PageURLs) == 0 {
				continue
			}
			pagesByID[pr.ID] = pr.PageURLs

			pageTexts := p.pool.FetchAll(ctx, pr.PageURLs)
			parts := []string{rawByID[pr.ID]}
			for _, pageURL := range pr.PageURLs {
				if t := pageTexts[pageURL]; t != "" {
					parts = append(parts, t)
				}
			}

			combined := strings.Join(parts, "\n\n")
			rawByID[pr.ID] = combined
			if err := p.store.UpsertRaw(ctx, pr.ID, pr.URL, combined); err != nil {
				return result, fmt.Errorf("failed to persist combined raw data: %w", err)
			}
		}
	}

	// Extract structured listings from the stored raw text.
	listingResults, usage, err := p.listings.Extract(ctx, ids, urls, p.config.BusinessContext)
	result.Usage.Add(usage)
	if err != nil {
		return result, err
	}

	// Enrich and score every listing, then persist the final shape.
	var allListings []listing.Listing
	var articleTexts []string
	for _, lr := range listingResults {
		for _, l := range lr.Listings {
			allListings = append(allListings, l)
			articleTexts = append(articleTexts, rawByID[lr.ID])
		}
	}
	result.Usage.Add(p.enricher.EnrichAll(ctx, allListings, articleTexts, p.config.BusinessContext))

	for _, lr := range listingResults {
		doc := DocumentResult{
			ID:       lr.ID,
			URL:      lr.URL,
			PageURLs: pagesByID[lr.ID],
			Listings: lr.Listings,
			Fallback: lr.Fallback,
			RawText:  lr.RawText,
		}
		result.Documents = append(result.Documents, doc)

		if !lr.Fallback {
			if err := persistListings(ctx, p.store, lr); err != nil {
				return result, err
			}
		}
	}

	logger.Info("pipeline run complete",
		"run_id", result.RunID,
		"documents", len(result.Documents),
		"listings", len(result.Listings()),
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens)

	return result, nil
}

// persistListings re-saves a document's listings after enrichment mutated
// them in place.
func persistListings(ctx context.Context, st store.Store, lr ListingResult) error {
	payload, err := encodeListings(lr.Listings)
	if err != nil {
		return fmt.Errorf("failed to encode enriched listings: %w", err)
	}
	if err := st.UpdateFormatted(ctx, lr.ID, lr.URL, payload); err != nil {
		return fmt.Errorf("failed to persist enriched listings: %w", err)
	}
	return nil
}
