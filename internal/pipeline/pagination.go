package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/internal/logger"
	"github.com/roboscout/roboscout/internal/store"
	"github.com/roboscout/roboscout/pkg/schema"
)

// PaginationResult holds the page URLs discovered for one document.
type PaginationResult struct {
	ID       string
	URL      string
	PageURLs []string
	Fallback bool
}

// PaginationResolver discovers additional page URLs from stored raw text
// using an LLM prompt.
type PaginationResolver struct {
	client   *extract.Client
	store    store.Store
	schema   *schema.Schema
	validate *validator.Validate
}

// NewPaginationResolver creates a resolver around an extraction client and
// store.
func NewPaginationResolver(client *extract.Client, st store.Store) *PaginationResolver {
	return &PaginationResolver{
		client:   client,
		store:    st,
		schema:   paginationSchema(),
		validate: validator.New(),
	}
}

// paginationSchema describes the expected {"page_urls": [...]} response.
// URL well-formedness is checked per entry afterwards so a single bad URL
// cannot sink the whole response.
func paginationSchema() *schema.Schema {
	s := schema.New("pagination",
		schema.Field{
			Name:     "page_urls",
			Type:     schema.TypeArray,
			Required: true,
			Items: &schema.Field{
				Name: "url",
				Type: schema.TypeString,
			},
		},
	)
	return &s
}

// Resolve runs pagination discovery for each document. Documents with no
// stored raw text are skipped silently; model output that fails to parse
// yields a result with no page URLs rather than an error. The discovered
// payload is persisted per document.
func (r *PaginationResolver) Resolve(ctx context.Context, ids, urls []string, indications, businessContext string) ([]PaginationResult, llm.Usage, error) {
	var results []PaginationResult
	var usage llm.Usage

	for i, id := range ids {
		if i >= len(urls) {
			break
		}
		pageURL := urls[i]

		raw, err := r.store.ReadRaw(ctx, id)
		if err != nil {
			return results, usage, fmt.Errorf("failed to read raw data for %s: %w", id, err)
		}
		if raw == "" {
			logger.Warn("no raw data stored, skipping pagination", "id", id, "url", pageURL)
			continue
		}

		res, err := r.client.Extract(ctx, extract.Request{
			System:  buildPaginationPrompt(indications, pageURL),
			Content: raw,
			Context: businessContext,
			Schema:  r.schema,
		})
		usage.Add(res.Usage)
		if err != nil && !res.Fallback {
			return results, usage, fmt.Errorf("pagination discovery failed for %s: %w", id, err)
		}

		result := PaginationResult{ID: id, URL: pageURL, Fallback: res.Fallback}
		if !res.Fallback {
			result.PageURLs = r.pageURLsFrom(res.Data)
		}

		payload, err := json.Marshal(res.Data)
		if err != nil {
			return results, usage, fmt.Errorf("failed to encode pagination data: %w", err)
		}
		if err := r.store.UpdatePagination(ctx, id, pageURL, string(payload)); err != nil {
			return results, usage, fmt.Errorf("failed to persist pagination data: %w", err)
		}

		logger.Info("pagination resolved", "id", id, "pages", len(result.PageURLs), "fallback", res.Fallback)
		results = append(results, result)
	}

	return results, usage, nil
}

// pageURLsFrom pulls the page_urls array out of a parsed document. Entries
// that are not well-formed URLs are dropped individually; the valid rest
// survive.
func (r *PaginationResolver) pageURLsFrom(data map[string]any) []string {
	raw, ok := data["page_urls"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if err := r.validate.Var(s, "url"); err != nil {
			logger.Warn("dropping malformed page URL", "url", s)
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
