package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/listing"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/internal/logger"
	"github.com/roboscout/roboscout/internal/store"
	"github.com/roboscout/roboscout/pkg/schema"
)

// ListingResult holds the structured listings extracted for one document.
type ListingResult struct {
	ID       string
	URL      string
	Listings []listing.Listing
	Fallback bool
	RawText  string
}

// ListingExtractor turns stored raw text into structured company listings
// using a schema built from the required keys plus any operator-supplied
// extra fields.
type ListingExtractor struct {
	client *extract.Client
	store  store.Store
	schema *schema.Schema
}

// NewListingExtractor builds an extractor whose schema covers the required
// listing keys together with extraFields. Duplicates are ignored.
func NewListingExtractor(client *extract.Client, st store.Store, extraFields []string) *ListingExtractor {
	return &ListingExtractor{
		client: client,
		store:  st,
		schema: listingSchema(extraFields),
	}
}

// listingSchema builds the dynamic listings schema: every listing field is
// an optional string, the listings array itself is required.
func listingSchema(extraFields []string) *schema.Schema {
	seen := make(map[string]bool, len(listing.RequiredKeys)+len(extraFields))
	var fields []schema.Field
	for _, key := range listing.RequiredKeys {
		seen[key] = true
		fields = append(fields, schema.String(key, ""))
	}
	for _, key := range extraFields {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		fields = append(fields, schema.String(key, ""))
	}
	s := schema.Listings(fields)
	return &s
}

// Extract runs listing extraction over each document's stored raw text.
// Documents with no raw text are skipped silently. Unparseable model output
// is persisted as-is and surfaced as a fallback result, never an error.
func (e *ListingExtractor) Extract(ctx context.Context, ids, urls []string, businessContext string) ([]ListingResult, llm.Usage, error) {
	var results []ListingResult
	var usage llm.Usage

	for i, id := range ids {
		if i >= len(urls) {
			break
		}
		pageURL := urls[i]

		raw, err := e.store.ReadRaw(ctx, id)
		if err != nil {
			return results, usage, fmt.Errorf("failed to read raw data for %s: %w", id, err)
		}
		if raw == "" {
			logger.Warn("no raw data stored, skipping extraction", "id", id, "url", pageURL)
			continue
		}

		res, err := e.client.Extract(ctx, extract.Request{
			System:  roboticsSystemMessage,
			Content: raw,
			Context: businessContext,
			Schema:  e.schema,
		})
		usage.Add(res.Usage)
		if err != nil && !res.Fallback {
			return results, usage, fmt.Errorf("listing extraction failed for %s: %w", id, err)
		}

		result := ListingResult{ID: id, URL: pageURL, Fallback: res.Fallback, RawText: res.Raw}
		if !res.Fallback {
			result.Listings = res.Listings()
		}

		payload, err := json.Marshal(res.Data)
		if err != nil {
			return results, usage, fmt.Errorf("failed to encode formatted data: %w", err)
		}
		if err := e.store.UpdateFormatted(ctx, id, pageURL, string(payload)); err != nil {
			return results, usage, fmt.Errorf("failed to persist formatted data: %w", err)
		}

		logger.Info("listings extracted", "id", id, "count", len(result.Listings), "fallback", res.Fallback)
		results = append(results, result)
	}

	return results, usage, nil
}

// encodeListings serializes listings in the stored formatted-data shape.
func encodeListings(listings []listing.Listing) (string, error) {
	payload, err := json.Marshal(map[string]any{"listings": listings})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
