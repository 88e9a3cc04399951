// Package extract implements the structured extraction client: it turns
// free-text LLM responses into validated, uniformly-shaped JSON documents.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roboscout/roboscout/internal/listing"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/internal/logger"
	"github.com/roboscout/roboscout/pkg/schema"
)

// RawTextKey is the sentinel key carrying unparseable model output in a
// fallback result.
const RawTextKey = "raw_text"

// ContextCharBudget bounds supplementary context passed alongside the
// primary extraction target, to control cost and latency.
const ContextCharBudget = 4000

// ErrUnstructured reports that the model response could not be parsed or
// validated as the requested structure. It is non-fatal: the returned
// Result still carries the raw text and the caller decides whether to
// retry or accept the degraded shape.
var ErrUnstructured = errors.New("model response is not valid structured data")

// Result is the outcome of one extraction call. It is a two-case variant:
// a validated document (Fallback=false, Data holds the normalized payload)
// or a fallback (Fallback=true, Data holds the raw text under RawTextKey).
// Consumers must branch on Fallback rather than probe for keys.
type Result struct {
	Data     map[string]any
	Raw      string // raw model response text
	Fallback bool
	Errors   []schema.ValidationError
	Usage    llm.Usage
}

// Listings returns the listings array of a validated result, or nil.
func (r Result) Listings() []listing.Listing {
	if r.Fallback {
		return nil
	}
	raw, ok := r.Data["listings"].([]any)
	if !ok {
		return nil
	}
	out := make([]listing.Listing, 0, len(raw))
	for _, item := range raw {
		if l := listing.FromAny(item); l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Request describes one extraction call.
type Request struct {
	System  string         // system instruction
	Content string         // primary extraction target
	Context string         // supplementary business context, truncated to ContextCharBudget
	Schema  *schema.Schema // optional; enables validation and listing backfill
}

// Config holds client settings.
type Config struct {
	Temperature    float64
	MaxTokens      int
	MaxContentSize int // truncate Content beyond this many bytes; 0 = unlimited
}

// Client performs LLM-backed structured extraction.
type Client struct {
	provider llm.Provider
	config   Config
}

// NewClient creates an extraction client around a provider.
func NewClient(provider llm.Provider, cfg Config) *Client {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 8192
	}
	return &Client{provider: provider, config: cfg}
}

// Extract sends the instruction and content to the model and parses the
// response. Transport errors are returned as-is; parse and validation
// failures return a fallback Result together with ErrUnstructured, never a
// panic and never a fatal error.
func (c *Client) Extract(ctx context.Context, req Request) (Result, error) {
	system := req.System
	if req.Schema != nil {
		// Spell the fields out in prose as well; providers without native
		// structured output only see the messages.
		system += "\n\n" + req.Schema.ToPromptDescription()
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
	}
	if req.Context != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: "Business context:\n" + truncate(req.Context, ContextCharBudget),
		})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: truncate(req.Content, c.config.MaxContentSize),
	})

	creq := llm.CompletionRequest{
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	if req.Schema != nil {
		creq.JSONSchema = req.Schema.ToJSONSchema()
	}

	resp, err := c.provider.Complete(ctx, creq)
	if err != nil {
		return Result{}, fmt.Errorf("completion failed: %w", err)
	}

	result := Result{Raw: resp.Content, Usage: resp.Usage}

	parsed, err := parseJSON(resp.Content)
	if err != nil {
		logger.Warn("model returned non-JSON output, downgrading to fallback",
			"provider", c.provider.Name(), "error", err)
		result.Fallback = true
		result.Data = map[string]any{RawTextKey: resp.Content}
		return result, ErrUnstructured
	}

	normalized, ok := normalizeKeys(parsed).(map[string]any)
	if !ok {
		// Top-level arrays and scalars have no key shape to validate
		normalized = map[string]any{"value": normalizeKeys(parsed)}
	}

	if req.Schema != nil {
		backfillListings(normalized)
		if verrs := req.Schema.Validate(normalized); len(verrs) > 0 {
			logger.Warn("extraction failed schema validation, downgrading to fallback",
				"schema", req.Schema.Name, "errors", len(verrs))
			result.Fallback = true
			result.Errors = verrs
			result.Data = map[string]any{RawTextKey: resp.Content}
			return result, ErrUnstructured
		}
	}

	result.Data = normalized
	return result, nil
}

// Complete issues a plain-text call with no JSON handling, for stages whose
// contract is free text (e.g. correlation reasoning).
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, llm.Usage, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("completion failed: %w", err)
	}
	return strings.TrimSpace(resp.Content), resp.Usage, nil
}

// parseJSON strips markdown code-fence wrapping and decodes the payload.
func parseJSON(raw string) (any, error) {
	cleaned := strings.Trim(raw, "` \n")
	if len(cleaned) >= 4 && strings.EqualFold(cleaned[:4], "json") {
		cleaned = strings.TrimSpace(cleaned[4:])
	}

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// normalizeKeys lowercases mapping keys and replaces spaces with
// underscores, recursively through nested mappings and sequences.
func normalizeKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			key := strings.ReplaceAll(strings.ToLower(k), " ", "_")
			out[key] = normalizeKeys(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeKeys(inner)
		}
		return out
	}
	return v
}

// backfillListings pads every element of a listings array with the required
// keys and inherits the container-level article summary where an element
// lacks its own.
func backfillListings(doc map[string]any) {
	items, ok := doc["listings"].([]any)
	if !ok {
		return
	}

	containerSummary, _ := doc["article_summary"].(string)

	for _, item := range items {
		l := listing.FromAny(item)
		if l == nil {
			continue
		}
		l.Backfill()
		if l.GetString("article_summary") == "" {
			l["article_summary"] = containerSummary
		}
	}
}

// truncate limits s to max bytes; 0 means no limit.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
