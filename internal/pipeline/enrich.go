package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/listing"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/internal/logger"
	"github.com/roboscout/roboscout/pkg/schema"
)

// MentionSource counts recent media mentions for a company name.
type MentionSource interface {
	Mentions(ctx context.Context, company string) (int, error)
}

// enrichmentDefaults backfill fields the profiling call left empty.
var enrichmentDefaults = map[string]any{
	"company_info":           "Not provided",
	"region":                 "Unknown",
	"focus":                  "Not Available",
	"company_size":           "Unknown",
	"capital_raised":         "Not Disclosed",
	"funding_stage_inferred": "Unknown",
	"recent_developments":    "No updates available",
	"partnerships":           "None",
	"humanoids_focus":        "No",
	"single_use_case_type":   "No",
	"streamlined_tasks":      "",
	"project_launch_date":    listing.LaunchDatePlaceholder,
}

// enrichmentKeyMapping maps profiling schema keys onto canonical listing
// keys where the names differ.
var enrichmentKeyMapping = map[string]string{
	"company_info":         "company_info",
	"region":               "region",
	"focus":                "focus",
	"company_size":         "company_size",
	"capital_raised":       "raised_funding",
	"recent_developments":  "recent_developments",
	"partnerships":         "partnerships",
	"humanoids_focus":      "humanoid_robotics_use_case",
	"single_use_case_type": "single_use_cases",
	"streamlined_tasks":    "task_streamlining",
	"project_launch_date":  "project_launch_date",
}

// Enricher deepens extracted listings with company profiling, media mention
// counts, relevance scoring, and launch-date backfill. Listings are
// processed concurrently; the sub-steps for one listing run in order
// because each consumes the previous step's output.
type Enricher struct {
	client      *extract.Client
	mentions    MentionSource
	concurrency int

	mu           sync.Mutex
	mentionCache map[string]int
}

// NewEnricher creates an enricher. mentions may be nil, in which case the
// media-mention step is skipped.
func NewEnricher(client *extract.Client, mentions MentionSource, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		client:       client,
		mentions:     mentions,
		concurrency:  concurrency,
		mentionCache: make(map[string]int),
	}
}

// enrichmentSchema describes the company profiling response. Every field is
// optional; missing values are filled from enrichmentDefaults afterwards.
func enrichmentSchema() *schema.Schema {
	keys := []string{
		"company_info", "region", "focus", "company_size",
		"capital_raised", "funding_stage_inferred", "recent_developments",
		"partnerships", "humanoids_focus", "single_use_case_type",
		"streamlined_tasks", "project_launch_date",
	}
	fields := make([]schema.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, schema.String(k, ""))
	}
	s := schema.New("company_profile", fields...)
	return &s
}

// EnrichAll enriches every listing concurrently and returns aggregate token
// usage. Per-listing failures degrade that listing (defaults, score "1")
// without failing the batch.
func (e *Enricher) EnrichAll(ctx context.Context, listings []listing.Listing, articleTexts []string, briefingSummary string) llm.Usage {
	var usage llm.Usage
	var usageMu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, e.concurrency)

	for i, l := range listings {
		articleText := ""
		if i < len(articleTexts) {
			articleText = articleTexts[i]
		}

		wg.Add(1)
		go func(l listing.Listing, articleText string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			u := e.enrichOne(ctx, l, articleText, briefingSummary)
			usageMu.Lock()
			usage.Add(u)
			usageMu.Unlock()
		}(l, articleText)
	}

	wg.Wait()
	return usage
}

// enrichOne runs the three enrichment sub-steps for a single listing.
func (e *Enricher) enrichOne(ctx context.Context, l listing.Listing, articleText, briefingSummary string) llm.Usage {
	var usage llm.Usage

	usage.Add(e.enrichMetadata(ctx, l, articleText))
	usage.Add(e.correlate(ctx, l, briefingSummary))
	usage.Add(e.backfillLaunchDate(ctx, l, articleText))

	return usage
}

// enrichMetadata profiles the company from its website and article text and
// merges the result into the listing, then attaches a media mention count.
func (e *Enricher) enrichMetadata(ctx context.Context, l listing.Listing, articleText string) llm.Usage {
	var usage llm.Usage

	websiteText := l.GetString("company_website_content")
	if websiteText == "" && articleText == "" {
		logger.Debug("no website or article content available, skipping profiling",
			"company", l.Company())
		return usage
	}

	res, err := e.client.Extract(ctx, extract.Request{
		System:  "You extract company profile insights from website and article text.",
		Content: buildEnrichmentPrompt(websiteText, articleText),
		Schema:  enrichmentSchema(),
	})
	usage.Add(res.Usage)
	if err != nil {
		logger.Warn("company profiling failed, keeping original listing values",
			"company", l.Company(), "error", err)
	} else {
		enriched := res.Data
		for key, def := range enrichmentDefaults {
			if v, ok := enriched[key]; !ok || v == "" {
				enriched[key] = def
			}
		}
		for src, dst := range enrichmentKeyMapping {
			if v, ok := enriched[src]; ok {
				l[dst] = v
			}
		}
		l["funding_stage_inferred"] = enriched["funding_stage_inferred"]
	}

	if e.mentions != nil {
		l["media_mentions"] = e.mentionCount(ctx, l.Company())
	}

	return usage
}

// mentionCount returns the media mention count for a company, consulting a
// per-batch cache so each company is looked up at most once per run.
func (e *Enricher) mentionCount(ctx context.Context, company string) int {
	if company == "" {
		return 0
	}
	key := strings.ToLower(company)

	e.mu.Lock()
	if count, ok := e.mentionCache[key]; ok {
		e.mu.Unlock()
		return count
	}
	e.mu.Unlock()

	count, err := e.mentions.Mentions(ctx, company)
	if err != nil {
		logger.Warn("media mention lookup failed", "company", company, "error", err)
		count = 0
	}

	e.mu.Lock()
	e.mentionCache[key] = count
	e.mu.Unlock()
	return count
}

// correlate produces the A-D relevance reasoning and a 1-5 score in two
// model calls. The score call sees only the reasoning, keeping the
// judgement grounded in the written rationale.
func (e *Enricher) correlate(ctx context.Context, l listing.Listing, briefingSummary string) llm.Usage {
	var usage llm.Usage

	companyData := map[string]any{
		"description":          l.GetString("company_info"),
		"focus":                l.GetString("focus"),
		"region":               l.GetString("region"),
		"capital_raised":       l.GetString("raised_funding"),
		"recent_developments":  l.GetString("recent_developments"),
		"partnerships":         l.GetString("partnerships"),
		"streamlined_tasks":    l.GetString("task_streamlining"),
		"humanoids_focus":      l.GetString("humanoid_robotics_use_case"),
		"single_use_case_type": l.GetString("single_use_cases"),
		"project_launch_date":  l.GetString("project_launch_date"),
		"company_size":         l.GetString("company_size"),
	}

	reasoning, u, err := e.client.Complete(ctx,
		"You are an expert in business strategy and robotics alignment.",
		buildCorrelationPrompt(companyData, briefingSummary))
	usage.Add(u)
	if err != nil {
		logger.Warn("correlation reasoning failed", "company", l.Company(), "error", err)
		l["relevancy_score"] = "1"
		l["correlation_reason"] = "Could not extract explanation."
		return usage
	}
	l["correlation_reason"] = reasoning

	score, u, err := e.client.Complete(ctx,
		"You are a strategic evaluator assigning fit scores from 1 to 5.",
		buildScorePrompt(reasoning))
	usage.Add(u)
	if err != nil {
		logger.Warn("score assignment failed", "company", l.Company(), "error", err)
		l["relevancy_score"] = "1"
		return usage
	}
	l["relevancy_score"] = clampScore(score)

	return usage
}

// clampScore restricts a model-produced score to the valid "1".."5" range,
// defaulting to "1" for anything else.
func clampScore(score string) string {
	switch score {
	case "1", "2", "3", "4", "5":
		return score
	}
	return "1"
}

// backfillLaunchDate fills a missing launch date from the article, accepting
// a "Month Year" value only when it literally appears in the article text.
// Anything the article does not contain verbatim is treated as a guess.
func (e *Enricher) backfillLaunchDate(ctx context.Context, l listing.Listing, articleText string) llm.Usage {
	var usage llm.Usage

	if !l.NeedsLaunchDate() || articleText == "" {
		return usage
	}

	launchSchema := schema.New("launch_date", schema.String("project_launch_date", ""))
	res, err := e.client.Extract(ctx, extract.Request{
		System:  "You extract project launch dates from tech news.",
		Content: buildLaunchDatePrompt(articleText),
		Schema:  &launchSchema,
	})
	usage.Add(res.Usage)
	if err != nil {
		logger.Warn("launch date extraction failed", "company", l.Company(), "error", err)
		l["project_launch_date"] = listing.LaunchDatePlaceholder
		return usage
	}

	date, _ := res.Data["project_launch_date"].(string)
	if date == "" || date == listing.LaunchDatePlaceholder || !strings.Contains(articleText, date) {
		l["project_launch_date"] = listing.LaunchDatePlaceholder
		return usage
	}
	l["project_launch_date"] = date

	return usage
}
