package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roboscout/roboscout/internal/briefing"
	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/export"
	"github.com/roboscout/roboscout/internal/fetcher"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/internal/logger"
	"github.com/roboscout/roboscout/internal/news"
	"github.com/roboscout/roboscout/internal/pipeline"
	"github.com/roboscout/roboscout/internal/store"
	"github.com/roboscout/roboscout/pkg/schema"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape URLs and extract enriched robotics company listings",
	Long: `Scrape article URLs, extract structured robotics company listings with
an LLM, and enrich them with company profiling, media mention counts,
and strategic relevance scores.

A briefing directory of stakeholder PDFs steers the relevance scoring;
without one, generic scoring context is used.

Examples:
  # Single article
  roboscout scrape -u "https://example.com/robot-news/2025/article"

  # Multiple URLs with pagination discovery and CSV export
  roboscout scrape -u "https://example.com/news" --paginate \
      --format csv -o listings.csv --min-score 3

  # Extra extraction fields beyond the standard set
  roboscout scrape -u "https://example.com/article" \
      --fields ceo_name,employee_count`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// URL inputs
	flags.StringSliceP("url", "u", nil, "URL(s) to scrape (can be repeated)")
	flags.StringSlice("fields", nil, "extra listing fields beyond the standard set")
	flags.StringP("schema", "s", "", "JSON or YAML schema file whose fields extend the listing schema")

	// LLM settings
	flags.StringP("provider", "p", "openai", "LLM provider: anthropic, openai, openrouter")
	flags.StringP("model", "m", "", "model name (provider default if empty)")
	flags.StringP("api-key", "k", "", "API key (or use env var)")
	flags.String("base-url", "", "custom API base URL")
	flags.String("fallback-model", "", "model retried once on rate limits (provider default if empty, 'none' disables)")

	// Persistence and context
	flags.String("db", "", "Postgres DSN (in-memory store if empty)")
	flags.String("context-dir", "briefing", "directory of stakeholder PDFs for scoring context")

	// Pagination
	flags.Bool("paginate", false, "discover paginated pages before extraction")
	flags.String("pagination-hint", "", "hints about the site's pagination mechanism")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, csv")
	flags.Int("min-score", 0, "only export listings with at least this relevancy score")
	flags.Bool("pretty", true, "pretty-print JSON output")

	// Fetch settings
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.Duration("wait", 0, "extra wait after page load (dynamic mode)")
	flags.IntP("concurrency", "c", 3, "concurrent requests")
	flags.String("max-content-size", "100KB", "max input content size (e.g., 100KB, 1MB, 0=unlimited)")

	// Bind to viper
	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("database_url", flags.Lookup("db"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	urls, _ := cmd.Flags().GetStringSlice("url")
	if len(urls) == 0 {
		return cmd.Help()
	}
	logger.Debug("URLs to process", "count", len(urls))

	timeout, _ := cmd.Flags().GetDuration("timeout")
	wait, _ := cmd.Flags().GetDuration("wait")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	// Max content size (0 or empty means unlimited)
	maxContentSizeStr, _ := cmd.Flags().GetString("max-content-size")
	var maxContentSize int
	if strings.TrimSpace(maxContentSizeStr) != "" && maxContentSizeStr != "0" {
		bytes, err := humanize.ParseBytes(maxContentSizeStr)
		if err != nil {
			logError("invalid max-content-size %q: %v", maxContentSizeStr, err)
			return err
		}
		maxContentSize = int(bytes)
	}

	// Fetcher
	fetchMode, _ := cmd.Flags().GetString("fetch-mode")
	var f fetcher.Fetcher
	switch fetchMode {
	case "dynamic":
		dyn, err := fetcher.NewDynamic(fetcher.Config{Timeout: timeout})
		if err != nil {
			logger.Error("failed to create dynamic fetcher", "error", err)
			return err
		}
		f = dyn
	case "static", "":
		f = fetcher.NewStatic(fetcher.Config{Timeout: timeout})
	default:
		return fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", fetchMode)
	}
	defer func() { _ = f.Close() }()

	pool := fetcher.NewPool(f, fetcher.Options{Timeout: timeout, WaitDuration: wait}, concurrency)

	// Store
	var st store.Store
	if dsn := viper.GetString("database_url"); dsn != "" {
		pg, err := store.NewPostgres(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return err
		}
		st = pg
	} else {
		logger.Debug("no database configured, using in-memory store")
		st = store.NewMemory()
	}
	defer func() { _ = st.Close() }()

	// LLM provider, optionally with a rate-limit fallback model
	provider, err := buildProvider(timeout)
	if err != nil {
		logger.Error("failed to create LLM provider", "error", err)
		return err
	}
	fallbackModel, _ := cmd.Flags().GetString("fallback-model")
	if fallbackModel == "" {
		fallbackModel = llm.GetDefaultFallbackModel(viper.GetString("provider"))
	}
	if fallbackModel != "" && fallbackModel != "none" {
		fb, err := buildFallbackProvider(fallbackModel, timeout)
		if err != nil {
			logger.Error("failed to create fallback provider", "error", err)
			return err
		}
		provider = llm.NewFallbackProvider(provider, fb)
	}

	client := extract.NewClient(provider, extract.Config{MaxContentSize: maxContentSize})

	// Briefing context
	contextDir, _ := cmd.Flags().GetString("context-dir")
	briefingText, err := briefing.LoadDir(contextDir)
	if err != nil {
		logger.Error("failed to load briefing", "error", err)
		return err
	}
	briefingSummary, summaryUsage, err := briefing.Summarize(ctx, client, briefingText)
	if err != nil {
		logger.Warn("briefing summary failed, continuing without context", "error", err)
		briefingSummary = ""
	}

	// Pipeline
	paginate, _ := cmd.Flags().GetBool("paginate")
	paginationHint, _ := cmd.Flags().GetString("pagination-hint")

	fields, _ := cmd.Flags().GetStringSlice("fields")
	schemaPath, _ := cmd.Flags().GetString("schema")
	extraFields, err := loadExtraFields(schemaPath, fields)
	if err != nil {
		logger.Error("failed to load schema file", "path", schemaPath, "error", err)
		return err
	}

	p := pipeline.New(pool, st, client,
		news.NewClient(viper.GetString("gnews_api_key")),
		pipeline.Config{
			Paginate:              paginate,
			PaginationIndications: paginationHint,
			ExtraFields:           extraFields,
			BusinessContext:       briefingSummary,
			Concurrency:           concurrency,
		})

	result, err := p.Run(ctx, urls)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		return err
	}
	result.Usage.Add(summaryUsage)

	// Export
	outFile := os.Stdout
	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		f, err := os.Create(outPath) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", outPath, "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		outFile = f
	}

	formatStr, _ := cmd.Flags().GetString("format")
	minScore, _ := cmd.Flags().GetInt("min-score")
	pretty, _ := cmd.Flags().GetBool("pretty")
	writer, err := export.NewWriter(outFile, export.Format(formatStr),
		export.WithMinScore(minScore), export.WithPretty(pretty))
	if err != nil {
		logger.Error("failed to create export writer", "format", formatStr, "error", err)
		return err
	}
	if err := writer.WriteAll(result.Listings()); err != nil {
		logger.Error("failed to write listings", "error", err)
		return err
	}
	if err := writer.Flush(); err != nil {
		logger.Error("failed to flush output", "error", err)
		return err
	}

	logger.Info("scrape complete",
		"run_id", result.RunID,
		"documents", len(result.Documents),
		"listings", len(result.Listings()),
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens)

	return nil
}

// loadExtraFields merges field names from an optional schema file with the
// --fields flag values.
func loadExtraFields(schemaPath string, fields []string) ([]string, error) {
	if schemaPath == "" {
		return fields, nil
	}
	s, err := schema.FromFile(schemaPath)
	if err != nil {
		return nil, err
	}
	return append(fields, s.FieldNames()...), nil
}

// buildProvider creates the primary LLM provider from flags and config.
func buildProvider(timeout time.Duration) (llm.Provider, error) {
	name := viper.GetString("provider")
	cfg := llm.DefaultProviderConfig()
	cfg.APIKey = viper.GetString("api_key")
	cfg.BaseURL = viper.GetString("base_url")
	cfg.Model = viper.GetString("model")
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if cfg.Model == "" {
		cfg.Model = llm.GetDefaultModel(name)
	}
	return llm.NewProvider(name, cfg)
}

// buildFallbackProvider creates the cheaper provider used on rate limits.
func buildFallbackProvider(model string, timeout time.Duration) (llm.Provider, error) {
	name := viper.GetString("provider")
	cfg := llm.DefaultProviderConfig()
	cfg.APIKey = viper.GetString("api_key")
	cfg.BaseURL = viper.GetString("base_url")
	cfg.Model = model
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return llm.NewProvider(name, cfg)
}
