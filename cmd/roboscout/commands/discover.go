package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roboscout/roboscout/internal/discover"
	"github.com/roboscout/roboscout/internal/logger"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover article URLs from a site's paginated archive",
	Long: `Walk a news site's /page/N/ archive pages and print the article URLs
found, one per line. No model calls are made; the output feeds directly
into 'roboscout scrape -u'.

Example:
  roboscout discover -u "https://example.com/news" --max-pages 5`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	flags := discoverCmd.Flags()
	flags.StringP("url", "u", "", "base archive URL (required)")
	flags.Int("max-pages", discover.DefaultMaxPages, "maximum archive pages to walk")

	_ = discoverCmd.MarkFlagRequired("url")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	baseURL, _ := cmd.Flags().GetString("url")
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	urls, err := discover.NewClient(nil).ArticleURLs(ctx, baseURL, maxPages)
	if err != nil {
		logError("discovery failed: %v", err)
		return err
	}

	for _, u := range urls {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	return nil
}
