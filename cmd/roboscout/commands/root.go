// Package commands implements the CLI commands for roboscout.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "roboscout",
	Short: "LLM-powered robotics company intelligence scraper",
	Long: `Roboscout scrapes robotics news sites, extracts structured company
listings with an LLM, and enriches them with media mentions and
strategic relevance scores against a business briefing.

Examples:
  # Scrape one article and print enriched listings
  roboscout scrape -u "https://example.com/robot-news/2025/article"

  # Follow paginated archives and export CSV
  roboscout scrape -u "https://example.com/news" --paginate \
      --format csv -o listings.csv

  # Discover article URLs from a site archive
  roboscout discover -u "https://example.com/news" --max-pages 5`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.roboscout.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".roboscout")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("ROBOSCOUT")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")
	_ = viper.BindEnv("gnews_api_key", "GNEWS_API_KEY")
	_ = viper.BindEnv("database_url", "DATABASE_URL")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
