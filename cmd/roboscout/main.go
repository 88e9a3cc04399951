// Package main is the entry point for the roboscout CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/roboscout/roboscout/cmd/roboscout/commands"
)

func main() {
	// API keys and the database DSN commonly live in a local .env file.
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
