// Package main provides the entry point for the networking matchmaker service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchmaker",
	Short: "Networking event matchmaker",
	Long:  "Matchmaker registers networking-event attendees, scores pairwise business compatibility, and generates AI-researched meeting recommendations via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
