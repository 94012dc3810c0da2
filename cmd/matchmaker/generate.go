package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AILLCSteve/rotary-networking-app/internal/config"
	"github.com/AILLCSteve/rotary-networking-app/internal/db"
	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/pipeline"
	"github.com/AILLCSteve/rotary-networking-app/internal/research"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

var (
	generateAttendee string
	generateTier     string
	generateVerbose  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate matches for one attendee from the command line",
	Long: `Run the match generation pipeline for a single attendee without the HTTP server.
The top tier researches each shortlisted pair with the AI; the broader tier uses deterministic rationales.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateAttendee, "attendee", "a", "", "Attendee UUID (required)")
	generateCmd.Flags().StringVarP(&generateTier, "tier", "t", "both", "Tier to generate: top, broader, or both")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print detailed pipeline output")
	_ = generateCmd.MarkFlagRequired("attendee")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	attendeeID, err := uuid.Parse(generateAttendee)
	if err != nil {
		return fmt.Errorf("invalid attendee ID: %w", err)
	}

	var tiers []types.Tier
	switch generateTier {
	case "top":
		tiers = []types.Tier{types.TierTop}
	case "broader":
		tiers = []types.Tier{types.TierBroader}
	case "both":
		tiers = []types.Tier{types.TierTop, types.TierBroader}
	default:
		return fmt.Errorf("invalid tier %q: must be top, broader, or both", generateTier)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	opts := pipeline.RunOptions{
		Store:      database,
		Client:     client,
		Researcher: research.NewOrchestrator(client),
		Verbose:    generateVerbose || cfg.Verbose,
		OnProgress: func(e pipeline.ProgressEvent) {
			fmt.Printf("[%s] %s\n", e.Step, e.Message)
		},
	}

	for _, tier := range tiers {
		result, err := pipeline.Run(ctx, opts, attendeeID, tier)
		if err != nil {
			return fmt.Errorf("generating %s tier failed: %w", tier, err)
		}
		fmt.Printf("Tier %s: %d matches persisted (%d AI fallbacks)\n",
			result.Tier, len(result.Matches), result.Fallbacks)
	}

	return nil
}
