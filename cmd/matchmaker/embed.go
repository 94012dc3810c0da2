package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AILLCSteve/rotary-networking-app/internal/config"
	"github.com/AILLCSteve/rotary-networking-app/internal/db"
	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/profile"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

var embedConcurrency int

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Recompute embedding vectors for all attendees",
	Long:  `Recompute and overwrite the profile embedding vector of every registered attendee. Useful after changing the embedding model.`,
	RunE:  runEmbed,
}

func init() {
	embedCmd.Flags().IntVar(&embedConcurrency, "concurrency", 4, "Parallel embedding calls")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(_ *cobra.Command, _ []string) error {
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

	attendees, err := database.ListAttendees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list attendees: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	var mu sync.Mutex
	failed := 0
	for _, a := range attendees {
		g.Go(func() error {
			values, err := client.Embed(gCtx, profile.EmbeddingText(a))
			if err != nil {
				log.Printf("embedding %s (%s) failed: %v", a.Name, a.ID, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			return database.UpsertVector(gCtx, &types.EmbeddingVector{
				AttendeeID: a.ID,
				Values:     values,
				Model:      client.GetModel(llm.TierLite),
				UpdatedAt:  time.Now(),
			})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("embedding regeneration failed: %w", err)
	}

	fmt.Printf("Regenerated %d of %d embeddings\n", len(attendees)-failed, len(attendees))
	return nil
}
