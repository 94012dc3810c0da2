package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AILLCSteve/rotary-networking-app/internal/config"
	"github.com/AILLCSteve/rotary-networking-app/internal/server"
)

var (
	servePort    int
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing registration, match generation, and admin endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT env var)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed pipeline output")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if serveVerbose {
		cfg.Verbose = true
	}

	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		DatabaseURL:       cfg.DatabaseURL,
		APIKey:            cfg.APIKey,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: cfg.AdminPasswordHash,
		Verbose:           cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
