// Package main is the entry point for the notion-importer CLI.
//
// notion-importer reads Notion databases and writes their pages into typed
// Go assets, following saved import definitions:
//   - connect discovers the databases shared with the integration
//   - new proposes field bindings and saves a definition
//   - run fetches pages, coerces their properties and stores the assets
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"notion-importer/examples/gamedata"
	"notion-importer/internal/analyze"
	"notion-importer/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run registers the destination types and executes the root command.
func run(ctx context.Context, getenv func(string) string) error {
	registry := analyze.NewRegistry()
	if err := gamedata.Register(registry); err != nil {
		return fmt.Errorf("failed to register destination types: %w", err)
	}

	return commands.NewRootCmd(registry, getenv).ExecuteContext(ctx)
}
