package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"notion-importer/internal/notion"
	"notion-importer/internal/prompts"
)

func newConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Discover the databases shared with the integration",
		Long: `Search every database shared with the integration, read their schemas and
the pages above them, and save the result to the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnect(cmd.Context(), a)
		},
	}
}

func runConnect(ctx context.Context, a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	key, _ := a.apiKey()
	a.settings.APIKey = key

	a.logger.Printf("searching databases")

	refreshErr := a.settings.Refresh(ctx, func(ctx context.Context) ([]notion.Object, error) {
		return notion.Discover(ctx, client, a.logger)
	})

	if err := a.saveSettings(); err != nil {
		return err
	}

	if refreshErr != nil {
		return refreshErr
	}

	var databases, containers int

	for _, o := range a.settings.Objects {
		switch o.ObjectType {
		case notion.ObjectDatabase:
			databases++
		case notion.ObjectContainer:
			containers++
		}
	}

	prompts.PrintResult(a.out, []prompts.ResultField{
		{Label: "Databases", Value: strconv.Itoa(databases)},
		{Label: "Containers", Value: strconv.Itoa(containers)},
		{Label: "Settings", Value: a.settingsPath()},
	}, fmt.Sprintf("Connected, %d objects found", len(a.settings.Objects)))

	return nil
}
