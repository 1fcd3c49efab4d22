package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
	"notion-importer/internal/plan"
)

type showOptions struct {
	yaml bool
	live bool
}

func newShowCmd(a *app) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a definition and check it against the database schema",
		Long: `Print a definition, then resolve it against the schema saved by connect
(or the live schema with --live) and report fields that no longer map.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), a, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "Print the definition as YAML")
	cmd.Flags().BoolVar(&opts.live, "live", false, "Resolve against the live schema from Notion")

	return cmd
}

func runShow(ctx context.Context, a *app, name string, opts *showOptions) error {
	def, err := mapping.Find(a.definitionsDir(), name)
	if err != nil {
		return err
	}

	var data []byte
	if opts.yaml {
		data, err = mapping.MarshalYAML(def)
	} else {
		data, err = mapping.Marshal(def)
	}

	if err != nil {
		return err
	}

	if _, err := a.out.Write(data); err != nil {
		return err
	}

	props, err := a.schema(ctx, def, opts.live)
	if err != nil {
		return err
	}

	if props == nil {
		fmt.Fprintln(a.out, "Schema of the target database unknown, run connect or use --live.")

		return nil
	}

	m, diags, err := plan.NewResolver(a.registry).Resolve(def, props)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	plan.FormatReport(a.out, plan.GenerateReport(def.DefinitionName, m, diags))

	return nil
}

// schema returns the property schema of the definition target. A container
// uses the schema of its first database.
func (a *app) schema(ctx context.Context, def *mapping.Definition, live bool) ([]notion.PropertyDescriptor, error) {
	if !live {
		forest, err := a.settings.Forest()
		if err != nil {
			return nil, err
		}

		return forest.Properties(def.TargetDB.ID), nil
	}

	client, err := a.client()
	if err != nil {
		return nil, err
	}

	id := def.TargetDB.ID

	if def.TargetDB.ObjectType == notion.ObjectContainer {
		children, err := client.ChildDatabases(ctx, id)
		if err != nil {
			return nil, err
		}

		if len(children) == 0 {
			return nil, fmt.Errorf("container %s has no databases", id)
		}

		return children[0].Properties, nil
	}

	return client.DatabaseProperties(ctx, id)
}
