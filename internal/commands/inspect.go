package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"notion-importer/internal/analyze"
	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
	"notion-importer/internal/plan"
)

type inspectOptions struct {
	packages []string
	database string
	live     bool
	typeName string
}

func newInspectCmd(a *app) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Propose bindings for Go types loaded from source",
		Long: `Load Go packages from source and report, for every struct, which property
of a database each field would be bound to. The packages do not need to be
compiled into the importer.`,
		Example: `  notion-importer inspect --package ./examples/gamedata --database <database-id>`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.packages, "package", "p", nil, "Go package pattern to load (repeatable)")
	cmd.Flags().StringVarP(&opts.database, "database", "d", "", "Notion database or container id")
	cmd.Flags().BoolVar(&opts.live, "live", false, "Read the live schema from Notion")
	cmd.Flags().StringVarP(&opts.typeName, "type", "t", "", "Only inspect this type")

	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func runInspect(ctx context.Context, a *app, opts *inspectOptions) error {
	a.logger.Printf("loading %v", opts.packages)

	graph, err := analyze.NewAnalyzer().LoadPackages(opts.packages...)
	if err != nil {
		return err
	}

	target := mapping.TargetDB{ID: opts.database, ObjectType: notion.ObjectDatabase}
	if o, ok := a.settings.Object(opts.database); ok {
		target.ObjectType = o.ObjectType
	}

	props, err := a.schema(ctx, &mapping.Definition{TargetDB: target}, opts.live)
	if err != nil {
		return err
	}

	if props == nil {
		return fmt.Errorf("schema of %s unknown, run connect or use --live", opts.database)
	}

	resolver := plan.NewResolver(graph)

	types := graph.ListAssignableTypes("")
	if opts.typeName != "" {
		t, ok := resolver.LookupRoot(analyze.TypeID(opts.typeName))
		if !ok {
			return &mapping.UnresolvedTypeError{Type: analyze.TypeID(opts.typeName)}
		}

		types = []*analyze.TypeInfo{t}
	}

	for i, t := range types {
		m, err := mapping.NewModel(graph, t.ID, props)
		if err != nil {
			return err
		}

		if i > 0 {
			fmt.Fprintln(a.out)
		}

		plan.FormatReport(a.out, plan.GenerateReport(t.ID.Short(), m, nil))
	}

	return nil
}
