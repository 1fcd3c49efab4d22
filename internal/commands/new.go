package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"notion-importer/internal/analyze"
	"notion-importer/internal/mapping"
	"notion-importer/internal/plan"
	"notion-importer/internal/prompts"
)

type newOptions struct {
	name       string
	target     string
	typeName   string
	collection string
	output     string
	groupKey   string
	filter     bool
	sortField  string
	sortOrder  string
	binds      []string
	unbinds    []string
	force      bool
}

func newNewCmd(a *app) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an import definition",
		Long: `Create an import definition for a Notion database or container. Every
matchable field is bound to the best ranked property; --bind and --unbind
adjust the proposal. Missing options are asked for interactively.`,
		Example: `  # Interactive mode
  notion-importer new

  # One ItemTable asset per region, items sorted by price
  notion-importer new -n 'Items_$K' -d <database-id> -t gamedata.ItemTable \
    --collection Items --group-key <property-id> --sort Price -o assets/items`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runNew(a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Definition name; $K is replaced by the group key")
	cmd.Flags().StringVarP(&opts.target, "database", "d", "", "Notion database or container id")
	cmd.Flags().StringVarP(&opts.typeName, "type", "t", "", "Destination type (default: the last type used)")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "Collect pages into this slice field of the type")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output folder of the assets")
	cmd.Flags().StringVar(&opts.groupKey, "group-key", "", "Property id grouping pages into one asset per value")
	cmd.Flags().BoolVar(&opts.filter, "filter", false, "Ask which group to write on every run")
	cmd.Flags().StringVar(&opts.sortField, "sort", "", "Element field to sort each group by")
	cmd.Flags().StringVar(&opts.sortOrder, "order", "Ascending", "Sort order (Ascending, Descending)")
	cmd.Flags().StringArrayVar(&opts.binds, "bind", nil, "Bind a field to a property id, as Field=propertyId")
	cmd.Flags().StringArrayVar(&opts.unbinds, "unbind", nil, "Leave a field unbound")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing definition")

	return cmd
}

func runNew(a *app, opts *newOptions) error {
	resolver := plan.NewResolver(a.registry)

	answers := prompts.DefinitionAnswers{
		Name:       strings.TrimSpace(opts.name),
		TargetID:   opts.target,
		Type:       analyze.TypeID(opts.typeName),
		Collection: opts.collection,
		OutputPath: opts.output,
	}

	if answers.Type == "" && !a.interactive() {
		answers.Type = a.settings.LastImportTypeFullName
	}

	if a.interactive() {
		existing, err := definitionNames(a.definitionsDir())
		if err != nil {
			return err
		}

		collections := func(id analyze.TypeID) []string {
			t, ok := resolver.LookupRoot(id)
			if !ok {
				return nil
			}

			var names []string

			for _, f := range a.registry.ListFields(t) {
				if f.Semantic.IsCollection() {
					names = append(names, f.Name)
				}
			}

			return names
		}

		if err := prompts.RunNewDefinitionForm(&answers, a.settings.Targets(),
			a.registry.ListAssignableTypes(""), collections, existing); err != nil {
			return err
		}
	}

	switch {
	case answers.Name == "":
		return errors.New("a definition name is required (--name)")
	case answers.TargetID == "":
		return errors.New("a Notion database is required (--database)")
	case answers.Type == "":
		return errors.New("a destination type is required (--type)")
	case answers.OutputPath == "":
		return errors.New("an output folder is required (--output)")
	}

	target, ok := a.settings.Object(answers.TargetID)
	if !ok {
		return fmt.Errorf("unknown Notion object %s, run connect first", answers.TargetID)
	}

	root, ok := resolver.LookupRoot(answers.Type)
	if !ok {
		return &mapping.UnresolvedTypeError{Type: answers.Type}
	}

	forest, err := a.settings.Forest()
	if err != nil {
		return err
	}

	m, err := mapping.NewModel(a.registry, root.ID, forest.Properties(target.ID))
	if err != nil {
		return err
	}

	if err := configureModel(m, answers.Collection, opts); err != nil {
		return err
	}

	def := mapping.Serialize(m, mapping.SerializeContext{
		DefinitionName: answers.Name,
		OutputPath:     answers.OutputPath,
		Target:         target,
	})

	path := mapping.DefinitionPath(a.definitionsDir(), def.DefinitionName)

	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("definition %s already exists, use --force to replace it", path)
	}

	if err := mapping.WriteFile(def, path); err != nil {
		return err
	}

	a.settings.RememberType(root.ID)

	if err := a.saveSettings(); err != nil {
		return err
	}

	plan.FormatReport(a.out, plan.GenerateReport(def.DefinitionName, m, nil))

	prompts.PrintResult(a.out, []prompts.ResultField{
		{Label: "Definition", Value: def.DefinitionName},
		{Label: "Type", Value: def.TargetTypeName().Short()},
		{Label: "File", Value: path},
	}, "Definition saved")

	return nil
}

// configureModel applies the collection, binding, grouping and sorting
// options to a freshly proposed model.
func configureModel(m *mapping.Model, collection string, opts *newOptions) error {
	if collection != "" {
		if err := m.SelectCollection(collection); err != nil {
			return err
		}
	}

	for _, name := range opts.unbinds {
		if err := m.Unbind(name); err != nil {
			return err
		}
	}

	for _, b := range opts.binds {
		field, prop, ok := strings.Cut(b, "=")
		if !ok {
			return fmt.Errorf("invalid --bind %q, want Field=propertyId", b)
		}

		if err := m.Bind(strings.TrimSpace(field), strings.TrimSpace(prop)); err != nil {
			return fmt.Errorf("failed to bind %s: %w", field, err)
		}
	}

	if opts.groupKey != "" {
		if err := m.SetGroupKey(opts.groupKey, opts.filter); err != nil {
			return err
		}
	}

	if opts.sortField != "" {
		order, err := mapping.ParseSortOrder(opts.sortOrder)
		if err != nil {
			return err
		}

		if err := m.SetSort(opts.sortField, order); err != nil {
			return err
		}
	}

	return nil
}

// definitionNames returns the names of the saved definitions.
func definitionNames(dir string) (map[string]bool, error) {
	paths, err := mapping.List(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	names := make(map[string]bool, len(paths))

	for _, p := range paths {
		def, err := mapping.LoadFile(p)
		if err != nil {
			continue
		}

		names[def.DefinitionName] = true
	}

	return names, nil
}
