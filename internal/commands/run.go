package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"

	"notion-importer/internal/importer"
	"notion-importer/internal/mapping"
	"notion-importer/internal/prompts"
)

type runOptions struct {
	all bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [name...]",
		Short: "Import Notion pages with saved definitions",
		Example: `  # Run one definition
  notion-importer run Items

  # Run every saved definition
  notion-importer run --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), a, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Run every saved definition")

	return cmd
}

func runRun(ctx context.Context, a *app, names []string, opts *runOptions) error {
	defs, err := a.selectDefinitions(names, opts.all)
	if err != nil {
		return err
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	st, closeStore, err := a.store(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	im := importer.New(client, a.registry, st, a.importerOptions()...)

	var errs []error

	for _, def := range defs {
		report, err := im.Run(ctx, def)
		if report != nil {
			a.printRun(report)
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", def.DefinitionName, err))

			if ctx.Err() != nil {
				break
			}
		}
	}

	return errors.Join(errs...)
}

func (a *app) selectDefinitions(names []string, all bool) ([]*mapping.Definition, error) {
	dir := a.definitionsDir()

	if all {
		if len(names) > 0 {
			return nil, errors.New("--all takes no definition names")
		}

		paths, err := mapping.List(dir)
		if err != nil {
			return nil, err
		}

		if len(paths) == 0 {
			return nil, fmt.Errorf("no definitions in %s", dir)
		}

		defs := make([]*mapping.Definition, 0, len(paths))

		for _, p := range paths {
			def, err := mapping.LoadFile(p)
			if err != nil {
				return nil, err
			}

			defs = append(defs, def)
		}

		return defs, nil
	}

	if len(names) == 0 {
		return nil, errors.New("name a definition or use --all")
	}

	defs := make([]*mapping.Definition, 0, len(names))

	for _, n := range names {
		def, err := mapping.Find(dir, n)
		if err != nil {
			return nil, err
		}

		defs = append(defs, def)
	}

	return defs, nil
}

func (a *app) importerOptions() []importer.Option {
	opts := []importer.Option{
		importer.WithWorkers(a.cfg.Workers),
		importer.WithCreateOutputDirs(a.cfg.CreateOutputDirs),
		importer.WithLogger(a.logger),
	}

	if a.interactive() {
		opts = append(opts, importer.WithPrompter(prompts.GroupPrompter{}))

		if !a.quiet {
			opts = append(opts, importer.WithProgress(newProgressBar))
		}
	}

	return opts
}

// barProgress serializes updates from concurrent page tasks.
type barProgress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newProgressBar(total int) importer.Progress {
	return &barProgress{bar: progressbar.New(total)}
}

func (p *barProgress) Add(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.bar.Add(n)
}

func (a *app) printRun(r *importer.Report) {
	fmt.Fprintf(a.out, "\n%s: %d pages, %d skipped, %d assets (run %s)\n",
		r.Definition, r.Pages, r.Skipped, len(r.Outputs), r.RunID)

	for _, o := range r.Outputs {
		fmt.Fprintf(a.out, "  wrote %s\n", o)
	}

	printDiagnostics(a.out, r.Diagnostics)
}
