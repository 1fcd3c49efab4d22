package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"

	"github.com/rs/xid"

	"notion-importer/internal/analyze"
	"notion-importer/internal/diagnostic"
	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
	"notion-importer/internal/plan"
)

// DefaultWorkers bounds concurrent page fetches in collection mode.
const DefaultWorkers = 8

// Source is the Notion side of an import. *notion.Client implements it.
type Source interface {
	ClearCache()
	DatabaseProperties(ctx context.Context, databaseID string) ([]notion.PropertyDescriptor, error)
	ChildDatabases(ctx context.Context, containerID string) ([]notion.Object, error)
	QueryDatabase(ctx context.Context, databaseID string) ([]string, error)
	Page(ctx context.Context, pageID string) (*notion.Page, error)
	PropertyString(ctx context.Context, p notion.PageProperty) (string, bool, error)
}

// Store persists assets by path. The path has no extension.
type Store interface {
	// Prepare checks that assets can be written under dir. A missing dir is
	// created when create is set and reported as fs.ErrNotExist otherwise.
	Prepare(dir string, create bool) error
	Save(path string, obj any) error
	// Load decodes the asset at path into into. found is false when there is
	// no such asset.
	Load(path string, into any) (found bool, err error)
}

// runTagger is implemented by stores that record which run wrote an asset.
type runTagger interface {
	BeginRun(id xid.ID)
}

// Prompter asks the user which group of a filtered definition to write.
type Prompter interface {
	SelectGroup(ctx context.Context, definition string, keys []string) (string, error)
}

// Progress is advanced once per fetched page.
type Progress interface {
	Add(n int) error
}

// Importer runs import definitions.
type Importer struct {
	source   Source
	host     analyze.Host
	store    Store
	prompter Prompter
	logger   *log.Logger
	progress func(total int) Progress

	workers          int
	createOutputDirs bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithWorkers sets the page fetch concurrency for collection definitions.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithPrompter sets the group filter prompt. Without one, filtered
// definitions write every group.
func WithPrompter(p Prompter) Option {
	return func(im *Importer) { im.prompter = p }
}

// WithLogger sets the logger for progress lines.
func WithLogger(l *log.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// WithProgress sets a progress factory, called once per database pass with
// the number of pages.
func WithProgress(fn func(total int) Progress) Option {
	return func(im *Importer) { im.progress = fn }
}

// WithCreateOutputDirs creates missing output folders instead of failing.
func WithCreateOutputDirs(create bool) Option {
	return func(im *Importer) { im.createOutputDirs = create }
}

// New creates an Importer.
func New(source Source, host analyze.Host, store Store, opts ...Option) *Importer {
	im := &Importer{
		source:  source,
		host:    host,
		store:   store,
		logger:  log.New(io.Discard, "", 0),
		workers: DefaultWorkers,
	}

	for _, opt := range opts {
		opt(im)
	}

	return im
}

// Report summarizes one run of a definition.
type Report struct {
	RunID       xid.ID
	Definition  string
	Pages       int
	Skipped     int
	Outputs     []string
	Diagnostics diagnostic.Diagnostics
}

// run is the state of a single Run call.
type run struct {
	*Importer

	id     xid.ID
	def    *mapping.Definition
	log    *diagnostic.Log
	report *Report
}

// Run imports def. The fetch cache is cleared first so every run sees the
// current state of Notion. Field-level problems end up in the report's
// diagnostics; the error is reserved for failures that abort the run.
func (im *Importer) Run(ctx context.Context, def *mapping.Definition) (*Report, error) {
	r := &run{
		Importer: im,
		id:       xid.New(),
		def:      def,
		log:      diagnostic.NewLog(nil),
	}
	r.report = &Report{RunID: r.id, Definition: def.DefinitionName}

	im.source.ClearCache()

	if t, ok := im.store.(runTagger); ok {
		t.BeginRun(r.id)
	}

	err := r.start(ctx)
	r.report.Diagnostics = r.log.Snapshot()

	return r.report, err
}

func (r *run) start(ctx context.Context) error {
	if err := r.store.Prepare(r.def.OutputPath, r.createOutputDirs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrOutputMissing, r.def.OutputPath)
		}

		return fmt.Errorf("failed to prepare output %s: %w", r.def.OutputPath, err)
	}

	r.logger.Printf("run %s: %s (%s, %s)", r.id, r.def.DefinitionName, r.def.MappingMode, r.def.TargetDB.ObjectType)

	if r.def.TargetDB.ObjectType != notion.ObjectContainer {
		return r.database(ctx, r.def.TargetDB.ID, "")
	}

	children, err := r.source.ChildDatabases(ctx, r.def.TargetDB.ID)
	if err != nil {
		return fmt.Errorf("failed to list databases of container %s: %w", r.def.TargetDB.ID, err)
	}

	if len(children) == 0 {
		return fmt.Errorf("%w: container %s has no databases", ErrTargetNotFound, r.def.TargetDB.ID)
	}

	for _, child := range children {
		if err := r.database(ctx, child.ID, child.MainTitle()); err != nil {
			return err
		}
	}

	return nil
}

// database runs one full pass over a database. title is the database title
// when it was reached through a container.
func (r *run) database(ctx context.Context, databaseID, title string) error {
	props, err := r.source.DatabaseProperties(ctx, databaseID)
	if notion.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, databaseID)
	}

	if err != nil {
		return err
	}

	model, diags, err := plan.NewResolver(r.host).Resolve(r.def, props)
	if err != nil {
		return fmt.Errorf("failed to resolve definition %s: %w", r.def.DefinitionName, err)
	}

	r.log.Merge(*diags)

	pageIDs, err := r.source.QueryDatabase(ctx, databaseID)
	if err != nil {
		return err
	}

	r.logger.Printf("run %s: %d pages in %s", r.id, len(pageIDs), databaseID)
	r.report.Pages += len(pageIDs)

	progress := r.newProgress(len(pageIDs))

	if model.Mode.IsCollection() {
		return r.collection(ctx, model, pageIDs, title, progress)
	}

	return r.scalar(ctx, model, pageIDs, progress)
}

func (r *run) newProgress(total int) Progress {
	if r.progress == nil {
		return nopProgress{}
	}

	return r.progress(total)
}

type nopProgress struct{}

func (nopProgress) Add(int) error { return nil }
