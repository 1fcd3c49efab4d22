package importer

import (
	"context"
	"fmt"

	"notion-importer/internal/coerce"
	"notion-importer/internal/diagnostic"
	"notion-importer/internal/mapping"
)

// scalar writes one asset per page, named after the page title, strictly in
// query order. An existing asset is loaded and updated in place.
func (r *run) scalar(ctx context.Context, m *mapping.Model, pageIDs []string, progress Progress) error {
	for _, id := range pageIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := r.extract(ctx, m, id)
		if err != nil {
			return err
		}

		_ = progress.Add(1)

		if rec.Title == "" {
			r.report.Skipped++
			r.log.Info(diagnostic.CodeRecordSkipped,
				fmt.Sprintf("page %s has no title", rec.PageID), r.def.DefinitionName, "")

			continue
		}

		p, ok := r.assetPath(rec.Title)
		if !ok {
			r.report.Skipped++
			r.log.Info(diagnostic.CodeRecordSkipped,
				fmt.Sprintf("page %s title %q is not a usable asset name", rec.PageID, rec.Title), r.def.DefinitionName, "")

			continue
		}

		inst, err := r.host.Instantiate(m.Root.ID)
		if err != nil {
			return err
		}

		if _, err := r.store.Load(p, inst); err != nil {
			return fmt.Errorf("failed to load asset %s: %w", p, err)
		}

		r.apply(m, inst, rec, coerce.PathScalar)

		if err := r.store.Save(p, inst); err != nil {
			return fmt.Errorf("failed to save asset %s: %w", p, err)
		}

		r.report.Outputs = append(r.report.Outputs, p)
	}

	return nil
}
