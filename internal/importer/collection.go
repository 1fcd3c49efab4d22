package importer

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"notion-importer/internal/coerce"
	"notion-importer/internal/diagnostic"
	"notion-importer/internal/mapping"
)

// slot is the result of one page task.
type slot struct {
	rec  Record
	inst any
}

// group is a run of slots sharing a group key, in first-appearance order.
type group struct {
	key   string
	slots []*slot
}

// collection fetches and coerces every page in parallel. Each task writes
// only its own slot, so the result order is the query order whatever the
// completion order.
func (r *run) collection(ctx context.Context, m *mapping.Model, pageIDs []string, title string, progress Progress) error {
	slots := make([]*slot, len(pageIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, id := range pageIDs {
		g.Go(func() error {
			rec, err := r.extract(gctx, m, id)
			if err != nil {
				return err
			}

			inst, err := r.host.Instantiate(m.Element.ID)
			if err != nil {
				return err
			}

			r.apply(m, inst, rec, coerce.PathCollection)
			slots[i] = &slot{rec: rec, inst: inst}
			_ = progress.Add(1)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	groups := r.groups(m, slots)

	groups, err := r.filter(ctx, m, groups)
	if err != nil {
		return err
	}

	for _, grp := range groups {
		if m.SortFieldName != "" {
			if err := r.sort(m, grp.slots); err != nil {
				return err
			}
		}

		name := r.def.AssetName(grp.key)
		if grp.key == "" && title != "" {
			name = title
		}

		if err := r.write(m, name, grp.slots); err != nil {
			return err
		}
	}

	return nil
}

// groups partitions slots by group key. Ungrouped models yield one group
// with an empty key; records with an empty key are dropped from grouped
// output.
func (r *run) groups(m *mapping.Model, slots []*slot) []*group {
	if m.GroupKeyPropertyID == "" {
		return []*group{{slots: slots}}
	}

	var groups []*group

	index := make(map[string]*group)

	for _, s := range slots {
		if s.rec.GroupKey == "" {
			r.log.Info(diagnostic.CodeEmptyGroupKey,
				fmt.Sprintf("page %s has an empty group key and is not written", s.rec.PageID),
				r.def.DefinitionName, "")

			continue
		}

		grp, ok := index[s.rec.GroupKey]
		if !ok {
			grp = &group{key: s.rec.GroupKey}
			index[grp.key] = grp
			groups = append(groups, grp)
		}

		grp.slots = append(grp.slots, s)
	}

	return groups
}

// filter keeps the group the user picks when the model asks for it.
func (r *run) filter(ctx context.Context, m *mapping.Model, groups []*group) ([]*group, error) {
	if !m.UseGroupFiltering || len(groups) == 0 {
		return groups, nil
	}

	if r.prompter == nil {
		r.log.Info(diagnostic.CodeGroupFiltered, "no prompt available, writing every group", r.def.DefinitionName, "")

		return groups, nil
	}

	keys := make([]string, len(groups))
	for i, grp := range groups {
		keys[i] = grp.key
	}

	key, err := r.prompter.SelectGroup(ctx, r.def.DefinitionName, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to select a group: %w", err)
	}

	i := slices.Index(keys, key)
	if i < 0 {
		return nil, fmt.Errorf("group %q not found", key)
	}

	r.log.Info(diagnostic.CodeGroupFiltered,
		fmt.Sprintf("writing group %q only, %d skipped", key, len(groups)-1), r.def.DefinitionName, "")

	return groups[i : i+1], nil
}

// sort orders slots stably by the coerced value of the sort field.
func (r *run) sort(m *mapping.Model, slots []*slot) error {
	keys := make(map[*slot]any, len(slots))

	for _, s := range slots {
		v, err := r.host.GetField(s.inst, m.SortFieldName)
		if err != nil {
			return fmt.Errorf("failed to read sort field: %w", err)
		}

		keys[s] = v
	}

	slices.SortStableFunc(slots, func(a, b *slot) int {
		c := compareValues(keys[a], keys[b])
		if m.SortOrder == mapping.SortDescending {
			return -c
		}

		return c
	})

	return nil
}

// write stores one collection asset. An existing asset is loaded first so
// fields outside the collection keep their values.
func (r *run) write(m *mapping.Model, name string, slots []*slot) error {
	p, ok := r.assetPath(name)
	if !ok {
		r.report.Skipped += len(slots)
		r.log.Info(diagnostic.CodeRecordSkipped,
			fmt.Sprintf("%q is not a usable asset name, %d records skipped", name, len(slots)), r.def.DefinitionName, "")

		return nil
	}

	root, err := r.host.Instantiate(m.Root.ID)
	if err != nil {
		return err
	}

	if _, err := r.store.Load(p, root); err != nil {
		return fmt.Errorf("failed to load asset %s: %w", p, err)
	}

	arr, err := r.host.InstantiateArray(m.Element.ID, m.Mode.ElementMode(), len(slots))
	if err != nil {
		return err
	}

	for i, s := range slots {
		if err := r.host.SetElement(arr, i, s.inst); err != nil {
			return fmt.Errorf("failed to set element %d of %s: %w", i, name, err)
		}
	}

	if err := r.host.SetField(root, m.CollectionField, arr); err != nil {
		return err
	}

	if err := r.store.Save(p, root); err != nil {
		return fmt.Errorf("failed to save asset %s: %w", p, err)
	}

	r.report.Outputs = append(r.report.Outputs, p)

	return nil
}
