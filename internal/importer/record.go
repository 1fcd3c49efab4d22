package importer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"notion-importer/internal/coerce"
	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
)

// Record is the raw projection of one page: field name to extracted string.
type Record struct {
	PageID   string
	Title    string
	Values   map[string]string
	GroupKey string
}

// extract fetches a page and projects the bound properties of m onto it.
// Properties missing from the page leave their field out of the record.
func (r *run) extract(ctx context.Context, m *mapping.Model, pageID string) (Record, error) {
	page, err := r.source.Page(ctx, pageID)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		PageID: page.ID,
		Title:  page.Title(),
		Values: make(map[string]string),
	}

	for _, it := range m.Bound() {
		p, _ := it.Property()

		value, ok, err := r.value(ctx, page, p.ID)
		if err != nil {
			return Record{}, fmt.Errorf("page %s, field %s: %w", pageID, it.Field.Name, err)
		}

		if ok {
			rec.Values[it.Field.Name] = value
		}
	}

	if m.GroupKeyPropertyID != "" {
		key, _, err := r.value(ctx, page, m.GroupKeyPropertyID)
		if err != nil {
			return Record{}, fmt.Errorf("page %s, group key: %w", pageID, err)
		}

		rec.GroupKey = norm.NFC.String(strings.TrimSpace(key))
	}

	return rec, nil
}

func (r *run) value(ctx context.Context, page *notion.Page, propertyID string) (string, bool, error) {
	p, ok := page.Property(propertyID)
	if !ok {
		return "", false, nil
	}

	return r.source.PropertyString(ctx, p)
}

// apply coerces every value of rec into inst. Failures are logged and skip
// only their field.
func (r *run) apply(m *mapping.Model, inst any, rec Record, p coerce.Path) {
	for _, it := range m.Bound() {
		raw, ok := rec.Values[it.Field.Name]
		if !ok {
			continue
		}

		coerce.Apply(r.host, inst, it.Field, raw, p, r.log)
	}
}

// assetPath joins the output folder and an asset name usable as a file name.
// ok is false for names that would not land directly inside the folder,
// such as "." and "..".
func (r *run) assetPath(name string) (p string, ok bool) {
	base := mapping.SanitizeName(norm.NFC.String(name))
	if base == "" || strings.Trim(base, ".") == "" {
		return "", false
	}

	p = path.Join(r.def.OutputPath, base)
	if path.Dir(p) != path.Clean(r.def.OutputPath) {
		return "", false
	}

	return p, true
}
