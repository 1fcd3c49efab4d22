package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/sync/errgroup"
)

// relationFetchLimit bounds concurrent title lookups for one relation value.
const relationFetchLimit = 8

// PropertyString extracts the string form of a page property value.
// ok is false when the value is empty in a way that means "no value"
// (an empty title or rollup). Relation values are resolved to the titles of
// the related pages, joined by tabs.
func (c *Client) PropertyString(ctx context.Context, p PageProperty) (value string, ok bool, err error) {
	switch p.Type {
	case TypeRelation:
		var v notionapi.RelationProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		titles, err := c.relationTitles(ctx, v.Relation)
		if err != nil {
			return "", false, err
		}

		return strings.Join(titles, "\t"), true, nil
	case TypeRollup:
		return c.rollupString(ctx, p)
	default:
		return plainString(p)
	}
}

func decodeProperty(p PageProperty, into any) error {
	if err := json.Unmarshal(p.Raw, into); err != nil {
		return fmt.Errorf("failed to decode %s property %q: %w", p.Type, p.Name, err)
	}

	return nil
}

// plainString handles every property kind that needs no further requests.
func plainString(p PageProperty) (string, bool, error) {
	switch p.Type {
	case TypeTitle:
		var v notionapi.TitleProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		s := richText(v.Title)

		return s, s != "", nil
	case TypeRichText:
		var v notionapi.RichTextProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return richText(v.RichText), true, nil
	case TypeNumber:
		var v notionapi.NumberProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return formatNumber(v.Number), true, nil
	case TypeCheckbox:
		var v notionapi.CheckboxProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return strconv.FormatBool(v.Checkbox), true, nil
	case TypeSelect:
		var v notionapi.SelectProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.Select.Name, true, nil
	case TypeStatus:
		var v notionapi.StatusProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.Status.Name, true, nil
	case TypeMultiSelect:
		var v notionapi.MultiSelectProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		names := make([]string, len(v.MultiSelect))
		for i, o := range v.MultiSelect {
			names[i] = o.Name
		}

		return strings.Join(names, ","), true, nil
	case TypeURL:
		var v notionapi.URLProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.URL, true, nil
	case TypeEmail:
		var v notionapi.EmailProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.Email, true, nil
	case TypePhoneNumber:
		var v notionapi.PhoneNumberProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.PhoneNumber, true, nil
	case TypeFormula:
		var v notionapi.FormulaProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return formulaString(v.Formula), true, nil
	case TypePeople:
		var v notionapi.PeopleProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		names := make([]string, len(v.People))
		for i, u := range v.People {
			names[i] = u.Name
		}

		return strings.Join(names, ","), true, nil
	case TypeCreatedBy:
		var v notionapi.CreatedByProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.CreatedBy.Name, true, nil
	case TypeLastEditedBy:
		var v notionapi.LastEditedByProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.LastEditedBy.Name, true, nil
	case TypeCreatedTime:
		var v notionapi.CreatedTimeProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.CreatedTime.UTC().Format(time.RFC3339), true, nil
	case TypeLastEditedTime:
		var v notionapi.LastEditedTimeProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return v.LastEditedTime.UTC().Format(time.RFC3339), true, nil
	case TypeFiles:
		var v notionapi.FilesProperty
		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		return firstFileURL(v.Files), true, nil
	case TypeDate:
		// Decoded by hand to keep the start exactly as written (date or date-time).
		var v struct {
			Date *struct {
				Start string `json:"start"`
			} `json:"date"`
		}

		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		if v.Date == nil {
			return "", true, nil
		}

		return v.Date.Start, true, nil
	case TypeUniqueID:
		var v struct {
			UniqueID struct {
				Prefix *string `json:"prefix"`
				Number int     `json:"number"`
			} `json:"unique_id"`
		}

		if err := decodeProperty(p, &v); err != nil {
			return "", false, err
		}

		n := strconv.Itoa(v.UniqueID.Number)
		if v.UniqueID.Prefix != nil && *v.UniqueID.Prefix != "" {
			return *v.UniqueID.Prefix + "-" + n, true, nil
		}

		return n, true, nil
	default:
		return "", false, nil
	}
}

func richText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range parts {
		b.WriteString(rt.PlainText)
	}

	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formulaString(f notionapi.Formula) string {
	switch string(f.Type) {
	case "number":
		return formatNumber(f.Number)
	case "boolean":
		return strconv.FormatBool(f.Boolean)
	case "date":
		if f.Date == nil || f.Date.Start == nil {
			return ""
		}

		return time.Time(*f.Date.Start).Format(time.RFC3339)
	default:
		return f.String
	}
}

func firstFileURL(files []notionapi.File) string {
	if len(files) == 0 {
		return ""
	}

	switch f := files[0]; {
	case f.File != nil:
		return f.File.URL
	case f.External != nil:
		return f.External.URL
	default:
		return ""
	}
}

// rollupString returns the string form of a rollup: the first array element,
// or the computed number or date.
func (c *Client) rollupString(ctx context.Context, p PageProperty) (string, bool, error) {
	var v struct {
		Rollup struct {
			Type   string            `json:"type"`
			Number *float64          `json:"number"`
			Date   *struct {
				Start string `json:"start"`
			} `json:"date"`
			Array []json.RawMessage `json:"array"`
		} `json:"rollup"`
	}

	if err := decodeProperty(p, &v); err != nil {
		return "", false, err
	}

	switch v.Rollup.Type {
	case "number":
		if v.Rollup.Number == nil {
			return "", false, nil
		}

		return formatNumber(*v.Rollup.Number), true, nil
	case "date":
		if v.Rollup.Date == nil {
			return "", false, nil
		}

		return v.Rollup.Date.Start, true, nil
	}

	if len(v.Rollup.Array) == 0 {
		return "", false, nil
	}

	var head struct {
		Type PropertyType `json:"type"`
	}

	first := v.Rollup.Array[0]
	if err := json.Unmarshal(first, &head); err != nil {
		return "", false, fmt.Errorf("failed to decode rollup %q: %w", p.Name, err)
	}

	return c.PropertyString(ctx, PageProperty{Name: p.Name, ID: p.ID, Type: head.Type, Raw: first})
}

// relationTitles fetches the titles of related pages concurrently, keeping relation order.
func (c *Client) relationTitles(ctx context.Context, rel []notionapi.Relation) ([]string, error) {
	titles := make([]string, len(rel))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(relationFetchLimit)

	for i, r := range rel {
		g.Go(func() error {
			page, err := c.Page(ctx, string(r.ID))
			if err != nil {
				return err
			}

			titles[i] = page.Title()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return titles, nil
}
