package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// listResponse is a page of a paginated list endpoint.
type listResponse struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor"`
}

// apiObject is the subset of a database or page object the importer reads.
type apiObject struct {
	Object     string          `json:"object"`
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	Archived   bool            `json:"archived"`
	Title      []Text          `json:"title"`
	Parent     Parent          `json:"parent"`
	Properties json.RawMessage `json:"properties"`
}

// schemaProperty is one entry of a database schema.
type schemaProperty struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
}

// PageProperty is one property value of a page, kept raw until extraction.
type PageProperty struct {
	Name string
	ID   string
	Type PropertyType
	Raw  json.RawMessage
}

// Page is a database row.
type Page struct {
	ID         string
	URL        string
	Parent     Parent
	Properties []PageProperty
}

// Property returns the property with the given id.
func (p *Page) Property(id string) (PageProperty, bool) {
	for _, prop := range p.Properties {
		if prop.ID == id {
			return prop, true
		}
	}

	return PageProperty{}, false
}

// Title returns the plain text of the page's title property, or "" when empty.
func (p *Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type != TypeTitle {
			continue
		}

		var v struct {
			Title []Text `json:"title"`
		}

		if err := json.Unmarshal(prop.Raw, &v); err != nil {
			return ""
		}

		var b strings.Builder
		for _, t := range v.Title {
			b.WriteString(t.PlainText)
		}

		return b.String()
	}

	return ""
}

// orderedMembers decodes a JSON object into its members in document order.
func orderedMembers(raw json.RawMessage) ([]string, []json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var (
		names  []string
		values []json.RawMessage
	)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}

		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}

		names = append(names, name)
		values = append(values, value)
	}

	return names, values, nil
}

// parseSchema decodes a database "properties" object in document order.
func parseSchema(raw json.RawMessage) ([]PropertyDescriptor, error) {
	names, values, err := orderedMembers(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database properties: %w", err)
	}

	props := make([]PropertyDescriptor, 0, len(values))

	for i, v := range values {
		var sp schemaProperty
		if err := json.Unmarshal(v, &sp); err != nil {
			return nil, fmt.Errorf("failed to parse property %q: %w", names[i], err)
		}

		if sp.Name == "" {
			sp.Name = names[i]
		}

		props = append(props, PropertyDescriptor(sp))
	}

	return props, nil
}

// parsePage decodes a page object.
func parsePage(data []byte) (*Page, error) {
	var obj apiObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	names, values, err := orderedMembers(obj.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to parse properties of page %s: %w", obj.ID, err)
	}

	page := &Page{ID: obj.ID, URL: obj.URL, Parent: obj.Parent}

	for i, v := range values {
		var head struct {
			ID   string       `json:"id"`
			Type PropertyType `json:"type"`
		}

		if err := json.Unmarshal(v, &head); err != nil {
			return nil, fmt.Errorf("failed to parse property %q of page %s: %w", names[i], obj.ID, err)
		}

		page.Properties = append(page.Properties, PageProperty{Name: names[i], ID: head.ID, Type: head.Type, Raw: v})
	}

	return page, nil
}

// paginate collects every result of a list endpoint, following next_cursor.
func (c *Client) paginate(ctx context.Context, endpoint string, body map[string]any) ([]json.RawMessage, error) {
	var results []json.RawMessage

	req := make(map[string]any, len(body)+1)
	for k, v := range body {
		req[k] = v
	}

	for {
		data, err := c.Post(ctx, endpoint, req)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to parse %s response: %w", endpoint, err)
		}

		results = append(results, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			return results, nil
		}

		req["start_cursor"] = page.NextCursor
	}
}

// SearchDatabases lists every database shared with the integration,
// with its schema.
func (c *Client) SearchDatabases(ctx context.Context) ([]Object, error) {
	results, err := c.paginate(ctx, "search", map[string]any{
		"filter": map[string]string{"property": "object", "value": "database"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search databases: %w", err)
	}

	objects := make([]Object, 0, len(results))

	for _, raw := range results {
		var obj apiObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse search result: %w", err)
		}

		if obj.Object != "database" {
			continue
		}

		props, err := parseSchema(obj.Properties)
		if err != nil {
			return nil, err
		}

		parent := obj.Parent
		objects = append(objects, Object{
			ObjectType: ObjectDatabase,
			Object:     obj.Object,
			ID:         obj.ID,
			URL:        obj.URL,
			Archived:   obj.Archived,
			Title:      obj.Title,
			Properties: props,
			Parent:     &parent,
		})
	}

	return objects, nil
}

// ChildDatabases lists the databases whose parent is containerID.
func (c *Client) ChildDatabases(ctx context.Context, containerID string) ([]Object, error) {
	all, err := c.SearchDatabases(ctx)
	if err != nil {
		return nil, err
	}

	var children []Object

	for _, db := range all {
		if SameID(db.Parent.ID(), containerID) {
			children = append(children, db)
		}
	}

	return children, nil
}

// DatabaseProperties returns the live schema of a database.
func (c *Client) DatabaseProperties(ctx context.Context, databaseID string) ([]PropertyDescriptor, error) {
	data, err := c.Get(ctx, "databases/"+NormalizeID(databaseID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch database %s: %w", databaseID, err)
	}

	var obj apiObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse database %s: %w", databaseID, err)
	}

	return parseSchema(obj.Properties)
}

// QueryDatabase returns the ids of every row of a database in query order.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) ([]string, error) {
	results, err := c.paginate(ctx, "databases/"+NormalizeID(databaseID)+"/query", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
	}

	ids := make([]string, 0, len(results))

	for _, raw := range results {
		var ref struct {
			ID string `json:"id"`
		}

		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, fmt.Errorf("failed to parse query result: %w", err)
		}

		ids = append(ids, ref.ID)
	}

	return ids, nil
}

// Page fetches a page with its property values.
func (c *Client) Page(ctx context.Context, pageID string) (*Page, error) {
	data, err := c.Get(ctx, "pages/"+NormalizeID(pageID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageID, err)
	}

	return parsePage(data)
}
