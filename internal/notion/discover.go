package notion

import (
	"context"
	"fmt"
	"io"
	"log"
)

// Discover lists every shared database and the chain of pages above each
// one. Parent pages become Container objects; a parent that cannot be
// fetched makes its child a root and is reported to logger, which may be
// nil. The result is checked for cycles.
func Discover(ctx context.Context, c *Client, logger *log.Logger) ([]Object, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	objects, err := c.SearchDatabases(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(objects))
	for _, o := range objects {
		known[NormalizeID(o.ID)] = true
	}

	queue := make([]int, len(objects))
	for i := range objects {
		queue[i] = i
	}

	for len(queue) > 0 {
		var next []int

		for _, i := range queue {
			pid := objects[i].Parent.ID()
			if objects[i].Parent == nil || objects[i].Parent.PageID == "" {
				objects[i].Parent = nil

				continue
			}

			if known[NormalizeID(pid)] {
				continue
			}

			page, err := c.Page(ctx, pid)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}

				logger.Printf("parent page %s of %s unavailable, treating as root: %v", pid, objects[i].ID, err)
				objects[i].Parent = nil

				continue
			}

			known[NormalizeID(page.ID)] = true

			parent := page.Parent
			objects = append(objects, Object{
				ObjectType: ObjectContainer,
				Object:     "page",
				ID:         page.ID,
				URL:        page.URL,
				Title:      []Text{{PlainText: page.Title()}},
				Parent:     &parent,
			})
			next = append(next, len(objects)-1)
		}

		queue = next
	}

	if _, err := NewForest(objects); err != nil {
		return nil, fmt.Errorf("invalid object hierarchy: %w", err)
	}

	return objects, nil
}
