package notion

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeID returns a Notion object id in dashed UUID form.
// Ids that are not UUIDs, such as property ids, are returned trimmed but otherwise unchanged.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}

	return u.String()
}

// SameID reports whether two object ids refer to the same object.
func SameID(a, b string) bool {
	return NormalizeID(a) == NormalizeID(b)
}
