package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"notion-importer/internal/analyze"
	"notion-importer/internal/common"
)

// Mode is how a definition maps records onto the destination type.
type Mode int

const (
	// ModeNormal maps each page onto its own asset.
	ModeNormal Mode = iota
	// ModeArray collects pages into a []T field.
	ModeArray
	// ModeList collects pages into a []*T field.
	ModeList
	// ModeDictionary is declared for map fields and always rejected.
	ModeDictionary
)

var modeNames = []string{"Normal", "Array", "List", "Dictionary"}

// String returns the name written to definition files.
func (m Mode) String() string {
	if m < ModeNormal || m > ModeDictionary {
		return common.UnknownStr
	}

	return modeNames[m]
}

// IsCollection reports whether the mode collects pages into one field.
func (m Mode) IsCollection() bool {
	return m == ModeArray || m == ModeList || m == ModeDictionary
}

// ElementMode returns the container shape for a collection mode.
func (m Mode) ElementMode() analyze.ElementMode {
	switch m {
	case ModeList:
		return analyze.ElementList
	case ModeDictionary:
		return analyze.ElementDictionary
	default:
		return analyze.ElementArray
	}
}

// ModeFor returns the collection mode of a container shape.
func ModeFor(em analyze.ElementMode) Mode {
	switch em {
	case analyze.ElementList:
		return ModeList
	case analyze.ElementDictionary:
		return ModeDictionary
	default:
		return ModeArray
	}
}

// MarshalJSON writes the mode name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// MarshalYAML writes the mode name.
func (m Mode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalJSON accepts the mode name or its legacy integer ordinal.
func (m *Mode) UnmarshalJSON(data []byte) error {
	n, err := unmarshalEnum(data, "mapping mode", modeNames)
	if err != nil {
		return err
	}

	*m = Mode(n)

	return nil
}

// SortOrder is the direction of the per-group sort.
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

var sortOrderNames = []string{"Ascending", "Descending"}

// String returns the name written to definition files.
func (o SortOrder) String() string {
	if o < SortAscending || o > SortDescending {
		return common.UnknownStr
	}

	return sortOrderNames[o]
}

// ParseSortOrder parses "Ascending" or "Descending", case-insensitively.
func ParseSortOrder(s string) (SortOrder, error) {
	for i, name := range sortOrderNames {
		if strings.EqualFold(name, s) {
			return SortOrder(i), nil
		}
	}

	return SortAscending, fmt.Errorf("unknown sort order %q", s)
}

// MarshalJSON writes the order name.
func (o SortOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// MarshalYAML writes the order name.
func (o SortOrder) MarshalYAML() (any, error) {
	return o.String(), nil
}

// UnmarshalJSON accepts the order name or its legacy integer ordinal.
func (o *SortOrder) UnmarshalJSON(data []byte) error {
	n, err := unmarshalEnum(data, "sort order", sortOrderNames)
	if err != nil {
		return err
	}

	*o = SortOrder(n)

	return nil
}

// unmarshalEnum decodes a JSON enum member written either by name or as an
// ordinal. null and "" decode to the first member.
func unmarshalEnum(data []byte, what string, names []string) (int, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	if len(data) > 0 && data[0] != '"' {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return 0, fmt.Errorf("invalid %s %s: %w", what, data, err)
		}

		if n < 0 || n >= len(names) {
			return 0, fmt.Errorf("%s ordinal %d out of range", what, n)
		}

		return n, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("invalid %s %s: %w", what, data, err)
	}

	if s == "" {
		return 0, nil
	}

	for i, name := range names {
		if name == s {
			return i, nil
		}
	}

	return 0, fmt.Errorf("unknown %s %q", what, s)
}
