// Package settings reads and writes ImporterSettings.json: the API key, the
// result of the last connection attempt, the known Notion objects and the
// last destination type used.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"notion-importer/internal/analyze"
	"notion-importer/internal/notion"
)

// FileName is the default settings file name.
const FileName = "ImporterSettings.json"

// Settings is the content of the settings file.
type Settings struct {
	APIKey                 string          `json:"apiKey"`
	ConnectionSucceed      bool            `json:"connectionSucceed"`
	Objects                []notion.Object `json:"objects"`
	LastImportTypeFullName analyze.TypeID  `json:"lastImportTypeFullName"`
}

// Load reads the settings at path. A missing file yields empty settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Settings{Objects: []notion.Object{}}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	data, _, err = transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings %s: %w", path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if s.Objects == nil {
		s.Objects = []notion.Object{}
	}

	return &s, nil
}

// Save writes the settings to path, replacing the file atomically.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}

	return os.Rename(tmp.Name(), path)
}

// DiscoverFunc lists the objects reachable with the current API key.
type DiscoverFunc func(ctx context.Context) ([]notion.Object, error)

// Refresh replaces the known objects with a fresh discovery and records
// whether it succeeded. On failure the previous objects are kept.
func (s *Settings) Refresh(ctx context.Context, discover DiscoverFunc) error {
	objects, err := discover(ctx)
	if err != nil {
		s.ConnectionSucceed = false

		return fmt.Errorf("failed to refresh Notion objects: %w", err)
	}

	s.Objects = objects
	s.ConnectionSucceed = true

	return nil
}

// Forest indexes the known objects.
func (s *Settings) Forest() (*notion.Forest, error) {
	return notion.NewForest(s.Objects)
}

// Object returns the known object with the given id.
func (s *Settings) Object(id string) (*notion.Object, bool) {
	for i := range s.Objects {
		if notion.SameID(s.Objects[i].ID, id) {
			return &s.Objects[i], true
		}
	}

	return nil, false
}

// Targets returns the objects a definition can import from: databases and
// containers.
func (s *Settings) Targets() []notion.Object {
	var out []notion.Object

	for _, o := range s.Objects {
		if o.ObjectType == notion.ObjectDatabase || o.ObjectType == notion.ObjectContainer {
			out = append(out, o)
		}
	}

	return out
}

// RememberType records the destination type of the last definition built.
func (s *Settings) RememberType(id analyze.TypeID) {
	s.LastImportTypeFullName = id
}
