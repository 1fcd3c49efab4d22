package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Path separators in names are replaced by their full-width forms so a name
// stays one path element.
var separatorReplacer = strings.NewReplacer("/", "／", `\`, "＼")

// LoadFile loads and parses a definition file from the given path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return def, nil
}

// Parse parses JSON data into a Definition. A leading UTF-8 or UTF-16 byte
// order mark is honored.
func Parse(data []byte) (*Definition, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}

	var def Definition
	if err := json.Unmarshal(decoded, &def); err != nil {
		return nil, fmt.Errorf("failed to parse definition JSON: %w", err)
	}

	applyDefaults(&def)

	return &def, nil
}

// applyDefaults normalizes optional members after decoding.
func applyDefaults(def *Definition) {
	if def.MappingData == nil {
		def.MappingData = []Correspondence{}
	}

	// Normal definitions written by older versions carry an empty element type.
	if !def.IsCollection() {
		def.TargetFieldType = nil
		def.TargetFieldName = ""
	}
}

// Marshal serializes a Definition to indented JSON.
func Marshal(def *Definition) ([]byte, error) {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// MarshalYAML serializes a Definition to YAML, for display.
func MarshalYAML(def *Definition) ([]byte, error) {
	return yaml.Marshal(def)
}

// WriteFile validates def and writes it to path. The file is replaced
// atomically so a failed write leaves any previous version intact.
func WriteFile(def *Definition, path string) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid definition %s: %w", def.DefinitionName, err)
	}

	data, err := Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create definition directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".definition-*.json")
	if err != nil {
		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	return nil
}

// SanitizeName makes a definition or asset name usable as a file name.
func SanitizeName(name string) string {
	return separatorReplacer.Replace(strings.TrimSpace(name))
}

// DefinitionPath returns where a definition named name is stored under dir.
func DefinitionPath(dir, name string) string {
	return filepath.Join(dir, Kind, SanitizeName(name)+".json")
}

// List returns the paths of every definition under dir, sorted by name.
// A missing directory yields no definitions.
func List(dir string) ([]string, error) {
	kindDir := filepath.Join(dir, Kind)

	entries, err := os.ReadDir(kindDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list definitions in %s: %w", kindDir, err)
	}

	var paths []string

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}

		paths = append(paths, filepath.Join(kindDir, e.Name()))
	}

	sort.Strings(paths)

	return paths, nil
}

// Find loads the definition named name from dir.
func Find(dir, name string) (*Definition, error) {
	return LoadFile(DefinitionPath(dir, name))
}
