package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of file assets.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown asset format %q (want json or yaml)", s)
	}
}

// Ext returns the file extension, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// FileStore keeps each asset in its own file under Root.
type FileStore struct {
	Root   string
	Format Format
}

// NewFileStore creates a FileStore rooted at root. Relative asset paths are
// resolved against it.
func NewFileStore(root string, format Format) *FileStore {
	return &FileStore{Root: root, Format: format}
}

func (s *FileStore) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || s.Root == "" {
		return p
	}

	return filepath.Join(s.Root, p)
}

// File returns the file an asset path is stored in.
func (s *FileStore) File(p string) string {
	return s.resolve(p) + s.Format.Ext()
}

// Prepare implements importer.Store.
func (s *FileStore) Prepare(dir string, create bool) error {
	full := s.resolve(dir)

	info, err := os.Stat(full)

	switch {
	case errors.Is(err, fs.ErrNotExist) && create:
		if err := os.MkdirAll(full, 0o755); err != nil {
			return fmt.Errorf("failed to create output folder %s: %w", full, err)
		}

		return nil
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("output path %s is not a folder", full)
	}

	return nil
}

// Save implements importer.Store. The file is replaced atomically.
func (s *FileStore) Save(p string, obj any) error {
	data, err := s.marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode asset %s: %w", p, err)
	}

	file := s.File(p)
	dir := filepath.Dir(file)

	tmp, err := os.CreateTemp(dir, ".asset-*"+s.Format.Ext())
	if err != nil {
		return fmt.Errorf("failed to write asset %s: %w", file, err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to write asset %s: %w", file, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write asset %s: %w", file, err)
	}

	if err := os.Rename(tmp.Name(), file); err != nil {
		return fmt.Errorf("failed to write asset %s: %w", file, err)
	}

	return nil
}

// Load implements importer.Store.
func (s *FileStore) Load(p string, into any) (bool, error) {
	data, err := os.ReadFile(s.File(p))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read asset %s: %w", p, err)
	}

	data, _, err = transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return false, fmt.Errorf("failed to decode asset %s: %w", p, err)
	}

	if s.Format == FormatYAML {
		err = yaml.Unmarshal(data, into)
	} else {
		err = json.Unmarshal(data, into)
	}

	if err != nil {
		return false, fmt.Errorf("failed to parse asset %s: %w", p, err)
	}

	return true, nil
}

func (s *FileStore) marshal(obj any) ([]byte, error) {
	if s.Format == FormatYAML {
		return yaml.Marshal(obj)
	}

	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
