// Package config loads notion-importer.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileName is the config file looked up in the working directory.
const FileName = "notion-importer.toml"

// APIKeyEnv overrides api_key when set.
const APIKeyEnv = "NOTION_API_KEY"

// Config is the tool configuration.
type Config struct {
	APIKey           string       `toml:"api_key"`
	SettingsPath     string       `toml:"settings_path"`
	DefinitionsDir   string       `toml:"definitions_dir"`
	Workers          int          `toml:"workers"`
	CreateOutputDirs bool         `toml:"create_output_dirs"`
	Notion           NotionConfig `toml:"notion"`
	Output           OutputConfig `toml:"output"`

	// dir is the directory of the config file, used to resolve relative paths.
	dir string
}

// NotionConfig configures the API client.
type NotionConfig struct {
	BaseURL    string        `toml:"base_url"`
	Version    string        `toml:"version"`
	MaxRetries int           `toml:"max_retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
	Timeout    time.Duration `toml:"timeout"`
}

// OutputConfig selects where assets are stored.
type OutputConfig struct {
	Store      string `toml:"store"`  // file|sqlite
	Format     string `toml:"format"` // json|yaml
	SQLitePath string `toml:"sqlite_path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		SettingsPath:   "ImporterSettings.json",
		DefinitionsDir: "DatabaseDefinitions",
		Workers:        8,
		Notion: NotionConfig{
			BaseURL:    "https://api.notion.com/v1/",
			Version:    "2022-06-28",
			MaxRetries: 5,
			RetryDelay: time.Second,
			Timeout:    30 * time.Second,
		},
		Output: OutputConfig{
			Store:      "file",
			Format:     "json",
			SQLitePath: "assets.db",
		},
	}
}

// Load reads a TOML config file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data, _, err = transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	cfg.dir = filepath.Dir(absPath)

	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if key := strings.TrimSpace(getenv(APIKeyEnv)); key != "" {
		c.APIKey = key
	}
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	def := Default()

	if c.Workers <= 0 {
		c.Workers = def.Workers
	}

	if c.SettingsPath == "" {
		c.SettingsPath = def.SettingsPath
	}

	if c.DefinitionsDir == "" {
		c.DefinitionsDir = def.DefinitionsDir
	}

	var errs []error

	switch c.Output.Store {
	case "file", "sqlite":
	default:
		errs = append(errs, errors.New("output.store must be one of: file, sqlite"))
	}

	switch c.Output.Format {
	case "json", "yaml":
	default:
		errs = append(errs, errors.New("output.format must be one of: json, yaml"))
	}

	if c.Output.Store == "sqlite" && c.Output.SQLitePath == "" {
		errs = append(errs, errors.New("output.sqlite_path is required for the sqlite store"))
	}

	if c.Notion.MaxRetries < 0 {
		errs = append(errs, errors.New("notion.max_retries must not be negative"))
	}

	if c.Notion.RetryDelay < 0 || c.Notion.Timeout < 0 {
		errs = append(errs, errors.New("notion durations must not be negative"))
	}

	if c.Notion.BaseURL == "" {
		errs = append(errs, errors.New("notion.base_url is required"))
	}

	return errors.Join(errs...)
}

// Path resolves p relative to the config file directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}

	return filepath.Join(c.dir, p)
}
