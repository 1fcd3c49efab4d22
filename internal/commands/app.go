package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"notion-importer/internal/analyze"
	"notion-importer/internal/config"
	"notion-importer/internal/importer"
	"notion-importer/internal/notion"
	"notion-importer/internal/settings"
	"notion-importer/internal/store"
)

// app is the state shared by every command of one invocation.
type app struct {
	registry *analyze.Registry
	getenv   func(string) string

	configPath string
	quiet      bool
	noInput    bool

	cfg      *config.Config
	settings *settings.Settings
	logger   *log.Logger
	out      io.Writer
}

// load reads the configuration and the settings file.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	a.out = cmd.OutOrStdout()

	a.logger = log.New(io.Discard, "", 0)
	if !a.quiet {
		a.logger = log.New(cmd.ErrOrStderr(), "notion-importer: ", log.LstdFlags)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	cfg.ApplyEnv(a.getenv)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg = cfg

	s, err := settings.Load(a.settingsPath())
	if err != nil {
		return err
	}

	a.settings = s

	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}

	cfg, err := config.Load(config.FileName)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}

	return cfg, err
}

func (a *app) settingsPath() string {
	return a.cfg.Path(a.cfg.SettingsPath)
}

func (a *app) definitionsDir() string {
	return a.cfg.Path(a.cfg.DefinitionsDir)
}

// apiKey returns the configured key, falling back to the one saved by connect.
func (a *app) apiKey() (string, error) {
	if a.cfg.APIKey != "" {
		return a.cfg.APIKey, nil
	}

	if a.settings.APIKey != "" {
		return a.settings.APIKey, nil
	}

	return "", fmt.Errorf("no Notion API key: set api_key in %s or %s", config.FileName, config.APIKeyEnv)
}

func (a *app) client() (*notion.Client, error) {
	key, err := a.apiKey()
	if err != nil {
		return nil, err
	}

	n := a.cfg.Notion

	return notion.NewClient(key,
		notion.WithBaseURL(n.BaseURL),
		notion.WithVersion(n.Version),
		notion.WithRetry(n.MaxRetries, n.RetryDelay),
		notion.WithHTTPClient(&http.Client{Timeout: n.Timeout}),
	), nil
}

// store opens the configured asset store. close releases it.
func (a *app) store(ctx context.Context) (s importer.Store, closeFn func() error, err error) {
	out := a.cfg.Output

	if out.Store == "sqlite" {
		db, err := store.OpenSQLite(ctx, a.cfg.Path(out.SQLitePath))
		if err != nil {
			return nil, nil, err
		}

		return db, db.Close, nil
	}

	format, err := store.ParseFormat(out.Format)
	if err != nil {
		return nil, nil, err
	}

	return store.NewFileStore(a.cfg.Path("."), format), func() error { return nil }, nil
}

// interactive reports whether prompts may be shown.
func (a *app) interactive() bool {
	if a.noInput {
		return false
	}

	fi, err := os.Stdin.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	return !color.NoColor
}

func (a *app) saveSettings() error {
	return a.settings.Save(a.settingsPath())
}
