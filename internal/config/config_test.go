package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-importer/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api_key = "secret_file"
workers = 3

[notion]
retry_delay = "250ms"

[output]
format = "yaml"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "secret_file", cfg.APIKey)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Notion.RetryDelay)
	assert.Equal(t, 30*time.Second, cfg.Notion.Timeout)
	assert.Equal(t, 5, cfg.Notion.MaxRetries)
	assert.Equal(t, "file", cfg.Output.Store)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "DatabaseDefinitions"), cfg.Path(cfg.DefinitionsDir))
}

func TestLoad_UnknownKeys(t *testing.T) {
	path := writeConfig(t, "api_key = \"x\"\nworker = 3\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config keys: worker")
}

func TestApplyEnv(t *testing.T) {
	cfg := config.Default()
	cfg.APIKey = "from_file"

	cfg.ApplyEnv(func(string) string { return "" })
	assert.Equal(t, "from_file", cfg.APIKey)

	cfg.ApplyEnv(func(k string) string {
		if k == config.APIKeyEnv {
			return " from_env "
		}

		return ""
	})
	assert.Equal(t, "from_env", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "zero workers get the default", mutate: func(c *config.Config) { c.Workers = 0 }},
		{name: "bad store", mutate: func(c *config.Config) { c.Output.Store = "s3" }, wantErr: "output.store"},
		{name: "bad format", mutate: func(c *config.Config) { c.Output.Format = "xml" }, wantErr: "output.format"},
		{name: "sqlite without path", mutate: func(c *config.Config) {
			c.Output.Store = "sqlite"
			c.Output.SQLitePath = ""
		}, wantErr: "sqlite_path"},
		{name: "negative retries", mutate: func(c *config.Config) { c.Notion.MaxRetries = -1 }, wantErr: "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Positive(t, cfg.Workers)
		})
	}
}
