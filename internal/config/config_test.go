package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Detection.MinLinesCount)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, c *Config)
		wantErr string
	}{
		{
			name:    "yaml overrides",
			file:    "movesight.yaml",
			content: "server:\n  port: 9000\ndetection:\n  min_lines_count: -1\n  max_lines: 50\nlog_level: debug\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 9000, c.Server.Port)
				assert.Equal(t, -1, c.Detection.MinLinesCount)
				assert.Equal(t, 50, c.Detection.MaxLines)
				assert.Equal(t, "debug", c.LogLevel)
				// untouched keys keep their defaults
				assert.Equal(t, 256, c.Cache.Size)
			},
		},
		{
			name:    "json overrides",
			file:    "movesight.json",
			content: `{"database": {"in_memory": true, "path": ""}, "environment": "test"}`,
			check: func(t *testing.T, c *Config) {
				assert.True(t, c.Database.InMemory)
				assert.Equal(t, "test", c.Environment)
			},
		},
		{
			name:    "invalid port",
			file:    "bad.yml",
			content: "server:\n  port: 70000\n",
			wantErr: "Config.Server.Port",
		},
		{
			name:    "invalid log level",
			file:    "bad.json",
			content: `{"log_level": "loud"}`,
			wantErr: "oneof",
		},
		{
			name:    "missing database path",
			file:    "bad.json",
			content: `{"database": {"path": ""}}`,
			wantErr: "required_without",
		},
		{
			name:    "malformed yaml",
			file:    "bad.yaml",
			content: "server: [",
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/movesight.yaml")
	assert.Equal(t, "explicit.json", ResolvePath("explicit.json"))
	assert.Equal(t, "/etc/movesight.yaml", ResolvePath(""))
}
