package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v := viper.New()
	require.NoError(t, Init(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "extractions.db"), cfg.Database)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 5*time.Minute, cfg.WriteTimeout)
	assert.Equal(t, 72.0, cfg.PreviewDPI)
	assert.Equal(t, TableConfig{MinRows: 2, MinCols: 2, MinConfidence: 0.5}, cfg.Table)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PDFCLEAN_PORT", "9090")
	t.Setenv("PDFCLEAN_API_KEY", "letmein")
	t.Setenv("PDFCLEAN_TABLE_MIN_ROWS", "4")
	t.Setenv("PDFCLEAN_WRITE_TIMEOUT", "90s")

	v := viper.New()
	require.NoError(t, Init(v, ""))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "letmein", cfg.APIKey)
	assert.Equal(t, 4, cfg.Table.MinRows)
	assert.Equal(t, 90*time.Second, cfg.WriteTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	content := "port: 7000\ndata_dir: /srv/pdfclean\ntable:\n  min_confidence: 0.8\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	v := viper.New()
	require.NoError(t, Init(v, file))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/srv/pdfclean/extractions.db", cfg.Database)
	assert.Equal(t, "/srv/pdfclean/uploads", cfg.UploadDir())
	assert.Equal(t, "/srv/pdfclean/outputs", cfg.OutputDir())
	assert.Equal(t, 0.8, cfg.Table.MinConfidence)
}

func TestInitMissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, DataDir: "data", MaxUploadMB: 1, PreviewDPI: 72}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port", mutate: func(c *Config) { c.Port = 0 }},
		{name: "data dir", mutate: func(c *Config) { c.DataDir = "" }},
		{name: "upload size", mutate: func(c *Config) { c.MaxUploadMB = 0 }},
		{name: "dpi", mutate: func(c *Config) { c.PreviewDPI = -1 }},
		{name: "confidence", mutate: func(c *Config) { c.Table.MinConfidence = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
