package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. PDFCLEAN_PORT.
	EnvPrefix = "PDFCLEAN"
	// FileName is the config file name looked up without extension.
	FileName = "pdfclean"
)

// TableConfig filters the ruled grids found by the table detector.
type TableConfig struct {
	MinRows       int     `mapstructure:"min_rows" yaml:"min_rows"`
	MinCols       int     `mapstructure:"min_cols" yaml:"min_cols"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
}

// Config holds the settings of the web shell and the extraction pipeline.
type Config struct {
	// Port the HTTP server listens on.
	Port int `mapstructure:"port" yaml:"port"`

	// DataDir holds uploads/, outputs/ and, by default, the database.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// Database is the sqlite file path; empty means <data_dir>/extractions.db.
	Database string `mapstructure:"database" yaml:"database"`

	// APIKey enables the login form when non-empty.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`

	MaxUploadMB  int64         `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// PreviewDPI is the resolution of rendered page images.
	PreviewDPI float64 `mapstructure:"preview_dpi" yaml:"preview_dpi"`

	Table TableConfig `mapstructure:"table" yaml:"table"`
}

// SetDefaults registers every key so that environment overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("database", "")
	v.SetDefault("api_key", "")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("read_timeout", 30*time.Second)
	v.SetDefault("write_timeout", 5*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("preview_dpi", 72.0)
	v.SetDefault("table.min_rows", 2)
	v.SetDefault("table.min_cols", 2)
	v.SetDefault("table.min_confidence", 0.5)
}

// Init wires config file lookup and environment overrides into v.
// cfgFile overrides the search path when non-empty.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and fills derived values.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Database == "" {
		cfg.Database = filepath.Join(cfg.DataDir, "extractions.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.PreviewDPI <= 0 {
		return fmt.Errorf("preview_dpi must be positive, got %v", c.PreviewDPI)
	}
	if c.Table.MinConfidence < 0 || c.Table.MinConfidence > 1 {
		return fmt.Errorf("table.min_confidence must be within [0,1], got %v", c.Table.MinConfidence)
	}
	return nil
}

func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

func (c Config) OutputDir() string {
	return filepath.Join(c.DataDir, "outputs")
}
