// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when no path is given.
const EnvConfigPath = "MOVESIGHT_CONFIG"

type Config struct {
	Server struct {
		Host string `json:"host" yaml:"host"`
		Port int    `json:"port" yaml:"port" validate:"min=1,max=65535"`
	} `json:"server" yaml:"server"`

	Database struct {
		Path     string `json:"path" yaml:"path" validate:"required_without=InMemory"`
		InMemory bool   `json:"in_memory" yaml:"in_memory"`
	} `json:"database" yaml:"database"`

	Detection struct {
		// Negative disables detection entirely.
		MinLinesCount int `json:"min_lines_count" yaml:"min_lines_count"`
		// Requests with more removed plus added lines are rejected.
		MaxLines int `json:"max_lines" yaml:"max_lines" validate:"min=1"`
	} `json:"detection" yaml:"detection"`

	Cache struct {
		Size int `json:"size" yaml:"size" validate:"min=1"`
	} `json:"cache" yaml:"cache"`

	Compression struct {
		Level   int `json:"level" yaml:"level" validate:"min=1,max=4"`
		MinSize int `json:"min_size" yaml:"min_size" validate:"min=0"`
	} `json:"compression" yaml:"compression"`

	Environment string `json:"environment" yaml:"environment" validate:"oneof=development production test"`
	LogLevel    string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default is the configuration used when no file is found.
func Default() *Config {
	var c Config
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 8080
	c.Database.Path = ".movesight"
	c.Detection.MinLinesCount = 2
	c.Detection.MaxLines = 200000
	c.Cache.Size = 256
	c.Compression.Level = 2
	c.Compression.MinSize = 1024
	c.Environment = "development"
	c.LogLevel = "info"
	return &c
}

// ResolvePath picks the config file: explicit, then $MOVESIGHT_CONFIG.
// An empty result means defaults only.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvConfigPath)
}

// Load reads path over the defaults and validates the result. An empty
// path returns the validated defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		if err := config.Validate(); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("%s: rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
