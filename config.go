package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"frameup/internal/compositor"
	"frameup/internal/export"
	"frameup/internal/logging"
)

type Config struct {
	SaveDirectory string         `yaml:"save_directory"`
	Confirmations bool           `yaml:"confirmations"`
	PreviewWidth  int            `yaml:"preview_width"`
	ReferenceSize float64        `yaml:"reference_size"`
	ExportDelay   time.Duration  `yaml:"export_delay"`
	FontDir       string         `yaml:"font_dir"`
	Store         StoreConfig    `yaml:"store"`
	Logging       logging.Config `yaml:"logging"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

const (
	minPreviewWidth = 16
	maxPreviewWidth = 200
)

// configDir is where frameup keeps its config, document and log.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".frameup"
	}
	return filepath.Join(dir, "frameup")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func defaultConfig() *Config {
	logCfg := logging.DefaultConfig()
	logCfg.File = filepath.Join(configDir(), "frameup.log")
	return &Config{
		SaveDirectory: "",
		Confirmations: true,
		PreviewWidth:  40,
		ReferenceSize: compositor.DefaultReference,
		ExportDelay:   export.DefaultDelay,
		Store:         StoreConfig{Backend: "file"},
		Logging:       logCfg,
	}
}

// loadConfig reads the YAML file at path if it exists, applies FRAMEUP_*
// environment overrides and validates the result.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("loading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := config.loadFromEnv(); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return config, nil
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("FRAMEUP_SAVE_DIR"); v != "" {
		c.SaveDirectory = v
	}
	if v := os.Getenv("FRAMEUP_CONFIRMATIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FRAMEUP_CONFIRMATIONS: %w", err)
		}
		c.Confirmations = b
	}
	if v := os.Getenv("FRAMEUP_EXPORT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FRAMEUP_EXPORT_DELAY: %w", err)
		}
		c.ExportDelay = d
	}
	if v := os.Getenv("FRAMEUP_FONT_DIR"); v != "" {
		c.FontDir = v
	}
	if v := os.Getenv("FRAMEUP_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("FRAMEUP_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("FRAMEUP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FRAMEUP_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("FRAMEUP_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	return nil
}

func (c *Config) validate() error {
	var err error
	if c.SaveDirectory, err = absPath(c.SaveDirectory); err != nil {
		return err
	}
	if c.FontDir, err = absPath(c.FontDir); err != nil {
		return err
	}
	if c.Logging.File, err = absPath(c.Logging.File); err != nil {
		return err
	}

	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q (want file or sqlite)", c.Store.Backend)
	}
	if c.Store.Path == "" {
		name := "frameup.json"
		if c.Store.Backend == "sqlite" {
			name = "frameup.db"
		}
		c.Store.Path = filepath.Join(configDir(), name)
	}
	if c.Store.Path, err = absPath(c.Store.Path); err != nil {
		return err
	}

	if c.PreviewWidth < minPreviewWidth || c.PreviewWidth > maxPreviewWidth {
		return fmt.Errorf("preview_width %d outside [%d, %d]", c.PreviewWidth, minPreviewWidth, maxPreviewWidth)
	}
	if c.ReferenceSize <= 0 {
		return fmt.Errorf("reference_size must be positive, got %g", c.ReferenceSize)
	}
	if c.ExportDelay < 0 {
		return fmt.Errorf("export_delay must not be negative, got %s", c.ExportDelay)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// absPath expands a leading ~ and makes path absolute. Empty stays empty.
func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", path, err)
		}
		path = abs
	}
	return path, nil
}

// GetSavePath is where an export named filename is written.
func (c *Config) GetSavePath(filename string) string {
	return filepath.Join(c.ExportDir(), filename)
}

// ExportDir is the export directory: save_directory, or the working
// directory when none is configured.
func (c *Config) ExportDir() string {
	if c.SaveDirectory != "" {
		return c.SaveDirectory
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
