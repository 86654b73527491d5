// Package logging builds the application's slog logger. The terminal UI
// owns the screen, so interactive runs log to a rotating file only.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging configuration.
type Config struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	File           string `yaml:"file"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxFiles   int    `yaml:"file_max_files"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	// Console also writes records to stderr. Only headless commands set it.
	Console bool `yaml:"-"`
}

// Manager owns the log writer and the level, which can change at runtime.
type Manager struct {
	mu       sync.Mutex
	levelVar *slog.LevelVar
	config   Config
	closer   io.Closer
}

// NewManager creates a Manager and returns it along with a ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	lvl := &slog.LevelVar{}
	lvl.Set(parseLevel(cfg.Level))

	w, closer := buildWriter(cfg)
	m := &Manager{levelVar: lvl, config: cfg, closer: closer}
	return m, slog.New(buildHandler(w, lvl, cfg.Format))
}

// SetLevel changes the minimum level of every logger from this manager.
func (m *Manager) SetLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levelVar.Set(parseLevel(level))
	m.config.Level = level
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildWriter returns the sink for records: the rotating file, stderr, both,
// or nothing.
func buildWriter(cfg Config) (io.Writer, io.Closer) {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stderr)
	}

	var closer io.Closer
	if cfg.File != "" {
		d := DefaultConfig()
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    positive(cfg.FileMaxSizeMB, d.FileMaxSizeMB),
			MaxBackups: positive(cfg.FileMaxFiles, d.FileMaxFiles),
			MaxAge:     positive(cfg.FileMaxAgeDays, d.FileMaxAgeDays),
		}
		writers = append(writers, lj)
		closer = lj
	}

	switch len(writers) {
	case 0:
		return io.Discard, nil
	case 1:
		return writers[0], closer
	default:
		return io.MultiWriter(writers...), closer
	}
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func buildHandler(w io.Writer, leveler slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: leveler}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ValidLevel reports whether s is a recognized log level.
func ValidLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat reports whether s is a recognized log format.
func ValidFormat(s string) bool {
	return s == "text" || s == "json"
}

// DefaultConfig returns the logging defaults. File is left empty; the
// caller picks a path under the user's config directory.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         "text",
		FileMaxSizeMB:  10,
		FileMaxFiles:   3,
		FileMaxAgeDays: 28,
	}
}

func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.File != "" {
		s += " file=" + c.File
	}
	return s
}
