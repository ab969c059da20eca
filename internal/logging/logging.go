package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config controls where and how log lines are written.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
	// File redirects logs away from stderr. The TUI sets this so log lines
	// don't tear the screen.
	File string `yaml:"file" mapstructure:"file"`
}

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and library callers that never reach main still get a usable
// logger.
func init() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	Log = logrus.NewEntry(logger)
}

// New builds a logger from cfg and installs it as the package logger.
// The returned closer releases the log file, if any.
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q (must be text or json)", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		l.SetOutput(f)
		closer = f
	} else {
		l.SetOutput(os.Stderr)
	}

	logger = l
	Log = logrus.NewEntry(l)
	return l, closer, nil
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
