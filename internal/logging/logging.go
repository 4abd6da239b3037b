package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Decode lets envconfig reject unknown formats at startup.
func (f *LogFormat) Decode(value string) error {
	switch LogFormat(value) {
	case "", LogFormatText:
		*f = LogFormatText
	case LogFormatJSON:
		*f = LogFormatJSON
	default:
		return fmt.Errorf("unknown log format %q", value)
	}
	return nil
}

// Config is read under the LOG prefix.
type Config struct {
	Format LogFormat `envconfig:"FORMAT" default:"text"`
	Level  string    `envconfig:"LEVEL" default:"info"`
}

// NewLogger writes to stderr so stdout carries only command output.
func NewLogger(cfg Config) (*logrus.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.Format == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
