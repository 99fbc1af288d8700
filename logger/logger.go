package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/xerrors"
)

type Config struct {
	Level  string
	Output io.Writer
	// Colors forces colored output even when Output is not a terminal.
	Colors bool
}

// New returns a logger writing human readable, timestamped lines. Output
// defaults to stderr so that stdout only carries the report.
func New(cfg Config) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(cfg.Level); err != nil {
			return nil, xerrors.Errorf("invalid log level: %w", err)
		}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(output)
	l.SetLevel(level)
	l.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceColors:     cfg.Colors,
		ForceFormatting: true,
	})
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
