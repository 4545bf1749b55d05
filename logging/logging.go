// Package logging configures the process-wide zerolog logger for
// cypress-repeat-pro.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 20
	logMaxBackups = 3
	logMaxAgeDays = 14
)

// fileWriter holds the rotating log file writer for cleanup during shutdown.
var fileWriter io.WriteCloser

// Config controls logger verbosity and optional file output.
type Config struct {
	Level   string // debug|info|warn|error, empty means info
	LogFile string // optional rotating log file path
}

// ParseLevel validates a --log-level value.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// Init creates the process logger and installs it as the zerolog global so
// package-level log calls share the same configuration.
//
// A TTY without NO_COLOR gets a console writer on stderr; everything else
// gets JSON. When LogFile is set the logger additionally writes JSON to a
// rotating file. If the file cannot be created the logger continues with
// console-only output and reports the problem through the returned logger.
func Init(cfg Config) zerolog.Logger {
	writer := selectOutput()

	var fileErr error
	if cfg.LogFile != "" {
		fw, err := newRotatingWriter(cfg.LogFile)
		if err != nil {
			fileErr = err
		} else {
			fileWriter = fw
			writer = zerolog.MultiLevelWriter(writer, fw)
		}
	}

	logger := buildLogger(cfg, writer)
	log.Logger = logger

	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", cfg.LogFile).Msg("Log file unavailable, continuing with console output")
	}
	return logger
}

// InitWithWriter builds a logger against a custom writer. Intended for tests.
func InitWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	logger := buildLogger(cfg, w)
	log.Logger = logger
	return logger
}

// Close closes the rotating log file writer if one was opened. Call during
// shutdown.
func Close() {
	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
}

func buildLogger(cfg Config, w io.Writer) zerolog.Logger {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// selectOutput picks the console format. A TTY without NO_COLOR gets the
// human console writer; non-TTY output (CI, pipes) gets JSON.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// newRotatingWriter opens a size-rotated log file, creating parent
// directories as needed.
func newRotatingWriter(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}, nil
}
