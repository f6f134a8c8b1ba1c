package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"photoreel/internal/config"
)

// LogFileName is the file under the log directory that `photoreel logs` reads.
const LogFileName = "photoreel.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives every record; nil means stderr. Set Quiet to drop it.
	Console io.Writer
	Quiet   bool
	// File, when set, is opened for append and receives every record too.
	File        string
	Development bool
	// SessionID tags every record when non-empty.
	SessionID string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	out, err := openOutput(opts)
	if err != nil {
		return nil, err
	}
	addSource := opts.Development || level <= slog.LevelDebug

	var handler slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		handler = newJSONHandler(out, levelVar, addSource)
	case "console", "":
		handler = newPrettyHandler(out, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if id := strings.TrimSpace(opts.SessionID); id != "" {
		handler = newSessionIDHandler(handler, id)
	}
	return slog.New(handler), nil
}

// NewFromConfig builds the CLI logger. Records go to stderr so stdout stays
// machine readable, and are appended to LogPath(cfg) when a state directory is
// configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info"})
	}
	return New(Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		File:      LogPath(cfg),
		SessionID: NewSessionID(),
	})
}

// LogPath is the append-only log file for cfg, or "" without a log directory.
func LogPath(cfg *config.Config) string {
	if cfg == nil || cfg.LogDir() == "" {
		return ""
	}
	return filepath.Join(cfg.LogDir(), LogFileName)
}

// NewSessionID returns a fresh identifier correlating all log lines of one invocation.
func NewSessionID() string {
	return uuid.NewString()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(opts Options) (io.Writer, error) {
	var writers []io.Writer
	if !opts.Quiet {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		writers = append(writers, console)
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		return io.Discard, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}
