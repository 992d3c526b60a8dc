// Package log writes the diagnostics log. The terminal belongs to the UI, so
// every record goes to a rotating file. All helpers are no-ops until Init.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/verte-zerg/digita/internal/model"
)

var (
	diagLog  zerolog.Logger
	rotator  *lumberjack.Logger
	logMu    sync.Mutex
	logReady bool
)

// Options configures Init.
type Options struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

// Init opens the log file and sets the minimum level. Unknown levels fall back to info.
func Init(opts Options) error {
	logMu.Lock()
	defer logMu.Unlock()

	if opts.Path == "" {
		return fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 3
	}

	rotator = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	setup(rotator, opts.Level)
	return nil
}

// InitWriter logs to w instead of a file. Used by tests.
func InitWriter(w io.Writer, level string) {
	logMu.Lock()
	defer logMu.Unlock()
	rotator = nil
	setup(w, level)
}

func setup(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).Level(lvl).With().Timestamp().Int("pid", os.Getpid()).Logger()
	logReady = true
}

// Close flushes and closes the log file.
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Debugf(format string, args ...any) {
	if logReady {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

// AttemptStart records the beginning of a timed attempt.
func AttemptStart(sessionID string, mode model.Mode, difficulty model.Difficulty, textID int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", sessionID).
		Str("mode", string(mode)).
		Str("difficulty", string(difficulty)).
		Int("text_id", textID).
		Msg("attempt_start")
}

// AttemptFinish records a finalized attempt.
func AttemptFinish(sessionID string, a model.TestAttempt) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", sessionID).
		Str("attempt", a.ID).
		Str("mode", string(a.Mode)).
		Str("difficulty", string(a.Difficulty)).
		Str("reason", string(a.Reason)).
		Int("wpm", a.WPM).
		Int("accuracy", a.Accuracy).
		Int("elapsed_s", a.ElapsedSeconds).
		Int("errors", len(a.Errors)).
		Msg("attempt_finish")
}

// Integrity records a warning or violation raised during an attempt.
func Integrity(sessionID, event string, violation bool) {
	if !logReady {
		return
	}
	ev := diagLog.Warn()
	if violation {
		ev = diagLog.Error()
	}
	ev.Str("session", sessionID).Str("event", event).Bool("violation", violation).Msg("integrity")
}
