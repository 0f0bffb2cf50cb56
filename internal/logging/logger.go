package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	logger  *log.Logger
	logFile *os.File

	discard = log.New(io.Discard)
)

// Init opens a dated log file under dir and installs it as the global logger.
// The terminal belongs to the UI, so nothing is ever written to stdout.
func Init(dir string, level log.Level) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("shortfeed-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logger, logFile = l, f
	mu.Unlock()

	l.Info("shortfeed started")
	return nil
}

// SetOutput installs a logger writing to w. Used by tests and --log-stderr.
func SetOutput(w io.Writer, level log.Level) {
	mu.Lock()
	logger = log.NewWithOptions(w, log.Options{Level: level})
	mu.Unlock()
}

// Close flushes the shutdown line and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		logger.Info("shortfeed shutting down")
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = nil
}

// Get returns the global logger, or a discarding one before Init.
func Get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return discard
	}
	return logger
}

// WithPrefix returns a child logger tagged with a component prefix.
func WithPrefix(prefix string) *log.Logger {
	return Get().WithPrefix(prefix)
}

func Info(msg string, keyvals ...interface{})  { Get().Info(msg, keyvals...) }
func Debug(msg string, keyvals ...interface{}) { Get().Debug(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { Get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { Get().Error(msg, keyvals...) }

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
