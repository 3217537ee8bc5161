package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// std is the process-wide logger. It writes to stderr until InitLog
// redirects it to a file.
var (
	mu      sync.Mutex
	std     = logrus.New()
	logFile *os.File
)

func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	std.SetLevel(logrus.InfoLevel)
}

// InitLog redirects the logger to the given file path, creating parent
// directories as needed. Output is mirrored to stderr.
func InitLog(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	logFile = f
	std.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// FlushLog closes the log file if one was opened by InitLog.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
		std.SetOutput(os.Stderr)
	}
}

// SetLevel changes the logging level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	std.SetLevel(lv)
}

func Debug(format string, args ...any) { std.Debugf(format, args...) }
func Info(format string, args ...any)  { std.Infof(format, args...) }
func Warn(format string, args ...any)  { std.Warnf(format, args...) }
func Error(format string, args ...any) { std.Errorf(format, args...) }

// Module-tagged variants. The module name shows up as a structured field
// so per-module output can be filtered.

func DebugX(module string, format string, args ...any) {
	std.WithField("module", module).Debugf(format, args...)
}

func InfoX(module string, format string, args ...any) {
	std.WithField("module", module).Infof(format, args...)
}

func WarnX(module string, format string, args ...any) {
	std.WithField("module", module).Warnf(format, args...)
}

func ErrorX(module string, format string, args ...any) {
	std.WithField("module", module).Errorf(format, args...)
}
