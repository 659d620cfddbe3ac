// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance. Degradations are logged at debug
// level only, so a default run prints nothing.
var Logger = newLogger(os.Stderr, log.WarnLevel)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "ipyprev"})
	l.SetTimeFormat("")
	l.SetLevel(level)
	return l
}

// Configure replaces the global logger with one writing to w at the given
// level. An empty level keeps warn.
func Configure(w io.Writer, level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	Logger = newLogger(w, lvl)
	return nil
}

func parseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.WarnLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// ValidLevel reports whether level is accepted by Configure.
func ValidLevel(level string) bool {
	_, err := parseLevel(level)
	return err == nil
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}
