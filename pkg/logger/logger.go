package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jce77/melodygen/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init initializes the logger. Records go to the rotated log file; verbose
// runs also mirror them to stderr at debug level.
func Init(verbose bool) {
	level := parseLevel(config.GetString("log.level"))
	if verbose {
		level = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0700); err == nil {
			rotated := &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    maxInt(config.GetInt("log.max_size_mb"), 1), // megabytes
				MaxBackups: config.GetInt("log.max_backups"),
				Compress:   true,
			}
			out = rotated
			if verbose {
				out = io.MultiWriter(rotated, os.Stderr)
			}
		}
	}

	logger = log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "melodygen",
	})
	logger.SetLevel(level)
}

// InitWithWriter points the logger at w, used by tests and embedding callers
func InitWithWriter(w io.Writer, level log.Level) {
	logger = log.New(w)
	logger.SetLevel(level)
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// Fatal logs a fatal message and exits
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatal(msg, args...)
	} else {
		os.Exit(1)
	}
}
