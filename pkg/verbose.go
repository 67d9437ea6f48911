package funique

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

var globalVerboseLevel int
var debugFlags map[string]bool
var logger = NewLogger(os.Stderr, 0)

// NewLogger creates a structured logger writing to w. When w is a terminal
// the output is human-readable text, otherwise JSON.
func NewLogger(w io.Writer, verboseLevel int) *slog.Logger {
	options := &slog.HandlerOptions{Level: levelForVerbose(verboseLevel)}

	var handler slog.Handler
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

func levelForVerbose(level int) slog.Level {
	switch {
	case level <= 0:
		return slog.LevelWarn
	case level == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// SetLogger replaces the package logger
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the package logger
func Logger() *slog.Logger {
	return logger
}

// SetVerboseLevel sets the global verbose level
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// VerboseEnter logs function entry at level 3+ and returns a defer function for exit logging
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	logger.Debug("enter", "func", funcName)
	return func() {
		logger.Debug("exit", "func", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel < level {
		return
	}
	slogLevel := slog.LevelInfo
	if level >= 2 {
		slogLevel = slog.LevelDebug
	}
	logger.Log(context.Background(), slogLevel, fmt.Sprintf(format, args...), "verbose", level)
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("scan,match") and key:value format ("scan:true,match:false")
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	if flagsStr == "" {
		return
	}

	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "false", "0", "no", "off":
				flagValue = false
			}
		}

		debugFlags[flagName] = flagValue
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)] || debugFlags["all"]
}

// traceMatch emits a matching-engine trace event when the match category is on
func traceMatch(msg string, args ...any) {
	if IsDebugEnabled(DebugMatch) {
		logger.Debug(msg, args...)
	}
}
