package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"capitalGainsTracker/internal/trace"
)

// LogLevel orders log severities; a logger drops anything below its level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelAliases = map[string]LogLevel{
	"DEBUG":   LevelDebug,
	"INFO":    LevelInfo,
	"WARN":    LevelWarn,
	"WARNING": LevelWarn,
	"ERROR":   LevelError,
}

func (l LogLevel) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads LOG_LEVEL values case-insensitively. Unrecognised input
// falls back to LevelInfo.
func ParseLevel(levelStr string) LogLevel {
	if level, ok := levelAliases[strings.ToUpper(strings.TrimSpace(levelStr))]; ok {
		return level
	}
	return LevelInfo
}

// StdLogger writes one text line per event:
//
//	2026/01/19 10:30:00.000000 [WARN] Sale rejected | held=10 symbol=AAPL
type StdLogger struct {
	logger *log.Logger
	level  LogLevel
}

// NewStdLogger logs to os.Stderr so command output on stdout stays clean.
func NewStdLogger(level LogLevel) *StdLogger {
	return NewStdLoggerTo(os.Stderr, level)
}

func NewStdLoggerTo(w io.Writer, level LogLevel) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level:  level,
	}
}

// eventFields merges the caller's field maps, later maps winning, and adds
// the active span's IDs when tracing is on.
func eventFields(ctx context.Context, fields []map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, f := range fields {
		maps.Copy(merged, f)
	}
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		merged["trace_id"] = traceID
		merged["span_id"] = spanID
	}
	return merged
}

func (l *StdLogger) write(ctx context.Context, level LogLevel, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&sb, " | error: %v", err)
	}
	if merged := eventFields(ctx, fields); len(merged) > 0 {
		sb.WriteString(" |")
		for _, k := range slices.Sorted(maps.Keys(merged)) {
			fmt.Fprintf(&sb, " %s=%v", k, merged[k])
		}
	}
	l.logger.Print(sb.String())
}

func (l *StdLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelDebug, msg, nil, fields)
}

func (l *StdLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelInfo, msg, nil, fields)
}

func (l *StdLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelWarn, msg, nil, fields)
}

// Error logs at LevelError with err rendered ahead of the fields.
func (l *StdLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelError, msg, err, fields)
}
