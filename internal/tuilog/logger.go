// Package tuilog provides file-based logging for csvview.
// The terminal belongs to the table renderer while it runs, so log lines go
// to a file named by --log or CSVVIEW_LOG_FILE. With neither set, logging is
// disabled and every call is a cheap no-op.
package tuilog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// EnvLogFile names the environment variable consulted by InitFromEnv.
const EnvLogFile = "CSVVIEW_LOG_FILE"

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Unknown names yield LevelDebug.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Logger writes timestamped key/value lines to a file.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	min     Level
	enabled bool
	now     func() time.Time
}

var (
	// Log is the process-wide logger.
	Log     = &Logger{now: time.Now}
	logOnce sync.Once
)

// Init opens path for appending and routes Log to it.
// An empty path leaves logging disabled. Only the first call has an effect.
func Init(path string) error {
	if path == "" {
		return nil
	}

	var initErr error
	logOnce.Do(func() {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = fmt.Errorf("open log file: %w", err)
			return
		}
		Log.setOutput(f, f)
		Log.Info("Logger initialized", "path", path)
	})
	return initErr
}

// InitFromEnv calls Init with the value of CSVVIEW_LOG_FILE when flagPath is empty.
func InitFromEnv(flagPath string) error {
	if flagPath == "" {
		flagPath = os.Getenv(EnvLogFile)
	}
	return Init(flagPath)
}

// New returns a logger writing to w. Used by tests and by callers that
// want a private log stream.
func New(w io.Writer, min Level) *Logger {
	l := &Logger{min: min, now: time.Now}
	l.setOutput(w, nil)
	return l
}

func (l *Logger) setOutput(w io.Writer, c io.Closer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w = w
	l.closer = c
	l.enabled = w != nil
}

// SetLevel drops messages below min.
func (l *Logger) SetLevel(min Level) {
	l.mu.Lock()
	l.min = min
	l.mu.Unlock()
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		return err
	}
	return nil
}

// Enabled returns whether logging is active.
func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Writer returns the underlying writer, or io.Discard when disabled.
func (l *Logger) Writer() io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return io.Discard
	}
	return l.w
}

func (l *Logger) log(level Level, msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.min {
		return
	}

	var b strings.Builder
	b.WriteString(l.now().Format("15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	if len(keyvals)%2 == 1 {
		fmt.Fprintf(&b, " EXTRA=%v", keyvals[len(keyvals)-1])
	}
	b.WriteByte('\n')

	io.WriteString(l.w, b.String())
	if f, ok := l.w.(*os.File); ok {
		f.Sync()
	}
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) { l.log(LevelDebug, msg, keyvals...) }

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) { l.log(LevelInfo, msg, keyvals...) }

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) { l.log(LevelWarn, msg, keyvals...) }

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) { l.log(LevelError, msg, keyvals...) }

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...any) { l.log(LevelWarn, fmt.Sprintf(format, args...)) }

// Timed logs the duration of an operation. Usage:
//
//	defer tuilog.Log.Timed("load dataset")()
func (l *Logger) Timed(operation string, keyvals ...any) func() {
	if !l.Enabled() {
		return func() {}
	}
	start := time.Now()
	l.Debug(operation, append([]any{"status", "started"}, keyvals...)...)
	return func() {
		l.Debug(operation, append([]any{"status", "completed", "duration", time.Since(start)}, keyvals...)...)
	}
}
