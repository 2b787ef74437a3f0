package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/director.txt"

// DefaultCapacity is how many recent lines are kept for the on-screen console.
const DefaultCapacity = 200

// Options configures New. A zero Options logs to LogFilePath at info level without console output.
type Options struct {
	Path     string
	Level    string
	Console  bool
	Capacity int
	// Discard skips the file entirely. Used by tests and tools.
	Discard bool
}

// Logger fans zerolog events out to a JSON file, an optional colored stderr writer, and an
// in-memory ring of human-readable lines that the console overlay renders.
type Logger struct {
	zerolog.Logger

	mu    sync.Mutex
	lines []string
	cap   int
	file  *os.File
}

// New opens the log file (creating its directory) and returns a ready logger.
func New(opts Options) (*Logger, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	l := &Logger{cap: opts.Capacity}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: ringWriter{l}, TimeFormat: time.TimeOnly, NoColor: true},
	}
	if !opts.Discard {
		path := opts.Path
		if path == "" {
			path = LogFilePath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, f)
	}
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	return l, nil
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Log records a line typed into the console.
func (l *Logger) Log(line string) {
	l.Info().Str("component", "console").Msg(line)
}

// Lines returns a copy of the retained lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) push(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.cap; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

type ringWriter struct{ l *Logger }

func (w ringWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) > 0 {
			w.l.push(string(line))
		}
	}
	return len(p), nil
}
