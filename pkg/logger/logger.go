
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// timeLayout renders as YYYY-MM-DD HH:MM:SS.
const timeLayout = "2006-01-02 15:04:05"

// Logger writes timestamped, levelled lines. Every call is one write, so the
// run log is never left holding buffered events. A nil *Logger discards.
type Logger struct {
	l    *log.Logger
	file *os.File
	now  func() time.Time
}

// New logs to stdout only.
func New() *Logger { return NewWriter(os.Stdout) }

func NewWriter(w io.Writer) *Logger {
	return &Logger{l: log.New(w, "", 0), now: time.Now}
}

// Open logs to stdout and appends to the run log at path, creating it and its
// directory if needed.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := NewWriter(io.MultiWriter(os.Stdout, f))
	l.file = f
	return l, nil
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Infof(format string, args ...any) {
	l.printf("[INFO] "+format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.printf("[WARN] "+format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.printf("[ERROR] "+format, args...)
}

func (l *Logger) printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.l.Printf(l.now().Format(timeLayout)+" - "+format, args...)
}
