package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/newtron-network/xrvrf/pkg/util"
)

// Logger records reconciliation runs and answers queries over them.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// RotationConfig bounds the size and age of the audit log. Zero values
// keep lumberjack's defaults: 100 MB files, every backup, no age limit.
type RotationConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FileLogger appends one JSON document per run to a log file. Rotated
// backups sit next to it as <name>-<timestamp>.<ext>.
type FileLogger struct {
	path string
	out  *lumberjack.Logger
	mu   sync.RWMutex
}

// NewFileLogger opens the audit log at path, creating its directory.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	// lumberjack opens lazily; fail here instead of on the first run.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	f.Close()

	return &FileLogger{
		path: path,
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   rotation.Compress,
			LocalTime:  true,
		},
	}, nil
}

// Log appends event as one line.
func (l *FileLogger) Log(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Rotate starts a new log file, keeping the current one as a backup.
func (l *FileLogger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Rotate()
}

// Query returns the events of the current log file that match filter,
// oldest first. Malformed lines are skipped.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []*Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []*Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		event := &Event{}
		if err := json.Unmarshal(scanner.Bytes(), event); err != nil {
			util.Warnf("audit: skipping malformed log entry at line %d: %v", lineNum, err)
			continue
		}
		if filter.Matches(event) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return filter.page(events), nil
}

// Close closes the current log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}

// Matches reports whether event satisfies every criterion set in f.
func (f Filter) Matches(event *Event) bool {
	switch {
	case f.Device != "" && event.Device != f.Device,
		f.User != "" && event.User != f.User,
		f.State != "" && event.State != f.State,
		!f.StartTime.IsZero() && event.Timestamp.Before(f.StartTime),
		!f.EndTime.IsZero() && event.Timestamp.After(f.EndTime),
		f.SuccessOnly && !event.Success,
		f.FailureOnly && event.Success:
		return false
	}
	return true
}

func (f Filter) page(events []*Event) []*Event {
	offset := max(f.Offset, 0)
	if offset >= len(events) {
		return []*Event{}
	}
	events = events[offset:]
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}

// defaultLogger holds a loggerRef so Store always sees one concrete type.
var defaultLogger atomic.Value

type loggerRef struct{ Logger }

// SetDefaultLogger installs the logger used by Log and Query. nil
// disables auditing.
func SetDefaultLogger(logger Logger) {
	defaultLogger.Store(loggerRef{logger})
}

func current() Logger {
	ref, _ := defaultLogger.Load().(loggerRef)
	return ref.Logger
}

// Log records event with the default logger, if any.
func Log(event *Event) error {
	if l := current(); l != nil {
		return l.Log(event)
	}
	return nil
}

// Query searches the default logger; without one it finds nothing.
func Query(filter Filter) ([]*Event, error) {
	if l := current(); l != nil {
		return l.Query(filter)
	}
	return []*Event{}, nil
}
