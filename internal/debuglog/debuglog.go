// Package debuglog records every raw event and operational message the
// dashboard observes, tagged with a client-side receipt time.
package debuglog

import (
	"fmt"
	"time"
)

// Severity tags a record for display.
type Severity int

const (
	Info Severity = iota
	Success
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// ParseSeverity maps the optional "type" field of a server debug_log payload.
// Unknown or empty values are Info.
func ParseSeverity(raw string) Severity {
	switch raw {
	case "success":
		return Success
	case "error":
		return Error
	default:
		return Info
	}
}

// TimeFormat is the layout of Record.Timestamp.
const TimeFormat = "15:04:05"

// Record is one line of the trace.
type Record struct {
	Timestamp string
	Message   string
	Severity  Severity
}

// Log is an append-only trace. Hiding it does not stop accumulation.
type Log struct {
	records []Record
	visible bool
	now     func() time.Time
	mirror  func(Record)
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the wall clock used for receipt timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithMirror forwards every appended record to fn, e.g. a file logger.
func WithMirror(fn func(Record)) Option {
	return func(l *Log) { l.mirror = fn }
}

// New returns an empty, hidden log.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add appends a record stamped with the current time.
func (l *Log) Add(sev Severity, message string) Record {
	r := Record{
		Timestamp: l.now().Format(TimeFormat),
		Message:   message,
		Severity:  sev,
	}
	l.records = append(l.records, r)
	if l.mirror != nil {
		l.mirror(r)
	}
	return r
}

// Infof appends an Info record.
func (l *Log) Infof(format string, args ...any) Record {
	return l.Add(Info, fmt.Sprintf(format, args...))
}

// Successf appends a Success record.
func (l *Log) Successf(format string, args ...any) Record {
	return l.Add(Success, fmt.Sprintf(format, args...))
}

// Errorf appends an Error record.
func (l *Log) Errorf(format string, args ...any) Record {
	return l.Add(Error, fmt.Sprintf(format, args...))
}

// Clear wipes the log and seeds a single "cleared" record.
func (l *Log) Clear() {
	l.records = nil
	l.Add(Info, "Debug console cleared")
}

// Records returns the trace in insertion order. The slice must not be modified.
func (l *Log) Records() []Record { return l.records }

// Len returns the number of records.
func (l *Log) Len() int { return len(l.records) }

// Visible reports whether the debug panel is shown.
func (l *Log) Visible() bool { return l.visible }

// Toggle flips visibility and returns the new value. Opening the panel is
// itself recorded.
func (l *Log) Toggle() bool {
	l.visible = !l.visible
	if l.visible {
		l.Add(Info, "Debug console opened")
	}
	return l.visible
}

// Tail returns at most n of the most recent records.
func (l *Log) Tail(n int) []Record {
	if n <= 0 || n >= len(l.records) {
		return l.records
	}
	return l.records[len(l.records)-n:]
}
