// Package topics tracks topic-change annotations at two granularities: fine
// topics tied to a single timestamp and major topics tied to an interval.
package topics

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Granularity selects one of the two independent topic logs.
type Granularity int

const (
	Fine Granularity = iota
	Major
)

func (g Granularity) String() string {
	switch g {
	case Fine:
		return "fine"
	case Major:
		return "major"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ErrEmptyLog is returned by Export when the requested log has no entries.
var ErrEmptyLog = errors.New("no topics")

// IntervalSeparator splits a major topic interval into start and end.
const IntervalSeparator = "-"

// Entry is a recorded topic change.
type Entry struct {
	// Stamp is the producer value: a timestamp for fine topics, an
	// interval for major topics.
	Stamp string
	// Topic is the display form with its first character capitalized.
	Topic string
	// CopyStamp is the normalized timestamp used in exports.
	CopyStamp string
}

// Line is the export form of the entry.
func (e Entry) Line() string {
	return e.CopyStamp + " " + e.Topic + "\n"
}

// Log is one append-only topic sequence.
type Log struct {
	granularity Granularity
	entries     []Entry
}

// Granularity returns which log this is.
func (l *Log) Granularity() Granularity { return l.granularity }

// Entries returns the entries in insertion order. The slice must not be modified.
func (l *Log) Entries() []Entry { return l.entries }

// Empty reports whether the log has no entries.
func (l *Log) Empty() bool { return len(l.entries) == 0 }

// Placeholder is the view text for an empty log.
func (l *Log) Placeholder() string {
	if l.granularity == Major {
		return "No major topics yet..."
	}
	return "No topics yet..."
}

func (l *Log) add(e Entry) Entry {
	l.entries = append(l.entries, e)
	return e
}

func (l *Log) clear() { l.entries = nil }

func (l *Log) export() (string, error) {
	if len(l.entries) == 0 {
		return "", fmt.Errorf("export %s topics: %w", l.granularity, ErrEmptyLog)
	}
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.Line())
	}
	return b.String(), nil
}

// Tracker holds both topic logs. Operations on one log never touch the other.
type Tracker struct {
	fine  Log
	major Log
}

// NewTracker returns a tracker with two empty logs.
func NewTracker() *Tracker {
	return &Tracker{
		fine:  Log{granularity: Fine},
		major: Log{granularity: Major},
	}
}

// Log returns the log for g.
func (t *Tracker) Log(g Granularity) *Log {
	if g == Major {
		return &t.major
	}
	return &t.fine
}

// AddFine records a fine-grained topic change.
func (t *Tracker) AddFine(timestamp, topic string) Entry {
	return t.fine.add(Entry{
		Stamp:     timestamp,
		Topic:     Capitalize(topic),
		CopyStamp: NormalizeTimestamp(timestamp),
	})
}

// AddMajor records a major topic change covering interval ("start - end").
func (t *Tracker) AddMajor(interval, topic string) Entry {
	return t.major.add(Entry{
		Stamp:     interval,
		Topic:     Capitalize(topic),
		CopyStamp: NormalizeTimestamp(IntervalStart(interval)),
	})
}

// Clear empties the log for g.
func (t *Tracker) Clear(g Granularity) {
	t.Log(g).clear()
}

// Export serializes every entry of the log for g, one per line.
func (t *Tracker) Export(g Granularity) (string, error) {
	return t.Log(g).export()
}

// NormalizeTimestamp collapses "00:MM:SS" to "MM:SS". Any other value is
// returned unchanged.
func NormalizeTimestamp(ts string) string {
	parts := strings.Split(ts, ":")
	if len(parts) == 3 && parts[0] == "00" {
		return parts[1] + ":" + parts[2]
	}
	return ts
}

// IntervalStart returns the trimmed text before the first separator.
func IntervalStart(interval string) string {
	start, _, _ := strings.Cut(interval, IntervalSeparator)
	return strings.TrimSpace(start)
}

// Capitalize upper-cases the first character of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
