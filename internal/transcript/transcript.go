// Package transcript accumulates finalized transcript lines received from the
// transcription service along with the plain-text buffer used for export.
package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholder is shown in place of the transcript while no entries exist.
const Placeholder = "Waiting for transcription..."

// ErrEmpty is returned by Text when there is nothing to export.
var ErrEmpty = errors.New("no transcription")

// Entry is one transcript line. Entries are never modified after Append.
type Entry struct {
	Timestamp string
	Text      string
}

// Accumulator owns the ordered transcript log and its export buffer.
// It is not safe for concurrent use; the dashboard mutates it from its
// single event loop.
type Accumulator struct {
	entries []Entry
	full    strings.Builder
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Append normalizes text, records the entry and extends the export buffer.
// Duplicates are kept; the producer owns ordering.
func (a *Accumulator) Append(timestamp, text string) Entry {
	e := Entry{Timestamp: timestamp, Text: Punctuate(text)}
	a.entries = append(a.entries, e)
	fmt.Fprintf(&a.full, "[%s] %s\n", e.Timestamp, e.Text)
	return e
}

// Clear drops every entry and empties the export buffer.
func (a *Accumulator) Clear() {
	a.entries = nil
	a.full.Reset()
}

// Entries returns the entries in receipt order. The slice must not be modified.
func (a *Accumulator) Entries() []Entry {
	return a.entries
}

// Len returns the number of entries.
func (a *Accumulator) Len() int {
	return len(a.entries)
}

// Empty reports whether the view should show Placeholder.
func (a *Accumulator) Empty() bool {
	return len(a.entries) == 0
}

// Text returns the export buffer, or ErrEmpty if nothing has been received.
func (a *Accumulator) Text() (string, error) {
	if a.full.Len() == 0 {
		return "", ErrEmpty
	}
	return a.full.String(), nil
}

// Punctuate appends a period unless text already ends in '.', '!' or '?'.
func Punctuate(text string) string {
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return text
	}
	return text + "."
}
