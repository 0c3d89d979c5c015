// Package archive keeps a local SQLite record of received transcript and topic entries.
package archive

import "time"

// Kind identifies which log an entry came from.
type Kind string

const (
	KindTranscript Kind = "transcript"
	KindFine       Kind = "fine"
	KindMajor      Kind = "major"
)

// Session represents one dashboard run.
type Session struct {
	ID         string
	ServerURL  string
	StartedAt  time.Time
	EntryCount int
}

// Entry is one archived line: transcript text or a topic.
type Entry struct {
	SessionID      string
	Kind           Kind
	Stamp          string
	Text           string
	SequenceNumber int
	CreatedAt      time.Time
}
