package app

import (
	"time"

	"github.com/jwulff/streamscribe/internal/archive"

	tea "github.com/charmbracelet/bubbletea"
)

// recorder numbers archived entries per kind in receipt order.
type recorder struct {
	store     Archiver
	sessionID string
	seq       map[archive.Kind]int
}

func newRecorder(store Archiver, sessionID string) *recorder {
	return &recorder{
		store:     store,
		sessionID: sessionID,
		seq:       make(map[archive.Kind]int),
	}
}

// record assigns the next sequence number and returns a command that writes
// the entry off the event loop.
func (r *recorder) record(kind archive.Kind, stamp, text string) tea.Cmd {
	e := archive.Entry{
		SessionID:      r.sessionID,
		Kind:           kind,
		Stamp:          stamp,
		Text:           text,
		SequenceNumber: r.seq[kind],
		CreatedAt:      time.Now(),
	}
	r.seq[kind]++
	return func() tea.Msg {
		if err := r.store.SaveEntry(e); err != nil {
			return ArchiveErrorMsg{Err: err}
		}
		return nil
	}
}
