package app

import (
	"github.com/jwulff/streamscribe/internal/archive"
	"github.com/jwulff/streamscribe/internal/debuglog"
	"github.com/jwulff/streamscribe/internal/events"
	"github.com/jwulff/streamscribe/internal/log"
	"github.com/jwulff/streamscribe/internal/session"
)

// The Model is the router's handler; each method runs inside Update.
var _ events.Handler = (*Model)(nil)

func (m *Model) OnConnect(events.Connect) {
	if !m.mgr.MarkConnected() {
		log.Debugf("duplicate connect suppressed (gen %d)", m.mgr.Gen())
	}
}

func (m *Model) OnDisconnect(e events.Disconnect) {
	m.mgr.MarkDisconnected(e.Reason)
}

func (m *Model) OnConnectError(e events.ConnectError) {
	m.mgr.MarkFailed(e.Message)
}

func (m *Model) OnReconnectFailed(events.ReconnectFailed) {
	m.mgr.MarkExhausted()
}

func (m *Model) OnClientsUpdate(e events.ClientsUpdate) {
	m.sess.Viewers = string(e.Count)
}

func (m *Model) OnLivestreamConnected(e events.LivestreamConnected) {
	m.sess.Debug.Successf("Livestream connected successfully")
	m.sess.SetStream(session.Active)
	if e.Viewers != "" {
		m.sess.Viewers = string(e.Viewers)
	}
}

func (m *Model) OnLivestreamInfo(e events.LivestreamInfo) {
	m.sess.Info = &session.StreamInfo{
		Title:   e.Title,
		Channel: e.Channel,
		Viewers: string(e.Viewers),
	}
	m.sess.SetStream(session.Active)
}

func (m *Model) OnLivestreamError(e events.LivestreamError) {
	m.sess.SetStream(session.Inactive)
	m.sess.Debug.Errorf("Error: %s", e.Message)
	m.pending = append(m.pending, m.showTransientError(e.Message))
}

func (m *Model) OnTranscription(e events.Transcription) {
	entry := m.sess.Transcript.Append(e.Timestamp, e.Text)
	if m.transcriptLive {
		m.scrollToBottom()
	}
	m.archiveEntry(archive.KindTranscript, entry.Timestamp, entry.Text)
}

func (m *Model) OnTopicChange(e events.TopicChange) {
	entry := m.sess.Topics.AddFine(e.Timestamp, e.Topic)
	m.archiveEntry(archive.KindFine, entry.Stamp, entry.Topic)
}

func (m *Model) OnMajorTopicChange(e events.MajorTopicChange) {
	entry := m.sess.Topics.AddMajor(e.Interval, e.Topic)
	m.archiveEntry(archive.KindMajor, entry.Stamp, entry.Topic)
}

func (m *Model) OnDebugLog(e events.DebugLog) {
	m.sess.Debug.Add(debuglog.ParseSeverity(e.Type), e.Message)
}

func (m *Model) OnPong(e events.Pong) {
	m.sess.Debug.Successf("Pong: %s", e.Message)
}

func (m *Model) archiveEntry(kind archive.Kind, stamp, text string) {
	if m.rec == nil {
		return
	}
	m.pending = append(m.pending, m.rec.record(kind, stamp, text))
}
