// Package session holds the process-wide client state: connection and stream
// lifecycle plus the accumulators fed by the event stream.
package session

import (
	"fmt"

	"github.com/jwulff/streamscribe/internal/debuglog"
	"github.com/jwulff/streamscribe/internal/topics"
	"github.com/jwulff/streamscribe/internal/transcript"
)

// ConnectionState is the lifecycle of the event channel.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Errored
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Errored:
		return "Error"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// StreamState reports whether the upstream livestream is being transcribed.
type StreamState int

const (
	Inactive StreamState = iota
	Active
)

func (s StreamState) String() string {
	if s == Active {
		return "Active"
	}
	return "Inactive"
}

// StreamInfo describes the livestream being transcribed.
type StreamInfo struct {
	Title   string
	Channel string
	Viewers string
}

// ClientSession is the single owner of all mutable client state. Connection
// fields are written only by the connection manager; accumulators only by
// their event handlers.
type ClientSession struct {
	conn      ConnectionState
	connCause string
	stream    StreamState

	Viewers string
	Info    *StreamInfo
	URL     string

	Transcript *transcript.Accumulator
	Topics     *topics.Tracker
	Debug      *debuglog.Log
}

// New creates a session in the initial state.
func New(opts ...debuglog.Option) *ClientSession {
	s := &ClientSession{
		Viewers:    "0",
		Transcript: transcript.New(),
		Topics:     topics.NewTracker(),
		Debug:      debuglog.New(opts...),
	}
	s.Debug.Infof("Livestream transcriber initialized")
	return s
}

// Reset clears every accumulator and the stream details. Connection state is
// left to the connection manager.
func (s *ClientSession) Reset() {
	s.Transcript.Clear()
	s.Topics.Clear(topics.Fine)
	s.Topics.Clear(topics.Major)
	s.Debug.Clear()
	s.Viewers = "0"
	s.Info = nil
}

// Connection returns the connection state and the cause of the last failure.
func (s *ClientSession) Connection() (ConnectionState, string) {
	return s.conn, s.connCause
}

// SetConnection records a connection transition. Leaving Connected forces
// the stream inactive.
func (s *ClientSession) SetConnection(state ConnectionState, cause string) {
	s.conn = state
	s.connCause = cause
	if state != Connected {
		s.stream = Inactive
	}
}

// Stream returns the stream state.
func (s *ClientSession) Stream() StreamState { return s.stream }

// SetStream changes the stream state. Activation is refused unless the
// channel is connected; the return value reports whether the state changed.
func (s *ClientSession) SetStream(state StreamState) bool {
	if state == Active && s.conn != Connected {
		return false
	}
	if s.stream == state {
		return false
	}
	s.stream = state
	return true
}
