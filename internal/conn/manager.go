// Package conn owns the event channel to the transcription server: its
// lifecycle state, the ordered frame queue fed by the transport, and the
// outbound requests.
package conn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwulff/streamscribe/internal/events"
	"github.com/jwulff/streamscribe/internal/session"
)

var (
	// ErrNotConnected is returned by outbound requests while the channel is down.
	ErrNotConnected = errors.New("not connected to server")
	// ErrEmptyURL is returned by ConnectLivestream for a blank URL.
	ErrEmptyURL = errors.New("livestream URL is empty")
	// ErrEmptyEndpoint is returned by Connect for a blank server URL.
	ErrEmptyEndpoint = errors.New("server URL is empty")
	// ErrClosed is returned by Next after Close.
	ErrClosed = errors.New("connection manager closed")
)

// Options configures the transport's connection policy.
type Options struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	ConnectTimeout       time.Duration
}

// Frame is one event delivered by the transport, tagged with the connection
// generation that produced it.
type Frame struct {
	Gen  uint64
	Name string
	Args []any
}

// Socket is an open transport.
type Socket interface {
	Emit(event string, payload map[string]any) error
	Close() error
}

// Dialer opens transports. deliver is called from transport goroutines, in
// the order the transport received events.
type Dialer interface {
	Dial(endpoint string, opts Options, deliver func(name string, args []any)) (Socket, error)
}

// Change is a connection state transition.
type Change struct {
	From  session.ConnectionState
	To    session.ConnectionState
	Cause string
}

const frameBuffer = 256

// Manager reflects transport state into the session. Apart from frame
// delivery, every method must be called from the single event loop.
type Manager struct {
	dialer Dialer
	opts   Options
	sess   *session.ClientSession

	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once

	endpoint string
	sock     Socket
	gen      uint64
	failures int
	subs     []func(Change)
}

// NewManager returns a disconnected manager.
func NewManager(dialer Dialer, opts Options, sess *session.ClientSession) *Manager {
	return &Manager{
		dialer: dialer,
		opts:   opts,
		sess:   sess,
		frames: make(chan Frame, frameBuffer),
		done:   make(chan struct{}),
	}
}

// Subscribe registers fn for every state change.
func (m *Manager) Subscribe(fn func(Change)) {
	m.subs = append(m.subs, fn)
}

// State returns the current connection state.
func (m *Manager) State() session.ConnectionState {
	state, _ := m.sess.Connection()
	return state
}

// Endpoint returns the server URL of the last Connect.
func (m *Manager) Endpoint() string { return m.endpoint }

// Gen returns the current connection generation.
func (m *Manager) Gen() uint64 { return m.gen }

// Connect opens the channel to endpoint. It is a no-op while connected or
// connecting to the same endpoint.
func (m *Manager) Connect(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ErrEmptyEndpoint
	}
	state := m.State()
	if (state == session.Connected || state == session.Connecting) && endpoint == m.endpoint && m.sock != nil {
		return nil
	}

	m.closeSocket()
	m.gen++
	m.failures = 0
	m.endpoint = endpoint
	m.setState(session.Connecting, "")

	gen := m.gen
	sock, err := m.dialer.Dial(endpoint, m.opts, func(name string, args []any) {
		select {
		case m.frames <- Frame{Gen: gen, Name: name, Args: args}:
		case <-m.done:
		}
	})
	if err != nil {
		m.setState(session.Errored, err.Error())
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	m.sock = sock
	return nil
}

// Disconnect closes the channel and cancels pending reconnection. Frames
// already queued from the closed transport are discarded.
func (m *Manager) Disconnect() {
	m.closeSocket()
	m.gen++
	m.setState(session.Disconnected, "")
}

// Close disconnects and releases Next.
func (m *Manager) Close() {
	m.Disconnect()
	m.closeOnce.Do(func() { close(m.done) })
}

// Next blocks until the transport delivers a frame.
func (m *Manager) Next(ctx context.Context) (Frame, error) {
	select {
	case f := <-m.frames:
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-m.done:
		return Frame{}, ErrClosed
	}
}

// Accept reports whether f belongs to the current transport.
func (m *Manager) Accept(f Frame) bool {
	return f.Gen == m.gen && m.sock != nil
}

// MarkConnected records a transport connect. It returns false when the
// channel was already connected, so repeated notifications can be dropped.
func (m *Manager) MarkConnected() bool {
	if m.State() == session.Connected {
		return false
	}
	m.failures = 0
	m.setState(session.Connected, "")
	return true
}

// MarkDisconnected records a transport disconnect. A dropped connection
// spends the initial attempt: the transport retries at most
// MaxReconnectAttempts more times before giving up.
func (m *Manager) MarkDisconnected(reason string) {
	if m.State() == session.Connected && m.opts.MaxReconnectAttempts > 0 {
		m.failures = 1
	}
	m.setState(session.Disconnected, reason)
}

// MarkFailed records a failed connection attempt. The channel stays
// Connecting while the transport still has attempts left.
func (m *Manager) MarkFailed(cause string) {
	m.failures++
	if m.failures > m.opts.MaxReconnectAttempts {
		m.setState(session.Errored, cause)
		return
	}
	m.setState(session.Connecting, cause)
}

// MarkExhausted records that the transport stopped reconnecting. The last
// failure cause is kept.
func (m *Manager) MarkExhausted() {
	state, cause := m.sess.Connection()
	if state == session.Connected || state == session.Errored {
		return
	}
	if cause == "" {
		cause = "reconnection attempts exhausted"
	}
	m.setState(session.Errored, cause)
}

// Failures returns the failed attempts since the last successful connect.
func (m *Manager) Failures() int { return m.failures }

// ConnectLivestream asks the server to start transcribing url. The stream
// stays inactive until the server acknowledges.
func (m *Manager) ConnectLivestream(url, apiKey string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyURL
	}
	if m.State() != session.Connected || m.sock == nil {
		return ErrNotConnected
	}
	m.sess.SetStream(session.Inactive)
	m.sess.URL = url
	payload := events.ConnectLivestreamPayload{URL: url, APIKey: apiKey}
	if err := m.sock.Emit(events.NameConnectLivestream, payload.Map()); err != nil {
		return fmt.Errorf("emit %s: %w", events.NameConnectLivestream, err)
	}
	return nil
}

// StopTranscription marks the stream inactive immediately and notifies the
// server.
func (m *Manager) StopTranscription() error {
	m.sess.SetStream(session.Inactive)
	if m.State() != session.Connected || m.sock == nil {
		return ErrNotConnected
	}
	if err := m.sock.Emit(events.NameStopTranscription, map[string]any{}); err != nil {
		return fmt.Errorf("emit %s: %w", events.NameStopTranscription, err)
	}
	return nil
}

// Ping sends a ping; the server answers with pong.
func (m *Manager) Ping(message string) error {
	if m.State() != session.Connected || m.sock == nil {
		return ErrNotConnected
	}
	if err := m.sock.Emit(events.NamePing, map[string]any{"message": message}); err != nil {
		return fmt.Errorf("emit %s: %w", events.NamePing, err)
	}
	return nil
}

func (m *Manager) closeSocket() {
	if m.sock != nil {
		m.sock.Close()
		m.sock = nil
	}
}

func (m *Manager) setState(to session.ConnectionState, cause string) {
	from, prevCause := m.sess.Connection()
	if from == to && prevCause == cause {
		return
	}
	m.sess.SetConnection(to, cause)
	ch := Change{From: from, To: to, Cause: cause}
	for _, fn := range m.subs {
		fn(ch)
	}
}
