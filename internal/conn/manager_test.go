package conn

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jwulff/streamscribe/internal/events"
	"github.com/jwulff/streamscribe/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	event   string
	payload map[string]any
}

type fakeSocket struct {
	emits   []emitted
	closed  bool
	emitErr error
}

func (s *fakeSocket) Emit(event string, payload map[string]any) error {
	if s.emitErr != nil {
		return s.emitErr
	}
	s.emits = append(s.emits, emitted{event: event, payload: payload})
	return nil
}

func (s *fakeSocket) Close() error {
	s.closed = true
	return nil
}

type fakeDialer struct {
	sockets  []*fakeSocket
	delivers []func(string, []any)
	err      error
}

func (d *fakeDialer) Dial(endpoint string, opts Options, deliver func(string, []any)) (Socket, error) {
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeSocket{}
	d.sockets = append(d.sockets, s)
	d.delivers = append(d.delivers, deliver)
	return s, nil
}

func (d *fakeDialer) last() *fakeSocket { return d.sockets[len(d.sockets)-1] }

func newTestManager(t *testing.T, maxAttempts int) (*Manager, *fakeDialer, *session.ClientSession) {
	t.Helper()
	d := &fakeDialer{}
	sess := session.New()
	m := NewManager(d, Options{MaxReconnectAttempts: maxAttempts}, sess)
	t.Cleanup(m.Close)
	return m, d, sess
}

func next(t *testing.T, m *Manager) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f, err := m.Next(ctx)
	require.NoError(t, err)
	return f
}

func TestConnectTransitionsToConnecting(t *testing.T) {
	m, d, _ := newTestManager(t, 3)
	var changes []Change
	m.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, m.Connect("http://localhost:5000"))
	assert.Equal(t, session.Connecting, m.State())
	require.Len(t, d.sockets, 1)

	assert.True(t, m.MarkConnected())
	assert.Equal(t, session.Connected, m.State())
	require.Len(t, changes, 2)
	assert.Equal(t, Change{From: session.Connecting, To: session.Connected}, changes[1])
}

func TestConnectWhileConnectedIsNoop(t *testing.T) {
	m, d, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))
	m.MarkConnected()

	require.NoError(t, m.Connect("http://localhost:5000"))
	assert.Len(t, d.sockets, 1)
	assert.Equal(t, session.Connected, m.State())
	assert.False(t, d.last().closed)
}

func TestConnectEmptyEndpoint(t *testing.T) {
	m, d, _ := newTestManager(t, 3)
	assert.ErrorIs(t, m.Connect("  "), ErrEmptyEndpoint)
	assert.Empty(t, d.sockets)
	assert.Equal(t, session.Disconnected, m.State())
}

func TestDialErrorSurfacesAsErrored(t *testing.T) {
	m, d, _ := newTestManager(t, 3)
	d.err = errors.New("bad url")

	err := m.Connect("::nope")
	require.Error(t, err)
	state, cause := m.sess.Connection()
	assert.Equal(t, session.Errored, state)
	assert.Equal(t, "bad url", cause)

	d.err = nil
	require.NoError(t, m.Connect("http://localhost:5000"), "retry from Errored")
	assert.Equal(t, session.Connecting, m.State())
}

func TestDuplicateConnectSuppressed(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	var changes int
	m.Subscribe(func(Change) { changes++ })
	require.NoError(t, m.Connect("http://localhost:5000"))

	assert.True(t, m.MarkConnected())
	assert.False(t, m.MarkConnected())
	assert.False(t, m.MarkConnected())
	assert.Equal(t, 2, changes)
}

func TestFailuresExhaustAttempts(t *testing.T) {
	m, _, _ := newTestManager(t, 2)
	require.NoError(t, m.Connect("http://localhost:5000"))

	m.MarkFailed("timeout")
	assert.Equal(t, session.Connecting, m.State())
	m.MarkFailed("timeout")
	assert.Equal(t, session.Connecting, m.State())
	m.MarkFailed("timeout")
	state, cause := m.sess.Connection()
	assert.Equal(t, session.Errored, state)
	assert.Equal(t, "timeout", cause)
}

func TestConnectErrorWithNoRetries(t *testing.T) {
	m, _, sess := newTestManager(t, 0)
	require.NoError(t, m.Connect("http://localhost:5000"))

	m.MarkFailed("timeout")
	assert.Equal(t, session.Errored, m.State())
	assert.Equal(t, session.Inactive, sess.Stream())
}

func TestDisconnectCascadesStreamInactive(t *testing.T) {
	m, _, sess := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))
	m.MarkConnected()
	require.True(t, sess.SetStream(session.Active))

	m.MarkDisconnected("transport close")
	assert.Equal(t, session.Disconnected, m.State())
	assert.Equal(t, session.Inactive, sess.Stream())
}

func TestDroppedConnectionExhaustsAttempts(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))
	m.MarkConnected()
	m.MarkDisconnected("transport close")

	m.MarkFailed("timeout")
	m.MarkFailed("timeout")
	assert.Equal(t, session.Connecting, m.State())
	m.MarkFailed("timeout")
	state, cause := m.sess.Connection()
	assert.Equal(t, session.Errored, state)
	assert.Equal(t, "timeout", cause)
}

func TestReconnectAfterDropResetsFailures(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))
	m.MarkConnected()
	m.MarkDisconnected("transport close")
	m.MarkFailed("timeout")
	require.True(t, m.MarkConnected())
	assert.Equal(t, 0, m.Failures())

	m.MarkDisconnected("ping timeout")
	assert.Equal(t, 1, m.Failures())
}

func TestMarkExhausted(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))
	m.MarkConnected()

	m.MarkExhausted()
	assert.Equal(t, session.Connected, m.State(), "ignored while connected")

	m.MarkDisconnected("transport close")
	m.MarkFailed("timeout")
	m.MarkExhausted()
	state, cause := m.sess.Connection()
	assert.Equal(t, session.Errored, state)
	assert.Equal(t, "timeout", cause)
}

func TestMarkExhaustedWithoutCause(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))

	m.MarkExhausted()
	state, cause := m.sess.Connection()
	assert.Equal(t, session.Errored, state)
	assert.Equal(t, "reconnection attempts exhausted", cause)
}

func TestUserDisconnectDropsStaleFrames(t *testing.T) {
	m, d, sess := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://localhost:5000"))
	m.MarkConnected()
	sess.SetStream(session.Active)

	d.delivers[0](events.NameTranscription, []any{map[string]any{"text": "late"}})
	m.Disconnect()

	assert.True(t, d.sockets[0].closed)
	assert.Equal(t, session.Disconnected, m.State())
	assert.Equal(t, session.Inactive, sess.Stream())
	assert.False(t, m.Accept(next(t, m)), "frame from closed transport")
}

func TestReconnectNewGeneration(t *testing.T) {
	m, d, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://a"))
	m.Disconnect()
	require.NoError(t, m.Connect("http://a"))

	d.delivers[0](events.NameConnect, nil)
	d.delivers[1](events.NameConnect, nil)

	assert.False(t, m.Accept(next(t, m)))
	assert.True(t, m.Accept(next(t, m)))
}

func TestFramesKeepDeliveryOrder(t *testing.T) {
	m, d, _ := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://a"))
	for _, name := range []string{"a", "b", "c"} {
		d.delivers[0](name, nil)
	}
	assert.Equal(t, "a", next(t, m).Name)
	assert.Equal(t, "b", next(t, m).Name)
	assert.Equal(t, "c", next(t, m).Name)
}

func TestNextAfterClose(t *testing.T) {
	m, _, _ := newTestManager(t, 3)
	m.Close()
	_, err := m.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConnectLivestreamValidation(t *testing.T) {
	m, d, _ := newTestManager(t, 3)

	assert.ErrorIs(t, m.ConnectLivestream("https://youtu.be/x", ""), ErrNotConnected)

	require.NoError(t, m.Connect("http://a"))
	m.MarkConnected()
	assert.ErrorIs(t, m.ConnectLivestream("   ", ""), ErrEmptyURL)
	assert.Empty(t, d.last().emits)

	require.NoError(t, m.ConnectLivestream(" https://youtu.be/x ", "sk-1"))
	require.Len(t, d.last().emits, 1)
	e := d.last().emits[0]
	assert.Equal(t, events.NameConnectLivestream, e.event)
	assert.Equal(t, "https://youtu.be/x", e.payload["url"])
	assert.Equal(t, "sk-1", e.payload["apiKey"])
}

func TestConnectLivestreamResetsStreamUntilAck(t *testing.T) {
	m, _, sess := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://a"))
	m.MarkConnected()
	sess.SetStream(session.Active)

	require.NoError(t, m.ConnectLivestream("https://youtu.be/next", ""))
	assert.Equal(t, session.Inactive, sess.Stream())
}

func TestStopTranscriptionIsOptimistic(t *testing.T) {
	m, d, sess := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://a"))
	m.MarkConnected()
	sess.SetStream(session.Active)
	d.last().emitErr = errors.New("write failed")

	err := m.StopTranscription()
	require.Error(t, err)
	assert.Equal(t, session.Inactive, sess.Stream(), "inactive before any acknowledgement")
}

func TestStopTranscriptionEmits(t *testing.T) {
	m, d, sess := newTestManager(t, 3)
	require.NoError(t, m.Connect("http://a"))
	m.MarkConnected()
	sess.SetStream(session.Active)

	require.NoError(t, m.StopTranscription())
	assert.Equal(t, session.Inactive, sess.Stream())
	require.Len(t, d.last().emits, 1)
	assert.Equal(t, events.NameStopTranscription, d.last().emits[0].event)
}

// A stream can only be active on a connected channel, so any connect_error
// must find it inactive, whatever order the transport delivers in.
func TestConnectErrorNeverSeesActiveStream(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{
		events.NameConnect, events.NameDisconnect, events.NameConnectError,
		events.NameLivestreamConnected, events.NameLivestreamInfo,
	}

	for run := 0; run < 200; run++ {
		m, _, sess := newTestManager(t, rng.Intn(4))
		require.NoError(t, m.Connect("http://a"))

		for step := 0; step < 50; step++ {
			switch names[rng.Intn(len(names))] {
			case events.NameConnect:
				m.MarkConnected()
			case events.NameDisconnect:
				m.MarkDisconnected("transport close")
			case events.NameConnectError:
				if m.State() != session.Connected {
					require.Equal(t, session.Inactive, sess.Stream(), "run %d step %d", run, step)
				}
				m.MarkFailed("timeout")
				require.Equal(t, session.Inactive, sess.Stream())
			default:
				sess.SetStream(session.Active)
			}
			if sess.Stream() == session.Active {
				require.Equal(t, session.Connected, m.State())
			}
		}
	}
}
