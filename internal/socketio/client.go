// Package socketio adapts the Socket.IO client to the conn.Dialer port.
package socketio

import (
	"fmt"
	"sync"

	"github.com/jwulff/streamscribe/internal/conn"
	"github.com/jwulff/streamscribe/internal/events"
	"github.com/jwulff/streamscribe/internal/log"

	socket "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// Dialer opens Socket.IO connections.
type Dialer struct {
	// Path is the Socket.IO endpoint path. Empty means the library default.
	Path string
}

// NewDialer returns a Dialer using the default Socket.IO path.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Client is one Socket.IO connection.
type Client struct {
	mu     sync.Mutex
	socket *socket.Socket
}

// Dial connects to endpoint. Lifecycle notifications and server events are
// passed to deliver in arrival order.
func (d *Dialer) Dial(endpoint string, opts conn.Options, deliver func(name string, args []any)) (conn.Socket, error) {
	o := socket.DefaultOptions()
	if d.Path != "" {
		o.SetPath(d.Path)
	}
	o.SetTransports(types.NewSet(socket.WebSocket, socket.Polling))
	o.SetForceNew(true)
	o.SetAutoConnect(false)
	o.SetReconnection(opts.MaxReconnectAttempts > 0)
	o.SetReconnectionAttempts(float64(opts.MaxReconnectAttempts))
	o.SetReconnectionDelay(float64(opts.ReconnectDelay.Milliseconds()))
	if opts.ConnectTimeout > 0 {
		o.SetTimeout(opts.ConnectTimeout)
	}

	log.Debugf("socket.io dial %s (attempts=%d delay=%s timeout=%s)",
		endpoint, opts.MaxReconnectAttempts, opts.ReconnectDelay, opts.ConnectTimeout)

	sock, err := socket.Connect(endpoint, o)
	if err != nil {
		return nil, fmt.Errorf("socket.io connect: %w", err)
	}

	// Lifecycle events are reserved and never reach OnAny.
	sock.On(types.EventName(events.NameConnect), func(args ...any) {
		deliver(events.NameConnect, nil)
	})
	sock.On(types.EventName(events.NameDisconnect), func(args ...any) {
		deliver(events.NameDisconnect, args)
	})
	sock.On(types.EventName(events.NameConnectError), func(args ...any) {
		deliver(events.NameConnectError, args)
	})
	// The manager, not the socket, reports that retries ran out.
	sock.Io().On(types.EventName(events.NameReconnectFailed), func(args ...any) {
		deliver(events.NameReconnectFailed, nil)
	})
	sock.OnAny(func(args ...any) {
		if len(args) == 0 {
			return
		}
		deliver(eventName(args[0]), args[1:])
	})
	sock.Connect()

	return &Client{socket: sock}, nil
}

// Emit sends an event to the server.
func (c *Client) Emit(event string, payload map[string]any) error {
	c.mu.Lock()
	sock := c.socket
	c.mu.Unlock()

	if sock == nil {
		return conn.ErrNotConnected
	}
	if err := sock.Emit(event, payload); err != nil {
		return fmt.Errorf("socket.io emit %s: %w", event, err)
	}
	return nil
}

// Close disconnects and stops any pending reconnection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.socket != nil {
		c.socket.Disconnect()
		c.socket = nil
	}
	return nil
}

func eventName(v any) string {
	switch n := v.(type) {
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}
