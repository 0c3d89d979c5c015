// Package events defines the inbound events of the transcription service as a
// closed set of types and routes each one to a typed handler.
package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Inbound event names.
const (
	NameConnect             = "connect"
	NameDisconnect          = "disconnect"
	NameConnectError        = "connect_error"
	NameReconnectFailed     = "reconnect_failed"
	NameClientsUpdate       = "clients_update"
	NameLivestreamConnected = "livestream_connected"
	NameLivestreamInfo      = "livestream_info"
	NameLivestreamError     = "livestream_error"
	NameTranscription       = "transcription"
	NameTopicChange         = "topic_change"
	NameMajorTopicChange    = "major_topic_change"
	NameDebugLog            = "debug_log"
	NamePong                = "pong"
)

// Outbound event names.
const (
	NameConnectLivestream = "connect_livestream"
	NameStopTranscription = "stop_transcription"
	NamePing              = "ping"
)

// ErrMalformedPayload is wrapped by Malformed.Err.
var ErrMalformedPayload = errors.New("malformed payload")

// Event is one inbound message. The set of implementations is closed.
type Event interface {
	Name() string
	isEvent()
}

// Connect is the transport-level connect notification.
type Connect struct{}

// Disconnect is the transport-level disconnect notification.
type Disconnect struct {
	Reason string
}

// ConnectError reports a failed connection attempt.
type ConnectError struct {
	Message string `json:"message"`
}

// ReconnectFailed reports that the transport used up its reconnection
// attempts and stopped retrying.
type ReconnectFailed struct{}

// ClientsUpdate carries the number of dashboards attached to the server.
type ClientsUpdate struct {
	Count Number `json:"count"`
}

// LivestreamConnected acknowledges a connect_livestream request.
type LivestreamConnected struct {
	URL     string `json:"url,omitempty"`
	Status  string `json:"status,omitempty"`
	Viewers Number `json:"viewers,omitempty"`
}

// LivestreamInfo describes the stream once its audio has been resolved.
type LivestreamInfo struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
	Viewers Number `json:"viewers"`
}

// LivestreamError reports that the stream could not be transcribed.
type LivestreamError struct {
	Message string `json:"message"`
}

// Transcription is a finalized transcript chunk.
type Transcription struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// TopicChange is a fine-grained topic annotation.
type TopicChange struct {
	Timestamp string `json:"timestamp"`
	Topic     string `json:"topic"`
}

// MajorTopicChange is an interval-level topic annotation.
type MajorTopicChange struct {
	Interval string `json:"interval"`
	Topic    string `json:"topic"`
}

// DebugLog is a diagnostic message emitted by the server.
type DebugLog struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Pong answers a ping.
type Pong struct {
	Message string `json:"message"`
}

// Unknown is any event whose name is not recognized.
type Unknown struct {
	Event string
	Args  []any
}

// Malformed is a recognized event whose payload could not be decoded.
type Malformed struct {
	Event string
	Err   error
}

func (Connect) Name() string { return NameConnect }
func (Disconnect) Name() string { return NameDisconnect }
func (ConnectError) Name() string { return NameConnectError }
func (ReconnectFailed) Name() string { return NameReconnectFailed }
func (ClientsUpdate) Name() string { return NameClientsUpdate }
func (LivestreamConnected) Name() string { return NameLivestreamConnected }
func (LivestreamInfo) Name() string { return NameLivestreamInfo }
func (LivestreamError) Name() string { return NameLivestreamError }
func (Transcription) Name() string { return NameTranscription }
func (TopicChange) Name() string { return NameTopicChange }
func (MajorTopicChange) Name() string { return NameMajorTopicChange }
func (DebugLog) Name() string { return NameDebugLog }
func (Pong) Name() string { return NamePong }
func (u Unknown) Name() string { return u.Event }
func (m Malformed) Name() string { return m.Event }

func (Connect) isEvent() {}
func (Disconnect) isEvent() {}
func (ConnectError) isEvent() {}
func (ReconnectFailed) isEvent() {}
func (ClientsUpdate) isEvent() {}
func (LivestreamConnected) isEvent() {}
func (LivestreamInfo) isEvent() {}
func (LivestreamError) isEvent() {}
func (Transcription) isEvent() {}
func (TopicChange) isEvent() {}
func (MajorTopicChange) isEvent() {}
func (DebugLog) isEvent() {}
func (Pong) isEvent() {}
func (Unknown) isEvent() {}
func (Malformed) isEvent() {}

// Number accepts a JSON number or string and keeps its text form.
type Number string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(f.String())
	return nil
}

// Int returns the value as an int, or 0 if it is not an integer.
func (n Number) Int() int {
	v, err := strconv.Atoi(string(n))
	if err != nil {
		return 0
	}
	return v
}

// Decode turns a transport frame into an Event. It never fails: unknown
// names become Unknown and undecodable payloads become Malformed.
func Decode(name string, args []any) Event {
	switch name {
	case NameConnect:
		return Connect{}
	case NameDisconnect:
		var reason string
		if len(args) > 0 {
			reason = fmt.Sprint(args[0])
		}
		return Disconnect{Reason: reason}
	case NameConnectError:
		return decodeConnectError(args)
	case NameReconnectFailed:
		return ReconnectFailed{}
	case NameClientsUpdate:
		return decodeInto[ClientsUpdate](name, args)
	case NameLivestreamConnected:
		return decodeInto[LivestreamConnected](name, args)
	case NameLivestreamInfo:
		return decodeInto[LivestreamInfo](name, args)
	case NameLivestreamError:
		return decodeInto[LivestreamError](name, args)
	case NameTranscription:
		return decodeInto[Transcription](name, args)
	case NameTopicChange:
		return decodeInto[TopicChange](name, args)
	case NameMajorTopicChange:
		return decodeInto[MajorTopicChange](name, args)
	case NameDebugLog:
		return decodeInto[DebugLog](name, args)
	case NamePong:
		return decodeInto[Pong](name, args)
	default:
		return Unknown{Event: name, Args: args}
	}
}

// decodeConnectError accepts either an error value or a {message} object.
func decodeConnectError(args []any) Event {
	if len(args) > 0 {
		switch v := args[0].(type) {
		case error:
			return ConnectError{Message: v.Error()}
		case string:
			return ConnectError{Message: v}
		}
	}
	return decodeInto[ConnectError](NameConnectError, args)
}

func decodeInto[T Event](name string, args []any) Event {
	var out T
	if len(args) == 0 || args[0] == nil {
		return Malformed{Event: name, Err: fmt.Errorf("%w: missing payload", ErrMalformedPayload)}
	}
	data, err := json.Marshal(args[0])
	if err != nil {
		return Malformed{Event: name, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Malformed{Event: name, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}
	return out
}

// ConnectLivestreamPayload is sent to request transcription of a stream.
type ConnectLivestreamPayload struct {
	URL    string
	APIKey string
}

// Map returns the wire form. The API key is omitted when empty.
func (p ConnectLivestreamPayload) Map() map[string]any {
	m := map[string]any{"url": p.URL}
	if p.APIKey != "" {
		m["apiKey"] = p.APIKey
	}
	return m
}
