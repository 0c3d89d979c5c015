package events

import "github.com/jwulff/streamscribe/internal/debuglog"

// Handler receives routed events. Each method corresponds to exactly one
// Event type.
type Handler interface {
	OnConnect(Connect)
	OnDisconnect(Disconnect)
	OnConnectError(ConnectError)
	OnReconnectFailed(ReconnectFailed)
	OnClientsUpdate(ClientsUpdate)
	OnLivestreamConnected(LivestreamConnected)
	OnLivestreamInfo(LivestreamInfo)
	OnLivestreamError(LivestreamError)
	OnTranscription(Transcription)
	OnTopicChange(TopicChange)
	OnMajorTopicChange(MajorTopicChange)
	OnDebugLog(DebugLog)
	OnPong(Pong)
}

// Router decodes frames, records them in the trace log and calls the
// matching handler method. It holds no business logic.
type Router struct {
	trace *debuglog.Log
}

// NewRouter returns a router that records every frame in trace.
func NewRouter(trace *debuglog.Log) *Router {
	return &Router{trace: trace}
}

// Dispatch decodes and routes one frame synchronously.
func (r *Router) Dispatch(h Handler, name string, args []any) Event {
	ev := Decode(name, args)
	r.Route(h, ev)
	return ev
}

// Route records ev once in the trace log and hands it to h. Unknown and
// malformed events stop at the trace log.
func (r *Router) Route(h Handler, ev Event) {
	switch e := ev.(type) {
	case Connect:
		r.received(e)
		h.OnConnect(e)
	case Disconnect:
		r.received(e)
		h.OnDisconnect(e)
	case ConnectError:
		r.received(e)
		h.OnConnectError(e)
	case ReconnectFailed:
		r.received(e)
		h.OnReconnectFailed(e)
	case ClientsUpdate:
		r.received(e)
		h.OnClientsUpdate(e)
	case LivestreamConnected:
		r.received(e)
		h.OnLivestreamConnected(e)
	case LivestreamInfo:
		r.received(e)
		h.OnLivestreamInfo(e)
	case LivestreamError:
		r.received(e)
		h.OnLivestreamError(e)
	case Transcription:
		r.received(e)
		h.OnTranscription(e)
	case TopicChange:
		r.received(e)
		h.OnTopicChange(e)
	case MajorTopicChange:
		r.received(e)
		h.OnMajorTopicChange(e)
	case DebugLog:
		// The payload is the trace record.
		h.OnDebugLog(e)
	case Pong:
		r.received(e)
		h.OnPong(e)
	case Malformed:
		r.trace.Errorf("Malformed %s event: %v", e.Event, e.Err)
	case Unknown:
		r.trace.Errorf("Unrecognized event: %s", e.Event)
	default:
		r.trace.Errorf("Unrecognized event: %s", ev.Name())
	}
}

func (r *Router) received(ev Event) {
	r.trace.Infof("← %s", ev.Name())
}
