package events

import (
	"strings"
	"testing"

	"github.com/jwulff/streamscribe/internal/debuglog"
)

type recordingHandler struct {
	calls []string
}

func (h *recordingHandler) OnConnect(Connect) { h.calls = append(h.calls, NameConnect) }
func (h *recordingHandler) OnDisconnect(Disconnect) { h.calls = append(h.calls, NameDisconnect) }
func (h *recordingHandler) OnConnectError(ConnectError) { h.calls = append(h.calls, NameConnectError) }
func (h *recordingHandler) OnReconnectFailed(ReconnectFailed) {
	h.calls = append(h.calls, NameReconnectFailed)
}
func (h *recordingHandler) OnClientsUpdate(ClientsUpdate) { h.calls = append(h.calls, NameClientsUpdate) }
func (h *recordingHandler) OnLivestreamConnected(LivestreamConnected) { h.calls = append(h.calls, NameLivestreamConnected) }
func (h *recordingHandler) OnLivestreamInfo(LivestreamInfo) { h.calls = append(h.calls, NameLivestreamInfo) }
func (h *recordingHandler) OnLivestreamError(LivestreamError) { h.calls = append(h.calls, NameLivestreamError) }
func (h *recordingHandler) OnTranscription(Transcription) { h.calls = append(h.calls, NameTranscription) }
func (h *recordingHandler) OnTopicChange(TopicChange) { h.calls = append(h.calls, NameTopicChange) }
func (h *recordingHandler) OnMajorTopicChange(MajorTopicChange) { h.calls = append(h.calls, NameMajorTopicChange) }
func (h *recordingHandler) OnDebugLog(DebugLog) { h.calls = append(h.calls, NameDebugLog) }
func (h *recordingHandler) OnPong(Pong) { h.calls = append(h.calls, NamePong) }

func countContaining(records []debuglog.Record, needle string) int {
	n := 0
	for _, r := range records {
		if strings.Contains(r.Message, needle) {
			n++
		}
	}
	return n
}

func TestRouterPreservesOrder(t *testing.T) {
	trace := debuglog.New()
	r := NewRouter(trace)
	h := &recordingHandler{}

	obj := map[string]any{}
	names := []string{
		NameConnect, NameClientsUpdate, NameTranscription, NameTopicChange,
		NameMajorTopicChange, NameTranscription, NameDisconnect, NameReconnectFailed,
	}
	for _, n := range names {
		r.Dispatch(h, n, []any{obj})
	}

	if strings.Join(h.calls, ",") != strings.Join(names, ",") {
		t.Errorf("calls = %v, want %v", h.calls, names)
	}
	if trace.Len() != len(names) {
		t.Errorf("trace records = %d, want %d", trace.Len(), len(names))
	}
}

func TestRouterUnknownEventTracedOnce(t *testing.T) {
	trace := debuglog.New()
	r := NewRouter(trace)
	h := &recordingHandler{}

	r.Dispatch(h, "surprise_event", []any{map[string]any{"x": 1}})

	if len(h.calls) != 0 {
		t.Errorf("handler calls = %v, want none", h.calls)
	}
	if got := countContaining(trace.Records(), "surprise_event"); got != 1 {
		t.Errorf("trace mentions = %d, want 1", got)
	}
	if trace.Records()[0].Severity != debuglog.Error {
		t.Errorf("severity = %v, want error", trace.Records()[0].Severity)
	}
}

func TestRouterMalformedStopsAtTrace(t *testing.T) {
	trace := debuglog.New()
	r := NewRouter(trace)
	h := &recordingHandler{}

	r.Dispatch(h, NameTranscription, []any{42})

	if len(h.calls) != 0 {
		t.Errorf("handler calls = %v, want none", h.calls)
	}
	if got := countContaining(trace.Records(), NameTranscription); got != 1 {
		t.Errorf("trace mentions = %d, want 1", got)
	}
}

func TestRouterDebugLogNotDoubleTraced(t *testing.T) {
	trace := debuglog.New()
	r := NewRouter(trace)
	h := &recordingHandler{}

	r.Dispatch(h, NameDebugLog, []any{map[string]any{"message": "hi"}})

	if trace.Len() != 0 {
		t.Errorf("router trace records = %d, want 0 (handler owns it)", trace.Len())
	}
	if len(h.calls) != 1 {
		t.Errorf("handler calls = %v", h.calls)
	}
}
