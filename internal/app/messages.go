package app

import "github.com/jwulff/streamscribe/internal/conn"

// ConnectRequestMsg asks the model to open the channel to the server.
type ConnectRequestMsg struct{}

// FrameMsg wraps one frame delivered by the transport.
type FrameMsg struct {
	Frame conn.Frame
}

// FramesClosedMsg is sent once the connection manager has been closed.
type FramesClosedMsg struct{}

// ExportAction distinguishes a clipboard copy from a file save.
type ExportAction int

const (
	ActionCopy ExportAction = iota
	ActionSave
)

// ExportResultMsg reports the outcome of an asynchronous copy or save.
type ExportResultMsg struct {
	Action ExportAction
	// Subject names what was exported, e.g. "Transcription".
	Subject string
	Path    string
	Err     error
}

// ArchiveErrorMsg reports a failed archive write.
type ArchiveErrorMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout. It is
// ignored once a newer error has replaced the one it was scheduled for.
type ClearTransientErrorMsg struct {
	Seq uint64
}
