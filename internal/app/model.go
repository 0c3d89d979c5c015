package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/jwulff/streamscribe/internal/archive"
	"github.com/jwulff/streamscribe/internal/conn"
	"github.com/jwulff/streamscribe/internal/events"
	"github.com/jwulff/streamscribe/internal/export"
	"github.com/jwulff/streamscribe/internal/log"
	"github.com/jwulff/streamscribe/internal/session"
	"github.com/jwulff/streamscribe/internal/topics"
	"github.com/jwulff/streamscribe/internal/transcript"
	"github.com/jwulff/streamscribe/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// PanelFocus tracks which panel has keyboard focus.
type PanelFocus int

const (
	FocusTranscript PanelFocus = iota
	FocusTopics
	FocusMajor
)

type inputMode int

const (
	inputNone inputMode = iota
	inputURL
	inputAPIKey
)

// Preferences is the persisted user state read at startup.
type Preferences interface {
	APIKey() (string, error)
	SetAPIKey(key string) error
	DarkTheme() (bool, error)
	SetDarkTheme(dark bool) error
}

// Archiver stores received entries.
type Archiver interface {
	SaveEntry(e archive.Entry) error
}

// Options wires the model to its collaborators. Prefs and Archive may be nil.
type Options struct {
	Session   *session.ClientSession
	Manager   *conn.Manager
	Exporter  *export.Exporter
	Prefs     Preferences
	Archive   Archiver
	ArchiveID string
	ServerURL string
}

// Model is the root bubbletea model. Every mutation of the session happens
// inside Update, one message at a time.
type Model struct {
	sess     *session.ClientSession
	mgr      *conn.Manager
	router   *events.Router
	exporter *export.Exporter
	prefs    Preferences
	rec      *recorder

	serverURL string
	apiKey    string
	darkTheme bool

	urlInput textinput.Model
	keyInput textinput.Model
	input    inputMode

	// UI state
	focusedPanel     PanelFocus
	width            int
	height           int
	transcriptScroll int
	transcriptLive   bool

	// Errors
	errorMessage string
	errorSeq     uint64

	// Commands produced while routing a frame.
	pending []tea.Cmd
}

// New creates a Model around an existing session and connection manager.
func New(opts Options) Model {
	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}

	urlInput := textinput.New()
	urlInput.Placeholder = "https://www.youtube.com/watch?v=..."
	urlInput.Prompt = "URL: "
	urlInput.CharLimit = 512

	keyInput := textinput.New()
	keyInput.Placeholder = "API key"
	keyInput.Prompt = "Key: "
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'

	m := Model{
		sess:           sess,
		mgr:            opts.Manager,
		router:         events.NewRouter(sess.Debug),
		exporter:       opts.Exporter,
		prefs:          opts.Prefs,
		serverURL:      opts.ServerURL,
		urlInput:       urlInput,
		keyInput:       keyInput,
		transcriptLive: true,
		focusedPanel:   FocusTranscript,
	}
	if opts.Archive != nil {
		m.rec = newRecorder(opts.Archive, opts.ArchiveID)
	}

	if m.prefs != nil {
		if key, err := m.prefs.APIKey(); err != nil {
			log.Warnf("read api key: %v", err)
		} else {
			m.apiKey = key
		}
		if dark, err := m.prefs.DarkTheme(); err != nil {
			log.Warnf("read theme: %v", err)
		} else {
			m.darkTheme = dark
		}
	}
	ui.Apply(ui.For(m.darkTheme))

	if mgr := m.mgr; mgr != nil {
		mgr.Subscribe(func(c conn.Change) {
			log.StateChange(c.From.String(), c.To.String(), c.Cause)
			recordChange(sess, c, mgr.Endpoint())
		})
	}
	return m
}

// Session returns the session the model renders.
func (m Model) Session() *session.ClientSession { return m.sess }

// Init asks for a connection and starts the frame pump.
func (m Model) Init() tea.Cmd {
	if m.mgr == nil {
		return nil
	}
	return tea.Batch(
		func() tea.Msg { return ConnectRequestMsg{} },
		waitFrameCmd(m.mgr),
	)
}

// waitFrameCmd blocks until the transport delivers the next frame.
func waitFrameCmd(mgr *conn.Manager) tea.Cmd {
	return func() tea.Msg {
		f, err := mgr.Next(context.Background())
		if err != nil {
			return FramesClosedMsg{}
		}
		return FrameMsg{Frame: f}
	}
}

// copyCmd writes text to the clipboard off the event loop.
func copyCmd(e *export.Exporter, subject, text string) tea.Cmd {
	return func() tea.Msg {
		return ExportResultMsg{Action: ActionCopy, Subject: subject, Err: e.Copy(text)}
	}
}

// saveCmd writes text to a timestamped file off the event loop.
func saveCmd(e *export.Exporter, subject, prefix, text string) tea.Cmd {
	return func() tea.Msg {
		path, err := e.Save(prefix, text)
		return ExportResultMsg{Action: ActionSave, Subject: subject, Path: path, Err: err}
	}
}

// clearTransientErrorCmd fires after a delay to clear the error tagged seq.
func clearTransientErrorCmd(seq uint64) tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{Seq: seq}
	})
}

// showTransientError replaces the error bar. Only the returned timer clears it.
func (m *Model) showTransientError(text string) tea.Cmd {
	m.errorSeq++
	m.errorMessage = text
	return clearTransientErrorCmd(m.errorSeq)
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.input != inputNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.urlInput.Width = max(20, msg.Width-10)
		m.keyInput.Width = max(20, msg.Width-10)
		return m, nil

	case ConnectRequestMsg:
		m.connect()
		return m, nil

	case FrameMsg:
		accepted := m.mgr.Accept(msg.Frame)
		log.Frame(msg.Frame.Name, msg.Frame.Gen, accepted)
		if accepted {
			m.router.Dispatch(&m, msg.Frame.Name, msg.Frame.Args)
		}
		cmds := append(m.pending, waitFrameCmd(m.mgr))
		m.pending = nil
		return m, tea.Batch(cmds...)

	case FramesClosedMsg:
		return m, nil

	case ExportResultMsg:
		return m.handleExportResult(msg)

	case ArchiveErrorMsg:
		m.sess.Debug.Errorf("Archive write failed: %v", msg.Err)
		return m, nil

	case ClearTransientErrorMsg:
		if msg.Seq == m.errorSeq {
			m.errorMessage = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) connect() {
	if m.mgr == nil {
		return
	}
	if err := m.mgr.Connect(m.serverURL); err != nil {
		log.Errorf("connect: %v", err)
		if errors.Is(err, conn.ErrEmptyEndpoint) {
			m.sess.Debug.Errorf("No server URL configured")
		}
	}
}

func (m Model) handleExportResult(msg ExportResultMsg) (tea.Model, tea.Cmd) {
	debug := m.sess.Debug
	switch {
	case msg.Err != nil && msg.Action == ActionCopy:
		debug.Errorf("Error copying to clipboard: %v", msg.Err)
	case msg.Err != nil:
		debug.Errorf("Error saving %s: %v", strings.ToLower(msg.Subject), msg.Err)
	case msg.Action == ActionCopy:
		debug.Successf("%s copied to clipboard", msg.Subject)
		return m, nil
	default:
		debug.Successf("%s saved to %s", msg.Subject, msg.Path)
		return m, nil
	}
	cmd := m.showTransientError(msg.Err.Error())
	return m, cmd
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	debug := m.sess.Debug

	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		if m.mgr != nil {
			m.mgr.Close()
		}
		return m, tea.Quit

	case KeyEditURL:
		m.input = inputURL
		cmd := m.urlInput.Focus()
		return m, cmd

	case KeyEditAPIKey:
		m.input = inputAPIKey
		m.keyInput.SetValue("")
		cmd := m.keyInput.Focus()
		return m, cmd

	case KeySpace:
		if m.sess.Stream() == session.Active {
			m.stopTranscription()
		} else {
			m.startTranscription()
		}
		return m, nil

	case KeyCopyTranscript:
		return m, m.exportTranscript(ActionCopy)
	case KeySaveTranscript:
		return m, m.exportTranscript(ActionSave)
	case KeyCopyTopics:
		return m, m.exportTopics(topics.Fine, ActionCopy)
	case KeySaveTopics:
		return m, m.exportTopics(topics.Fine, ActionSave)
	case KeyCopyMajor:
		return m, m.exportTopics(topics.Major, ActionCopy)
	case KeySaveMajor:
		return m, m.exportTopics(topics.Major, ActionSave)

	case KeyClearTranscript:
		m.sess.Transcript.Clear()
		m.transcriptScroll = 0
		m.transcriptLive = true
		debug.Infof("Transcription cleared")
		return m, nil

	case KeyClearTopics:
		m.sess.Topics.Clear(topics.Fine)
		debug.Infof("Topics cleared")
		return m, nil

	case KeyClearMajor:
		m.sess.Topics.Clear(topics.Major)
		debug.Infof("Major topics cleared")
		return m, nil

	case KeyClearDebug:
		debug.Clear()
		return m, nil

	case KeyResetSession:
		m.sess.Reset()
		m.transcriptScroll = 0
		m.transcriptLive = true
		return m, nil

	case KeyToggleDebug:
		debug.Toggle()
		return m, nil

	case KeyToggleTheme:
		m.darkTheme = !m.darkTheme
		ui.Apply(ui.For(m.darkTheme))
		if m.prefs != nil {
			if err := m.prefs.SetDarkTheme(m.darkTheme); err != nil {
				debug.Errorf("Error saving theme: %v", err)
				return m, nil
			}
		}
		debug.Infof("Switched to %s theme", ui.Current().Name)
		return m, nil

	case KeyReconnect:
		m.connect()
		return m, nil

	case KeyDisconnect:
		if m.mgr != nil {
			m.mgr.Disconnect()
		}
		return m, nil

	case KeyPing:
		if m.mgr == nil {
			return m, nil
		}
		if err := m.mgr.Ping("ping"); err != nil {
			debug.Errorf("Ping failed: %v", err)
			return m, nil
		}
		debug.Infof("Ping sent")
		return m, nil

	case KeyTab:
		m.focusedPanel = (m.focusedPanel + 1) % 3
		return m, nil

	case KeyUp, KeyK:
		if m.focusedPanel == FocusTranscript {
			m.transcriptLive = false
			if m.transcriptScroll > 0 {
				m.transcriptScroll--
			}
		}
		return m, nil

	case KeyDown, KeyJ:
		if m.focusedPanel == FocusTranscript {
			maxScroll := m.maxTranscriptScroll()
			m.transcriptScroll++
			if m.transcriptScroll >= maxScroll {
				m.transcriptScroll = maxScroll
				m.transcriptLive = true
			}
		}
		return m, nil
	}

	return m, nil
}

// handleInputKey routes keys to the focused text field.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC:
		if m.mgr != nil {
			m.mgr.Close()
		}
		return m, tea.Quit

	case KeyEsc:
		m.blurInputs()
		return m, nil

	case KeyEnter:
		mode := m.input
		m.blurInputs()
		if mode == inputAPIKey {
			m.saveAPIKey(m.keyInput.Value())
			m.keyInput.SetValue("")
			return m, nil
		}
		m.startTranscription()
		return m, nil
	}

	var cmd tea.Cmd
	if m.input == inputURL {
		m.urlInput, cmd = m.urlInput.Update(msg)
	} else {
		m.keyInput, cmd = m.keyInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) blurInputs() {
	m.input = inputNone
	m.urlInput.Blur()
	m.keyInput.Blur()
}

func (m *Model) saveAPIKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		m.sess.Debug.Errorf("Please enter an API key")
		return
	}
	if m.prefs != nil {
		if err := m.prefs.SetAPIKey(key); err != nil {
			m.sess.Debug.Errorf("Error saving API key: %v", err)
			return
		}
	}
	m.apiKey = key
	m.sess.Debug.Successf("API key saved")
}

func (m *Model) startTranscription() {
	debug := m.sess.Debug
	url := strings.TrimSpace(m.urlInput.Value())
	if m.mgr == nil {
		debug.Errorf("Not connected to server")
		return
	}
	err := m.mgr.ConnectLivestream(url, m.apiKey)
	switch {
	case errors.Is(err, conn.ErrEmptyURL):
		debug.Errorf("Please enter a YouTube livestream URL")
	case errors.Is(err, conn.ErrNotConnected):
		debug.Errorf("Not connected to server")
	case err != nil:
		debug.Errorf("Error requesting livestream: %v", err)
	default:
		debug.Infof("Connecting to livestream: %s", url)
	}
}

func (m *Model) stopTranscription() {
	m.sess.Debug.Infof("Stopping transcription")
	if m.mgr == nil {
		return
	}
	if err := m.mgr.StopTranscription(); err != nil {
		m.sess.Debug.Errorf("Error stopping transcription: %v", err)
	}
}

func (m *Model) exportTranscript(action ExportAction) tea.Cmd {
	text, err := m.sess.Transcript.Text()
	if errors.Is(err, transcript.ErrEmpty) {
		if action == ActionCopy {
			m.sess.Debug.Errorf("No transcription to copy")
		} else {
			m.sess.Debug.Errorf("No transcription to save")
		}
		return nil
	}
	return m.exportCmd(action, "Transcription", "transcription", text)
}

func (m *Model) exportTopics(g topics.Granularity, action ExportAction) tea.Cmd {
	subject, prefix, noun := "Topics", "topics", "topics"
	if g == topics.Major {
		subject, prefix, noun = "Major topics", "major-topics", "major topics"
	}
	text, err := m.sess.Topics.Export(g)
	if errors.Is(err, topics.ErrEmptyLog) {
		if action == ActionCopy {
			m.sess.Debug.Errorf("No %s to copy", noun)
		} else {
			m.sess.Debug.Errorf("No %s to save", noun)
		}
		return nil
	}
	return m.exportCmd(action, subject, prefix, text)
}

func (m *Model) exportCmd(action ExportAction, subject, prefix, text string) tea.Cmd {
	if m.exporter == nil {
		m.sess.Debug.Errorf("Export is not available")
		return nil
	}
	if action == ActionCopy {
		return copyCmd(m.exporter, subject, text)
	}
	return saveCmd(m.exporter, subject, prefix, text)
}

func (m *Model) scrollToBottom() {
	m.transcriptScroll = m.maxTranscriptScroll()
}

func (m Model) maxTranscriptScroll() int {
	totalLines := m.sess.Transcript.Len()
	visible := m.transcriptVisibleLines() - 1
	if totalLines <= visible {
		return 0
	}
	return totalLines - visible
}

// recordChange writes a connection transition to the debug console.
func recordChange(sess *session.ClientSession, c conn.Change, endpoint string) {
	debug := sess.Debug
	switch c.To {
	case session.Connected:
		debug.Successf("Connected to server")
	case session.Disconnected:
		if c.Cause != "" {
			debug.Errorf("Disconnected from server: %s", c.Cause)
		} else {
			debug.Errorf("Disconnected from server")
		}
	case session.Errored:
		debug.Errorf("Connection failed: %s", c.Cause)
	case session.Connecting:
		if c.Cause != "" {
			debug.Errorf("Connection error: %s, retrying", c.Cause)
		} else {
			debug.Infof("Connecting to %s", endpoint)
		}
	}
}
