package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/streamscribe/internal/debuglog"
	"github.com/jwulff/streamscribe/internal/session"
	"github.com/jwulff/streamscribe/internal/topics"
	"github.com/jwulff/streamscribe/internal/transcript"
	"github.com/jwulff/streamscribe/internal/ui"
)

const debugPanelRecords = 6

func (m Model) transcriptVisibleLines() int {
	if m.height == 0 {
		return 20
	}
	// header, status, input, two dividers, footer, padding
	reserved := 7
	if m.sess.Debug.Visible() {
		reserved += debugPanelRecords + 2
	}
	if m.errorMessage != "" {
		reserved++
	}
	return max(6, m.height-reserved)
}

func (m Model) topicPanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(20, m.width*35/100)
}

func (m Model) transcriptPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.topicPanelWidth()-3)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.renderInput())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	// Main content: topics | transcript
	sections = append(sections, m.renderMainContent())

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.sess.Debug.Visible() {
		sections = append(sections, m.renderDebugPanel())
	}

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("STREAMSCRIBE")
	var server string
	if m.serverURL != "" {
		server = ui.DimStyle.Render(" — " + m.serverURL)
	}
	var stream string
	if m.sess.URL != "" {
		stream = ui.DimStyle.Render("  " + m.sess.URL)
	}
	return title + server + stream
}

func (m Model) renderStatusBar() string {
	state, cause := m.sess.Connection()

	var dot string
	switch state {
	case session.Connected:
		dot = ui.ConnectedDotStyle.Render("● CONNECTED")
	case session.Connecting:
		dot = ui.ConnectingDotStyle.Render("◌ CONNECTING")
	case session.Errored:
		dot = ui.ErrorStyle.Render("✕ ERROR")
	default:
		dot = ui.IdleDotStyle.Render("○ DISCONNECTED")
	}
	if cause != "" && state != session.Connected {
		dot += ui.ErrorTextStyle.Render(" (" + cause + ")")
	}

	var stream string
	if m.sess.Stream() == session.Active {
		stream = ui.LiveBadgeStyle.Render("  ▶ TRANSCRIBING")
	} else {
		stream = ui.IdleDotStyle.Render("  ■ IDLE")
	}

	viewers := ui.StatusStyle.Render(fmt.Sprintf("  viewers %s", m.sess.Viewers))

	var info string
	if i := m.sess.Info; i != nil {
		info = "  " + ui.InfoStyle.Render(i.Title)
		if i.Channel != "" {
			info += ui.DimStyle.Render(" by " + i.Channel)
		}
		if i.Viewers != "" {
			info += ui.DimStyle.Render(" (" + i.Viewers + " watching)")
		}
	}

	return dot + stream + viewers + info
}

func (m Model) renderInput() string {
	switch m.input {
	case inputURL:
		return m.urlInput.View()
	case inputAPIKey:
		return m.keyInput.View()
	}

	url := m.urlInput.Value()
	if url == "" {
		url = ui.DimStyle.Render("(press u to enter a livestream URL)")
	}
	key := ui.DimStyle.Render("  api key: none")
	if m.apiKey != "" {
		key = ui.DimStyle.Render("  api key: set")
	}
	return ui.StatusStyle.Render("URL: ") + url + key
}

func (m Model) renderMainContent() string {
	topicW := m.topicPanelWidth()
	transcriptW := m.transcriptPanelWidth()
	contentH := m.transcriptVisibleLines()

	fineH := contentH / 2
	majorH := contentH - fineH

	fine := m.renderTopicPanel(topics.Fine, topicW, fineH)
	major := m.renderTopicPanel(topics.Major, topicW, majorH)
	transcriptPanel := m.renderTranscriptPanel(transcriptW, contentH)

	divider := ui.DividerStyle.Render("│")

	topicLines := append(strings.Split(fine, "\n"), strings.Split(major, "\n")...)
	transcriptLines := strings.Split(transcriptPanel, "\n")

	// Pad to same height
	for len(topicLines) < contentH {
		topicLines = append(topicLines, strings.Repeat(" ", topicW))
	}
	for len(transcriptLines) < contentH {
		transcriptLines = append(transcriptLines, "")
	}

	var rows []string
	for i := 0; i < contentH; i++ {
		rows = append(rows, topicLines[i]+divider+transcriptLines[i])
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderTopicPanel(g topics.Granularity, width, height int) string {
	l := m.sess.Topics.Log(g)

	focus := FocusTopics
	title := "TOPICS"
	if g == topics.Major {
		focus = FocusMajor
		title = "MAJOR TOPICS"
	}
	title = fmt.Sprintf("%s (%d)", title, len(l.Entries()))

	var header string
	if m.focusedPanel == focus {
		header = ui.PanelTitleActiveStyle.Render(title)
	} else {
		header = ui.PanelTitleStyle.Render(title)
	}

	lines := []string{padRight(header, width)}

	if l.Empty() {
		lines = append(lines, ui.DimStyle.Render("  "+l.Placeholder()))
	} else {
		// Newest entries stay visible.
		entries := l.Entries()
		if room := height - 1; room > 0 && len(entries) > room {
			entries = entries[len(entries)-room:]
		}
		for _, e := range entries {
			line := "  " + ui.TimestampStyle.Render(e.Stamp) + " " + e.Topic
			lines = append(lines, truncateToWidth(line, width))
		}
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		lines[i] = padRight(line, width)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderTranscriptPanel(width, height int) string {
	var badge string
	if m.transcriptLive {
		badge = ui.LiveBadgeStyle.Render(" LIVE")
	} else {
		badge = ui.ScrollBadgeStyle.Render(" SCROLL")
	}

	var header string
	if m.focusedPanel == FocusTranscript {
		header = ui.PanelTitleActiveStyle.Render("TRANSCRIPT") + badge
	} else {
		header = ui.PanelTitleStyle.Render("TRANSCRIPT") + badge
	}

	lines := []string{header}
	contentHeight := height - 1

	if m.sess.Transcript.Empty() {
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  "+transcript.Placeholder))
	} else {
		var displayLines []string
		for _, e := range m.sess.Transcript.Entries() {
			prefix := "[" + e.Timestamp + "] "
			prefixWidth := lipgloss.Width(prefix)
			indent := strings.Repeat(" ", prefixWidth)
			wrapped := wrapText(e.Text, max(10, width-prefixWidth-2))
			displayLines = append(displayLines, ui.TimestampStyle.Render(prefix)+wrapped[0])
			for _, wl := range wrapped[1:] {
				displayLines = append(displayLines, indent+wl)
			}
		}

		start := 0
		if m.transcriptLive {
			if len(displayLines) > contentHeight {
				start = len(displayLines) - contentHeight
			}
		} else {
			start = m.transcriptScroll
		}
		if start < 0 {
			start = 0
		}

		end := start + contentHeight
		if end > len(displayLines) {
			end = len(displayLines)
		}

		for i := start; i < end; i++ {
			lines = append(lines, "  "+displayLines[i])
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderDebugPanel() string {
	debug := m.sess.Debug
	lines := []string{ui.PanelTitleStyle.Render(fmt.Sprintf("DEBUG (%d)", debug.Len()))}
	for _, r := range debug.Tail(debugPanelRecords) {
		lines = append(lines, truncateToWidth("  "+renderRecord(r), m.width))
	}
	for len(lines) < debugPanelRecords+1 {
		lines = append(lines, "")
	}
	lines = append(lines, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	return strings.Join(lines, "\n")
}

func renderRecord(r debuglog.Record) string {
	ts := ui.TimestampStyle.Render("[" + r.Timestamp + "]")
	switch r.Severity {
	case debuglog.Error:
		return ts + " " + ui.ErrorTextStyle.Render(r.Message)
	case debuglog.Success:
		return ts + " " + ui.SuccessTextStyle.Render(r.Message)
	default:
		return ts + " " + r.Message
	}
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return ui.FooterKeyStyle.Render(k) + ui.FooterDescStyle.Render(" "+desc)
	}

	if m.input != inputNone {
		return strings.Join([]string{key("Enter", "Confirm"), key("Esc", "Cancel")}, "  ")
	}

	var parts []string
	if m.sess.Stream() == session.Active {
		parts = append(parts, key("Space", "Stop"))
	} else {
		parts = append(parts, key("Space", "Start"))
	}
	parts = append(parts,
		key("u", "URL"),
		key("a", "Key"),
		key("c/t/m", "Copy"),
		key("C/T/M", "Save"),
		key("x/z/Z", "Clear"),
		key("d", "Debug"),
		key("D", "Theme"),
	)
	if m.mgr != nil && m.mgr.State() == session.Connected {
		parts = append(parts, key("p", "Ping"), key("o", "Disconnect"))
	} else {
		parts = append(parts, key("r", "Reconnect"))
	}
	parts = append(parts, key("q", "Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
