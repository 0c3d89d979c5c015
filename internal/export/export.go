// Package export writes accumulated transcript and topic text to the system
// clipboard or to a file. It only reads text handed to it.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cb "github.com/atotto/clipboard"
)

// ErrNothingToExport is returned when the text to export is empty.
var ErrNothingToExport = errors.New("nothing to export")

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the host clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the host clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return cb.WriteAll(text)
}

// Exporter copies or saves text.
type Exporter struct {
	clipboard Clipboard
	dir       string
	now       func() time.Time
}

// New returns an Exporter that saves files to dir.
func New(clipboard Clipboard, dir string) *Exporter {
	return &Exporter{clipboard: clipboard, dir: dir, now: time.Now}
}

// WithClock returns a copy of e that names files using now.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	c := *e
	c.now = now
	return &c
}

// Dir is the directory Save writes into.
func (e *Exporter) Dir() string { return e.dir }

// Copy writes text to the clipboard.
func (e *Exporter) Copy(text string) error {
	if text == "" {
		return ErrNothingToExport
	}
	if e.clipboard == nil {
		return fmt.Errorf("copy to clipboard: no clipboard available")
	}
	if err := e.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Save writes text to a new file named from prefix and the current time and
// returns its path.
func (e *Exporter) Save(prefix, text string) (string, error) {
	if text == "" {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.dir, FileName(prefix, e.now()))
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// FileName builds "<prefix>-<UTC timestamp>.txt" with ':' replaced by '-'.
func FileName(prefix string, now time.Time) string {
	stamp := strings.ReplaceAll(now.UTC().Format("2006-01-02T15:04:05"), ":", "-")
	return prefix + "-" + stamp + ".txt"
}
