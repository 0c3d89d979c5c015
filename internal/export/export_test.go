package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	got string
	err error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.got = text
	return nil
}

func TestFileNameIsFilesystemSafe(t *testing.T) {
	now := time.Date(2026, 10, 14, 7, 46, 5, 0, time.UTC)
	name := FileName("transcription", now)
	assert.Equal(t, "transcription-2026-10-14T07-46-05.txt", name)
	assert.NotContains(t, name, ":")
}

func TestCopy(t *testing.T) {
	clip := &fakeClipboard{}
	e := New(clip, t.TempDir())

	require.NoError(t, e.Copy("[00:00:05] hello.\n"))
	assert.Equal(t, "[00:00:05] hello.\n", clip.got)
}

func TestCopyRejected(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("denied")}
	e := New(clip, t.TempDir())

	err := e.Copy("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestCopyEmpty(t *testing.T) {
	clip := &fakeClipboard{}
	e := New(clip, t.TempDir())
	assert.ErrorIs(t, e.Copy(""), ErrNothingToExport)
	assert.Empty(t, clip.got)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := New(nil, dir).WithClock(func() time.Time { return now })

	path, err := e.Save("topics", "00:00 Weather\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "topics-2026-01-02T03-04-05.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "00:00 Weather\n", string(data))
}

func TestSaveEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	_, err := New(nil, dir).Save("x", "")
	assert.ErrorIs(t, err, ErrNothingToExport)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
