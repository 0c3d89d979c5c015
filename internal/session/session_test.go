package session

import (
	"testing"

	"github.com/jwulff/streamscribe/internal/topics"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionInitialState(t *testing.T) {
	s := New()
	state, cause := s.Connection()
	assert.Equal(t, Disconnected, state)
	assert.Empty(t, cause)
	assert.Equal(t, Inactive, s.Stream())
	assert.True(t, s.Transcript.Empty())
	assert.Equal(t, 1, s.Debug.Len())
}

func TestStreamCannotOutliveConnection(t *testing.T) {
	s := New()
	assert.False(t, s.SetStream(Active), "not connected")

	s.SetConnection(Connected, "")
	assert.True(t, s.SetStream(Active))
	assert.Equal(t, Active, s.Stream())

	s.SetConnection(Disconnected, "transport close")
	assert.Equal(t, Inactive, s.Stream())
}

func TestResetKeepsConnection(t *testing.T) {
	s := New()
	s.SetConnection(Connected, "")
	s.Transcript.Append("00:00:01", "hi")
	s.Topics.AddFine("00:00:01", "greeting")
	s.Topics.AddMajor("00:00:00 - 00:05:00", "intro")
	s.Info = &StreamInfo{Title: "t"}
	s.Viewers = "12"

	s.Reset()

	state, _ := s.Connection()
	assert.Equal(t, Connected, state)
	assert.True(t, s.Transcript.Empty())
	assert.True(t, s.Topics.Log(topics.Fine).Empty())
	assert.True(t, s.Topics.Log(topics.Major).Empty())
	assert.Nil(t, s.Info)
	assert.Equal(t, "0", s.Viewers)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Connected", Connected.String())
	assert.Equal(t, "Error", Errored.String())
	assert.Equal(t, "Active", Active.String())
	assert.Equal(t, "Inactive", Inactive.String())
}
