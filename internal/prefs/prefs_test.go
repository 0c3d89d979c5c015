package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestAPIKeyRoundTrip(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	key, err := s.APIKey()
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, s.SetAPIKey("  secret  "))
	key, err = s.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "secret", key)

	require.NoError(t, s.ClearAPIKey())
	key, err = s.APIKey()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestSetAPIKeyRejectsEmpty(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	assert.ErrorIs(t, s.SetAPIKey("   "), ErrEmptyAPIKey)
}

func TestDarkThemePersists(t *testing.T) {
	s, path := openTemp(t)

	dark, err := s.DarkTheme()
	require.NoError(t, err)
	assert.False(t, dark, "light theme is the default")

	require.NoError(t, s.SetDarkTheme(true))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	dark, err = s.DarkTheme()
	require.NoError(t, err)
	assert.True(t, dark)
}
