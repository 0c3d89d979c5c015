// Package prefs persists user preferences in an embedded bbolt database.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketPreferences = []byte("preferences")
	keyAPIKey         = []byte("api-key")
	keyDarkTheme      = []byte("dark-theme")
)

// ErrEmptyAPIKey is returned when storing a blank API key.
var ErrEmptyAPIKey = errors.New("api key is empty")

// Store holds preferences across runs.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the preferences database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPreferences)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create preferences bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// APIKey returns the remembered API key, or "" if none was stored.
func (s *Store) APIKey() (string, error) {
	v, err := s.get(keyAPIKey)
	return string(v), err
}

// SetAPIKey remembers key for later livestream requests.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyAPIKey
	}
	return s.put(keyAPIKey, []byte(key))
}

// ClearAPIKey forgets the stored API key.
func (s *Store) ClearAPIKey() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPreferences).Delete(keyAPIKey)
	})
}

// DarkTheme reports whether the dark palette is selected. Defaults to false.
func (s *Store) DarkTheme() (bool, error) {
	v, err := s.get(keyDarkTheme)
	if err != nil || v == nil {
		return false, err
	}
	return string(v) == "true", nil
}

// SetDarkTheme stores the palette choice.
func (s *Store) SetDarkTheme(dark bool) error {
	v := "false"
	if dark {
		v = "true"
	}
	return s.put(keyDarkTheme, []byte(v))
}

func (s *Store) get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPreferences).Get(key); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}

func (s *Store) put(key, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPreferences).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
