// Package prefs persists UI toggles in a BoltDB bucket.
package prefs

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const prefsBucket = "Preferences"

// Well-known preference keys.
const (
	KeySlideshowPaused = "slideshow_paused"
	KeyLastDirectory   = "last_directory"
	KeyZoomToggleScale = "zoom_toggle_scale"
)

// Store reads and writes preference values. Values are JSON-encoded so each
// key round-trips its native type.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the preference database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening preference store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(prefsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating preference bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) put(key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding preference %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(prefsBucket)).Put([]byte(key), encoded)
	})
}

// get unmarshals the stored value into out; ok is false when the key is unset.
func (s *Store) get(key string, out interface{}) (bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(prefsBucket)).Get([]byte(key)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding preference %s: %w", key, err)
	}
	return true, nil
}

// SetBool stores a boolean preference.
func (s *Store) SetBool(key string, value bool) error {
	return s.put(key, value)
}

// Bool returns a boolean preference, or fallback when unset or unreadable.
func (s *Store) Bool(key string, fallback bool) bool {
	var v bool
	if ok, err := s.get(key, &v); err == nil && ok {
		return v
	}
	return fallback
}

// SetString stores a string preference.
func (s *Store) SetString(key, value string) error {
	return s.put(key, value)
}

// String returns a string preference, or fallback when unset or unreadable.
func (s *Store) String(key, fallback string) string {
	var v string
	if ok, err := s.get(key, &v); err == nil && ok {
		return v
	}
	return fallback
}

// SetFloat stores a float preference.
func (s *Store) SetFloat(key string, value float64) error {
	return s.put(key, value)
}

// Float returns a float preference, or fallback when unset or unreadable.
func (s *Store) Float(key string, fallback float64) float64 {
	var v float64
	if ok, err := s.get(key, &v); err == nil && ok {
		return v
	}
	return fallback
}
