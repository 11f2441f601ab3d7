// Package localstore keeps client state on disk between CLI invocations.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/pageza/recipebox/internal/types"
)

const (
	bucketSession = "session" // key: "current" -> types.Session JSON
	bucketUI      = "ui"      // key: route, import_draft -> string
)

const (
	keySession     = "current"
	keyLastRoute   = "route"
	keyImportDraft = "import_draft"
)

// identityScoped lists the buckets wiped on sign-out
var identityScoped = []string{bucketSession, bucketUI}

type Store struct {
	db *bbolt.DB
}

// Open creates the store file and its buckets if needed
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range identityScoped {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Session returns the stored session, or nil when signed out
func (s *Store) Session() (*types.Session, error) {
	var session *types.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketSession)).Get([]byte(keySession))
		if data == nil {
			return nil
		}
		session = &types.Session{}
		return json.Unmarshal(data, session)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return session, nil
}

// SaveSession replaces the stored session; nil removes it
func (s *Store) SaveSession(session *types.Session) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketSession))
		if session == nil {
			return b.Delete([]byte(keySession))
		}
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		return b.Put([]byte(keySession), data)
	})
}

func (s *Store) LastRoute() (string, error) {
	return s.getUI(keyLastRoute)
}

func (s *Store) SetLastRoute(route string) error {
	return s.putUI(keyLastRoute, route)
}

// ImportDraft is the text of an import that was interrupted before saving
func (s *Store) ImportDraft() (string, error) {
	return s.getUI(keyImportDraft)
}

// SetImportDraft stores the draft text; "" removes it
func (s *Store) SetImportDraft(text string) error {
	return s.putUI(keyImportDraft, text)
}

func (s *Store) getUI(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		value = string(tx.Bucket([]byte(bucketUI)).Get([]byte(key)))
		return nil
	})
	return value, err
}

func (s *Store) putUI(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketUI))
		if value == "" {
			return b.Delete([]byte(key))
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// ClearUserData empties every identity-scoped bucket in one transaction
func (s *Store) ClearUserData() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range identityScoped {
			if tx.Bucket([]byte(name)) != nil {
				if err := tx.DeleteBucket([]byte(name)); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
