// Package journal persists delivered command/reply exchanges in BoltDB.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskbot/domain"
	"github.com/fastygo/taskbot/usecase"
)

const defaultBucket = "exchanges"

// Store wraps BoltDB. Keys sort by timestamp so cursor order is chronological.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Record appends an exchange.
func (s *Store) Record(_ context.Context, exchange domain.Exchange) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	if exchange.Timestamp.IsZero() {
		exchange.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(exchange)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(buildKey(exchange), payload)
	})
}

// Recent returns up to limit of the newest exchanges for workspace, newest first.
// An empty workspace matches all of them.
func (s *Store) Recent(workspace string, limit int) ([]domain.Exchange, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	exchanges := []domain.Exchange{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Last(); k != nil && len(exchanges) < limit; k, v = c.Prev() {
			var e domain.Exchange
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if workspace != "" && e.Workspace != workspace {
				continue
			}
			exchanges = append(exchanges, e)
		}
		return nil
	})
	return exchanges, err
}

// Size returns the number of stored exchanges.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes exchanges older than the provided timestamp and reports how many went.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	limit := []byte(fmt.Sprintf("%020d", olderThan.UnixNano()))
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, _ := c.First(); k != nil && string(k[:20]) < string(limit); k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(e domain.Exchange) []byte {
	return []byte(fmt.Sprintf("%020d_%s", e.Timestamp.UnixNano(), e.ID))
}

var _ usecase.Journal = (*Store)(nil)
