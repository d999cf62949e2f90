// Package store persists the budget, history, expense request,
// employee, and project aggregates in a bbolt database.
//
// bbolt serializes read-write transactions, so everything done inside
// one Update call is a single atomic unit: either every mutation in
// the closure commits, or the whole transaction is discarded. The
// approval coordinator leans on this for its multi-currency debit.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Bucket names.
const (
	bucketBudgets   = "budgets"
	bucketHistory   = "history"
	bucketRequests  = "requests"
	bucketEmployees = "employees"
	bucketProjects  = "projects"
	bucketSeq       = "sequences"
)

// Store wraps the bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the database at path and initializes
// all buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		for _, name := range []string{bucketBudgets, bucketHistory, bucketRequests, bucketEmployees, bucketProjects, bucketSeq} {
			if _, err := btx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a typed view over one bbolt transaction. All accessor methods
// observe and mutate the same snapshot.
type Tx struct {
	btx *bolt.Tx
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// Update runs fn in a single read-write transaction. If fn returns an
// error the transaction is rolled back and nothing fn did is visible.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// NextSeq returns the next value of a named sequence, starting at
// start for a fresh sequence. Values strictly increase and are never
// reused; bbolt's single-writer model makes the read-increment-write
// atomic.
func (tx *Tx) NextSeq(name string, start uint64) (uint64, error) {
	b := tx.btx.Bucket([]byte(bucketSeq))
	key := []byte(name)

	next := start
	if cur := b.Get(key); cur != nil {
		next = binary.BigEndian.Uint64(cur) + 1
	}
	if err := b.Put(key, itob(next)); err != nil {
		return 0, fmt.Errorf("advancing sequence %s: %w", name, err)
	}
	return next, nil
}

// itob encodes an ID as a big-endian key so bucket iteration order
// matches numeric order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (tx *Tx) getJSON(bucket string, key []byte, v any) (bool, error) {
	data := tx.btx.Bucket([]byte(bucket)).Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s record: %w", bucket, err)
	}
	return true, nil
}

func (tx *Tx) putJSON(bucket string, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", bucket, err)
	}
	if err := tx.btx.Bucket([]byte(bucket)).Put(key, data); err != nil {
		return fmt.Errorf("writing %s record: %w", bucket, err)
	}
	return nil
}
