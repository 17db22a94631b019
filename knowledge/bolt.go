package knowledge

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("knowledge")

// BoltStore is the default on-disk Store: a single-file embedded database
// whose transactions give each Put crash atomicity.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the store file at path. The file is
// locked for exclusive use until Close.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge store at %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize knowledge store: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Get(_ context.Context, key Key) (Record, bool, error) {
	var rec Record
	var ok bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		if len(v) != 2 {
			return fmt.Errorf("corrupt knowledge record for %s", key)
		}
		rec = Record{Level: Level(v[0]), Failures: v[1]}
		ok = true
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, ok, nil
}

func (b *BoltStore) Put(_ context.Context, key Key, rec Record) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if rec.IsZero() {
			return bucket.Delete([]byte(key))
		}
		return bucket.Put([]byte(key), []byte{byte(rec.Level), rec.Failures})
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
