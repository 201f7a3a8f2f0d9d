package persistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const slotsBucket = "slots"

// ErrSlotNotFound is returned when a slot has never been written or was cleared.
var ErrSlotNotFound = errors.New("slot not found")

// Slots is a small durable key-value store. Each key holds one JSON document
// and writes replace it wholesale.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Bolt keeps slots in a single BoltDB file.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the slot file at path.
func OpenBolt(path string, logger *zap.Logger) (*Bolt, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	store := &Bolt{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("opened local cache", zap.String("path", cleanPath))
	return store, nil
}

// Close closes the underlying BoltDB database.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns a copy of the value stored under key.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil || b.db == nil {
		return nil, fmt.Errorf("cache is not configured")
	}

	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotsBucket))
		if bucket == nil {
			return fmt.Errorf("slots bucket is missing")
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return ErrSlotNotFound
		}
		// bolt memory is only valid inside the transaction.
		out = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put replaces the value stored under key.
func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.db == nil {
		return fmt.Errorf("cache is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("slot key is required")
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotsBucket))
		if bucket == nil {
			return fmt.Errorf("slots bucket is missing")
		}
		return bucket.Put([]byte(key), value)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.db == nil {
		return fmt.Errorf("cache is not configured")
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotsBucket))
		if bucket == nil {
			return fmt.Errorf("slots bucket is missing")
		}
		return bucket.Delete([]byte(key))
	})
}

func (b *Bolt) ensureBuckets() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(slotsBucket))
		if err != nil {
			return fmt.Errorf("create slots bucket: %w", err)
		}
		return nil
	})
}
