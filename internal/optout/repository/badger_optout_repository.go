package repository

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/allisson/uidoperator/internal/errors"
	optoutDomain "github.com/allisson/uidoperator/internal/optout/domain"
)

const badgerKeyPrefix = "optout:"

// BadgerOptOutRepository stores opt-outs in an embedded Badger database. Values are the
// opt-out time in unix milliseconds, big endian.
type BadgerOptOutRepository struct {
	db *badger.DB
}

// OpenBadgerOptOutRepository opens (or creates) the store at path. An empty path opens an
// in-memory store.
func OpenBadgerOptOutRepository(path string) (*BadgerOptOutRepository, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger opt-out store: %w", err)
	}
	return &BadgerOptOutRepository{db: db}, nil
}

// NewBadgerOptOutRepository wraps an already open database.
func NewBadgerOptOutRepository(db *badger.DB) *BadgerOptOutRepository {
	return &BadgerOptOutRepository{db: db}
}

// Latest returns the latest opt-out time of identityHash.
func (b *BadgerOptOutRepository) Latest(ctx context.Context, identityHash string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	var (
		optedOutAt time.Time
		found      bool
	)
	err := b.db.View(func(txn *badger.Txn) error {
		ts, ok, err := readOptOut(txn, identityHash)
		optedOutAt, found = ts, ok
		return err
	})
	if err != nil {
		return time.Time{}, false, apperrors.Wrap(err, "failed to get opt-out")
	}
	return optedOutAt, found, nil
}

// Upsert records rec, keeping the most recent opt-out time when one already exists.
func (b *BadgerOptOutRepository) Upsert(ctx context.Context, rec *optoutDomain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		existing, ok, err := readOptOut(txn, rec.IdentityHash)
		if err != nil {
			return err
		}
		if ok && !rec.OptedOutAt.After(existing) {
			return nil
		}
		val := make([]byte, 8)
		binary.BigEndian.PutUint64(val, uint64(rec.OptedOutAt.UnixMilli())) //nolint:gosec // post-epoch times
		return txn.Set(badgerKey(rec.IdentityHash), val)
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert opt-out")
	}
	return nil
}

// Close closes the underlying database.
func (b *BadgerOptOutRepository) Close() error {
	return b.db.Close()
}

func readOptOut(txn *badger.Txn, identityHash string) (time.Time, bool, error) {
	item, err := txn.Get(badgerKey(identityHash))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	var ms int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt opt-out value of %d bytes", len(val))
		}
		ms = int64(binary.BigEndian.Uint64(val)) //nolint:gosec // written by Upsert
		return nil
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func badgerKey(identityHash string) []byte {
	return []byte(badgerKeyPrefix + identityHash)
}
