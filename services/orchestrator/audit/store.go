// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key layout:
//
//	rec:<unix-nano, zero padded>:<uuid>  -> Record JSON
//	rec_id:<uuid>                        -> primary record key
//	alert:<unix-nano, zero padded>:<uuid> -> Alert JSON
//
// Zero-padded nanosecond timestamps make lexicographic key order equal
// chronological order, so reverse iteration yields most-recent-first.
const (
	recPrefix   = "rec:"
	recIDPrefix = "rec_id:"
	alertPrefix = "alert:"
)

// maxActiveAlerts bounds how many alerts the surface shows at once.
const maxActiveAlerts = 10

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("audit record not found")

// BadgerStore is the durable Store and AlertStore backed by embedded
// BadgerDB.
//
// Thread Safety: safe for concurrent use. Appends from concurrent requests
// touch distinct keys, so there is no transaction contention on the write
// path.
type BadgerStore struct {
	db *badger.DB
	gc *GCRunner
}

// NewBadgerStore opens the database described by cfg and, when GCInterval is
// set, starts the garbage collection runner. The caller owns Close.
func NewBadgerStore(cfg Config) (*BadgerStore, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	s := &BadgerStore{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		gc, err := NewGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create GC runner: %w", err)
		}
		s.gc = gc
		gc.Start()
	}
	return s, nil
}

// Close stops garbage collection and closes the database.
func (s *BadgerStore) Close() error {
	if s.gc != nil {
		s.gc.Stop()
	}
	return s.db.Close()
}

func recordKey(ts time.Time, id string) []byte {
	return fmt.Appendf(nil, "%s%020d:%s", recPrefix, ts.UnixNano(), id)
}

func alertKey(ts time.Time, id string) []byte {
	return fmt.Appendf(nil, "%s%020d:%s", alertPrefix, ts.UnixNano(), id)
}

// Append implements Sink.
func (s *BadgerStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	key := recordKey(rec.Timestamp, rec.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set([]byte(recIDPrefix+rec.ID), key)
	})
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// List implements Store. Records come back most recent first. A limit <= 0
// means no limit.
func (s *BadgerStore) List(ctx context.Context, onlyUnreviewed bool, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recPrefix)
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode the seek key must sort after every record key.
		seek := append([]byte(recPrefix), 0xff)
		for it.Seek(seek); it.Valid(); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if onlyUnreviewed && rec.Reviewed {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	return records, nil
}

// MarkReviewed implements Store. It flips the Reviewed bit on the record with
// the given ID; ErrNotFound when no such record exists.
func (s *BadgerStore) MarkReviewed(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		idxItem, err := txn.Get([]byte(recIDPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		key, err := idxItem.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var rec Record
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}

		rec.Reviewed = true
		value, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("mark audit record reviewed: %w", err)
	}
	return nil
}

// CreateAlert implements AlertStore. The stored alert gets a fresh ID and
// creation time; titles and messages are truncated to the storage limits.
func (s *BadgerStore) CreateAlert(ctx context.Context, alert Alert) (Alert, error) {
	if err := ctx.Err(); err != nil {
		return Alert{}, err
	}

	alert.ID = uuid.NewString()
	alert.CreatedAt = time.Now().UTC()
	alert.Title = Truncate(alert.Title, MaxAlertTitleChars)
	alert.Message = Truncate(alert.Message, MaxAlertMessageChars)

	value, err := json.Marshal(alert)
	if err != nil {
		return Alert{}, fmt.Errorf("marshal alert: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(alertKey(alert.CreatedAt, alert.ID), value)
	})
	if err != nil {
		return Alert{}, fmt.Errorf("store alert: %w", err)
	}
	return alert, nil
}

// ListActiveAlerts implements AlertStore: the 10 most recent alerts that are
// both active and approved.
func (s *BadgerStore) ListActiveAlerts(ctx context.Context) ([]Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var alerts []Alert
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(alertPrefix)
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(alertPrefix), 0xff)
		for it.Seek(seek); it.Valid() && len(alerts) < maxActiveAlerts; it.Next() {
			var alert Alert
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &alert)
			}); err != nil {
				return err
			}
			if !alert.Active || !alert.Approved {
				continue
			}
			alerts = append(alerts, alert)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}
