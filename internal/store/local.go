package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/metrics"
	"github.com/spincity/backoffice/internal/models"
)

// NewLocal builds a Store over an embedded SQLite database. Every collection
// is one JSON array under one slot and every setting one value under one
// slot, mirroring the legacy per-origin layout. Ids are generated
// client-side.
func NewLocal(db *sql.DB, log *zap.Logger) *Store {
	kv := &localKV{db: db, log: log}
	return &Store{
		Users:     newLocalCollection[models.User](kv, SlotUsers),
		Contacts:  newLocalCollection[models.Contact](kv, SlotContacts),
		Rentals:   newLocalCollection[models.Rental](kv, SlotRentals),
		Repairs:   newLocalCollection[models.Repair](kv, SlotRepairs),
		Inventory: newLocalCollection[models.InventoryItem](kv, SlotInventory),
		Sales:     newLocalCollection[models.Sale](kv, SlotSales),
		Vendors:   newLocalCollection[models.Vendor](kv, SlotVendors),
		KV:        kv,
	}
}

// localKV stores raw values in the slots table, one row per key.
type localKV struct {
	db  *sql.DB
	log *zap.Logger
}

func (kv *localKV) Get(ctx context.Context, key string, def []byte) ([]byte, error) {
	var value []byte
	err := kv.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		kv.log.Error("failed to read slot, using default", zap.String("key", key), zap.Error(err))
		metrics.StoreDegradedReads.Inc()
		return def, nil
	}
	return value, nil
}

func (kv *localKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := kv.db.ExecContext(ctx, `
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

func (kv *localKV) Remove(ctx context.Context, key string) error {
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove slot %s: %w", key, err)
	}
	return nil
}

// localCollection keeps all records of one collection as a single JSON array
// under one slot. Every mutation is a load-then-save of the whole array, so
// mu serializes them; the connection pool only serializes individual
// statements, not the pair, and concurrent handlers would drop each other's
// writes.
type localCollection[T any, PT Entity[T]] struct {
	kv   *localKV
	slot string
	mu   sync.Mutex
}

func newLocalCollection[T any, PT Entity[T]](kv *localKV, slot string) *localCollection[T, PT] {
	return &localCollection[T, PT]{kv: kv, slot: slot}
}

// load reads the backing slot. A corrupt payload degrades to an empty list.
func (c *localCollection[T, PT]) load(ctx context.Context) []T {
	raw, _ := c.kv.Get(ctx, c.slot, nil)
	if len(raw) == 0 {
		return []T{}
	}
	var recs []T
	if err := json.Unmarshal(raw, &recs); err != nil {
		c.kv.log.Error("corrupt collection payload, using empty list",
			zap.String("collection", c.slot), zap.Error(err))
		metrics.StoreDegradedReads.Inc()
		return []T{}
	}
	return recs
}

func (c *localCollection[T, PT]) save(ctx context.Context, recs []T) error {
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.slot, err)
	}
	return c.kv.Set(ctx, c.slot, raw)
}

func (c *localCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	metrics.StoreOperations.WithLabelValues("local", c.slot, "list").Inc()
	return c.load(ctx), nil
}

func (c *localCollection[T, PT]) Create(ctx context.Context, rec T) (T, error) {
	metrics.StoreOperations.WithLabelValues("local", c.slot, "create").Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	PT(&rec).SetEntityID(uuid.NewString())
	recs := append(c.load(ctx), rec)
	if err := c.save(ctx, recs); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (c *localCollection[T, PT]) Update(ctx context.Context, rec T) error {
	metrics.StoreOperations.WithLabelValues("local", c.slot, "update").Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	recs := c.load(ctx)
	for i := range recs {
		if PT(&recs[i]).EntityID() == PT(&rec).EntityID() {
			recs[i] = rec
			return c.save(ctx, recs)
		}
	}
	// Unknown id: silent no-op, kept for parity with the legacy behavior.
	c.kv.log.Debug("update for unknown id ignored",
		zap.String("collection", c.slot), zap.String("id", PT(&rec).EntityID()))
	return nil
}

func (c *localCollection[T, PT]) Delete(ctx context.Context, id string) error {
	metrics.StoreOperations.WithLabelValues("local", c.slot, "delete").Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	recs := c.load(ctx)
	kept := recs[:0]
	for i := range recs {
		if PT(&recs[i]).EntityID() != id {
			kept = append(kept, recs[i])
		}
	}
	if len(kept) == len(recs) {
		return nil
	}
	return c.save(ctx, kept)
}

func (c *localCollection[T, PT]) Replace(ctx context.Context, recs []T) error {
	metrics.StoreOperations.WithLabelValues("local", c.slot, "replace").Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	if recs == nil {
		recs = []T{}
	}
	for i := range recs {
		if PT(&recs[i]).EntityID() == "" {
			PT(&recs[i]).SetEntityID(uuid.NewString())
		}
	}
	return c.save(ctx, recs)
}
