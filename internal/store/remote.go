package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/metrics"
	"github.com/spincity/backoffice/internal/models"
)

// NewRemote builds a Store over a PostgreSQL document store. Each record is
// one jsonb document in the documents table; the backend assigns ids.
// Settings live in the settings table wrapped as {"value": ...}.
func NewRemote(db *sql.DB, log *zap.Logger) *Store {
	return &Store{
		Users:     newRemoteCollection[models.User](db, SlotUsers, log),
		Contacts:  newRemoteCollection[models.Contact](db, SlotContacts, log),
		Rentals:   newRemoteCollection[models.Rental](db, SlotRentals, log),
		Repairs:   newRemoteCollection[models.Repair](db, SlotRepairs, log),
		Inventory: newRemoteCollection[models.InventoryItem](db, SlotInventory, log),
		Sales:     newRemoteCollection[models.Sale](db, SlotSales, log),
		Vendors:   newRemoteCollection[models.Vendor](db, SlotVendors, log),
		KV:        &remoteKV{db: db, log: log},
	}
}

// settingsDoc is the wire shape of one settings row.
type settingsDoc struct {
	Value json.RawMessage `json:"value"`
}

// remoteKV stores each value under a document addressed by key inside the
// settings table.
type remoteKV struct {
	db  *sql.DB
	log *zap.Logger
}

// Get returns the stored value for key. When the document is absent it is
// created with the default (read-through seeding) so subsequent reads are
// cheap. Read failures degrade to the default.
func (kv *remoteKV) Get(ctx context.Context, key string, def []byte) ([]byte, error) {
	var raw []byte
	err := kv.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		if len(def) > 0 {
			if err := kv.Set(ctx, key, def); err != nil {
				kv.log.Error("failed to seed setting", zap.String("key", key), zap.Error(err))
			}
		}
		return def, nil
	}
	if err != nil {
		kv.log.Error("failed to read setting, using default", zap.String("key", key), zap.Error(err))
		metrics.StoreDegradedReads.Inc()
		return def, nil
	}
	var doc settingsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		kv.log.Error("corrupt setting payload, using default", zap.String("key", key), zap.Error(err))
		metrics.StoreDegradedReads.Inc()
		return def, nil
	}
	return doc.Value, nil
}

func (kv *remoteKV) Set(ctx context.Context, key string, value []byte) error {
	raw, err := json.Marshal(settingsDoc{Value: value})
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = kv.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, raw)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (kv *remoteKV) Remove(ctx context.Context, key string) error {
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("remove setting %s: %w", key, err)
	}
	return nil
}

// remoteCollection maps one named collection to rows of the documents table.
type remoteCollection[T any, PT Entity[T]] struct {
	db   *sql.DB
	name string
	log  *zap.Logger
}

func newRemoteCollection[T any, PT Entity[T]](db *sql.DB, name string, log *zap.Logger) *remoteCollection[T, PT] {
	return &remoteCollection[T, PT]{db: db, name: name, log: log}
}

// List returns every record in the collection. The id column is
// authoritative and overwrites whatever id the document carries. A failed
// query surfaces as an empty list plus a logged error; retries are a caller
// concern.
func (c *remoteCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	metrics.StoreOperations.WithLabelValues("remote", c.name, "list").Inc()
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, data FROM documents WHERE collection = $1 ORDER BY id
	`, c.name)
	if err != nil {
		c.log.Error("failed to list collection, using empty list",
			zap.String("collection", c.name), zap.Error(err))
		metrics.StoreDegradedReads.Inc()
		return []T{}, nil
	}
	defer rows.Close()

	recs := []T{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			c.log.Error("corrupt document skipped",
				zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
			metrics.StoreDegradedReads.Inc()
			continue
		}
		PT(&rec).SetEntityID(id)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		c.log.Error("failed to read collection, using empty list",
			zap.String("collection", c.name), zap.Error(err))
		metrics.StoreDegradedReads.Inc()
		return []T{}, nil
	}
	return recs, nil
}

// Create inserts the record and lets the backend assign the id.
func (c *remoteCollection[T, PT]) Create(ctx context.Context, rec T) (T, error) {
	metrics.StoreOperations.WithLabelValues("remote", c.name, "create").Inc()
	var zero T
	PT(&rec).SetEntityID("")
	data, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", c.name, err)
	}
	var id string
	err = c.db.QueryRowContext(ctx, `
		INSERT INTO documents (collection, data) VALUES ($1, $2) RETURNING id
	`, c.name, data).Scan(&id)
	if err != nil {
		return zero, fmt.Errorf("create in %s: %w", c.name, err)
	}
	PT(&rec).SetEntityID(id)
	return rec, nil
}

// Update replaces the document matched by id. An unknown id is a silent
// no-op.
func (c *remoteCollection[T, PT]) Update(ctx context.Context, rec T) error {
	metrics.StoreOperations.WithLabelValues("remote", c.name, "update").Inc()
	id := PT(&rec).EntityID()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	res, err := c.db.ExecContext(ctx, `
		UPDATE documents SET data = $3 WHERE collection = $1 AND id = $2
	`, c.name, id, data)
	if err != nil {
		return fmt.Errorf("update in %s: %w", c.name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.log.Debug("update for unknown id ignored",
			zap.String("collection", c.name), zap.String("id", id))
	}
	return nil
}

func (c *remoteCollection[T, PT]) Delete(ctx context.Context, id string) error {
	metrics.StoreOperations.WithLabelValues("remote", c.name, "delete").Inc()
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, c.name, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.name, err)
	}
	return nil
}

// Replace overwrites the collection wholesale inside one transaction,
// keeping the ids carried by the given records.
func (c *remoteCollection[T, PT]) Replace(ctx context.Context, recs []T) error {
	metrics.StoreOperations.WithLabelValues("remote", c.name, "replace").Inc()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, c.name); err != nil {
		return fmt.Errorf("clear %s: %w", c.name, err)
	}
	for i := range recs {
		data, err := json.Marshal(recs[i])
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.name, err)
		}
		id := PT(&recs[i]).EntityID()
		if id == "" {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO documents (collection, data) VALUES ($1, $2) RETURNING id
			`, c.name, data).Scan(&id)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
			`, c.name, id, data)
		}
		if err != nil {
			return fmt.Errorf("restore into %s: %w", c.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
