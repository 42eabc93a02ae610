// Package store provides persistence for entity collections and named
// settings slots over two interchangeable backends: a local embedded SQLite
// database and a remote PostgreSQL document store. Business logic holds the
// interfaces only and never branches on which backend is active.
//
// Failure semantics follow the legacy storage module: reads degrade. A
// missing, unreachable or malformed payload is logged and replaced with an
// empty list or the supplied default instead of propagating an error to the
// caller. Writes return their errors.
package store

import (
	"context"

	"github.com/spincity/backoffice/internal/models"
)

// Entity constrains a pointer to an entity record that exposes its id.
type Entity[T any] interface {
	*T
	EntityID() string
	SetEntityID(id string)
}

// KeyValue is a primitive get/set/remove store over a single named slot.
// Get never fails: a missing or unreadable slot yields def.
type KeyValue interface {
	Get(ctx context.Context, key string, def []byte) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Collection is generic create/read/update/delete over a named collection of
// records. Update replaces the whole record matched by id; an unknown id is a
// silent no-op for parity with the legacy behavior. Delete is idempotent. Replace overwrites the collection wholesale, preserving the
// ids carried by the given records; it exists for backup restore.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, recs []T) error
}

// Store bundles one collection per entity plus the settings slot store.
type Store struct {
	Users     Collection[models.User]
	Contacts  Collection[models.Contact]
	Rentals   Collection[models.Rental]
	Repairs   Collection[models.Repair]
	Inventory Collection[models.InventoryItem]
	Sales     Collection[models.Sale]
	Vendors   Collection[models.Vendor]
	KV        KeyValue
}

// Slot keys of the local backend and collection names of the remote backend.
// The spincity_ prefix matches the legacy per-origin store so existing data
// survives a backend migration.
const (
	SlotUsers       = "spincity_users"
	SlotContacts    = "spincity_contacts"
	SlotRentals     = "spincity_rentals"
	SlotRepairs     = "spincity_repairs"
	SlotInventory   = "spincity_inventory"
	SlotSales       = "spincity_sales"
	SlotVendors     = "spincity_vendors"
	SlotCurrentUser = "spincity_current_user"
	SlotSmsSettings = "spincity_sms_settings"
	SlotAdminKey    = "spincity_admin_key"
	SlotAppLogo     = "spincity_app_logo"
	SlotSplashLogo  = "spincity_splash_logo"
)
