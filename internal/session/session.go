// Package session owns the startup state machine: it decides whether an
// identity is active and loads the data that identity is authorized to see.
// The bootstrapper is a gate; callers must not mutate entities until it has
// left the Initializing state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/settings"
	"github.com/spincity/backoffice/internal/store"
)

// State is the bootstrapper's position in the startup state machine.
type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// ErrInvalidCredentials is returned by Login on a failed email/password
// comparison. The submitted values are never logged.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is an externally authenticated identity, matched to a local User
// record by email address.
type Identity struct {
	Email string
}

// Event is one identity-change notification. A nil Identity means the
// external identity signed out.
type Event struct {
	Identity *Identity
}

// Notifier announces a message to the user. Fire-and-forget; delivery is not
// confirmed.
type Notifier func(message string)

// Clock supplies the current moment for default date stamping.
type Clock func() time.Time

// Snapshot is the authorized entity set loaded for the current user.
type Snapshot struct {
	Contacts  []models.Contact
	Rentals   []models.Rental
	Repairs   []models.Repair
	Inventory []models.InventoryItem
	Sales     []models.Sale
	Vendors   []models.Vendor
	AppLogo   string
	Sms       models.SmsSettings
}

// Bootstrapper determines the active identity at startup and keeps the
// session state. With an identity event source it follows external
// identity changes; without one it checks the locally persisted
// current-user pointer once.
type Bootstrapper struct {
	store    *store.Store
	settings *settings.Service
	events   <-chan Event
	notify   Notifier
	now      Clock
	log      *zap.Logger

	mu       sync.Mutex
	state    State
	current  *models.User
	snapshot *Snapshot
}

// New constructs a Bootstrapper. events may be nil when no external identity
// source is wired; the persisted pointer is used instead. notify and now may
// be nil.
func New(st *store.Store, set *settings.Service, events <-chan Event, notify Notifier, now Clock, log *zap.Logger) *Bootstrapper {
	if notify == nil {
		notify = func(string) {}
	}
	if now == nil {
		now = time.Now
	}
	return &Bootstrapper{
		store:    st,
		settings: set,
		events:   events,
		notify:   notify,
		now:      now,
		log:      log,
		state:    StateInitializing,
	}
}

// Bootstrap runs the startup sequence and returns the resulting state. The
// branding singletons are loaded first so a splash screen never waits on
// entity data. Errors are reported through the notifier, never returned.
func (b *Bootstrapper) Bootstrap(ctx context.Context) State {
	// Branding first. Reads degrade to defaults, so errors here only mean
	// the backend could not seed them yet.
	if _, err := b.settings.AppLogo(ctx); err != nil {
		b.log.Warn("failed to load app logo", zap.Error(err))
	}
	if _, err := b.settings.SplashLogo(ctx); err != nil {
		b.log.Warn("failed to load splash logo", zap.Error(err))
	}

	b.ensureDefaultAdmin(ctx)

	if b.events != nil {
		b.setState(StateUnauthenticated)
		go b.watch(ctx)
		return b.State()
	}

	id := b.storedUserID(ctx)
	if id == "" {
		b.setState(StateUnauthenticated)
		return b.State()
	}
	user, ok := b.findUser(ctx, func(u models.User) bool { return u.ID == id })
	if !ok {
		// Stale pointer; the orphan is tolerated.
		b.log.Warn("current user pointer does not resolve", zap.String("id", id))
		b.setState(StateUnauthenticated)
		return b.State()
	}
	b.authenticate(ctx, user)
	return b.State()
}

// watch follows external identity-change notifications until the context is
// cancelled. Each present identity triggers a full authorized reload.
func (b *Bootstrapper) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-b.events:
			if !ok {
				return
			}
			if ev.Identity == nil {
				b.clear()
				continue
			}
			user, found := b.findUser(ctx, func(u models.User) bool { return u.Email == ev.Identity.Email })
			if !found {
				b.log.Warn("no user record for external identity", zap.String("email", ev.Identity.Email))
				b.notify("No user record matches the signed-in account. Ask an administrator to create one.")
				b.clear()
				continue
			}
			b.authenticate(ctx, user)
		}
	}
}

// Login authenticates against the stored User records using the legacy
// plain-text comparison and persists the current-user pointer.
func (b *Bootstrapper) Login(ctx context.Context, email, password string) (models.User, error) {
	user, ok := b.findUser(ctx, func(u models.User) bool {
		return u.Email == email && u.Password == password
	})
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	raw, _ := json.Marshal(user.ID)
	if err := b.store.KV.Set(ctx, store.SlotCurrentUser, raw); err != nil {
		b.log.Error("failed to persist current user pointer", zap.Error(err))
	}
	b.authenticate(ctx, user)
	return user, nil
}

// Logout clears the session and the persisted pointer.
func (b *Bootstrapper) Logout(ctx context.Context) {
	if err := b.store.KV.Remove(ctx, store.SlotCurrentUser); err != nil {
		b.log.Error("failed to clear current user pointer", zap.Error(err))
	}
	b.clear()
}

func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// CurrentUser returns the authenticated user, or nil when logged out.
func (b *Bootstrapper) CurrentUser() *models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	u := *b.current
	return &u
}

// Snapshot returns the last loaded authorized entity set, or nil.
func (b *Bootstrapper) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot
}

// authenticate loads the authorized entity set and promotes the session. A
// reload failure falls back to Unauthenticated and is announced through the
// notifier rather than returned.
func (b *Bootstrapper) authenticate(ctx context.Context, user models.User) {
	snap, err := b.reload(ctx)
	if err != nil {
		b.log.Error("session reload failed", zap.String("user", user.Email), zap.Error(err))
		b.notify("Failed to load your data. Please try again.")
		b.clear()
		return
	}
	b.mu.Lock()
	b.current = &user
	b.snapshot = snap
	b.state = StateAuthenticated
	b.mu.Unlock()
	b.log.Info("session authenticated", zap.String("user", user.Email))
}

func (b *Bootstrapper) reload(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error
	if snap.Contacts, err = b.store.Contacts.List(ctx); err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	// Older records predate the creation date used for reporting.
	today := b.now().Format("2006-01-02")
	for i := range snap.Contacts {
		if snap.Contacts[i].CreatedAt == "" {
			snap.Contacts[i].CreatedAt = today
		}
	}
	if snap.Rentals, err = b.store.Rentals.List(ctx); err != nil {
		return nil, fmt.Errorf("load rentals: %w", err)
	}
	if snap.Repairs, err = b.store.Repairs.List(ctx); err != nil {
		return nil, fmt.Errorf("load repairs: %w", err)
	}
	if snap.Inventory, err = b.store.Inventory.List(ctx); err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	if snap.Sales, err = b.store.Sales.List(ctx); err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	if snap.Vendors, err = b.store.Vendors.List(ctx); err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}
	if snap.AppLogo, err = b.settings.AppLogo(ctx); err != nil {
		return nil, fmt.Errorf("load app logo: %w", err)
	}
	if snap.Sms, err = b.settings.SmsSettings(ctx); err != nil {
		return nil, fmt.Errorf("load sms settings: %w", err)
	}
	return snap, nil
}

func (b *Bootstrapper) clear() {
	b.mu.Lock()
	b.current = nil
	b.snapshot = nil
	b.state = StateUnauthenticated
	b.mu.Unlock()
}

func (b *Bootstrapper) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

func (b *Bootstrapper) storedUserID(ctx context.Context) string {
	raw, err := b.store.KV.Get(ctx, store.SlotCurrentUser, nil)
	if err != nil || len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		b.log.Warn("corrupt current user pointer ignored", zap.Error(err))
		return ""
	}
	return id
}

func (b *Bootstrapper) findUser(ctx context.Context, match func(models.User) bool) (models.User, bool) {
	users, err := b.store.Users.List(ctx)
	if err != nil {
		b.log.Error("failed to list users", zap.Error(err))
		return models.User{}, false
	}
	for _, u := range users {
		if match(u) {
			return u, true
		}
	}
	return models.User{}, false
}

// ensureDefaultAdmin seeds the default admin account on an empty user
// collection so a first login is possible.
func (b *Bootstrapper) ensureDefaultAdmin(ctx context.Context) {
	users, err := b.store.Users.List(ctx)
	if err != nil || len(users) > 0 {
		return
	}
	admin := models.User{
		Name:     "Admin User",
		Email:    "admin@spincity.com",
		Password: "admin",
		Role:     models.RoleAdmin,
		Avatar:   "https://picsum.photos/seed/admin/40/40",
	}
	if _, err := b.store.Users.Create(ctx, admin); err != nil {
		b.log.Error("failed to seed default admin user", zap.Error(err))
	}
}
