package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/settings"
	"github.com/spincity/backoffice/internal/store"
)

// Backup is the whole-dataset snapshot format: UTF-8 JSON with these exact
// top-level keys. The format carries no version field; adding one later must
// stay backward compatible.
type Backup struct {
	Users     []models.User          `json:"users"`
	Contacts  []models.Contact       `json:"contacts"`
	Rentals   []models.Rental        `json:"rentals"`
	Repairs   []models.Repair        `json:"repairs"`
	Inventory []models.InventoryItem `json:"inventory"`
	Sales     []models.Sale          `json:"sales"`
	Vendors   []models.Vendor        `json:"vendors"`
	Settings  BackupSettings         `json:"settings"`
}

// BackupSettings bundles the singleton settings inside a snapshot.
type BackupSettings struct {
	Sms        models.SmsSettings `json:"sms"`
	AdminKey   string             `json:"adminKey"`
	AppLogo    string             `json:"appLogo"`
	SplashLogo string             `json:"splashLogo"`
}

// Result reports the outcome of a restore to the caller.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// requiredSections must be present for a snapshot to be accepted. This is a
// structural sanity check, not full schema validation.
var requiredSections = []string{"users", "contacts", "settings"}

// BackupService serializes the entire dataset as one unit and restores it
// after validation.
type BackupService struct {
	store    *store.Store
	settings *settings.Service
	log      *zap.Logger
}

func NewBackupService(st *store.Store, set *settings.Service, log *zap.Logger) *BackupService {
	return &BackupService{store: st, settings: set, log: log}
}

// Export reads every collection and settings singleton and serializes them
// with stable indented formatting.
func (b *BackupService) Export(ctx context.Context) (string, error) {
	snap, err := b.gather(ctx)
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return string(raw), nil
}

// Import validates the payload and, only on acceptance, overwrites every
// collection and setting wholesale. A parse or structural failure performs
// zero writes. Missing optional arrays become empty; missing settings fall
// back to the built-in defaults. The caller is responsible for forcing a
// full reload afterwards.
func (b *BackupService) Import(ctx context.Context, payload string) Result {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Result{Message: fmt.Sprintf("invalid backup: %v", err)}
	}
	for _, section := range requiredSections {
		if _, ok := raw[section]; !ok {
			return Result{Message: fmt.Sprintf("invalid backup: missing %q section", section)}
		}
	}

	var snap Backup
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return Result{Message: fmt.Sprintf("invalid backup: %v", err)}
	}
	if snap.Settings.Sms == (models.SmsSettings{}) {
		snap.Settings.Sms = settings.DefaultSmsSettings
	}
	if snap.Settings.AdminKey == "" {
		snap.Settings.AdminKey = settings.DefaultAdminKey
	}

	// Validation passed; from here on writes are attempted wholesale. The
	// writes themselves are not transactional across stores.
	if err := b.write(ctx, snap); err != nil {
		b.log.Error("restore failed mid-write", zap.Error(err))
		return Result{Message: fmt.Sprintf("restore failed: %v", err)}
	}

	b.log.Info("backup restored",
		zap.Int("users", len(snap.Users)),
		zap.Int("contacts", len(snap.Contacts)),
		zap.Int("inventory", len(snap.Inventory)),
		zap.Int("sales", len(snap.Sales)))
	return Result{Success: true, Message: "Backup restored successfully. Reload to see the new data."}
}

func (b *BackupService) gather(ctx context.Context) (Backup, error) {
	var snap Backup
	var err error
	if snap.Users, err = b.store.Users.List(ctx); err != nil {
		return snap, fmt.Errorf("read users: %w", err)
	}
	if snap.Contacts, err = b.store.Contacts.List(ctx); err != nil {
		return snap, fmt.Errorf("read contacts: %w", err)
	}
	if snap.Rentals, err = b.store.Rentals.List(ctx); err != nil {
		return snap, fmt.Errorf("read rentals: %w", err)
	}
	if snap.Repairs, err = b.store.Repairs.List(ctx); err != nil {
		return snap, fmt.Errorf("read repairs: %w", err)
	}
	if snap.Inventory, err = b.store.Inventory.List(ctx); err != nil {
		return snap, fmt.Errorf("read inventory: %w", err)
	}
	if snap.Sales, err = b.store.Sales.List(ctx); err != nil {
		return snap, fmt.Errorf("read sales: %w", err)
	}
	if snap.Vendors, err = b.store.Vendors.List(ctx); err != nil {
		return snap, fmt.Errorf("read vendors: %w", err)
	}
	if snap.Settings.Sms, err = b.settings.SmsSettings(ctx); err != nil {
		return snap, fmt.Errorf("read sms settings: %w", err)
	}
	if snap.Settings.AdminKey, err = b.settings.AdminKey(ctx); err != nil {
		return snap, fmt.Errorf("read admin key: %w", err)
	}
	if snap.Settings.AppLogo, err = b.settings.AppLogo(ctx); err != nil {
		return snap, fmt.Errorf("read app logo: %w", err)
	}
	if snap.Settings.SplashLogo, err = b.settings.SplashLogo(ctx); err != nil {
		return snap, fmt.Errorf("read splash logo: %w", err)
	}
	return snap, nil
}

func (b *BackupService) write(ctx context.Context, snap Backup) error {
	if err := b.store.Users.Replace(ctx, snap.Users); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	if err := b.store.Contacts.Replace(ctx, snap.Contacts); err != nil {
		return fmt.Errorf("write contacts: %w", err)
	}
	if err := b.store.Rentals.Replace(ctx, snap.Rentals); err != nil {
		return fmt.Errorf("write rentals: %w", err)
	}
	if err := b.store.Repairs.Replace(ctx, snap.Repairs); err != nil {
		return fmt.Errorf("write repairs: %w", err)
	}
	if err := b.store.Inventory.Replace(ctx, snap.Inventory); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := b.store.Sales.Replace(ctx, snap.Sales); err != nil {
		return fmt.Errorf("write sales: %w", err)
	}
	if err := b.store.Vendors.Replace(ctx, snap.Vendors); err != nil {
		return fmt.Errorf("write vendors: %w", err)
	}
	if err := b.settings.SetSmsSettings(ctx, snap.Settings.Sms); err != nil {
		return fmt.Errorf("write sms settings: %w", err)
	}
	if err := b.settings.SetAdminKey(ctx, snap.Settings.AdminKey); err != nil {
		return fmt.Errorf("write admin key: %w", err)
	}
	if err := b.settings.SetAppLogo(ctx, snap.Settings.AppLogo); err != nil {
		return fmt.Errorf("write app logo: %w", err)
	}
	if err := b.settings.SetSplashLogo(ctx, snap.Settings.SplashLogo); err != nil {
		return fmt.Errorf("write splash logo: %w", err)
	}
	return nil
}
