// Package settings exposes the singleton configuration values (SMS gateway,
// admin registration key, branding logos) on top of the key-value store,
// seeding hardcoded defaults on first read.
package settings

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/store"
)

// DefaultSmsSettings is seeded when no SMS configuration is stored yet.
var DefaultSmsSettings = models.SmsSettings{
	Login:    "your-username",
	Domain:   "smsonlinegh.com",
	Protocol: "HTTPS",
	Port:     "443",
}

// DefaultAdminKey is the initial admin registration key. It is stored and
// compared as plain text only for parity with the legacy data; see README.
const DefaultAdminKey = "admin"

// Service reads and writes the singleton settings.
type Service struct {
	kv  store.KeyValue
	log *zap.Logger
}

func New(kv store.KeyValue, log *zap.Logger) *Service {
	return &Service{kv: kv, log: log}
}

// get unmarshals the slot into out, falling back to def when the slot is
// missing or unreadable. The default is passed down so the backend can seed
// it on first read.
func (s *Service) get(ctx context.Context, key string, def, out any) error {
	defRaw, err := json.Marshal(def)
	if err != nil {
		return err
	}
	raw, err := s.kv.Get(ctx, key, defRaw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Error("corrupt setting value, using default", zap.String("key", key), zap.Error(err))
		return json.Unmarshal(defRaw, out)
	}
	return nil
}

func (s *Service) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, raw)
}

func (s *Service) SmsSettings(ctx context.Context) (models.SmsSettings, error) {
	var v models.SmsSettings
	err := s.get(ctx, store.SlotSmsSettings, DefaultSmsSettings, &v)
	return v, err
}

func (s *Service) SetSmsSettings(ctx context.Context, v models.SmsSettings) error {
	return s.set(ctx, store.SlotSmsSettings, v)
}

func (s *Service) AdminKey(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, store.SlotAdminKey, DefaultAdminKey, &v)
	if err == nil && v == "" {
		v = DefaultAdminKey
	}
	return v, err
}

func (s *Service) SetAdminKey(ctx context.Context, key string) error {
	return s.set(ctx, store.SlotAdminKey, key)
}

// VerifyAdminKey compares the candidate against the stored key. The key
// value is never logged.
func (s *Service) VerifyAdminKey(ctx context.Context, candidate string) bool {
	stored, err := s.AdminKey(ctx)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func (s *Service) AppLogo(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, store.SlotAppLogo, "", &v)
	return v, err
}

func (s *Service) SetAppLogo(ctx context.Context, logo string) error {
	if logo == "" {
		return s.kv.Remove(ctx, store.SlotAppLogo)
	}
	return s.set(ctx, store.SlotAppLogo, logo)
}

func (s *Service) SplashLogo(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, store.SlotSplashLogo, "", &v)
	return v, err
}

func (s *Service) SetSplashLogo(ctx context.Context, logo string) error {
	if logo == "" {
		return s.kv.Remove(ctx, store.SlotSplashLogo)
	}
	return s.set(ctx, store.SlotSplashLogo, logo)
}
