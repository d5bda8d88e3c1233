package license

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"liftcore/internal/models"
)

// Identity is the already-authenticated caller handed down by the
// transport layer.
type Identity struct {
	UserID string
	Email  string
	Role   models.UserRole
}

type GenerateParams struct {
	OwnerEmail string
	Plan       string
	Days       int
	MaxDevices int
	// ResellerID attributes the license when an admin generates on a
	// reseller's behalf. Reseller callers are attributed to their own
	// profile and this field is ignored.
	ResellerID *int
}

type ActivationResult struct {
	License *models.License
	// OfflineDays is the configured grace window the client may run
	// without revalidating. It is a constant, not derived from activations.
	OfflineDays int
}

type ValidationResult struct {
	Status    models.LicenseStatus
	ExpiresAt time.Time
	Plan      string
}

type Detail struct {
	License *models.License
	Devices []models.Device
}

// Engine owns all license state transitions and policy. It holds no state
// between calls beyond the persistent stores and the per-license locks.
type Engine struct {
	store       Store
	devices     DeviceRegistry
	resellers   ResellerLedger
	codec       *Codec
	offlineDays int
	lg          *zap.SugaredLogger
	activation  keyMutex
}

func NewEngine(store Store, devices DeviceRegistry, resellers ResellerLedger, codec *Codec, offlineDays int, lg *zap.SugaredLogger) *Engine {
	return &Engine{
		store:       store,
		devices:     devices,
		resellers:   resellers,
		codec:       codec,
		offlineDays: offlineDays,
		lg:          lg,
	}
}

// effectiveStatus is the single definition of a license's current state:
// stored terminal states win, otherwise the clock decides. The persisted
// Expired transition is only a cache of this function's result.
func effectiveStatus(lic *models.License, now time.Time) models.LicenseStatus {
	switch lic.Status {
	case models.StatusRevoked, models.StatusExpired:
		return lic.Status
	}
	if now.After(lic.ExpiresAt) {
		return models.StatusExpired
	}
	return lic.Status
}

// markExpired persists the lazily observed Active->Expired transition.
// The write is best effort: every read path recomputes effective status,
// so a failure here costs nothing but a later rewrite.
func (e *Engine) markExpired(ctx context.Context, lic *models.License) {
	lic.Status = models.StatusExpired
	if err := e.store.Update(ctx, lic); err != nil {
		e.lg.Warnw("expired status write failed", "license_id", lic.ID, "error", err)
	}
}

// Generate mints a new license. Reseller callers are resolved to their
// profile and charged one unit of quota atomically with the insert; admin
// callers may attribute freely via params.
func (e *Engine) Generate(ctx context.Context, p GenerateParams, who Identity) (*models.License, error) {
	if who.Role != models.RoleAdmin && who.Role != models.RoleReseller {
		return nil, ErrUnauthorized
	}

	var attributed *models.Reseller
	resellerID := p.ResellerID
	if who.Role == models.RoleReseller {
		rs, err := e.resellers.GetByUserID(ctx, who.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrResellerProfileMissing
			}
			return nil, err
		}
		attributed = rs
		resellerID = &rs.ID
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	expiresAt := now.Add(time.Duration(p.Days) * 24 * time.Hour)

	token, err := e.codec.Encode(Claims{
		LicenseID:  id,
		OwnerEmail: p.OwnerEmail,
		Plan:       p.Plan,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
		MaxDevices: p.MaxDevices,
	})
	if err != nil {
		return nil, err
	}
	humanKey, err := NewHumanKey()
	if err != nil {
		return nil, err
	}

	lic := &models.License{
		ID:         id,
		Token:      token,
		HumanKey:   humanKey,
		OwnerEmail: p.OwnerEmail,
		Plan:       p.Plan,
		Status:     models.StatusActive,
		MaxDevices: p.MaxDevices,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
		ResellerID: resellerID,
		Metadata:   models.JSONB("{}"),
	}

	if attributed != nil {
		err = e.store.CreateAttributed(ctx, attributed.ID, lic)
	} else {
		err = e.store.Create(ctx, lic)
	}
	if err != nil {
		return nil, err
	}

	e.lg.Infow("license generated",
		"license_id", lic.ID, "plan", lic.Plan, "owner", lic.OwnerEmail,
		"max_devices", lic.MaxDevices, "expires_at", lic.ExpiresAt)
	return lic, nil
}

// Activate binds a hardware id to the license named by the token.
// Re-activation by an already registered hwid is idempotent and only
// refreshes last-seen.
func (e *Engine) Activate(ctx context.Context, token, hwid string, info map[string]any) (*ActivationResult, error) {
	claims, err := e.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	lic, err := e.store.GetByID(ctx, claims.LicenseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch effectiveStatus(lic, now) {
	case models.StatusRevoked:
		return nil, ErrRevoked
	case models.StatusExpired:
		e.markExpired(ctx, lic)
		return nil, ErrExpired
	}

	// Serialize count-then-register per license so two concurrent
	// activations cannot both take the last device slot.
	e.activation.Lock(lic.ID)
	defer e.activation.Unlock(lic.ID)

	dev, err := e.devices.Find(ctx, lic.ID, hwid)
	switch {
	case err == nil:
		dev.LastSeen = now
		if err := e.devices.Touch(ctx, dev); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrNotFound):
		count, err := e.devices.Count(ctx, lic.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(lic.MaxDevices) {
			return nil, ErrDeviceLimitReached
		}
		dev = &models.Device{
			LicenseID:   lic.ID,
			HWID:        hwid,
			DeviceInfo:  models.Object(info),
			ActivatedAt: now,
			LastSeen:    now,
		}
		if err := e.devices.Register(ctx, dev); err != nil {
			return nil, err
		}
		e.lg.Infow("device activated", "license_id", lic.ID, "hwid", hwid)
	default:
		return nil, err
	}

	lic.LastValidated = &now
	if err := e.store.Update(ctx, lic); err != nil {
		return nil, err
	}
	return &ActivationResult{License: lic, OfflineDays: e.offlineDays}, nil
}

// Validate re-confirms a previously activated device. It never registers
// devices; a hwid that skipped Activate is rejected.
func (e *Engine) Validate(ctx context.Context, token, hwid string) (*ValidationResult, error) {
	claims, err := e.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	lic, err := e.store.GetByID(ctx, claims.LicenseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch effectiveStatus(lic, now) {
	case models.StatusRevoked:
		return nil, ErrRevoked
	case models.StatusExpired:
		e.markExpired(ctx, lic)
		return nil, ErrExpired
	}

	dev, err := e.devices.Find(ctx, lic.ID, hwid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrDeviceNotActivated
		}
		return nil, err
	}
	dev.LastSeen = now
	if err := e.devices.Touch(ctx, dev); err != nil {
		return nil, err
	}
	lic.LastValidated = &now
	if err := e.store.Update(ctx, lic); err != nil {
		return nil, err
	}
	return &ValidationResult{Status: lic.Status, ExpiresAt: lic.ExpiresAt, Plan: lic.Plan}, nil
}

// Revoke terminates a license unconditionally. There is no un-revoke.
func (e *Engine) Revoke(ctx context.Context, licenseID string, who Identity) error {
	if who.Role != models.RoleAdmin {
		return ErrUnauthorized
	}
	lic, err := e.store.GetByID(ctx, licenseID)
	if err != nil {
		return err
	}
	lic.Status = models.StatusRevoked
	if err := e.store.Update(ctx, lic); err != nil {
		return err
	}
	e.lg.Infow("license revoked", "license_id", lic.ID, "by", who.UserID)
	return nil
}

// Extend moves expiry forward and re-signs the token. An Expired license
// whose new expiry lands in the future becomes Active again; a Revoked
// license stays revoked and the call fails.
func (e *Engine) Extend(ctx context.Context, licenseID string, days int, who Identity) (*models.License, error) {
	if who.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	lic, err := e.store.GetByID(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	if lic.Status == models.StatusRevoked {
		return nil, ErrRevoked
	}

	now := time.Now().UTC()
	lic.ExpiresAt = lic.ExpiresAt.Add(time.Duration(days) * 24 * time.Hour)
	token, err := e.codec.Encode(Claims{
		LicenseID:  lic.ID,
		OwnerEmail: lic.OwnerEmail,
		Plan:       lic.Plan,
		IssuedAt:   lic.IssuedAt,
		ExpiresAt:  lic.ExpiresAt,
		MaxDevices: lic.MaxDevices,
	})
	if err != nil {
		return nil, err
	}
	lic.Token = token
	if lic.Status == models.StatusExpired && now.Before(lic.ExpiresAt) {
		lic.Status = models.StatusActive
	}
	if err := e.store.Update(ctx, lic); err != nil {
		return nil, err
	}
	e.lg.Infow("license extended", "license_id", lic.ID, "days", days, "expires_at", lic.ExpiresAt)
	return lic, nil
}

// Get returns a license with its devices. Regular users may only read
// licenses issued to their own email.
func (e *Engine) Get(ctx context.Context, licenseID string, who Identity) (*Detail, error) {
	lic, err := e.store.GetByID(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	if who.Role == models.RoleUser && who.Email != lic.OwnerEmail {
		return nil, ErrUnauthorized
	}
	devices, err := e.devices.ListByLicense(ctx, lic.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{License: lic, Devices: devices}, nil
}

// GetByHumanKey resolves the cosmetic key to the same detail view.
func (e *Engine) GetByHumanKey(ctx context.Context, key string, who Identity) (*Detail, error) {
	lic, err := e.store.GetByHumanKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.Get(ctx, lic.ID, who)
}

// List is the admin listing with filter and pagination.
func (e *Engine) List(ctx context.Context, f ListFilter, who Identity) ([]models.License, int64, error) {
	if who.Role != models.RoleAdmin {
		return nil, 0, ErrUnauthorized
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return e.store.List(ctx, f)
}
