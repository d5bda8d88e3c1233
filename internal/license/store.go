package license

import (
	"context"

	"liftcore/internal/models"
)

// ListFilter narrows admin license listings. Search matches owner email
// and human key, case-insensitively.
type ListFilter struct {
	Status models.LicenseStatus
	Search string
	Skip   int
	Limit  int
}

// Store is the durable license table. Lookups that miss return ErrNotFound.
// Only per-row atomicity is assumed; CreateAttributed is the one compound
// write and implementations must make it atomic.
type Store interface {
	Create(ctx context.Context, lic *models.License) error
	// CreateAttributed reserves one unit of the reseller's issuance quota
	// and inserts the license as a single atomic action. It returns
	// ErrQuotaExceeded when the quota is exhausted and ErrNotFound when the
	// reseller does not exist; in both cases nothing is written.
	CreateAttributed(ctx context.Context, resellerID int, lic *models.License) error
	GetByID(ctx context.Context, id string) (*models.License, error)
	GetByHumanKey(ctx context.Context, key string) (*models.License, error)
	Update(ctx context.Context, lic *models.License) error
	List(ctx context.Context, f ListFilter) ([]models.License, int64, error)
}

// DeviceRegistry tracks activated hardware per license.
type DeviceRegistry interface {
	Find(ctx context.Context, licenseID, hwid string) (*models.Device, error)
	Count(ctx context.Context, licenseID string) (int64, error)
	Register(ctx context.Context, dev *models.Device) error
	// Touch persists an updated last-seen timestamp.
	Touch(ctx context.Context, dev *models.Device) error
	ListByLicense(ctx context.Context, licenseID string) ([]models.Device, error)
}

// ResellerLedger resolves reseller profiles for attribution.
type ResellerLedger interface {
	GetByUserID(ctx context.Context, userID string) (*models.Reseller, error)
	GetByID(ctx context.Context, id int) (*models.Reseller, error)
	List(ctx context.Context) ([]models.Reseller, error)
}
