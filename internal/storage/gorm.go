package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"liftcore/internal/license"
	"liftcore/internal/models"
)

// GORM-backed implementations of the licensing store contracts.

type GormLicenses struct {
	db *gorm.DB
}

func NewGormLicenses(db *gorm.DB) *GormLicenses { return &GormLicenses{db: db} }

func (s *GormLicenses) Create(ctx context.Context, lic *models.License) error {
	return s.db.WithContext(ctx).Create(lic).Error
}

// CreateAttributed charges the reseller's quota and inserts the license in
// one transaction. The conditional UPDATE is the atomicity point: it only
// takes effect while used_quota < quota, so concurrent generations from
// the same reseller cannot overspend.
func (s *GormLicenses) CreateAttributed(ctx context.Context, resellerID int, lic *models.License) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reseller{}).
			Where("id = ? AND used_quota < quota", resellerID).
			UpdateColumn("used_quota", gorm.Expr("used_quota + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Reseller{}).Where("id = ?", resellerID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return license.ErrNotFound
			}
			return license.ErrQuotaExceeded
		}
		return tx.Create(lic).Error
	})
}

func (s *GormLicenses) GetByID(ctx context.Context, id string) (*models.License, error) {
	var lic models.License
	if err := s.db.WithContext(ctx).First(&lic, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &lic, nil
}

func (s *GormLicenses) GetByHumanKey(ctx context.Context, key string) (*models.License, error) {
	var lic models.License
	if err := s.db.WithContext(ctx).First(&lic, "human_key = ?", key).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &lic, nil
}

func (s *GormLicenses) Update(ctx context.Context, lic *models.License) error {
	return s.db.WithContext(ctx).Save(lic).Error
}

func (s *GormLicenses) List(ctx context.Context, f license.ListFilter) ([]models.License, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.License{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Where("owner_email ILIKE ? OR human_key ILIKE ?", pat, pat)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.License
	err := q.Order("issued_at desc").Offset(f.Skip).Limit(f.Limit).Find(&out).Error
	return out, total, err
}

type GormDevices struct {
	db *gorm.DB
}

func NewGormDevices(db *gorm.DB) *GormDevices { return &GormDevices{db: db} }

func (s *GormDevices) Find(ctx context.Context, licenseID, hwid string) (*models.Device, error) {
	var dev models.Device
	err := s.db.WithContext(ctx).First(&dev, "license_id = ? AND hwid = ?", licenseID, hwid).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &dev, nil
}

func (s *GormDevices) Count(ctx context.Context, licenseID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Device{}).Where("license_id = ?", licenseID).Count(&n).Error
	return n, err
}

func (s *GormDevices) Register(ctx context.Context, dev *models.Device) error {
	return s.db.WithContext(ctx).Create(dev).Error
}

func (s *GormDevices) Touch(ctx context.Context, dev *models.Device) error {
	return s.db.WithContext(ctx).Model(dev).UpdateColumn("last_seen", dev.LastSeen).Error
}

func (s *GormDevices) ListByLicense(ctx context.Context, licenseID string) ([]models.Device, error) {
	var out []models.Device
	err := s.db.WithContext(ctx).Where("license_id = ?", licenseID).Order("activated_at asc").Find(&out).Error
	return out, err
}

type GormResellers struct {
	db *gorm.DB
}

func NewGormResellers(db *gorm.DB) *GormResellers { return &GormResellers{db: db} }

func (s *GormResellers) GetByUserID(ctx context.Context, userID string) (*models.Reseller, error) {
	var rs models.Reseller
	if err := s.db.WithContext(ctx).First(&rs, "user_id = ?", userID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &rs, nil
}

func (s *GormResellers) GetByID(ctx context.Context, id int) (*models.Reseller, error) {
	var rs models.Reseller
	if err := s.db.WithContext(ctx).First(&rs, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &rs, nil
}

func (s *GormResellers) List(ctx context.Context) ([]models.Reseller, error) {
	var out []models.Reseller
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// GormAudit writes audit trail rows. Failures are swallowed; auditing
// never blocks the request that triggered it.
type GormAudit struct {
	db *gorm.DB
}

func NewGormAudit(db *gorm.DB) *GormAudit { return &GormAudit{db: db} }

func (a *GormAudit) Record(ctx context.Context, userID, licenseID *string, action string, meta map[string]any) {
	_ = a.db.WithContext(ctx).Create(&models.AuditLog{
		UserID:    userID,
		LicenseID: licenseID,
		Action:    action,
		Metadata:  models.Object(meta),
		CreatedAt: time.Now(),
	}).Error
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return license.ErrNotFound
	}
	return err
}
