package models

import "time"

type UserRole string

const (
	RoleUser     UserRole = "user"
	RoleReseller UserRole = "reseller"
	RoleAdmin    UserRole = "admin"
)

type LicenseStatus string

const (
	StatusActive  LicenseStatus = "active"
	StatusExpired LicenseStatus = "expired"
	StatusRevoked LicenseStatus = "revoked"
	StatusPending LicenseStatus = "pending"
)

type User struct {
	ID           string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;default:user" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

type Reseller struct {
	ID                int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	CommissionPercent float64   `gorm:"type:numeric(5,2);not null;default:10" json:"commission_percent"`
	Quota             int       `gorm:"not null;default:100" json:"quota"`
	UsedQuota         int       `gorm:"not null;default:0" json:"used_quota"`
	CreatedAt         time.Time `json:"created_at"`
}

// License rows are the authoritative record; the signed token carries the
// same claims at issue time, but revocation and extension only ever touch
// the row, so expiry and status are always checked against the row.
type License struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	Token         string        `gorm:"type:text;uniqueIndex;not null" json:"-"`
	HumanKey      string        `gorm:"size:50;uniqueIndex;not null" json:"human_key"`
	OwnerEmail    string        `gorm:"size:255;index;not null" json:"owner_email"`
	Plan          string        `gorm:"size:50;not null" json:"plan"`
	Status        LicenseStatus `gorm:"size:20;index;not null;default:active" json:"status"`
	MaxDevices    int           `gorm:"not null;default:1" json:"max_devices"`
	IssuedAt      time.Time     `json:"issued_at"`
	ExpiresAt     time.Time     `gorm:"not null" json:"expires_at"`
	LastValidated *time.Time    `json:"last_validated,omitempty"`
	ResellerID    *int          `gorm:"index" json:"reseller_id,omitempty"`
	Metadata      JSONB         `gorm:"type:jsonb;default:'{}'::jsonb" json:"metadata"`
}

// Device is the sole record that a hardware id holds one of its license's
// slots. Uniqueness of (license_id, hwid) is enforced by the index.
type Device struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LicenseID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_devices_license_hwid" json:"license_id"`
	HWID        string    `gorm:"size:255;not null;uniqueIndex:idx_devices_license_hwid" json:"hwid"`
	DeviceInfo  JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"device_info"`
	ActivatedAt time.Time `json:"activated_at"`
	LastSeen    time.Time `json:"last_seen"`
}

type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *string   `gorm:"type:uuid;index" json:"user_id,omitempty"`
	LicenseID *string   `gorm:"type:uuid;index" json:"license_id,omitempty"`
	Action    string    `gorm:"not null" json:"action"`
	Metadata  JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
