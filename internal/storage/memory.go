package storage

import (
	"context"
	"strings"
	"sync"

	"liftcore/internal/license"
	"liftcore/internal/models"
)

// Mem holds an in-memory rendition of the licensing tables behind one
// mutex. The per-contract views returned by Licenses, Devices and
// Resellers back the engine tests and local development; the coarse lock
// gives them the same atomicity the GORM adapters get from the database.
type Mem struct {
	mu         sync.Mutex
	licenses   map[string]*models.License
	byKey      map[string]string
	devices    map[string][]*models.Device
	resellers  map[int]*models.Reseller
	nextDevice int64
	nextRes    int
}

func NewMem() *Mem {
	return &Mem{
		licenses:  make(map[string]*models.License),
		byKey:     make(map[string]string),
		devices:   make(map[string][]*models.Device),
		resellers: make(map[int]*models.Reseller),
	}
}

func (m *Mem) Licenses() license.Store           { return &memLicenses{m} }
func (m *Mem) Devices() license.DeviceRegistry   { return &memDevices{m} }
func (m *Mem) Resellers() license.ResellerLedger { return &memResellers{m} }

// AddReseller seeds a reseller profile and returns its assigned id.
func (m *Mem) AddReseller(rs models.Reseller) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRes++
	rs.ID = m.nextRes
	m.resellers[rs.ID] = &rs
	return rs.ID
}

// Reseller returns a copy of the stored profile, for assertions.
func (m *Mem) Reseller(id int) (models.Reseller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs, ok := m.resellers[id]
	if !ok {
		return models.Reseller{}, false
	}
	return *rs, true
}

type memLicenses struct{ m *Mem }

func (s *memLicenses) Create(ctx context.Context, lic *models.License) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.insertLocked(lic)
	return nil
}

func (s *memLicenses) CreateAttributed(ctx context.Context, resellerID int, lic *models.License) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	rs, ok := s.m.resellers[resellerID]
	if !ok {
		return license.ErrNotFound
	}
	if rs.UsedQuota >= rs.Quota {
		return license.ErrQuotaExceeded
	}
	rs.UsedQuota++
	s.m.insertLocked(lic)
	return nil
}

func (m *Mem) insertLocked(lic *models.License) {
	cp := *lic
	m.licenses[cp.ID] = &cp
	m.byKey[cp.HumanKey] = cp.ID
}

func (s *memLicenses) GetByID(ctx context.Context, id string) (*models.License, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	lic, ok := s.m.licenses[id]
	if !ok {
		return nil, license.ErrNotFound
	}
	cp := *lic
	return &cp, nil
}

func (s *memLicenses) GetByHumanKey(ctx context.Context, key string) (*models.License, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	id, ok := s.m.byKey[key]
	if !ok {
		return nil, license.ErrNotFound
	}
	cp := *s.m.licenses[id]
	return &cp, nil
}

func (s *memLicenses) Update(ctx context.Context, lic *models.License) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.licenses[lic.ID]; !ok {
		return license.ErrNotFound
	}
	cp := *lic
	s.m.licenses[cp.ID] = &cp
	return nil
}

func (s *memLicenses) List(ctx context.Context, f license.ListFilter) ([]models.License, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var all []models.License
	for _, lic := range s.m.licenses {
		if f.Status != "" && lic.Status != f.Status {
			continue
		}
		if f.Search != "" && !matchesSearch(lic, f.Search) {
			continue
		}
		all = append(all, *lic)
	}
	total := int64(len(all))
	if f.Skip >= len(all) {
		return nil, total, nil
	}
	all = all[f.Skip:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func matchesSearch(lic *models.License, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(lic.OwnerEmail), s) ||
		strings.Contains(strings.ToLower(lic.HumanKey), s)
}

type memDevices struct{ m *Mem }

func (s *memDevices) Find(ctx context.Context, licenseID, hwid string) (*models.Device, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, dev := range s.m.devices[licenseID] {
		if dev.HWID == hwid {
			cp := *dev
			return &cp, nil
		}
	}
	return nil, license.ErrNotFound
}

func (s *memDevices) Count(ctx context.Context, licenseID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(len(s.m.devices[licenseID])), nil
}

func (s *memDevices) Register(ctx context.Context, dev *models.Device) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.nextDevice++
	dev.ID = s.m.nextDevice
	cp := *dev
	s.m.devices[cp.LicenseID] = append(s.m.devices[cp.LicenseID], &cp)
	return nil
}

func (s *memDevices) Touch(ctx context.Context, dev *models.Device) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, d := range s.m.devices[dev.LicenseID] {
		if d.ID == dev.ID {
			d.LastSeen = dev.LastSeen
			return nil
		}
	}
	return license.ErrNotFound
}

func (s *memDevices) ListByLicense(ctx context.Context, licenseID string) ([]models.Device, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]models.Device, 0, len(s.m.devices[licenseID]))
	for _, dev := range s.m.devices[licenseID] {
		out = append(out, *dev)
	}
	return out, nil
}

type memResellers struct{ m *Mem }

func (s *memResellers) GetByUserID(ctx context.Context, userID string) (*models.Reseller, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, rs := range s.m.resellers {
		if rs.UserID == userID {
			cp := *rs
			return &cp, nil
		}
	}
	return nil, license.ErrNotFound
}

func (s *memResellers) GetByID(ctx context.Context, id int) (*models.Reseller, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	rs, ok := s.m.resellers[id]
	if !ok {
		return nil, license.ErrNotFound
	}
	cp := *rs
	return &cp, nil
}

func (s *memResellers) List(ctx context.Context) ([]models.Reseller, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]models.Reseller, 0, len(s.m.resellers))
	for _, rs := range s.m.resellers {
		out = append(out, *rs)
	}
	return out, nil
}
