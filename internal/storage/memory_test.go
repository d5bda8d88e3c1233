package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcore/internal/license"
	"liftcore/internal/models"
	"liftcore/internal/storage"
)

func seedLicense(t *testing.T, mem *storage.Mem, owner, key string, status models.LicenseStatus) *models.License {
	t.Helper()
	lic := &models.License{
		ID:         uuid.NewString(),
		Token:      "tok-" + uuid.NewString(),
		HumanKey:   key,
		OwnerEmail: owner,
		Plan:       "pro",
		Status:     status,
		MaxDevices: 1,
		IssuedAt:   time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, mem.Licenses().Create(context.Background(), lic))
	return lic
}

func TestMemLicenseLookups(t *testing.T) {
	mem := storage.NewMem()
	lic := seedLicense(t, mem, "a@x.com", "LFT-0000-0000-0000-0001", models.StatusActive)

	got, err := mem.Licenses().GetByID(context.Background(), lic.ID)
	require.NoError(t, err)
	assert.Equal(t, lic.HumanKey, got.HumanKey)

	got, err = mem.Licenses().GetByHumanKey(context.Background(), lic.HumanKey)
	require.NoError(t, err)
	assert.Equal(t, lic.ID, got.ID)

	_, err = mem.Licenses().GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, license.ErrNotFound)
}

func TestMemUpdateIsolation(t *testing.T) {
	mem := storage.NewMem()
	lic := seedLicense(t, mem, "a@x.com", "LFT-0000-0000-0000-0002", models.StatusActive)

	got, err := mem.Licenses().GetByID(context.Background(), lic.ID)
	require.NoError(t, err)
	got.Status = models.StatusRevoked

	// Mutating a returned copy must not leak into the store.
	unchanged, err := mem.Licenses().GetByID(context.Background(), lic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, unchanged.Status)

	require.NoError(t, mem.Licenses().Update(context.Background(), got))
	updated, err := mem.Licenses().GetByID(context.Background(), lic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, updated.Status)
}

func TestMemListFilters(t *testing.T) {
	mem := storage.NewMem()
	seedLicense(t, mem, "alice@x.com", "LFT-AAAA-0000-0000-0001", models.StatusActive)
	seedLicense(t, mem, "bob@y.com", "LFT-BBBB-0000-0000-0002", models.StatusRevoked)

	out, total, err := mem.Licenses().List(context.Background(), license.ListFilter{Status: models.StatusRevoked, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, out, 1)
	assert.Equal(t, "bob@y.com", out[0].OwnerEmail)

	_, total, err = mem.Licenses().List(context.Background(), license.ListFilter{Search: "ALICE", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = mem.Licenses().List(context.Background(), license.ListFilter{Search: "bbbb", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestMemCreateAttributed(t *testing.T) {
	mem := storage.NewMem()
	id := mem.AddReseller(models.Reseller{UserID: uuid.NewString(), Name: "R", Quota: 1})

	lic := &models.License{ID: uuid.NewString(), Token: "t1", HumanKey: "LFT-0000-0000-0000-0003"}
	require.NoError(t, mem.Licenses().CreateAttributed(context.Background(), id, lic))

	lic2 := &models.License{ID: uuid.NewString(), Token: "t2", HumanKey: "LFT-0000-0000-0000-0004"}
	err := mem.Licenses().CreateAttributed(context.Background(), id, lic2)
	assert.ErrorIs(t, err, license.ErrQuotaExceeded)

	// Nothing written on a failed reservation.
	_, err = mem.Licenses().GetByID(context.Background(), lic2.ID)
	assert.ErrorIs(t, err, license.ErrNotFound)

	err = mem.Licenses().CreateAttributed(context.Background(), 999, &models.License{ID: uuid.NewString()})
	assert.ErrorIs(t, err, license.ErrNotFound)

	rs, ok := mem.Reseller(id)
	require.True(t, ok)
	assert.Equal(t, 1, rs.UsedQuota)
}

func TestMemDevices(t *testing.T) {
	mem := storage.NewMem()
	licID := uuid.NewString()
	now := time.Now()

	_, err := mem.Devices().Find(context.Background(), licID, "H1")
	assert.ErrorIs(t, err, license.ErrNotFound)

	dev := &models.Device{LicenseID: licID, HWID: "H1", ActivatedAt: now, LastSeen: now}
	require.NoError(t, mem.Devices().Register(context.Background(), dev))
	assert.NotZero(t, dev.ID)

	found, err := mem.Devices().Find(context.Background(), licID, "H1")
	require.NoError(t, err)
	assert.Equal(t, dev.ID, found.ID)

	found.LastSeen = now.Add(time.Minute)
	require.NoError(t, mem.Devices().Touch(context.Background(), found))
	again, err := mem.Devices().Find(context.Background(), licID, "H1")
	require.NoError(t, err)
	assert.True(t, again.LastSeen.Equal(now.Add(time.Minute)))

	n, err := mem.Devices().Count(context.Background(), licID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	devs, err := mem.Devices().ListByLicense(context.Background(), licID)
	require.NoError(t, err)
	assert.Len(t, devs, 1)
}

func TestMemResellerLookups(t *testing.T) {
	mem := storage.NewMem()
	userID := uuid.NewString()
	id := mem.AddReseller(models.Reseller{UserID: userID, Name: "R", Quota: 5})

	rs, err := mem.Resellers().GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, id, rs.ID)

	rs, err = mem.Resellers().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "R", rs.Name)

	_, err = mem.Resellers().GetByUserID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, license.ErrNotFound)

	all, err := mem.Resellers().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
