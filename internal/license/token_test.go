package license_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcore/internal/auth"
	"liftcore/internal/license"
	"liftcore/internal/models"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := license.NewCodec("test-secret")
	issued := time.Now().UTC().Truncate(time.Second)
	in := license.Claims{
		LicenseID:  "2b1e9c1e-0000-4000-8000-000000000001",
		OwnerEmail: "a@x.com",
		Plan:       "pro",
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(30 * 24 * time.Hour),
		MaxDevices: 3,
	}
	tok, err := codec.Encode(in)
	require.NoError(t, err)

	out, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, in.LicenseID, out.LicenseID)
	assert.Equal(t, in.OwnerEmail, out.OwnerEmail)
	assert.Equal(t, in.Plan, out.Plan)
	assert.True(t, in.IssuedAt.Equal(out.IssuedAt))
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	assert.Equal(t, in.MaxDevices, out.MaxDevices)
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := license.NewCodec("test-secret")
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Decode(tok)
		assert.ErrorIs(t, err, license.ErrInvalidToken, "token %q", tok)
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	issuer := license.NewCodec("secret-one")
	verifier := license.NewCodec("secret-two")
	tok, err := issuer.Encode(license.Claims{LicenseID: "id", IssuedAt: time.Now(), ExpiresAt: time.Now()})
	require.NoError(t, err)
	_, err = verifier.Decode(tok)
	assert.ErrorIs(t, err, license.ErrInvalidToken)
}

func TestCodecRejectsTampering(t *testing.T) {
	codec := license.NewCodec("test-secret")
	tok, err := codec.Encode(license.Claims{LicenseID: "id", IssuedAt: time.Now(), ExpiresAt: time.Now()})
	require.NoError(t, err)
	tampered := tok[:len(tok)-2] + "xx"
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, license.ErrInvalidToken)
}

// An API session token signed with the same secret must not pass as a
// license token: the discriminator claim separates the two purposes.
func TestCodecRejectsForeignTokenType(t *testing.T) {
	secret := "shared-secret"
	sessionTok, err := auth.Sign([]byte(secret), models.User{ID: "u1", Email: "a@x.com", Role: models.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	codec := license.NewCodec(secret)
	_, err = codec.Decode(sessionTok)
	assert.ErrorIs(t, err, license.ErrInvalidToken)
}
