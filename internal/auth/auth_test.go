package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcore/internal/auth"
	"liftcore/internal/models"
)

var secret = []byte("auth-test-secret")

func TestSignVerifyRoundTrip(t *testing.T) {
	u := models.User{ID: "u1", Email: "a@x.com", Role: models.RoleReseller}
	tok, err := auth.Sign(secret, u, time.Hour)
	require.NoError(t, err)

	claims, err := auth.Verify(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleReseller, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := auth.Sign(secret, models.User{ID: "u1"}, time.Hour)
	require.NoError(t, err)
	_, err = auth.Verify([]byte("other"), tok)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := auth.Sign(secret, models.User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = auth.Verify(secret, tok)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(hash, "s3cret"))
	assert.Error(t, auth.CheckPassword(hash, "wrong"))
}

func TestJWTAuthMiddleware(t *testing.T) {
	var got auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := auth.JWTAuth(secret)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := auth.Sign(secret, models.User{ID: "u1", Email: "a@x.com", Role: models.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", got.Subject)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := auth.RequireRole(models.RoleAdmin, models.RoleReseller)(next)

	for role, want := range map[models.UserRole]int{
		models.RoleAdmin:    http.StatusOK,
		models.RoleReseller: http.StatusOK,
		models.RoleUser:     http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithClaims(req.Context(), auth.Claims{Subject: "u", Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %s", role)
	}
}
