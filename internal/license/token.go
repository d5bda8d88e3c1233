package license

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenType discriminates license tokens from any other token signed with
// the same process secret (e.g. API session tokens).
const tokenType = "license"

// Claims is the payload signed into a license token. Expiry here is
// advisory: Decode never checks it, callers compare against the stored row.
type Claims struct {
	LicenseID  string
	OwnerEmail string
	Plan       string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	MaxDevices int
}

// Codec signs and verifies license tokens with a symmetric secret held for
// the process lifetime.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(cl Claims) (string, error) {
	payload := jwt.MapClaims{
		"license_id":  cl.LicenseID,
		"owner_email": cl.OwnerEmail,
		"plan":        cl.Plan,
		"issued_at":   cl.IssuedAt.UTC().Format(time.RFC3339),
		"expires_at":  cl.ExpiresAt.UTC().Format(time.RFC3339),
		"max_devices": cl.MaxDevices,
		"type":        tokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.secret)
}

// Decode verifies the signature and claim shape and rejects tokens whose
// discriminator is not "license". It deliberately does not check expiry.
func (c *Codec) Decode(token string) (Claims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	if typ, _ := mapc["type"].(string); typ != tokenType {
		return Claims{}, ErrInvalidToken
	}
	id, _ := mapc["license_id"].(string)
	if id == "" {
		return Claims{}, ErrInvalidToken
	}
	issued, err := parseClaimTime(mapc["issued_at"])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	expires, err := parseClaimTime(mapc["expires_at"])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mapc["owner_email"].(string)
	plan, _ := mapc["plan"].(string)
	maxDevices, _ := mapc["max_devices"].(float64)
	return Claims{
		LicenseID:  id,
		OwnerEmail: email,
		Plan:       plan,
		IssuedAt:   issued,
		ExpiresAt:  expires,
		MaxDevices: int(maxDevices),
	}, nil
}

func parseClaimTime(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("claim is not a timestamp")
	}
	return time.Parse(time.RFC3339, s)
}
