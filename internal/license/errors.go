package license

import "errors"

// Every rejection the engine produces is one of these kinds so the
// transport layer can map them to precise responses. None of them are
// transient; retrying without changing the request cannot succeed.
var (
	ErrInvalidToken           = errors.New("invalid license token")
	ErrNotFound               = errors.New("not found")
	ErrRevoked                = errors.New("license has been revoked")
	ErrExpired                = errors.New("license has expired")
	ErrDeviceLimitReached     = errors.New("maximum devices limit reached")
	ErrDeviceNotActivated     = errors.New("device not activated")
	ErrQuotaExceeded          = errors.New("reseller quota exceeded")
	ErrResellerProfileMissing = errors.New("reseller profile not found")
	ErrUnauthorized           = errors.New("access denied")
)
