package handlers

import "context"

// Auditor records administrative actions. Implementations must not fail
// the request on audit errors.
type Auditor interface {
	Record(ctx context.Context, userID, licenseID *string, action string, meta map[string]any)
}

// NopAuditor discards audit records.
type NopAuditor struct{}

func (NopAuditor) Record(ctx context.Context, userID, licenseID *string, action string, meta map[string]any) {
}
