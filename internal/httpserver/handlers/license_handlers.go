package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"liftcore/internal/auth"
	"liftcore/internal/license"
	"liftcore/internal/models"
)

func identity(r *http.Request) license.Identity {
	c := auth.FromContext(r.Context())
	return license.Identity{UserID: c.Subject, Email: c.Email, Role: c.Role}
}

type generateReq struct {
	OwnerEmail string `json:"owner_email"`
	Plan       string `json:"plan"`
	Days       int    `json:"days"`
	MaxDevices int    `json:"max_devices"`
	ResellerID *int   `json:"reseller_id,omitempty"`
}

func GenerateLicense(eng *license.Engine, audit Auditor, defaultMaxDevices int, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.OwnerEmail = strings.TrimSpace(strings.ToLower(req.OwnerEmail))
		if req.OwnerEmail == "" || !strings.Contains(req.OwnerEmail, "@") {
			http.Error(w, "valid owner_email required", http.StatusBadRequest)
			return
		}
		if req.Plan == "" {
			http.Error(w, "plan required", http.StatusBadRequest)
			return
		}
		if req.Days < 1 {
			http.Error(w, "days must be >= 1", http.StatusBadRequest)
			return
		}
		if req.MaxDevices == 0 {
			req.MaxDevices = defaultMaxDevices
		}
		if req.MaxDevices < 1 {
			http.Error(w, "max_devices must be >= 1", http.StatusBadRequest)
			return
		}

		who := identity(r)
		lic, err := eng.Generate(r.Context(), license.GenerateParams{
			OwnerEmail: req.OwnerEmail,
			Plan:       req.Plan,
			Days:       req.Days,
			MaxDevices: req.MaxDevices,
			ResellerID: req.ResellerID,
		}, who)
		if err != nil {
			respondEngineError(w, err)
			return
		}

		audit.Record(r.Context(), &who.UserID, &lic.ID, "LICENSE_GENERATE", map[string]any{
			"plan": lic.Plan, "owner_email": lic.OwnerEmail, "days": req.Days,
		})
		respondJSON(w, map[string]any{
			"license_id":  lic.ID,
			"token":       lic.Token,
			"human_key":   lic.HumanKey,
			"owner_email": lic.OwnerEmail,
			"plan":        lic.Plan,
			"expires_at":  lic.ExpiresAt.Format(time.RFC3339),
			"max_devices": lic.MaxDevices,
		})
	}
}

type activateReq struct {
	Token      string         `json:"token"`
	HWID       string         `json:"hwid"`
	DeviceInfo map[string]any `json:"device_info"`
}

func ActivateLicense(eng *license.Engine, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Token == "" || strings.TrimSpace(req.HWID) == "" {
			http.Error(w, "token and hwid required", http.StatusBadRequest)
			return
		}
		res, err := eng.Activate(r.Context(), req.Token, req.HWID, req.DeviceInfo)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, map[string]any{
			"success":      true,
			"license_id":   res.License.ID,
			"plan":         res.License.Plan,
			"expires_at":   res.License.ExpiresAt.Format(time.RFC3339),
			"max_devices":  res.License.MaxDevices,
			"offline_days": res.OfflineDays,
		})
	}
}

type validateReq struct {
	Token string `json:"token"`
	HWID  string `json:"hwid"`
}

func ValidateLicense(eng *license.Engine, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Token == "" || strings.TrimSpace(req.HWID) == "" {
			http.Error(w, "token and hwid required", http.StatusBadRequest)
			return
		}
		res, err := eng.Validate(r.Context(), req.Token, req.HWID)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, map[string]any{
			"valid":      true,
			"status":     res.Status,
			"expires_at": res.ExpiresAt.Format(time.RFC3339),
			"plan":       res.Plan,
		})
	}
}

func RevokeLicense(eng *license.Engine, audit Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		who := identity(r)
		if err := eng.Revoke(r.Context(), id, who); err != nil {
			respondEngineError(w, err)
			return
		}
		audit.Record(r.Context(), &who.UserID, &id, "LICENSE_REVOKE", nil)
		respondJSON(w, map[string]any{"success": true, "message": "license revoked"})
	}
}

type extendReq struct {
	Days int `json:"days"`
}

func ExtendLicense(eng *license.Engine, audit Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req extendReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Days < 1 {
			http.Error(w, "days must be >= 1", http.StatusBadRequest)
			return
		}
		who := identity(r)
		lic, err := eng.Extend(r.Context(), id, req.Days, who)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		audit.Record(r.Context(), &who.UserID, &lic.ID, "LICENSE_EXTEND", map[string]any{"days": req.Days})
		respondJSON(w, map[string]any{
			"success":    true,
			"new_token":  lic.Token,
			"expires_at": lic.ExpiresAt.Format(time.RFC3339),
		})
	}
}

func GetLicense(eng *license.Engine, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := eng.Get(r.Context(), chi.URLParam(r, "id"), identity(r))
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, licenseDetailView(detail))
	}
}

func licenseDetailView(d *license.Detail) map[string]any {
	lic := d.License
	devices := make([]map[string]any, 0, len(d.Devices))
	for _, dev := range d.Devices {
		devices = append(devices, map[string]any{
			"hwid":         dev.HWID,
			"activated_at": dev.ActivatedAt.Format(time.RFC3339),
			"last_seen":    dev.LastSeen.Format(time.RFC3339),
		})
	}
	out := map[string]any{
		"id":          lic.ID,
		"human_key":   lic.HumanKey,
		"owner_email": lic.OwnerEmail,
		"plan":        lic.Plan,
		"status":      lic.Status,
		"issued_at":   lic.IssuedAt.Format(time.RFC3339),
		"expires_at":  lic.ExpiresAt.Format(time.RFC3339),
		"max_devices": lic.MaxDevices,
		"devices":     devices,
	}
	if lic.LastValidated != nil {
		out["last_validated"] = lic.LastValidated.Format(time.RFC3339)
	}
	return out
}

// ListLicenses is the admin listing with status filter, search over owner
// email and human key, and skip/limit pagination.
func ListLicenses(eng *license.Engine, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		skip, _ := strconv.Atoi(q.Get("skip"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		f := license.ListFilter{
			Status: models.LicenseStatus(q.Get("status")),
			Search: q.Get("search"),
			Skip:   skip,
			Limit:  limit,
		}
		licenses, total, err := eng.List(r.Context(), f, identity(r))
		if err != nil {
			respondEngineError(w, err)
			return
		}
		items := make([]map[string]any, 0, len(licenses))
		for i := range licenses {
			lic := &licenses[i]
			items = append(items, map[string]any{
				"id":          lic.ID,
				"human_key":   lic.HumanKey,
				"owner_email": lic.OwnerEmail,
				"plan":        lic.Plan,
				"status":      lic.Status,
				"issued_at":   lic.IssuedAt.Format(time.RFC3339),
				"expires_at":  lic.ExpiresAt.Format(time.RFC3339),
				"max_devices": lic.MaxDevices,
			})
		}
		respondJSON(w, map[string]any{"total": total, "licenses": items})
	}
}
