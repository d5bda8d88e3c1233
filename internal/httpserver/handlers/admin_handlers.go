package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liftcore/internal/auth"
	"liftcore/internal/models"
)

type createResellerReq struct {
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	Name              string  `json:"name"`
	CommissionPercent float64 `json:"commission_percent"`
	Quota             int     `json:"quota"`
}

// CreateReseller provisions the reseller's user account and quota profile
// in a single transaction.
func CreateReseller(db *gorm.DB, audit Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createResellerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "email, password and name required", http.StatusBadRequest)
			return
		}
		if req.CommissionPercent == 0 {
			req.CommissionPercent = 10
		}
		if req.Quota == 0 {
			req.Quota = 100
		}
		if req.Quota < 0 {
			http.Error(w, "quota must be >= 0", http.StatusBadRequest)
			return
		}

		var count int64
		db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
		if count > 0 {
			http.Error(w, "email already registered", http.StatusBadRequest)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}

		u := models.User{Email: req.Email, PasswordHash: hash, Role: models.RoleReseller, IsActive: true, CreatedAt: time.Now()}
		rs := models.Reseller{Name: strings.TrimSpace(req.Name), CommissionPercent: req.CommissionPercent, Quota: req.Quota, CreatedAt: time.Now()}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			rs.UserID = u.ID
			return tx.Create(&rs).Error
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		uid := auth.Subject(r.Context())
		audit.Record(r.Context(), &uid, nil, "RESELLER_CREATE", map[string]any{
			"reseller_id": rs.ID, "email": u.Email, "quota": rs.Quota,
		})
		respondJSON(w, map[string]any{
			"id":                 rs.ID,
			"user_id":            u.ID,
			"email":              u.Email,
			"name":               rs.Name,
			"commission_percent": rs.CommissionPercent,
			"quota":              rs.Quota,
		})
	}
}

func ListResellers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resellers []models.Reseller
		if err := db.Order("created_at desc").Find(&resellers).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		items := make([]map[string]any, 0, len(resellers))
		for i := range resellers {
			rs := &resellers[i]
			var u models.User
			email := ""
			if err := db.First(&u, "id = ?", rs.UserID).Error; err == nil {
				email = u.Email
			}
			items = append(items, map[string]any{
				"id":                 rs.ID,
				"name":               rs.Name,
				"email":              email,
				"commission_percent": rs.CommissionPercent,
				"quota":              rs.Quota,
				"used_quota":         rs.UsedQuota,
				"created_at":         rs.CreatedAt.Format(time.RFC3339),
			})
		}
		respondJSON(w, map[string]any{"resellers": items})
	}
}
