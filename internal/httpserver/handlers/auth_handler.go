package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"liftcore/internal/auth"
	"liftcore/internal/config"
	"liftcore/internal/models"
)

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(db *gorm.DB, cfg config.Config, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
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
		u := models.User{Email: req.Email, PasswordHash: hash, Role: models.RoleUser, IsActive: true, CreatedAt: time.Now()}
		if err := db.Create(&u).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tok, err := auth.Sign([]byte(cfg.JWTSecret), u, cfg.JWTExpiresIn)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"access_token": tok, "token_type": "bearer"})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, cfg config.Config, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "email = ?", strings.ToLower(req.Email)).Error; err != nil {
			http.Error(w, "incorrect email or password", http.StatusUnauthorized)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			http.Error(w, "incorrect email or password", http.StatusUnauthorized)
			return
		}
		if !u.IsActive {
			http.Error(w, "account is inactive", http.StatusForbidden)
			return
		}
		now := time.Now()
		_ = db.Model(&u).UpdateColumn("last_login", now).Error
		tok, err := auth.Sign([]byte(cfg.JWTSecret), u, cfg.JWTExpiresIn)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"access_token": tok, "token_type": "bearer"})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		var u models.User
		if err := db.First(&u, "id = ?", sub).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{
			"id": u.ID, "email": u.Email, "role": u.Role, "is_active": u.IsActive,
		})
	}
}
