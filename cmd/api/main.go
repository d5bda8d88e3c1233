package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"liftcore/internal/auth"
	"liftcore/internal/config"
	"liftcore/internal/httpserver"
	"liftcore/internal/license"
	"liftcore/internal/logger"
	"liftcore/internal/models"
	"liftcore/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Reseller{}, &models.License{}, &models.Device{}, &models.AuditLog{}); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, cfg, lg)

	codec := license.NewCodec(cfg.LicenseSecret)
	eng := license.NewEngine(
		storage.NewGormLicenses(db),
		storage.NewGormDevices(db),
		storage.NewGormResellers(db),
		codec,
		cfg.LicenseOfflineDays,
		lg,
	)

	router := httpserver.NewRouter(db, eng, storage.NewGormAudit(db), cfg, lg)
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

func seedDefaultAdmin(db *gorm.DB, cfg config.Config, lg *zap.SugaredLogger) {
	if cfg.SeedAdminPassword == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", cfg.SeedAdminEmail).Count(&count)
	if count > 0 {
		return
	}
	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		lg.Warnw("admin seed skipped", "error", err)
		return
	}
	u := models.User{Email: cfg.SeedAdminEmail, PasswordHash: hash, Role: models.RoleAdmin, IsActive: true, CreatedAt: time.Now()}
	if err := db.Create(&u).Error; err != nil {
		lg.Warnw("admin seed failed", "error", err)
		return
	}
	lg.Infow("seeded default admin", "email", cfg.SeedAdminEmail)
}
