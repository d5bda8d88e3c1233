package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"liftcore/internal/auth"
	"liftcore/internal/config"
	"liftcore/internal/httpserver/handlers"
	"liftcore/internal/license"
	"liftcore/internal/models"
)

func NewRouter(db *gorm.DB, eng *license.Engine, audit handlers.Auditor, cfg config.Config, lg *zap.SugaredLogger) http.Handler {
	secret := []byte(cfg.JWTSecret)
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/register", handlers.Register(db, cfg, lg))
	r.Post("/v1/auth/login", handlers.Login(db, cfg, lg))

	// Device-facing endpoints: the license token is the only credential.
	r.Post("/v1/licenses/activate", handlers.ActivateLicense(eng, lg))
	r.Post("/v1/licenses/validate", handlers.ValidateLicense(eng, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(secret))
		protected.Get("/v1/me", handlers.Me(db, lg))
		protected.Get("/v1/licenses/{id}", handlers.GetLicense(eng, lg))
		protected.Get("/v1/logs", handlers.MyLogs(db, lg))

		protected.Group(func(issuers chi.Router) {
			issuers.Use(auth.RequireRole(models.RoleAdmin, models.RoleReseller))
			issuers.Post("/v1/licenses/generate", handlers.GenerateLicense(eng, audit, cfg.MaxDevicesDefault, lg))
		})

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(models.RoleAdmin))
			admin.Post("/v1/licenses/{id}/revoke", handlers.RevokeLicense(eng, audit, lg))
			admin.Post("/v1/licenses/{id}/extend", handlers.ExtendLicense(eng, audit, lg))
			admin.Get("/v1/admin/licenses", handlers.ListLicenses(eng, lg))
			admin.Post("/v1/admin/resellers", handlers.CreateReseller(db, audit, lg))
			admin.Get("/v1/admin/resellers", handlers.ListResellers(db, lg))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
