package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated once from the environment at startup. LicenseSecret
// signs license tokens and is held immutably for the process lifetime;
// there is no rotation mechanism.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`

	LicenseSecret      string `envconfig:"LICENSE_SECRET" required:"true"`
	LicenseOfflineDays int    `envconfig:"LICENSE_OFFLINE_DAYS" default:"7"`
	MaxDevicesDefault  int    `envconfig:"MAX_DEVICES_DEFAULT" default:"1"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@liftcore.local"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:""`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
