package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
//
// ServiceKey is the elevated credential used by the privileged executor. It is
// read once here, handed to the admin service constructor, and must never be
// logged or included in any response.
type Config struct {
	Port               int    `envconfig:"PORT" default:"8080"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL        string `envconfig:"DATABASE_URL" required:"true"`
	TokenSecret        string `envconfig:"TOKEN_SECRET" required:"true"`
	ServiceKey         string `envconfig:"SERVICE_KEY" required:"true"`
	TokenTTLMinutes    int    `envconfig:"TOKEN_TTL_MINUTES" default:"720"`
	BcryptCost         int    `envconfig:"BCRYPT_COST" default:"12"`
	ProfileAutoRecover bool   `envconfig:"PROFILE_AUTO_RECOVER" default:"false"`
	LoginRatePerMinute int    `envconfig:"LOGIN_RATE_PER_MINUTE" default:"30"`
	Version            string `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
