package placement

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// Config holds process configuration. All values are read once at startup and
// treated as read-only afterwards.
type Config struct {
	Port string `env:"PORT" envDefault:"5000"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	APIPrefix  string `env:"API_PREFIX" envDefault:"/api"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	JWTSecret        string        `env:"JWT_SECRET" envDefault:"dev-access-secret-change-in-production"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"dev-refresh-secret-change-in-production"`
	AccessTokenTTL   time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"168h"`

	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:placement.db?cache=shared"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@placement.local"`
}

// TokenIssuer and TokenAudience identify tokens minted by this service.
const (
	TokenIssuer   = "placement-backend"
	TokenAudience = "placement-frontend"
)

// LoadConfig parses configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse environment configuration")
	}

	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, errors.New("access and refresh secrets must differ", errors.CategoryValidation)
	}

	return cfg, nil
}
