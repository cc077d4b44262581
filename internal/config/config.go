package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDSN = "host=localhost user=postgres password=postgres dbname=autocatalog port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
	defaultAdminPass   = "admin12345"

	// MinSessionSecretLength keeps the derived cookie key at AES-256 strength.
	MinSessionSecretLength = 32
)

// knownWeakSecrets are example values from docs that must never reach production.
var knownWeakSecrets = []string{
	"change-me-to-a-32-byte-session-secret",
	"REPLACE_WITH_YOUR_OWN_SESSION_SECRET",
}

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=autocatalog port=5432 sslmode=disable"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	RedisURL      string        `env:"REDIS_URL"` // optional, sessions stay in memory without it
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"autocatalog:sess:"`

	CORSOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`

	UploadDir       string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	WebDir          string `env:"WEB_DIR"` // built storefront + admin bundle

	ForceReseed   bool   `env:"FORCE_RESEED" envDefault:"false"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin12345"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// AllowedOrigins returns the trimmed, comma separated CORS origins.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes long, got %d", MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("SESSION_SECRET is a documented example value, generate your own")
		}
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if strings.TrimSpace(c.AdminUsername) == "" {
		return errors.New("ADMIN_USERNAME must not be empty")
	}
	if !strings.HasPrefix(c.UploadURLPrefix, "/") {
		return errors.New("UPLOAD_URL_PREFIX must start with /")
	}
	return nil
}

// Warnings lists insecure defaults that are still in effect.
func (c *Config) Warnings() []string {
	var w []string
	if c.DatabaseDSN == defaultDatabaseDSN {
		w = append(w, "DATABASE_DSN uses the built-in default, set your own Postgres connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		w = append(w, "CORS_ALLOWED_ORIGINS uses the development default")
	}
	if c.AdminPassword == defaultAdminPass {
		w = append(w, "ADMIN_PASSWORD uses the built-in default, change it before the first boot")
	}
	if c.ForceReseed && !c.IsDevelopment() {
		w = append(w, "FORCE_RESEED is enabled outside development, catalog tables will be wiped on start")
	}
	return w
}
