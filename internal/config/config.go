package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"taskverse/internal/utils"
)

// DefaultPath is used when TASKVERSE_CONFIG is not set.
const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port" env:"TASKVERSE_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"TASKVERSE_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"TASKVERSE_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TASKVERSE_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"TASKVERSE_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver         string `yaml:"driver" env:"TASKVERSE_DB_DRIVER" env-default:"sqlite"`
	DSN            string `yaml:"url" env:"TASKVERSE_DB_URL" env-default:"file:taskverse.db?_pragma=busy_timeout(5000)"`
	SkipMigrations bool   `yaml:"skip_migrations" env:"TASKVERSE_DB_SKIP_MIGRATIONS"`
}

type RedisConfig struct {
	// Empty Addr disables the list cache.
	Addr     string        `yaml:"addr" env:"TASKVERSE_REDIS_ADDR"`
	Password string        `yaml:"password" env:"TASKVERSE_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"TASKVERSE_REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"TASKVERSE_REDIS_TTL" env-default:"60s"`
}

// placeholderSecret is the value shipped in the sample config.
const placeholderSecret = "change-me"

type AuthConfig struct {
	// An empty or placeholder secret is replaced by a random one per process.
	JWTSecret string        `yaml:"jwt_secret" env:"TASKVERSE_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TASKVERSE_TOKEN_TTL" env-default:"72h"`
	// nil means enforce; see OwnershipEnforced.
	EnforceOwnership *bool `yaml:"enforce_ownership"`
}

// OwnershipEnforced defaults to true when enforce_ownership is not set.
func (a AuthConfig) OwnershipEnforced() bool {
	return a.EnforceOwnership == nil || *a.EnforceOwnership
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id" env:"TASKVERSE_GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"TASKVERSE_GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"TASKVERSE_GOOGLE_REDIRECT_URL" env-default:"http://localhost:8080/auth/google/callback"`
}

func (g GoogleConfig) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"TASKVERSE_SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"TASKVERSE_SMTP_PORT" env-default:"587"`
	SMTPUser     string `yaml:"smtp_user" env:"TASKVERSE_SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"TASKVERSE_SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"TASKVERSE_FROM_EMAIL"`
}

func (e EmailConfig) Enabled() bool { return e.SMTPHost != "" && e.FromEmail != "" }

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TASKVERSE_TELEGRAM_TOKEN"`
	Debug    bool   `yaml:"debug" env:"TASKVERSE_TELEGRAM_DEBUG"`
}

type RemindersConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"TASKVERSE_REMINDER_POLL" env-default:"30s"`
	BatchSize    int           `yaml:"batch_size" env:"TASKVERSE_REMINDER_BATCH" env-default:"100"`
	Disabled     bool          `yaml:"disabled" env:"TASKVERSE_REMINDERS_DISABLED"`
}

type APIConfig struct {
	// StrictNotFound makes PUT on an unknown id answer 404 instead of success with null data.
	StrictNotFound bool `yaml:"strict_not_found" env:"TASKVERSE_STRICT_NOT_FOUND"`
}

type ReportsConfig struct {
	// FontPath points at a UTF-8 TTF; empty falls back to the core Helvetica font.
	FontPath string `yaml:"font_path" env:"TASKVERSE_REPORT_FONT"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Google    GoogleConfig    `yaml:"google"`
	Email     EmailConfig     `yaml:"email"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Reminders RemindersConfig `yaml:"reminders"`
	API       APIConfig       `yaml:"api"`
	Reports   ReportsConfig   `yaml:"reports"`
}

// Path returns the config file location from TASKVERSE_CONFIG.
func Path() string {
	if p := os.Getenv("TASKVERSE_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path, then applies environment overrides and
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("open %s: %w", path, err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("database.driver must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Auth.JWTSecret == "" || cfg.Auth.JWTSecret == placeholderSecret {
		secret, err := utils.NewStateToken(32)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		log.Printf("[config][warn] auth.jwt_secret not set, using a random secret; tokens will not survive a restart")
		cfg.Auth.JWTSecret = secret
	}
	return &cfg, nil
}

// LoadConfig loads from Path() and panics on error.
func LoadConfig() *Config {
	cfg, err := Load(Path())
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}
