package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"3000"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN   string `env:"SENTRY_DSN"`

	// Requests per minute per IP; 0 disables the limiter.
	APIRateLimit  int `env:"RATE_LIMIT_API" envDefault:"60"`
	AuthRateLimit int `env:"RATE_LIMIT_AUTH" envDefault:"10"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"studymate"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Redis (optional)
	RedisURL string `env:"REDIS_URL"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"1h"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`
	RotateRefresh    bool          `env:"JWT_ROTATE_REFRESH" envDefault:"true"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`

	// OAuth providers
	NaverClientID     string `env:"NAVER_CLIENT_ID"`
	NaverClientSecret string `env:"NAVER_CLIENT_SECRET"`
	NaverRedirectURI  string `env:"NAVER_REDIRECT_URI"`
	KakaoClientID     string `env:"KAKAO_CLIENT_ID"`
	KakaoClientSecret string `env:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURI  string `env:"KAKAO_REDIRECT_URI"`

	// Mail
	MailDriver           string        `env:"MAIL_DRIVER" envDefault:"log"`
	MailFrom             string        `env:"MAIL_FROM" envDefault:"no-reply@studymate.app"`
	PostmarkServerToken  string        `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string        `env:"POSTMARK_ACCOUNT_TOKEN"`
	VerificationCodeTTL  time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"10m"`

	// Background jobs
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	LogRetention    time.Duration `env:"LOG_RETENTION" envDefault:"720h"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWTAccessExpiry <= 0 || c.JWTRefreshExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	if c.BcryptCost < bcrypt.DefaultCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.DefaultCost, bcrypt.MaxCost))
	}
	if c.DBPassword == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.NaverEnabled() && (c.NaverClientSecret == "" || c.NaverRedirectURI == "") {
		errs = append(errs, errors.New("NAVER_CLIENT_SECRET and NAVER_REDIRECT_URI are required when NAVER_CLIENT_ID is set"))
	}
	if c.KakaoEnabled() && c.KakaoRedirectURI == "" {
		errs = append(errs, errors.New("KAKAO_REDIRECT_URI is required when KAKAO_CLIENT_ID is set"))
	}
	switch c.MailDriver {
	case "log":
	case "postmark":
		if c.PostmarkServerToken == "" || c.PostmarkAccountToken == "" {
			errs = append(errs, errors.New("POSTMARK_SERVER_TOKEN and POSTMARK_ACCOUNT_TOKEN are required for MAIL_DRIVER=postmark"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver))
	}
	if c.VerificationCodeTTL <= 0 {
		errs = append(errs, errors.New("VERIFICATION_CODE_TTL must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL must be positive"))
	}
	if c.LogRetention < 0 {
		errs = append(errs, errors.New("LOG_RETENTION must not be negative"))
	}
	if c.APIRateLimit < 0 || c.AuthRateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_API and RATE_LIMIT_AUTH must not be negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) NaverEnabled() bool { return c.NaverClientID != "" }

func (c *Config) KakaoEnabled() bool { return c.KakaoClientID != "" }

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
