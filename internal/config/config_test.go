package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DBPassword:          "secret",
		JWTSecret:           "access-secret",
		JWTRefreshSecret:    "refresh-secret",
		JWTAccessExpiry:     time.Hour,
		JWTRefreshExpiry:    7 * 24 * time.Hour,
		BcryptCost:          10,
		MailDriver:          "log",
		VerificationCodeTTL: 10 * time.Minute,
		CleanupInterval:     time.Hour,
		LogRetention:        720 * time.Hour,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 10*time.Minute, cfg.VerificationCodeTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.RotateRefresh)
	assert.Equal(t, "log", cfg.MailDriver)
	assert.Equal(t, 60, cfg.APIRateLimit)
	assert.Equal(t, 10, cfg.AuthRateLimit)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "15m")
	t.Setenv("JWT_ROTATE_REFRESH", "false")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.False(t, cfg.RotateRefresh)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	// Setenv restores the original value after the test; godotenv only fills
	// variables that are absent.
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing access secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET is required"},
		{name: "missing refresh secret", mutate: func(c *Config) { c.JWTRefreshSecret = "" }, wantErr: "JWT_REFRESH_SECRET is required"},
		{name: "shared secret", mutate: func(c *Config) { c.JWTRefreshSecret = c.JWTSecret }, wantErr: "must differ"},
		{name: "weak bcrypt", mutate: func(c *Config) { c.BcryptCost = 4 }, wantErr: "BCRYPT_COST"},
		{name: "naver without secret", mutate: func(c *Config) { c.NaverClientID = "id" }, wantErr: "NAVER_CLIENT_SECRET"},
		{name: "kakao without redirect", mutate: func(c *Config) { c.KakaoClientID = "id" }, wantErr: "KAKAO_REDIRECT_URI"},
		{name: "postmark without tokens", mutate: func(c *Config) { c.MailDriver = "postmark" }, wantErr: "POSTMARK_SERVER_TOKEN"},
		{name: "zero cleanup interval", mutate: func(c *Config) { c.CleanupInterval = 0 }, wantErr: "CLEANUP_INTERVAL"},
		{name: "negative log retention", mutate: func(c *Config) { c.LogRetention = -time.Hour }, wantErr: "LOG_RETENTION"},
		{name: "negative rate limit", mutate: func(c *Config) { c.AuthRateLimit = -1 }, wantErr: "RATE_LIMIT_AUTH"},
		{name: "unknown mail driver", mutate: func(c *Config) { c.MailDriver = "smtp" }, wantErr: "unknown MAIL_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBHost = "db"
	cfg.DBPort = "5433"
	cfg.DBUser = "app"
	cfg.DBName = "studymate"
	cfg.DBSSLMode = "require"

	assert.Equal(t, "host=db user=app password=secret dbname=studymate port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
