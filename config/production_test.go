package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Name: "radio", User: "postgres"},
		Server:   ServerConfig{Port: 3000, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Security: SecurityConfig{PasswordMinLength: 6, BcryptCost: 10, GlobalRateLimit: 100, AuthRateLimit: 10},
		JWT: JWTConfig{
			SecretKey:      "0123456789abcdef0123456789abcdef",
			AccessTokenTTL: time.Hour,
			Issuer:         "radio-contracts",
			Audience:       "radio-contracts-api",
		},
		Logging:   LoggingConfig{Level: "info", Output: "stdout"},
		Scheduler: SchedulerConfig{Enabled: true, ExpiryInterval: time.Hour},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateProductionConfig(validConfig()))
	})

	cases := []struct {
		name    string
		mutate  func(*ProductionConfig)
		message string
	}{
		{"short jwt secret", func(c *ProductionConfig) { c.JWT.SecretKey = "short" }, "JWT_SECRET_KEY must be at least 32 characters long"},
		{"rsa without keys", func(c *ProductionConfig) { c.JWT.UseRSAKeys = true }, "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required"},
		{"bcrypt cost too high", func(c *ProductionConfig) { c.Security.BcryptCost = 20 }, "BCRYPT_COST must be between 4 and 14"},
		{"bcrypt cost too low", func(c *ProductionConfig) { c.Security.BcryptCost = 3 }, "BCRYPT_COST must be between 4 and 14"},
		{"bad port", func(c *ProductionConfig) { c.Server.Port = 70000 }, "SERVER_PORT must be between 1 and 65535"},
		{"bad log level", func(c *ProductionConfig) { c.Logging.Level = "trace" }, "LOG_LEVEL must be one of"},
		{"file output without path", func(c *ProductionConfig) { c.Logging.Output = "file" }, "LOG_FILE_PATH is required"},
		{"cache without url", func(c *ProductionConfig) { c.Cache.Enabled = true }, "CACHE_REDIS_URL is required"},
		{"scheduler without interval", func(c *ProductionConfig) { c.Scheduler.ExpiryInterval = 0 }, "SCHEDULER_EXPIRY_INTERVAL must be positive"},
		{"short bootstrap password", func(c *ProductionConfig) {
			c.Bootstrap = BootstrapConfig{AdminUsername: "admin", AdminEmail: "admin@radio.test", AdminPassword: "abc"}
		}, "BOOTSTRAP_ADMIN_PASSWORD must be at least 6 characters long"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	t.Run("all violations are reported together", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Host = ""
		cfg.JWT.SecretKey = ""
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_HOST is required")
		assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	})
}

func TestLoadProductionConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SCHEDULER_EXPIRY_INTERVAL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.radio.test, https://b.radio.test")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.ExpiryInterval)
	assert.Equal(t, []string{"https://a.radio.test", "https://b.radio.test"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.False(t, cfg.Bootstrap.Enabled())
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("existing variables win", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("RADIO_TEST_A=from-file\nRADIO_TEST_B=\"quoted\"\n"), 0o600))
		t.Setenv("RADIO_TEST_A", "from-env")
		t.Setenv("RADIO_TEST_B", "")
		require.NoError(t, os.Unsetenv("RADIO_TEST_B"))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "from-env", os.Getenv("RADIO_TEST_A"))
		assert.Equal(t, "quoted", os.Getenv("RADIO_TEST_B"))
	})
}
