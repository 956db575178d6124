package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Empty(t, cfg.Mail.Provider)
	assert.Equal(t, "pics/default.png", cfg.Upload.DefaultAvatar)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAIL_PROVIDER", "SendGrid")
	t.Setenv("RESET_URL_BASE", "https://app.example/resetPassword/")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "sendgrid", cfg.Mail.Provider)
	assert.Equal(t, "https://app.example/resetPassword", cfg.ResetURLBase)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is not configured")
}

func TestValidateAdminPair(t *testing.T) {
	cfg := &Config{
		JWTSecret:      "s",
		MongoURI:       "mongodb://localhost",
		MongoDatabase:  "db",
		JWTTTL:         time.Hour,
		ResetTokenTTL:  time.Hour,
		RequestTimeout: time.Second,
		AdminEmail:     "admin@example.com",
	}
	assert.Error(t, cfg.Validate())

	cfg.AdminPassword = "secret123"
	assert.NoError(t, cfg.Validate())
}
