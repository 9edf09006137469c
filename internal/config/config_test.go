package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_URI", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg := Load()
	assert.False(t, cfg.IsDev)
	assert.False(t, cfg.CookieSecure, "plain HTTP by default")
	assert.Equal(t, ":5001", cfg.Addr)
	assert.Equal(t, DefaultDBURI, cfg.DBURI)
	assert.NotEmpty(t, cfg.SecretKey)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("SERVER_ADDR", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_URI", "postgres://u:p@db/blog")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()
	assert.True(t, cfg.IsDev)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "postgres://u:p@db/blog", cfg.DBURI)
	assert.Equal(t, []byte("s3cret"), cfg.SecretKey)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_BadCookieSecure(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "sometimes")

	assert.False(t, Load().CookieSecure)
}
