package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_PORT", "DB_DRIVER", "JWT_SECRET", "JWT_TTL", "REDIS_ADDR", "ROLE_CACHE_TTL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	cfg := Load()

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.RoleCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":18080")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("LOG_STDOUT", "false")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ROLE_CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.LogStdout)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Second, cfg.RoleCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("REDIS_DB", "three")

	cfg := Load()
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestDSN(t *testing.T) {
	dsn := DBConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable", TimeZone: "UTC"}.DSN()
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", dsn)
}

func TestValidate(t *testing.T) {
	valid := Config{JWTSecret: "s", JWTTTL: time.Hour, DB: DBConfig{Driver: "pgx"}}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "lib/pq driver", modify: func(c *Config) { c.DB.Driver = "postgres" }},
		{name: "empty secret", modify: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "default secret in release", modify: func(c *Config) {
			c.GinMode = "release"
			c.JWTSecret = defaultJWTSecret
		}, wantErr: "release"},
		{name: "zero ttl", modify: func(c *Config) { c.JWTTTL = 0 }, wantErr: "JWT_TTL"},
		{name: "unknown driver", modify: func(c *Config) { c.DB.Driver = "mysql" }, wantErr: "DB_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
