package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "super-secret-signing-key-for-tests")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.Seed)
	assert.Equal(t, 32, cfg.JWT.RefreshTokenSize)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Cookie.TTL)
	assert.Equal(t, "account_events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.CSRF.Enabled)
	assert.Equal(t, "X-CSRF-Token", cfg.CSRF.Header)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "another-secret")
	t.Setenv("JWT_ISSUER", "issuer")
	t.Setenv("JWT_AUDIENCE", "audience")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("JWT_REFRESH_TOKEN_SIZE", "64")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/db")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "issuer", cfg.JWT.Issuer)
	assert.Equal(t, "audience", cfg.JWT.Audience)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 64, cfg.JWT.RefreshTokenSize)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestParse_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Parse()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			JWT: JWT{
				Secret:           "s",
				Issuer:           "i",
				Audience:         "a",
				RefreshTokenSize: 32,
				AccessTTL:        time.Minute,
				RefreshTTL:       time.Hour,
			},
			Cookie: Cookie{Name: "c", TTL: time.Hour},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no issuer", mutate: func(c *Config) { c.JWT.Issuer = "" }, want: "JWT_ISSUER"},
		{name: "no audience", mutate: func(c *Config) { c.JWT.Audience = "" }, want: "JWT_AUDIENCE"},
		{name: "zero refresh size", mutate: func(c *Config) { c.JWT.RefreshTokenSize = 0 }, want: "JWT_REFRESH_TOKEN_SIZE"},
		{name: "negative access ttl", mutate: func(c *Config) { c.JWT.AccessTTL = -time.Second }, want: "JWT_ACCESS_TTL"},
		{name: "zero cookie ttl", mutate: func(c *Config) { c.Cookie.TTL = 0 }, want: "COOKIE_TTL"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
