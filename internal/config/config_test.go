package config

import (
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("PORT", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendLocal, cfg.StorageBackend)
	assert.Equal(t, "khosta", cfg.JWTIssuer)
	assert.Equal(t, int64(14400), cfg.AccessTTLSeconds)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/khosta")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CorsOrigins)
	assert.Equal(t, 0, cfg.RedisDB)
	require.NoError(t, cfg.Validate())
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Panics(t, func() { Load() })
}

func TestValidate(t *testing.T) {
	cfg := Config{StorageBackend: BackendPostgres}
	assert.Error(t, cfg.Validate())

	cfg = Config{StorageBackend: "mongo"}
	assert.Error(t, cfg.Validate())

	cfg = Config{StorageBackend: BackendLocal, LocalStorePath: "x.db", BootstrapAdminEmail: "a@b.c"}
	assert.Error(t, cfg.Validate())
}

func TestCircuitBreakerOpensAfterThreeFailures(t *testing.T) {
	breaker := NewCircuitBreaker("test", zap.NewNop())
	for i := 0; i < 3; i++ {
		_, _ = breaker.Execute(func() (interface{}, error) { return nil, assert.AnError })
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())
}
