package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Server.RateLimit.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "issue-tracker", cfg.Observability.ServiceName)
	assert.Equal(t, cfg.Primary.Env, cfg.Observability.Environment)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Path)
	assert.Equal(t, 5, cfg.Cache.InvalidationRetries)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ISSUES_PRIMARY.ENV", "production")
	t.Setenv("ISSUES_SERVER.PORT", "8080")
	t.Setenv("ISSUES_SERVER.CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ISSUES_SERVER.RATE_LIMIT.RPS", "2.5")
	t.Setenv("ISSUES_DATABASE.DRIVER", "memory")
	t.Setenv("ISSUES_CACHE.TTL", "30s")
	t.Setenv("ISSUES_CACHE.INVALIDATION_RETRIES", "0")
	t.Setenv("ISSUES_OBSERVABILITY.HEALTH_CHECKS.CHECKS", "database")
	t.Setenv("ISSUES_OBSERVABILITY.LOGGING.SLOW_QUERY_THRESHOLD", "250ms")
	t.Setenv("PORT", "9999")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port, "ISSUES_SERVER.PORT wins over PORT")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Server.RateLimit.Enabled())
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Zero(t, cfg.Cache.InvalidationRetries)
	assert.Equal(t, []string{"database"}, cfg.Observability.HealthChecks.Checks)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_BarePort(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("ISSUES_DATABASE.DRIVER", "mongo")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("postgres without host", func(t *testing.T) {
		t.Setenv("ISSUES_DATABASE.HOST", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("ISSUES_OBSERVABILITY.LOGGING.LEVEL", "loud")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "invalid logging level")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:word", Name: "issues", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aword@db:5432/issues?sslmode=disable", d.DSN())
}
