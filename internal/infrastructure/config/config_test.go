package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"VANSALES_APP_NAME":                os.Getenv("VANSALES_APP_NAME"),
		"VANSALES_APP_ENV":                 os.Getenv("VANSALES_APP_ENV"),
		"VANSALES_APP_PORT":                os.Getenv("VANSALES_APP_PORT"),
		"VANSALES_DATABASE_HOST":           os.Getenv("VANSALES_DATABASE_HOST"),
		"VANSALES_DATABASE_PORT":           os.Getenv("VANSALES_DATABASE_PORT"),
		"VANSALES_DATABASE_USER":           os.Getenv("VANSALES_DATABASE_USER"),
		"VANSALES_DATABASE_PASSWORD":       os.Getenv("VANSALES_DATABASE_PASSWORD"),
		"VANSALES_DATABASE_DBNAME":         os.Getenv("VANSALES_DATABASE_DBNAME"),
		"VANSALES_DATABASE_SSLMODE":        os.Getenv("VANSALES_DATABASE_SSLMODE"),
		"VANSALES_DATABASE_MAX_OPEN_CONNS": os.Getenv("VANSALES_DATABASE_MAX_OPEN_CONNS"),
		"VANSALES_DATABASE_MAX_IDLE_CONNS": os.Getenv("VANSALES_DATABASE_MAX_IDLE_CONNS"),
		"VANSALES_JWT_SECRET":              os.Getenv("VANSALES_JWT_SECRET"),
		"VANSALES_AGENT_CONFIRM_TTL":       os.Getenv("VANSALES_AGENT_CONFIRM_TTL"),
		"VANSALES_AGENT_EXECUTION_TIMEOUT": os.Getenv("VANSALES_AGENT_EXECUTION_TIMEOUT"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "vansales-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 10*time.Minute, cfg.Agent.ConfirmTTL)
		assert.Equal(t, 30*time.Second, cfg.Agent.ExecutionTimeout)
		assert.Equal(t, 24*time.Hour, cfg.Agent.DedupTTL)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with VANSALES prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_APP_NAME", "test-app")
		os.Setenv("VANSALES_APP_PORT", "9000")
		os.Setenv("VANSALES_DATABASE_HOST", "testdb.local")
		os.Setenv("VANSALES_DATABASE_PORT", "5433")
		os.Setenv("VANSALES_AGENT_EXECUTION_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 5*time.Second, cfg.Agent.ExecutionTimeout)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("VANSALES_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"VANSALES_APP_ENV":           os.Getenv("VANSALES_APP_ENV"),
		"VANSALES_JWT_SECRET":        os.Getenv("VANSALES_JWT_SECRET"),
		"VANSALES_DATABASE_PASSWORD": os.Getenv("VANSALES_DATABASE_PASSWORD"),
		"VANSALES_DATABASE_SSLMODE":  os.Getenv("VANSALES_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_APP_ENV", "production")
		os.Setenv("VANSALES_DATABASE_PASSWORD", "secure-password")
		os.Setenv("VANSALES_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_APP_ENV", "production")
		os.Setenv("VANSALES_JWT_SECRET", "short-secret")
		os.Setenv("VANSALES_DATABASE_PASSWORD", "secure-password")
		os.Setenv("VANSALES_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_APP_ENV", "production")
		os.Setenv("VANSALES_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("VANSALES_DATABASE_PASSWORD", "secure-password")
		os.Setenv("VANSALES_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("VANSALES_APP_ENV", "production")
		os.Setenv("VANSALES_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("VANSALES_DATABASE_PASSWORD", "secure-password")
		os.Setenv("VANSALES_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
