package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := Config{
		DBUser: "app", DBPass: "s3cret",
		DBHost: "db.internal", DBPort: "3306", DBName: "evreg",
	}
	require.Equal(t,
		"app:s3cret@tcp(db.internal:3306)/evreg?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DSN())

	cfg.DBPass = ""
	require.Equal(t,
		"app@tcp(db.internal:3306)/evreg?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DSN(), "an empty password drops the colon from the auth part")
}

func TestEnvHelpers(t *testing.T) {
	t.Run("envInt", func(t *testing.T) {
		require.Equal(t, 25, envInt("DB_MAX_CONNS", 25))
		t.Setenv("DB_MAX_CONNS", "40")
		require.Equal(t, 40, envInt("DB_MAX_CONNS", 25))
		t.Setenv("DB_MAX_CONNS", "zero")
		require.Equal(t, 25, envInt("DB_MAX_CONNS", 25))
		t.Setenv("DB_MAX_CONNS", "-1")
		require.Equal(t, 25, envInt("DB_MAX_CONNS", 25))
	})

	t.Run("envDur", func(t *testing.T) {
		require.Equal(t, 30*time.Minute, envDur("DB_CONN_LIFETIME", 30*time.Minute))
		t.Setenv("DB_CONN_LIFETIME", "90s")
		require.Equal(t, 90*time.Second, envDur("DB_CONN_LIFETIME", 30*time.Minute))
		t.Setenv("DB_CONN_LIFETIME", "soon")
		require.Equal(t, 30*time.Minute, envDur("DB_CONN_LIFETIME", 30*time.Minute))
	})

	t.Run("envBool", func(t *testing.T) {
		require.True(t, envBool("QUEUE_CONSUMER_ENABLED", true))
		t.Setenv("QUEUE_CONSUMER_ENABLED", "off")
		require.False(t, envBool("QUEUE_CONSUMER_ENABLED", true))
		t.Setenv("QUEUE_CONSUMER_ENABLED", "yes")
		require.True(t, envBool("QUEUE_CONSUMER_ENABLED", false))
	})
}
