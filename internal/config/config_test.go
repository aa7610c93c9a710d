package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int32(20), cfg.DB.MaxConns)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=eventrsvp sslmode=disable",
		cfg.DB.DSN())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Mongo ")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MONGO_DB", "rsvp_test")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, "rsvp_test", cfg.Mongo.Database)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"STORE_DRIVER": "redis", "JWT_SECRET": "x"},
			want: `STORE_DRIVER must be one of postgres, mongo, memory; got "redis"`,
		},
		{
			name: "missing secret",
			env:  map[string]string{"STORE_DRIVER": "postgres", "JWT_SECRET": ""},
			want: "JWT_SECRET is required",
		},
		{
			name: "zero timeout",
			env:  map[string]string{"STORE_TIMEOUT": "0s", "JWT_SECRET": "x"},
			want: "STORE_TIMEOUT must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestMemoryDriverAllowsMissingSecret(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
}
