package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "ENVIRONMENT", "STORAGE", "MARKET_CONFIG", "RANDOM_SEED", "SEED_SAMPLE_DATA", "CORS_ALLOWED_ORIGINS"} {
			t.Setenv(key, "")
		}

		c := Load()

		assert.Equal(t, "8080", c.Port)
		assert.Equal(t, "development", c.Environment)
		assert.Equal(t, StoragePostgres, c.Storage)
		assert.Equal(t, int64(0), c.RandomSeed)
		assert.False(t, c.SeedSampleData)
		assert.Equal(t, []string{"*"}, c.CORSAllowedOrigins)
		assert.False(t, c.IsProduction())
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("STORAGE", "Memory")
		t.Setenv("RANDOM_SEED", "42")
		t.Setenv("SEED_SAMPLE_DATA", "true")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

		c := Load()

		assert.Equal(t, "9090", c.Port)
		assert.True(t, c.IsProduction())
		assert.Equal(t, StorageMemory, c.Storage)
		assert.Equal(t, int64(42), c.RandomSeed)
		assert.True(t, c.SeedSampleData)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSAllowedOrigins)
	})

	t.Run("bad values fall back", func(t *testing.T) {
		t.Setenv("STORAGE", "sqlite")
		t.Setenv("RANDOM_SEED", "abc")
		t.Setenv("SEED_SAMPLE_DATA", "maybe")

		c := Load()

		assert.Equal(t, StoragePostgres, c.Storage)
		assert.Equal(t, int64(0), c.RandomSeed)
		assert.False(t, c.SeedSampleData)
	})
}
