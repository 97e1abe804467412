package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	t.Parallel()

	cfg := FromLookup(mapLookup(map[string]string{"API_BASE_URL": "", "JWT_SECRET": "  "}))

	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, ":8081", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "storefront.db", cfg.TokenDBPath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "storefront_events", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.CartFetchAuth)
	assert.Empty(t, cfg.JWTSecret)
}

func TestFromLookup_Overrides(t *testing.T) {
	t.Parallel()

	cfg := FromLookup(mapLookup(map[string]string{
		"API_BASE_URL":         "https://shop.example/api/",
		"HTTP_TIMEOUT_SECONDS": "3",
		"KAFKA_BROKERS":        "k1:9092, ,k2:9092",
		"CART_FETCH_AUTH":      "true",
		"JWT_SECRET":           "s3cret",
	}))

	assert.Equal(t, "https://shop.example/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CartFetchAuth)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
}

func TestFromLookup_GarbageFallsBack(t *testing.T) {
	t.Parallel()

	cfg := FromLookup(mapLookup(map[string]string{
		"HTTP_TIMEOUT_SECONDS": "-4",
		"CART_FETCH_AUTH":      "maybe",
	}))

	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.CartFetchAuth)
}

func TestFromLookup_DotenvFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LISTEN_ADDR=:9090\nKAFKA_TOPIC=shop\n"), 0o600))

	vals, err := godotenv.Read(path)
	require.NoError(t, err)

	cfg := FromLookup(mapLookup(vals))
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "shop", cfg.KafkaTopic)
}

func TestLoad_ReadsProcessEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")

	assert.Equal(t, ":7070", Load().ListenAddr)
}
