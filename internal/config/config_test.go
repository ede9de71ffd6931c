package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("STORAGE_ENDPOINT", "")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg := FromEnv()

	assert.Equal(t, "storeadmin", cfg.DBName)
	assert.Equal(t, "legacy-secret", cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.UploadURLTTL)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.StorageEndpoint)
	assert.Equal(t, "https://cdn.example.com", cfg.StoragePublicBaseURL)
	assert.Equal(t, "auto", cfg.StorageRegion)
	assert.False(t, cfg.StrictOrderTransitions)
	assert.False(t, cfg.OrderStatusAliases)
	assert.Empty(t, cfg.StorageLegacyPublicURLs)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("UPLOAD_URL_TTL_MINUTES", "-5")
	t.Setenv("UPLOAD_KEY_RANDOM", "true")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "yes-please")
	t.Setenv("ORDER_STATUS_ALIASES", "true")
	t.Setenv("STORAGE_LEGACY_PUBLIC_URLS", "https://old.example.com, https://older.example.com/media")
	t.Setenv("CORS_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("APP_ENV", "Production")

	cfg := FromEnv()

	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.UploadURLTTL, "non-positive values fall back to the default")
	assert.True(t, cfg.UploadKeyRandom)
	assert.False(t, cfg.StrictOrderTransitions, "unparseable booleans fall back to the default")
	assert.True(t, cfg.OrderStatusAliases)
	assert.Equal(t, []string{"https://old.example.com", "https://older.example.com/media"}, cfg.StorageLegacyPublicURLs)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestValidateReportsMissingKeys(t *testing.T) {
	err := Config{MongoURI: "mongodb://x"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "STORAGE_BUCKET")
	assert.NotContains(t, err.Error(), "MONGO_URI")

	full := Config{
		MongoURI:               "mongodb://x",
		SessionSecret:          "s",
		StorageEndpoint:        "https://e",
		StorageBucket:          "b",
		StorageAccessKeyID:     "k",
		StorageSecretAccessKey: "s",
		StoragePublicBaseURL:   "https://cdn",
	}
	assert.NoError(t, full.Validate())
}
