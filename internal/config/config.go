package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI      string
	DBName        string
	SessionSecret string
	SessionTTL    time.Duration
	AdminSecret   string

	StorageEndpoint        string
	StorageRegion          string
	StorageBucket          string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StoragePublicBaseURL   string
	// StorageLegacyPublicURLs are earlier public bases whose image URLs still
	// map onto keys in the bucket.
	StorageLegacyPublicURLs []string
	StoragePathStyle        bool
	UploadURLTTL            time.Duration
	UploadKeyRandom         bool

	StrictOrderTransitions bool
	OrderStatusAliases     bool

	CORSOrigins []string
	SentryDSN   string
	Environment string
	Port        string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv builds a Config from the current process environment without
// touching .env files.
func FromEnv() Config {
	sessionSecret := getEnvOrDefault("SESSION_SECRET", "")
	if sessionSecret == "" {
		sessionSecret = getEnvOrDefault("JWT_SECRET", "")
	}

	return Config{
		MongoURI:      getEnvOrDefault("MONGO_URI", ""),
		DBName:        getEnvOrDefault("DB_NAME", "storeadmin"),
		SessionSecret: sessionSecret,
		SessionTTL:    getDurationEnv("SESSION_TTL_HOURS", 24, time.Hour),
		AdminSecret:   getEnvOrDefault("ADMIN_SECRET", ""),

		StorageEndpoint:         storageEndpoint(),
		StorageRegion:           getEnvOrDefault("STORAGE_REGION", "auto"),
		StorageBucket:           getEnvOrDefault("STORAGE_BUCKET", ""),
		StorageAccessKeyID:      getEnvOrDefault("STORAGE_ACCESS_KEY_ID", ""),
		StorageSecretAccessKey:  getEnvOrDefault("STORAGE_SECRET_ACCESS_KEY", ""),
		StoragePublicBaseURL:    strings.TrimRight(getEnvOrDefault("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		StorageLegacyPublicURLs: splitList(getEnvOrDefault("STORAGE_LEGACY_PUBLIC_URLS", "")),
		StoragePathStyle:        getBoolEnv("STORAGE_PATH_STYLE", false),
		UploadURLTTL:            getDurationEnv("UPLOAD_URL_TTL_MINUTES", 60, time.Minute),
		UploadKeyRandom:         getBoolEnv("UPLOAD_KEY_RANDOM", false),

		StrictOrderTransitions: getBoolEnv("ORDER_STRICT_TRANSITIONS", false),
		OrderStatusAliases:     getBoolEnv("ORDER_STATUS_ALIASES", false),

		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		SentryDSN:   getEnvOrDefault("SENTRY_DSN", ""),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		Port:        getEnvOrDefault("PORT", "8080"),
	}
}

// IsProduction reports whether cookies should be marked Secure.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// R2 endpoints are derived from the account id unless an explicit endpoint
// is configured.
func storageEndpoint() string {
	if endpoint := getEnvOrDefault("STORAGE_ENDPOINT", ""); endpoint != "" {
		return endpoint
	}
	if account := getEnvOrDefault("R2_ACCOUNT_ID", ""); account != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", account)
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
