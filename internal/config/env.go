package config

import (
	"fmt"
	"strings"
)

// Validate lists every required setting that is missing.
func (c Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"MONGO_URI", c.MongoURI},
		{"SESSION_SECRET", c.SessionSecret},
		{"STORAGE_ENDPOINT or R2_ACCOUNT_ID", c.StorageEndpoint},
		{"STORAGE_BUCKET", c.StorageBucket},
		{"STORAGE_ACCESS_KEY_ID", c.StorageAccessKeyID},
		{"STORAGE_SECRET_ACCESS_KEY", c.StorageSecretAccessKey},
		{"STORAGE_PUBLIC_BASE_URL", c.StoragePublicBaseURL},
	}

	missing := make([]string, 0)
	for _, item := range required {
		if strings.TrimSpace(item.value) == "" {
			missing = append(missing, item.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("ENV %s is required", strings.Join(missing, ", "))
	}
	return nil
}
