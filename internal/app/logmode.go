package app

import "github.com/yungbote/armory-backend/internal/platform/envutil"

// LogModeFromEnv is read before the logger exists.
func LogModeFromEnv() string {
	return envutil.String("LOG_MODE", "development")
}
