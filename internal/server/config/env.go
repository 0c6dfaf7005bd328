package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "GOPHTASKS_"

// envFile is loaded before the environment is read; missing is fine.
var envFile = ".env"

// parseEnv overlays GOPHTASKS_* environment variables. Variables already set
// in the process environment win over the ones from the .env file.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	config.EndpointAddrGRPC = getString("GRPC_ADDRESS", config.EndpointAddrGRPC)
	config.DatabaseDSN = getString("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getString("SECRET_KEY", config.SecretKey)
	config.AccessTokenValidityDuration = getDuration("ACCESS_TOKEN_TTL", config.AccessTokenValidityDuration)
	config.RefreshTokenValidityDuration = getDuration("REFRESH_TOKEN_TTL", config.RefreshTokenValidityDuration)
	config.S3RootUser = getString("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getString("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getString("S3_BUCKET", config.S3Bucket)
	config.S3Region = getString("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getString("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.S3PublicBaseURL = getString("S3_PUBLIC_BASE_URL", config.S3PublicBaseURL)
	config.MaxMessageSize = getInt("MAX_MESSAGE_SIZE", config.MaxMessageSize)
	config.RealtimeBackend = getString("REALTIME_BACKEND", config.RealtimeBackend)
	config.RedisURL = getString("REDIS_URL", config.RedisURL)
	config.LogLevel = getString("LOG_LEVEL", config.LogLevel)
	config.LogEncoding = getString("LOG_ENCODING", config.LogEncoding)
}

func getString(key, fallback string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(envPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(envPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
