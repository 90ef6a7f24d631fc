package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "slotter"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultEnvFile   = ".env"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBcryptCost     = 10
	DefaultTokenCacheSize = 1024

	DefaultRedisDB = 0
)
