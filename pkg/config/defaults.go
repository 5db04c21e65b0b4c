package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "parkspot"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTCookieName = "jwt"

	DefaultCORSAllowedOrigins = "http://localhost:5173"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRateLimitBurst    = 10

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockBackend       = "mongo"
	// longer than DefaultRequestTimeout so a request never outlives its lock
	DefaultLockTTL           = 40 * time.Second
	DefaultLockWait          = 3 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaEnabled       = false
	DefaultKafkaBookingsTopic = "parkspot.bookings"
	DefaultKafkaBookingsDLQ   = ""
	DefaultKafkaConsumerGroup = "parkspot-booking-events"

	DefaultBookingsTimeZone = "Local"

	MinJWTSecretLength = 16
)
