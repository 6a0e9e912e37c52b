package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "visitly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// Tenants without a business-hours row are treated as open 08:00-17:00
	// every day so bookings keep working during onboarding.
	DefaultCalendarDefaultOpen = true
	DefaultDefaultOpenTime     = "08:00"
	DefaultDefaultCloseTime    = "17:00"
	DefaultDefaultTimezone     = "UTC"

	DefaultQuotaCountPending    = true
	DefaultAutoAssignHomeVisits = false
	DefaultResolverConcurrency  = 8

	DefaultLockTTL           = 10 * time.Second
	DefaultLockWaitTimeout   = 3 * time.Second
	DefaultLockRetryInterval = 25 * time.Millisecond

	DefaultKafkaEnabled       = false
	DefaultBookingEventsTopic = "booking-events"
)
