package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innkeeper"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	// DefaultTaxRate is the fraction of the invoice subtotal charged as tax.
	DefaultTaxRate = 0.10

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultLockTTL        = 10 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)

// Booking statuses
const (
	Pending    = "pending"
	Confirmed  = "confirmed"
	Cancelled  = "cancelled"
	CheckedOut = "checked_out"
)

// Room statuses
const (
	RoomAvailable   = "available"
	RoomMaintenance = "maintenance"
	RoomRetired     = "retired"
)
