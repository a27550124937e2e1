package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	RevokedTokenKeyPrefix = "rt:"

	DefaultLogPageSize = 100  // page size when no limit query param is given
	MaxLogPageSize     = 1000 // hard cap for a single audit log page
	MinLogPageSize     = 1
	AuditViewPageSize  = 50 // rows shown on the operator log view

	SessionTokenMaxAge = 10 * time.Minute
	DefaultBcryptCost  = 10

	MaxUsernameLength   = 30
	MaxSpaceNameLength  = 255
	MaxMessageLength    = 255
	MaxPermissionLength = 5
	MinPasswordLength   = 8

	DefaultRateLimitMax    = 20 // requests per window per client IP
	DefaultRateLimitWindow = 1 * time.Second

	HealthCheckServerAddr = ":3001" // health check server address
)
