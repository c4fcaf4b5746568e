// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (REDAID_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, logging, CORS and
// request body limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Firebase Authentication (verifies bearer ID tokens)
	FirebaseCredentialsB64 string // base64 service-account JSON; blank uses application default credentials
	FirebaseProjectID      string

	// Stripe (payment intents); blank disables /create-payment-intent
	StripeSecretKey string

	// Redis (optional idempotency backend)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Idempotency keys for donor acceptances: "mongo", "redis" or "off"
	IdempotencyBackend string
	IdempotencyTTL     time.Duration

	// Rate limit for the public write endpoints (registration, payments)
	PublicRateLimit  int
	PublicRateWindow time.Duration

	// Upper bound on the limit query parameter of paginated lists
	MaxPageLimit int

	// Email promoted to admin at startup (created if absent)
	AdminEmail string

	// Audit trail destinations ("all", "db", "log", "off") and retention
	AuditAdmin     string
	AuditDonation  string
	AuditRetention time.Duration
}
