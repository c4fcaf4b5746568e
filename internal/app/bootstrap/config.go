// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/redaid/internal/app/system/auditlog"
	"github.com/dalemusser/redaid/internal/app/system/idempotency"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Idempotency backends.
const (
	IdemMongo = "mongo"
	IdemRedis = "redis"
	IdemOff   = "off"
)

// appConfigKeys defines the configuration keys for RedAid.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, redis_addr, etc.
//   - Environment variables: REDAID_MONGO_URI, REDAID_REDIS_ADDR, etc.
//   - Command-line flags: --mongo_uri, --redis_addr, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "redaid", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Firebase Authentication
	{Name: "firebase_credentials_b64", Default: "", Desc: "Base64-encoded Firebase service account JSON"},
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project ID"},

	// Stripe
	{Name: "stripe_secret_key", Default: "", Desc: "Stripe secret key (blank disables payment intents)"},

	// Redis
	{Name: "redis_addr", Default: "", Desc: "Redis address host:port (blank disables Redis)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Idempotency
	{Name: "idempotency_backend", Default: IdemMongo, Desc: "Acceptance idempotency store: 'mongo', 'redis', or 'off'"},
	{Name: "idempotency_ttl", Default: "24h", Desc: "How long idempotency keys are remembered"},

	// Public endpoint rate limiting
	{Name: "public_rate_limit", Default: 20, Desc: "Requests allowed per client IP per window on public write endpoints"},
	{Name: "public_rate_window", Default: "1m", Desc: "Rate limit window (e.g., 1m, 30s)"},

	// Pagination
	{Name: "max_page_limit", Default: paging.DefaultMaxLimit, Desc: "Largest accepted page size"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user promoted to admin on startup (created if absent)"},

	// Audit logging
	{Name: "audit_admin", Default: auditlog.ModeAll, Desc: "Audit admin events: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_donation", Default: auditlog.ModeAll, Desc: "Audit donation lifecycle events: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long stored audit events are kept (default: 90 days)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence:
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "REDAID", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		FirebaseCredentialsB64: appValues.String("firebase_credentials_b64"),
		FirebaseProjectID:      appValues.String("firebase_project_id"),

		StripeSecretKey: appValues.String("stripe_secret_key"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		IdempotencyBackend: appValues.String("idempotency_backend"),
		IdempotencyTTL:     appValues.Duration("idempotency_ttl", idempotency.DefaultTTL),

		PublicRateLimit:  appValues.Int("public_rate_limit"),
		PublicRateWindow: appValues.Duration("public_rate_window", time.Minute),

		MaxPageLimit: appValues.Int("max_page_limit"),

		AdminEmail: appValues.String("admin_email"),

		AuditAdmin:     appValues.String("audit_admin"),
		AuditDonation:  appValues.String("audit_donation"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// RedAid validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and checks that the selected
// idempotency backend has what it needs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.IdempotencyBackend {
	case IdemMongo, IdemOff:
	case IdemRedis:
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("idempotency_backend=redis requires redis_addr")
		}
	default:
		return fmt.Errorf("idempotency_backend must be one of mongo, redis, off (got %q)", appCfg.IdempotencyBackend)
	}

	if appCfg.IdempotencyTTL <= 0 {
		return fmt.Errorf("idempotency_ttl must be positive")
	}
	if appCfg.PublicRateLimit < 1 || appCfg.PublicRateWindow <= 0 {
		return fmt.Errorf("public_rate_limit and public_rate_window must be positive")
	}
	if appCfg.MaxPageLimit < 1 {
		return fmt.Errorf("max_page_limit must be at least 1")
	}

	if !auditlog.ValidMode(appCfg.AuditAdmin) || !auditlog.ValidMode(appCfg.AuditDonation) {
		return fmt.Errorf("audit_admin and audit_donation must be one of all, db, log, off")
	}
	if appCfg.AuditRetention <= 0 {
		return fmt.Errorf("audit_retention must be positive")
	}

	if appCfg.FirebaseCredentialsB64 == "" && appCfg.FirebaseProjectID == "" {
		if coreCfg != nil && coreCfg.Env == "prod" {
			return fmt.Errorf("firebase_credentials_b64 or firebase_project_id is required in prod")
		}
		logger.Warn("no Firebase configuration; application default credentials will be used")
	}
	if appCfg.StripeSecretKey == "" {
		logger.Warn("stripe_secret_key not set; /create-payment-intent will fail")
	}

	return nil
}
