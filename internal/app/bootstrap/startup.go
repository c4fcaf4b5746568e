// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/status"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// RedAid applies the page size cap and makes sure the configured admin
// account exists with the admin role.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	paging.SetMaxLimit(appCfg.MaxPageLimit)

	if email := strings.TrimSpace(appCfg.AdminEmail); email != "" {
		if err := ensureAdmin(ctx, deps, email, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin promotes the user with email to admin, creating an active
// record if none exists. Counters and profile fields of an existing user
// are left alone.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	users := deps.MongoDatabase.Collection(userstore.Collection)
	res, err := users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set": bson.M{"role": authz.Admin.String()},
			"$setOnInsert": bson.M{
				"status":          status.Active,
				"donationRequest": int64(0),
				"donations":       int64(0),
				"createdAt":       time.Now().UTC(),
			},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ensure admin %s: %w", email, err)
	}

	switch {
	case res.UpsertedCount > 0:
		logger.Info("created admin user", zap.String("email", email))
	case res.ModifiedCount > 0:
		logger.Info("promoted existing user to admin", zap.String("email", email))
	default:
		logger.Debug("admin user already present", zap.String("email", email))
	}
	return nil
}
