// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/redaid/internal/app/store/audit"
	blogstore "github.com/dalemusser/redaid/internal/app/store/blogs"
	requeststore "github.com/dalemusser/redaid/internal/app/store/donationrequests"
	fundstore "github.com/dalemusser/redaid/internal/app/store/funds"
	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/idempotency"
	"github.com/dalemusser/redaid/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Validation level is moderate: documents written before a validator
// existed stay readable and updatable even if they don't match it.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(userstore.Collection, usersSchema())
	ensure(requeststore.Collection, donationRequestsSchema())
	ensure(blogstore.Collection, blogsSchema())
	ensure(fundstore.Collection, fundsSchema())

	// Written only by internal stores; no validator.
	ensure(idempotency.Collection, nil)
	ensure(audit.Collection, nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			logger.Debug("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErr(err error, code int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func stringEnum(values ...string) bson.M {
	a := make(bson.A, len(values))
	for i, v := range values {
		a[i] = v
	}
	return bson.M{"enum": a}
}

// bloodGroups also admits "" so a profile edit may clear the field.
func bloodGroups() bson.M { return stringEnum(append([]string{""}, inputval.BloodGroups...)...) }

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email"},
			"properties": bson.M{
				"email":           nonBlank,
				"role":            stringEnum("user", "donor", "volunteer", "admin"),
				"status":          stringEnum("active", "blocked"),
				"bloodGroup":      bloodGroups(),
				"donationRequest": bson.M{"bsonType": "number", "minimum": 0},
				"donations":       bson.M{"bsonType": "number", "minimum": 0},
				"lastDonation":    bson.M{"bsonType": "string"},
				"createdAt":       bson.M{"bsonType": "date"},
			},
		},
	}
}

func donationRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"requesterEmail", "status"},
			"properties": bson.M{
				"requesterEmail": nonBlank,
				"status":         stringEnum("pending", "inprogress", "done", "canceled"),
				"bloodGroup":     bloodGroups(),
				"donationDate":   bson.M{"bsonType": "string"},
				"donorEmail":     bson.M{"bsonType": "string"},
				"createdAt":      bson.M{"bsonType": "date"},
			},
		},
	}
}

func blogsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "content", "status"},
			"properties": bson.M{
				"title":   nonBlank,
				"content": bson.M{"bsonType": "string"},
				"status":  stringEnum("draft", "published"),
			},
		},
	}
}

func fundsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "amount"},
			"properties": bson.M{
				"email":  nonBlank,
				"amount": bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
			},
		},
	}
}
