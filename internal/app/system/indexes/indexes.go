// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, idemTTL time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := reconciler{log: logger}

	var problems []string
	steps := []struct {
		name string
		fn   func() error
	}{
		{"users", func() error { return r.ensureUsers(ctx, db) }},
		{"donationRequests", func() error { return r.ensureDonationRequests(ctx, db) }},
		{"blogs", func() error { return r.ensureBlogs(ctx, db) }},
		{"funds", func() error { return r.ensureFunds(ctx, db) }},
		{"idempotency_keys", func() error { return r.ensureIdempotencyKeys(ctx, db, idemTTL) }},
		{"audit_events", func() error { return r.ensureAuditEvents(ctx, db) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name        string `bson:"name"`
	Key         bson.D `bson:"key"`
	Unique      *bool  `bson:"unique,omitempty"`
	ExpireAfter *int32 `bson:"expireAfterSeconds,omitempty"`
}

type reconciler struct {
	log *zap.Logger
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func int32Val(p *int32) int32 {
	if p == nil {
		return -1
	}
	return *p
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func (r reconciler) listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			r.log.Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// ensureIndexSet creates each desired index, reusing one with identical keys
// and options, and dropping/recreating one whose name or options differ.
func (r reconciler) ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := r.listExisting(ctx, coll)

	for _, m := range models {
		var name string
		var unique *bool
		var expire *int32
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
			expire = m.Options.ExpireAfterSeconds
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := r.log.With(zap.String("collection", coll.Name()), zap.String("name", name), zap.String("keys", sig))

		if ex, ok := existing[sig]; ok {
			if boolVal(unique) == boolVal(ex.Unique) && int32Val(expire) == int32Val(ex.ExpireAfter) && (name == "" || ex.Name == name) {
				log.Debug("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			log.Info("dropped index with differing name or options", zap.String("old_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && boolVal(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			log.Warn("index ensure failed", zap.Error(err))
			continue
		}
		log.Info("index ensured",
			zap.Bool("unique", boolVal(unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func (r reconciler) ensureUsers(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Email is the identity key; registration upserts on it.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Public donor search: role+status fixed, then optional location filters.
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "status", Value: 1},
				{Key: "bloodGroup", Value: 1},
				{Key: "district", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_status_bloodgroup_district"),
		},
		// Admin user list, newest first, optionally by status.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_users_status_createdat"),
		},
	})
}

func (r reconciler) ensureDonationRequests(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("donationRequests"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "requesterEmail", Value: 1},
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_requests_requester_status_createdat"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_requests_status_createdat"),
		},
	})
}

func (r reconciler) ensureBlogs(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("blogs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_blogs_status_category_createdat"),
		},
	})
}

func (r reconciler) ensureFunds(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("funds"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_funds_createdat"),
		},
	})
}

func (r reconciler) ensureIdempotencyKeys(ctx context.Context, db *mongo.Database, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return r.ensureIndexSet(ctx, db.Collection("idempotency_keys"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())).SetName("ttl_idempotency_createdat"),
		},
	})
}

func (r reconciler) ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		// Retention purge and the unfiltered list.
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_audit_createdat"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "eventType", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_createdat"),
		},
		{
			Keys:    bson.D{{Key: "targetId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_audit_target_createdat"),
		},
		{
			Keys:    bson.D{{Key: "actor", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_createdat"),
		},
	})
}
