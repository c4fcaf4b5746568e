// Package idempotency records which client-supplied keys are being or have
// been applied, so a retried side effect runs at most once per key.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultTTL is how long a claimed key is remembered.
const DefaultTTL = 24 * time.Hour

// Collection holds Mongo-backed keys. Its TTL index is created by the
// indexes package.
const Collection = "idempotency_keys"

// ErrEmptyKey is returned when Claim is called without a key.
var ErrEmptyKey = errors.New("idempotency key is empty")

// State is what Claim found for a key.
type State int

const (
	// Claimed means the caller now owns the key and must Complete or
	// Release it.
	Claimed State = iota
	// InFlight means another attempt owns the key and has not finished.
	InFlight
	// Done means an earlier attempt under the key committed.
	Done
)

func (s State) String() string {
	switch s {
	case Claimed:
		return "claimed"
	case InFlight:
		return "inflight"
	case Done:
		return "done"
	}
	return "unknown"
}

// Store claims keys. The first Claim of a key returns Claimed and marks it
// in flight; later claims see InFlight until the owner calls Complete
// (then Done) or Release (the key is forgotten and can be claimed again).
type Store interface {
	Claim(ctx context.Context, key string) (State, error)
	Complete(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

const (
	statePending = "pending"
	stateDone    = "done"
)

// Scope joins parts into a namespaced key, e.g. Scope("accept", id, k).
func Scope(parts ...string) string {
	return strings.Join(parts, ":")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Mongo                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// MongoStore keeps keys as documents whose _id is the key. The unique _id
// index makes Claim atomic. Do not call Claim inside a transaction: a
// duplicate-key error aborts it.
type MongoStore struct {
	c   *mongo.Collection
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{c: db.Collection(Collection), now: time.Now}
}

func (s *MongoStore) Claim(ctx context.Context, key string) (State, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}
	_, err := s.c.InsertOne(ctx, bson.M{"_id": key, "state": statePending, "createdAt": s.now().UTC()})
	if err == nil {
		return Claimed, nil
	}
	if !wafflemongo.IsDup(err) {
		return 0, fmt.Errorf("claim idempotency key: %w", err)
	}

	var doc struct {
		State string `bson:"state"`
	}
	if err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		// Released between the insert and the read: the owner is still
		// settling, so report it as in flight.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return InFlight, nil
		}
		return 0, fmt.Errorf("read idempotency key: %w", err)
	}
	if doc.State == stateDone {
		return Done, nil
	}
	return InFlight, nil
}

func (s *MongoStore) Complete(ctx context.Context, key string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M{"state": stateDone}})
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *MongoStore) Release(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Purge deletes keys claimed more than ttl ago. The TTL index does the same
// on its own schedule; Purge covers the gap when the TTL monitor lags.
func (s *MongoStore) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-ttl)
	res, err := s.c.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", err)
	}
	return res.DeletedCount, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Redis                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// RedisStore keeps keys in Redis with SET NX and an expiry.
type RedisStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a Redis-backed store. ttl <= 0 uses DefaultTTL.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "redaid:idem:"}
}

func (s *RedisStore) Claim(ctx context.Context, key string) (State, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}
	ok, err := s.rdb.SetNX(ctx, s.prefix+key, statePending, s.ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return Claimed, nil
	}
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("read idempotency key: %w", err)
	}
	if v == stateDone {
		return Done, nil
	}
	return InFlight, nil
}

// Complete marks key done and keeps the expiry set by Claim.
func (s *RedisStore) Complete(ctx context.Context, key string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, stateDone, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

/*─────────────────────────────────────────────────────────────────────────────*
| In-memory                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Memory is a process-local Store for tests and single-instance use.
type Memory struct {
	mu   sync.Mutex
	keys map[string]bool // key -> done
}

func NewMemory() *Memory {
	return &Memory{keys: map[string]bool{}}
}

func (m *Memory) Claim(ctx context.Context, key string) (State, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	done, seen := m.keys[key]
	switch {
	case !seen:
		m.keys[key] = false
		return Claimed, nil
	case done:
		return Done, nil
	}
	return InFlight, nil
}

func (m *Memory) Complete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.keys[key]; seen {
		m.keys[key] = true
	}
	return nil
}

func (m *Memory) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
