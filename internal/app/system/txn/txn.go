// Package txn runs a group of writes as one unit. On a replica set the
// writes share a Mongo transaction; on a standalone server (tests, small
// deployments) they run in order with no rollback.
package txn

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes fn as a unit of work. ctx passed to fn must be used for
// every write that belongs to the unit.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sequential runs fn directly. Writes are applied in order and a failure
// part way leaves the earlier writes in place.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Mongo runs fn inside a session transaction, falling back to Sequential
// once the server reports it does not support transactions.
type Mongo struct {
	client *mongo.Client
	log    *zap.Logger

	mu          sync.Mutex
	unsupported bool
}

// NewMongo returns a transaction runner bound to client.
func NewMongo(client *mongo.Client, logger *zap.Logger) *Mongo {
	return &Mongo{client: client, log: logger}
}

func (m *Mongo) fallback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsupported
}

func (m *Mongo) markUnsupported(err error) {
	m.mu.Lock()
	first := !m.unsupported
	m.unsupported = true
	m.mu.Unlock()
	if first {
		m.log.Warn("mongo transactions unavailable, running writes sequentially", zap.Error(err))
	}
}

func (m *Mongo) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.fallback() {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			m.markUnsupported(err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		m.markUnsupported(err)
		// The aborted transaction rolled back anything fn wrote, so it is
		// safe to run it again without one.
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions (standalone mongod, old server, or an
// operation illegal inside a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation
			51,  // NotSupported (older servers)
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
