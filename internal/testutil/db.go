package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv points tests at an existing server instead of a container.
const MongoURIEnv = "REDAID_TEST_MONGO_URI"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// sharedClient starts one replica-set container per test binary, or dials
// MongoURIEnv when set. Ryuk reaps the container when the binary exits.
func sharedClient(t *testing.T) *mongo.Client {
	t.Helper()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if uri == "" {
			c, err := tcmongo.Run(ctx, "mongo:7", tcmongo.WithReplicaSet("rs0"))
			if err != nil {
				clientErr = err
				return
			}
			uri, err = c.ConnectionString(ctx)
			if err != nil {
				clientErr = err
				return
			}
		}

		client, clientErr = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if clientErr == nil {
			clientErr = client.Ping(ctx, nil)
		}
	})
	if clientErr != nil {
		t.Fatalf("failed to set up test mongo: %v", clientErr)
	}
	return client
}

// SetupTestDB returns a fresh, uniquely named database that is dropped when
// the test finishes. Skips when neither Docker nor MongoURIEnv is available.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo-backed test in -short mode")
	}

	c := sharedClient(t)
	name := "redaid_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := c.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// TestContext returns a context with a deadline suited to a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
