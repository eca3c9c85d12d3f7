package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shop-inventory/internal/auth"
	"shop-inventory/internal/codegen"
	"shop-inventory/internal/config"
	"shop-inventory/internal/database"
	"shop-inventory/internal/handler"
	"shop-inventory/internal/idgen"
	"shop-inventory/internal/media"
	"shop-inventory/internal/repository"
	"shop-inventory/internal/router"
	"shop-inventory/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testBaseURL  = "http://shop.test"
	uploadFolder = "uploads"
	codesFolder  = "codes"
	testUsername = "admin"
	testPassword = "admin123"
)

// TestServer is a fully wired API backed by real containers and a temporary
// media root.
type TestServer struct {
	Handler   http.Handler
	MediaRoot string
	Repo      repository.ProductRepository
}

// SetupMongo starts a MongoDB container and returns a collection with the
// product indexes in place.
func SetupMongo(t *testing.T) *mongo.Collection {
	t.Helper()

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	client, err := database.NewMongoClient(ctx, config.MongoConfig{
		URI:            uri,
		Database:       "shopdb_test",
		Collection:     "products",
		ConnectTimeout: 10,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect to mongodb: %v", err)
	}

	coll := client.Database("shopdb_test").Collection("products")
	if err := repository.EnsureMongoIndexes(ctx, coll); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return coll
}

// SetupPostgres creates a PostgreSQL test container and connection pool with
// the product schema applied.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := repository.EnsurePostgresSchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return pool
}

// SetupRedis starts a Redis container and returns a connected client.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	addr, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client, err := database.NewRedisClient(ctx, config.RedisConfig{Addr: addr, TTL: 60}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// NewTestServer wires repo into the full HTTP stack with a local media store
// rooted in a temporary directory.
func NewTestServer(t *testing.T, repo repository.ProductRepository, authRequired bool) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	root := t.TempDir()

	store, err := media.NewLocalStore(root, []string{uploadFolder, codesFolder}, logger)
	if err != nil {
		t.Fatalf("failed to create media store: %v", err)
	}

	authenticator, err := auth.NewAuthenticator(config.AuthConfig{
		Username:    testUsername,
		Password:    testPassword,
		TokenSecret: "integration-secret",
		TokenTTL:    3600,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}

	productService := service.NewProductService(
		repo,
		store,
		codegen.NewGenerator(store, logger),
		idgen.Generator{},
		service.ProductConfig{UploadFolder: uploadFolder, CodesFolder: codesFolder},
		logger,
	)

	h := router.New(
		handler.NewProductHandler(productService, testBaseURL, logger),
		handler.NewAuthHandler(authenticator, logger),
		handler.NewMediaHandler(store, logger),
		router.Options{
			MediaFolders: []string{uploadFolder, codesFolder},
			Verifier:     authenticator,
			AuthRequired: authRequired,
		},
		logger,
	)

	return &TestServer{Handler: h, MediaRoot: root, Repo: repo}
}
