package repository

import (
	"context"
	"testing"
	"time"

	"shop-inventory/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// mockProductRepository is a mock implementation of ProductRepository.
type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Insert(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepository) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepository) UpdateLastScanned(ctx context.Context, productID string, scannedAt time.Time) (*model.Product, error) {
	args := m.Called(ctx, productID, scannedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepository) Delete(ctx context.Context, productID string) (*model.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// setupTestRedis starts a Redis testcontainer and returns a client.
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	addr, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err())

	cleanup := func() {
		_ = client.Close()
		_ = redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestCachedProductRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("FindByID populates cache and serves hits", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		p := newTestProduct("P-CACHED00", baseTime)
		p.ID = "42"
		next.On("FindByID", ctx, "P-CACHED00").Return(p, nil).Once()

		first, err := repo.FindByID(ctx, "P-CACHED00")
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, "P-CACHED00")
		require.NoError(t, err)

		assert.Equal(t, first.ProductID, second.ProductID)
		assert.Equal(t, first.Images, second.Images)
		assert.Equal(t, first.Price, second.Price)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

		ttl, err := client.TTL(ctx, CacheKey("P-CACHED00")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		next.AssertExpectations(t)
	})

	t.Run("Not found is not cached", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		next.On("FindByID", ctx, "P-MISSING0").Return(nil, model.ErrProductNotFound).Twice()

		_, err := repo.FindByID(ctx, "P-MISSING0")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		_, err = repo.FindByID(ctx, "P-MISSING0")
		assert.ErrorIs(t, err, model.ErrProductNotFound)

		next.AssertExpectations(t)
	})

	t.Run("Scan refreshes cache", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		stale := newTestProduct("P-SCANNED0", baseTime)
		scannedAt := baseTime.Add(time.Hour)
		fresh := newTestProduct("P-SCANNED0", baseTime)
		fresh.LastScanned = &scannedAt

		next.On("FindByID", ctx, "P-SCANNED0").Return(stale, nil).Once()
		next.On("UpdateLastScanned", ctx, "P-SCANNED0", scannedAt).Return(fresh, nil).Once()

		_, err := repo.FindByID(ctx, "P-SCANNED0")
		require.NoError(t, err)
		_, err = repo.UpdateLastScanned(ctx, "P-SCANNED0", scannedAt)
		require.NoError(t, err)

		cached, err := repo.FindByID(ctx, "P-SCANNED0")
		require.NoError(t, err)
		require.NotNil(t, cached.LastScanned)
		assert.True(t, scannedAt.Equal(*cached.LastScanned))
		next.AssertExpectations(t)
	})

	t.Run("Delete evicts", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		p := newTestProduct("P-DELETE00", baseTime)
		next.On("FindByID", ctx, "P-DELETE00").Return(p, nil).Once()
		next.On("Delete", ctx, "P-DELETE00").Return(p, nil).Once()

		_, err := repo.FindByID(ctx, "P-DELETE00")
		require.NoError(t, err)
		_, err = repo.Delete(ctx, "P-DELETE00")
		require.NoError(t, err)

		cached, err := client.Get(ctx, CacheKey("P-DELETE00")).Result()
		require.NoError(t, err)
		assert.Equal(t, deletedMarker, cached)

		next.On("FindByID", ctx, "P-DELETE00").Return(nil, model.ErrProductNotFound).Once()
		_, err = repo.FindByID(ctx, "P-DELETE00")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		next.AssertExpectations(t)
	})

	t.Run("Lookup racing a delete does not repopulate", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		p := newTestProduct("P-RACEDEL0", baseTime)
		next.On("Delete", ctx, "P-RACEDEL0").Return(p, nil).Once()
		// The backend read completes, then the delete lands before the fill.
		next.On("FindByID", ctx, "P-RACEDEL0").Return(p, nil).Once().Run(func(mock.Arguments) {
			_, err := repo.Delete(ctx, "P-RACEDEL0")
			require.NoError(t, err)
		})

		_, err := repo.FindByID(ctx, "P-RACEDEL0")
		require.NoError(t, err)

		next.On("FindByID", ctx, "P-RACEDEL0").Return(nil, model.ErrProductNotFound).Once()
		_, err = repo.FindByID(ctx, "P-RACEDEL0")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		next.AssertExpectations(t)
	})

	t.Run("Lookup racing a scan keeps the fresh entry", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		stale := newTestProduct("P-RACESCN0", baseTime)
		scannedAt := baseTime.Add(time.Hour)
		fresh := newTestProduct("P-RACESCN0", baseTime)
		fresh.LastScanned = &scannedAt

		next.On("UpdateLastScanned", ctx, "P-RACESCN0", scannedAt).Return(fresh, nil).Once()
		next.On("FindByID", ctx, "P-RACESCN0").Return(stale, nil).Once().Run(func(mock.Arguments) {
			_, err := repo.UpdateLastScanned(ctx, "P-RACESCN0", scannedAt)
			require.NoError(t, err)
		})

		_, err := repo.FindByID(ctx, "P-RACESCN0")
		require.NoError(t, err)

		cached, err := repo.FindByID(ctx, "P-RACESCN0")
		require.NoError(t, err)
		require.NotNil(t, cached.LastScanned)
		assert.True(t, scannedAt.Equal(*cached.LastScanned))
		next.AssertExpectations(t)
	})

	t.Run("Insert clears a delete marker", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		p := newTestProduct("P-REUSED00", baseTime)
		require.NoError(t, client.Set(ctx, CacheKey("P-REUSED00"), deletedMarker, time.Minute).Err())
		next.On("Insert", ctx, p).Return(nil).Once()
		next.On("FindByID", ctx, "P-REUSED00").Return(p, nil).Once()

		require.NoError(t, repo.Insert(ctx, p))
		_, err := repo.FindByID(ctx, "P-REUSED00")
		require.NoError(t, err)
		_, err = repo.FindByID(ctx, "P-REUSED00")
		require.NoError(t, err)

		next.AssertExpectations(t)
	})

	t.Run("Undecodable entry falls through", func(t *testing.T) {
		require.NoError(t, client.FlushDB(ctx).Err())
		next := new(mockProductRepository)
		repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())

		require.NoError(t, client.Set(ctx, CacheKey("P-GARBAGE0"), "{not json", time.Minute).Err())
		p := newTestProduct("P-GARBAGE0", baseTime)
		next.On("FindByID", ctx, "P-GARBAGE0").Return(p, nil).Once()

		found, err := repo.FindByID(ctx, "P-GARBAGE0")
		require.NoError(t, err)
		assert.Equal(t, "P-GARBAGE0", found.ProductID)
		next.AssertExpectations(t)
	})
}

func TestCachedProductRepository_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	next := new(mockProductRepository)
	repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	p := newTestProduct("P-NOCACHE0", baseTime)
	next.On("FindByID", ctx, "P-NOCACHE0").Return(p, nil)
	next.On("Delete", ctx, "P-NOCACHE0").Return(p, nil)

	found, err := repo.FindByID(ctx, "P-NOCACHE0")
	require.NoError(t, err)
	assert.Equal(t, p, found)

	_, err = repo.Delete(ctx, "P-NOCACHE0")
	require.NoError(t, err)
}

func TestCachedProductRepository_PassThrough(t *testing.T) {
	next := new(mockProductRepository)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	repo := NewCachedProductRepository(next, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	p := newTestProduct("P-PASSTHRU", baseTime)
	next.On("Insert", ctx, p).Return(nil).Once()
	next.On("ListRecent", ctx, 2).Return([]model.Product{*p}, nil).Once()

	require.NoError(t, repo.Insert(ctx, p))
	list, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	next.AssertExpectations(t)
}
