package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shop-inventory/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// newTestProduct builds a product as the service would before insert.
func newTestProduct(id string, createdAt time.Time) *model.Product {
	return &model.Product{
		ProductID: id,
		Name:      "Product " + id,
		Category:  strPtr("Shoes"),
		Color:     strPtr("Red"),
		Price:     floatPtr(49.5),
		Images:    []string{"/uploads/main_" + id + ".jpg"},
		Barcode:   "/codes/barcode_" + id + ".png",
		QRCode:    "/codes/qr_" + id + ".png",
		CreatedAt: createdAt,
	}
}

// runProductRepositoryTests exercises behaviour every backend must share.
// newRepo must return a repository over an empty store.
func runProductRepositoryTests(t *testing.T, newRepo func(t *testing.T) ProductRepository) {
	ctx := context.Background()

	t.Run("Insert and find", func(t *testing.T) {
		repo := newRepo(t)
		p := newTestProduct("P-00000001", baseTime)

		require.NoError(t, repo.Insert(ctx, p))
		assert.NotEmpty(t, p.ID)

		found, err := repo.FindByID(ctx, "P-00000001")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
		assert.Equal(t, "Product P-00000001", found.Name)
		assert.Equal(t, strPtr("Shoes"), found.Category)
		assert.Nil(t, found.Subcategory)
		assert.Nil(t, found.Description)
		assert.Equal(t, floatPtr(49.5), found.Price)
		assert.Equal(t, p.Images, found.Images)
		assert.Equal(t, p.Barcode, found.Barcode)
		assert.Equal(t, p.QRCode, found.QRCode)
		assert.True(t, baseTime.Equal(found.CreatedAt))
		assert.Equal(t, time.UTC, found.CreatedAt.Location())
		assert.Nil(t, found.LastScanned)
	})

	t.Run("Optional fields absent", func(t *testing.T) {
		repo := newRepo(t)
		p := &model.Product{
			ProductID: "P-00000002",
			Name:      "Bare",
			Barcode:   "/codes/barcode_P-00000002.png",
			QRCode:    "/codes/qr_P-00000002.png",
			CreatedAt: baseTime,
		}

		require.NoError(t, repo.Insert(ctx, p))

		found, err := repo.FindByID(ctx, "P-00000002")
		require.NoError(t, err)
		assert.Nil(t, found.Price)
		assert.Nil(t, found.Category)
		assert.NotNil(t, found.Images)
		assert.Empty(t, found.Images)
	})

	t.Run("Duplicate product id", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Insert(ctx, newTestProduct("P-DUPLICAT", baseTime)))
		err := repo.Insert(ctx, newTestProduct("P-DUPLICAT", baseTime))

		assert.ErrorIs(t, err, model.ErrDuplicateProductID)
	})

	t.Run("Find missing", func(t *testing.T) {
		repo := newRepo(t)

		p, err := repo.FindByID(ctx, "P-MISSING0")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
		assert.Nil(t, p)
	})

	t.Run("List recent", func(t *testing.T) {
		repo := newRepo(t)

		empty, err := repo.ListRecent(ctx, 50)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("P-0000000%d", i)
			require.NoError(t, repo.Insert(ctx, newTestProduct(id, baseTime.Add(time.Duration(i)*time.Minute))))
		}

		tests := []struct {
			name     string
			limit    int
			expected []string
		}{
			{
				name:     "All products newest first",
				limit:    10,
				expected: []string{"P-00000004", "P-00000003", "P-00000002", "P-00000001", "P-00000000"},
			},
			{
				name:     "Limit two",
				limit:    2,
				expected: []string{"P-00000004", "P-00000003"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				products, err := repo.ListRecent(ctx, tt.limit)
				require.NoError(t, err)

				ids := make([]string, 0, len(products))
				for _, p := range products {
					ids = append(ids, p.ProductID)
				}
				assert.Equal(t, tt.expected, ids)
			})
		}
	})

	t.Run("Update last scanned", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Insert(ctx, newTestProduct("P-SCANNED0", baseTime)))

		scannedAt := baseTime.Add(time.Hour).Add(123 * time.Millisecond)
		updated, err := repo.UpdateLastScanned(ctx, "P-SCANNED0", scannedAt)
		require.NoError(t, err)
		require.NotNil(t, updated.LastScanned)
		assert.True(t, scannedAt.Equal(*updated.LastScanned))

		found, err := repo.FindByID(ctx, "P-SCANNED0")
		require.NoError(t, err)
		require.NotNil(t, found.LastScanned)
		assert.True(t, scannedAt.Equal(*found.LastScanned))
		assert.True(t, baseTime.Equal(found.CreatedAt), "created_at must not change")
	})

	t.Run("Update last scanned missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.UpdateLastScanned(ctx, "P-MISSING0", baseTime)
		assert.ErrorIs(t, err, model.ErrProductNotFound)

		products, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, products, "a scan of an unknown id must not create a record")
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		p := newTestProduct("P-DELETE00", baseTime)
		require.NoError(t, repo.Insert(ctx, p))

		removed, err := repo.Delete(ctx, "P-DELETE00")
		require.NoError(t, err)
		assert.Equal(t, p.Images, removed.Images)
		assert.Equal(t, p.Barcode, removed.Barcode)
		assert.Equal(t, p.QRCode, removed.QRCode)

		_, err = repo.FindByID(ctx, "P-DELETE00")
		assert.ErrorIs(t, err, model.ErrProductNotFound)

		_, err = repo.Delete(ctx, "P-DELETE00")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}
