package repository

import (
	"context"
	"time"

	"shop-inventory/internal/model"
)

// ProductRepository defines the interface for product data access operations.
// Every operation is keyed by the public product_id. Operations on a missing
// product return model.ErrProductNotFound.
type ProductRepository interface {
	// Insert stores a new product and sets its backend ID. A product_id that
	// already exists yields model.ErrDuplicateProductID.
	Insert(ctx context.Context, product *model.Product) error

	// FindByID retrieves a single product by its product_id.
	FindByID(ctx context.Context, productID string) (*model.Product, error)

	// ListRecent retrieves at most limit products, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Product, error)

	// UpdateLastScanned sets last_scanned and returns the updated product.
	UpdateLastScanned(ctx context.Context, productID string, scannedAt time.Time) (*model.Product, error)

	// Delete removes a product and returns what was removed.
	Delete(ctx context.Context, productID string) (*model.Product, error)
}

// normaliseProduct brings a decoded product to the shape every backend returns.
func normaliseProduct(p *model.Product) {
	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if p.LastScanned != nil {
		ts := p.LastScanned.UTC()
		p.LastScanned = &ts
	}
}
