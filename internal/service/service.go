package service

import (
	"context"

	"shop-inventory/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// Create stores the images, generates the codes and inserts the product.
	// On failure every file written for the request is removed again.
	Create(ctx context.Context, input *model.CreateProductInput) (*model.CreatedProduct, error)

	// GetByID retrieves a single product by its product_id.
	GetByID(ctx context.Context, productID string) (*model.Product, error)

	// List retrieves the most recently created products.
	List(ctx context.Context, limit int) ([]model.Product, error)

	// Scan records a scan event and returns the updated product.
	Scan(ctx context.Context, req *model.ScanRequest) (*model.ScanResult, error)

	// Delete removes a product and every file it references.
	Delete(ctx context.Context, productID string) error
}

// CodeGenerator renders and stores barcode and QR images.
type CodeGenerator interface {
	Barcode(ctx context.Context, productID, folder string) (string, error)
	QR(ctx context.Context, productID, folder string) (path string, dataURI string, err error)
}

// IDGenerator issues new product identifiers.
type IDGenerator interface {
	NewProductID() string
}
