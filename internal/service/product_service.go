package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-inventory/internal/media"
	"shop-inventory/internal/model"
	"shop-inventory/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	// DefaultListLimit is used when List is called without a positive limit.
	DefaultListLimit = 50
	// MaxListLimit caps the number of products List returns.
	MaxListLimit = 1000

	// maxIDAttempts bounds retries after a product_id collision.
	maxIDAttempts = 3
)

// ProductConfig holds the storage layout used by the product service.
type ProductConfig struct {
	UploadFolder string
	CodesFolder  string
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	store       media.Store
	codes       CodeGenerator
	ids         IDGenerator
	cfg         ProductConfig
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	store media.Store,
	codes CodeGenerator,
	ids IDGenerator,
	cfg ProductConfig,
	logger zerolog.Logger,
) ProductService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &productService{
		productRepo: productRepo,
		store:       store,
		codes:       codes,
		ids:         ids,
		cfg:         cfg,
		validate:    newValidator(),
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// now returns the current time in the precision every backend stores.
func (s *productService) now() time.Time {
	return s.cfg.Now().UTC().Truncate(time.Millisecond)
}

// Create stores the images, generates the codes and inserts the product.
func (s *productService) Create(ctx context.Context, input *model.CreateProductInput) (*model.CreatedProduct, error) {
	if input == nil {
		return nil, model.NewValidationError("product input is required")
	}
	if err := s.validate.Struct(input); err != nil {
		s.logger.Warn().Err(err).Msg("invalid create product request")
		return nil, validationError(err)
	}

	var written []string

	// Save images in submission order
	images := make([]string, 0, len(input.Images))
	for _, img := range input.Images {
		rel, err := s.store.Save(ctx, img.Data, img.Filename, s.cfg.UploadFolder, img.Prefix)
		if err != nil {
			s.logger.Error().Err(err).Str("prefix", img.Prefix).Msg("failed to save image")
			s.removeFiles(ctx, written)
			return nil, model.ErrImageSave.Wrap(err)
		}
		written = append(written, rel)
		images = append(images, rel)
	}

	var lastErr error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		productID := s.ids.NewProductID()

		barcode, err := s.codes.Barcode(ctx, productID, s.cfg.CodesFolder)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to generate barcode")
			s.removeFiles(ctx, written)
			return nil, model.ErrCodeGeneration.Wrap(err)
		}

		qr, qrDataURI, err := s.codes.QR(ctx, productID, s.cfg.CodesFolder)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to generate qr code")
			s.removeFiles(ctx, append(written, barcode))
			return nil, model.ErrCodeGeneration.Wrap(err)
		}

		product := &model.Product{
			ProductID:   productID,
			Name:        input.Name,
			Category:    input.Category,
			Subcategory: input.Subcategory,
			Audience:    input.Audience,
			Closure:     input.Closure,
			Color:       input.Color,
			Description: input.Description,
			Location:    input.Location,
			Price:       input.Price,
			Images:      images,
			Barcode:     barcode,
			QRCode:      qr,
			CreatedAt:   s.now(),
		}

		err = s.productRepo.Insert(ctx, product)
		if err == nil {
			s.logger.Info().
				Str("product_id", productID).
				Int("image_count", len(images)).
				Msg("product created successfully")
			return &model.CreatedProduct{Product: product, QRCodeBase64: qrDataURI}, nil
		}

		if !errors.Is(err, model.ErrDuplicateProductID) {
			s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to insert product")
			s.removeFiles(ctx, append(written, barcode, qr))
			return nil, fmt.Errorf("failed to create product: %w", err)
		}

		// The code files now on disk for productID are identical to the ones
		// the existing product references, so they stay.
		s.logger.Warn().
			Str("product_id", productID).
			Int("attempt", attempt).
			Msg("product id collision, retrying with a new id")
		lastErr = err
	}

	s.removeFiles(ctx, written)
	return nil, lastErr
}

// GetByID retrieves a single product by its product_id.
func (s *productService) GetByID(ctx context.Context, productID string) (*model.Product, error) {
	if productID == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// List retrieves the most recently created products.
func (s *productService) List(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	products, err := s.productRepo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Msg("retrieved products")

	return products, nil
}

// Scan records a scan event and returns the updated product.
func (s *productService) Scan(ctx context.Context, req *model.ScanRequest) (*model.ScanResult, error) {
	if req == nil {
		return nil, model.NewValidationError("product_id is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	scannedBy := req.ScannedBy
	if scannedBy == "" {
		scannedBy = model.DefaultScannedBy
	}

	scannedAt := s.now()
	product, err := s.productRepo.UpdateLastScanned(ctx, req.ProductID, scannedAt)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Str("product_id", req.ProductID).Msg("scan of unknown product")
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", req.ProductID).Msg("failed to record scan")
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}

	s.logger.Info().
		Str("product_id", req.ProductID).
		Str("scanned_by", scannedBy).
		Msg("product scanned")

	return &model.ScanResult{
		Product:   product,
		ScannedBy: scannedBy,
		ScannedAt: scannedAt,
	}, nil
}

// Delete removes a product and then every file it references.
func (s *productService) Delete(ctx context.Context, productID string) error {
	if productID == "" {
		return model.ErrProductNotFound
	}

	product, err := s.productRepo.Delete(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	files := make([]string, 0, len(product.Images)+2)
	files = append(files, product.Images...)
	files = append(files, product.Barcode, product.QRCode)
	s.removeFiles(ctx, files)

	s.logger.Info().Str("product_id", productID).Msg("product deleted successfully")
	return nil
}

// removeFiles deletes each path, logging failures. It keeps going after the
// request context is cancelled so cleanup is not cut short.
func (s *productService) removeFiles(ctx context.Context, paths []string) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.store.Remove(ctx, p); err != nil {
			s.logger.Error().Err(err).Str("path", p).Msg("failed to remove file")
		}
	}
}
