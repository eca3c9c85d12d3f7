package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shop-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

const productColumns = `id, product_id, name, category, subcategory, audience, closure, color,
	description, location, price, images, barcode, qr_code, created_at, last_scanned`

// ProductSchema creates the products table used by the PostgreSQL backend.
const ProductSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		product_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT,
		subcategory TEXT,
		audience TEXT,
		closure TEXT,
		color TEXT,
		description TEXT,
		location TEXT,
		price DOUBLE PRECISION,
		images TEXT[] NOT NULL DEFAULT '{}',
		barcode TEXT NOT NULL,
		qr_code TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		last_scanned TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC);
`

// postgresProductRepository implements the ProductRepository interface using PostgreSQL.
type postgresProductRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresProductRepository creates a new PostgreSQL-backed product repository.
func NewPostgresProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &postgresProductRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Str("backend", "postgres").Logger(),
	}
}

// EnsurePostgresSchema applies ProductSchema. It is idempotent.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ProductSchema); err != nil {
		return fmt.Errorf("failed to create product schema: %w", err)
	}
	return nil
}

// Insert stores a new product row.
func (r *postgresProductRepository) Insert(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (product_id, name, category, subcategory, audience, closure, color,
			description, location, price, images, barcode, qr_code, created_at, last_scanned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	if product.Images == nil {
		product.Images = []string{}
	}

	var id int64
	err := r.pool.QueryRow(ctx, query,
		product.ProductID,
		product.Name,
		product.Category,
		product.Subcategory,
		product.Audience,
		product.Closure,
		product.Color,
		product.Description,
		product.Location,
		product.Price,
		product.Images,
		product.Barcode,
		product.QRCode,
		product.CreatedAt,
		product.LastScanned,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn().Str("product_id", product.ProductID).Msg("duplicate product id")
			return model.ErrDuplicateProductID.Wrap(err)
		}
		r.logger.Error().Err(err).Str("product_id", product.ProductID).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	product.ID = strconv.FormatInt(id, 10)
	return nil
}

// FindByID retrieves a single product by its product_id.
func (r *postgresProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, r.rowError(err, productID, "failed to query product")
	}
	return p, nil
}

// ListRecent retrieves at most limit products ordered by created_at descending.
func (r *postgresProductRepository) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// UpdateLastScanned sets last_scanned and returns the updated row.
func (r *postgresProductRepository) UpdateLastScanned(ctx context.Context, productID string, scannedAt time.Time) (*model.Product, error) {
	query := `UPDATE products SET last_scanned = $2 WHERE product_id = $1 RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, query, productID, scannedAt))
	if err != nil {
		return nil, r.rowError(err, productID, "failed to update last scanned")
	}
	return p, nil
}

// Delete removes a product row and returns it.
func (r *postgresProductRepository) Delete(ctx context.Context, productID string) (*model.Product, error) {
	query := `DELETE FROM products WHERE product_id = $1 RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, r.rowError(err, productID, "failed to delete product")
	}
	return p, nil
}

func (r *postgresProductRepository) rowError(err error, productID, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug().Str("product_id", productID).Msg("product not found")
		return model.ErrProductNotFound
	}
	r.logger.Error().Err(err).Str("product_id", productID).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p  model.Product
		id int64
	)
	err := row.Scan(
		&id,
		&p.ProductID,
		&p.Name,
		&p.Category,
		&p.Subcategory,
		&p.Audience,
		&p.Closure,
		&p.Color,
		&p.Description,
		&p.Location,
		&p.Price,
		&p.Images,
		&p.Barcode,
		&p.QRCode,
		&p.CreatedAt,
		&p.LastScanned,
	)
	if err != nil {
		return nil, err
	}

	p.ID = strconv.FormatInt(id, 10)
	normaliseProduct(&p)
	return &p, nil
}
