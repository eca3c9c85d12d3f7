package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-inventory/internal/model"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDocument is the BSON shape of a product.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductID   string             `bson:"product_id"`
	Name        string             `bson:"name"`
	Category    *string            `bson:"category"`
	Subcategory *string            `bson:"subcategory"`
	Audience    *string            `bson:"audience"`
	Closure     *string            `bson:"closure"`
	Color       *string            `bson:"color"`
	Description *string            `bson:"description"`
	Location    *string            `bson:"location"`
	Price       *float64           `bson:"price"`
	Images      []string           `bson:"images"`
	Barcode     string             `bson:"barcode"`
	QRCode      string             `bson:"qr_code"`
	CreatedAt   time.Time          `bson:"created_at"`
	LastScanned *time.Time         `bson:"last_scanned"`
}

func newProductDocument(p *model.Product) productDocument {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productDocument{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Audience:    p.Audience,
		Closure:     p.Closure,
		Color:       p.Color,
		Description: p.Description,
		Location:    p.Location,
		Price:       p.Price,
		Images:      images,
		Barcode:     p.Barcode,
		QRCode:      p.QRCode,
		CreatedAt:   p.CreatedAt,
		LastScanned: p.LastScanned,
	}
}

func (d *productDocument) toModel() *model.Product {
	p := &model.Product{
		ID:          d.ID.Hex(),
		ProductID:   d.ProductID,
		Name:        d.Name,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Audience:    d.Audience,
		Closure:     d.Closure,
		Color:       d.Color,
		Description: d.Description,
		Location:    d.Location,
		Price:       d.Price,
		Images:      d.Images,
		Barcode:     d.Barcode,
		QRCode:      d.QRCode,
		CreatedAt:   d.CreatedAt,
		LastScanned: d.LastScanned,
	}
	normaliseProduct(p)
	return p
}

// mongoProductRepository implements the ProductRepository interface using MongoDB.
type mongoProductRepository struct {
	coll   *mongo.Collection
	logger zerolog.Logger
}

// NewMongoProductRepository creates a new MongoDB-backed product repository.
func NewMongoProductRepository(coll *mongo.Collection, logger zerolog.Logger) ProductRepository {
	return &mongoProductRepository{
		coll:   coll,
		logger: logger.With().Str("repository", "product").Str("backend", "mongo").Logger(),
	}
}

// EnsureMongoIndexes creates the unique product_id index and the created_at
// index used for listing. It is idempotent.
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("product_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Insert stores a new product document.
func (r *mongoProductRepository) Insert(ctx context.Context, product *model.Product) error {
	doc := newProductDocument(product)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn().Str("product_id", product.ProductID).Msg("duplicate product id")
			return model.ErrDuplicateProductID.Wrap(err)
		}
		r.logger.Error().Err(err).Str("product_id", product.ProductID).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid.Hex()
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	return nil
}

// FindByID retrieves a single product by its product_id.
func (r *mongoProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"product_id": productID}).Decode(&doc)
	if err != nil {
		return nil, r.singleResultError(err, productID, "failed to query product")
	}
	return doc.toModel(), nil
}

// ListRecent retrieves at most limit products ordered by created_at descending.
func (r *mongoProductRepository) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode product documents")
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]model.Product, 0, len(docs))
	for i := range docs {
		products = append(products, *docs[i].toModel())
	}

	return products, nil
}

// UpdateLastScanned sets last_scanned in a single find-and-modify.
func (r *mongoProductRepository) UpdateLastScanned(ctx context.Context, productID string, scannedAt time.Time) (*model.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"product_id": productID},
		bson.M{"$set": bson.M{"last_scanned": scannedAt}},
		opts,
	).Decode(&doc)
	if err != nil {
		return nil, r.singleResultError(err, productID, "failed to update last scanned")
	}

	return doc.toModel(), nil
}

// Delete removes a product in a single find-and-delete.
func (r *mongoProductRepository) Delete(ctx context.Context, productID string) (*model.Product, error) {
	var doc productDocument
	err := r.coll.FindOneAndDelete(ctx, bson.M{"product_id": productID}).Decode(&doc)
	if err != nil {
		return nil, r.singleResultError(err, productID, "failed to delete product")
	}

	return doc.toModel(), nil
}

func (r *mongoProductRepository) singleResultError(err error, productID, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Debug().Str("product_id", productID).Msg("product not found")
		return model.ErrProductNotFound
	}
	r.logger.Error().Err(err).Str("product_id", productID).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
