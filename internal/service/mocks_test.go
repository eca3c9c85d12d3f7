package service

import (
	"context"
	"io"
	"time"

	"shop-inventory/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Insert(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateLastScanned(ctx context.Context, productID string, scannedAt time.Time) (*model.Product, error) {
	args := m.Called(ctx, productID, scannedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, productID string) (*model.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockStore is a mock implementation of media.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, data []byte, originalFilename, folder, prefix string) (string, error) {
	args := m.Called(ctx, data, originalFilename, folder, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, data []byte, folder, filename string) (string, error) {
	args := m.Called(ctx, data, folder, filename)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	args := m.Called(ctx, relPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStore) Remove(ctx context.Context, relPath string) error {
	args := m.Called(ctx, relPath)
	return args.Error(0)
}

// MockCodeGenerator is a mock implementation of CodeGenerator.
type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Barcode(ctx context.Context, productID, folder string) (string, error) {
	args := m.Called(ctx, productID, folder)
	return args.String(0), args.Error(1)
}

func (m *MockCodeGenerator) QR(ctx context.Context, productID, folder string) (string, string, error) {
	args := m.Called(ctx, productID, folder)
	return args.String(0), args.String(1), args.Error(2)
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) NewProductID() string {
	args := m.Called()
	return args.String(0)
}
