// Package codegen renders the barcode and QR images that identify a product
// and stores them through the media store.
package codegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"shop-inventory/internal/media"

	"github.com/rs/zerolog"
)

// ErrInvalidProductID is returned for identifiers that cannot be encoded.
var ErrInvalidProductID = errors.New("codegen: invalid product id")

const dataURIPrefix = "data:image/png;base64,"

// Generator renders codes and writes them to a media store.
type Generator struct {
	store  media.Store
	logger zerolog.Logger
}

// NewGenerator creates a new code generator.
func NewGenerator(store media.Store, logger zerolog.Logger) *Generator {
	return &Generator{
		store:  store,
		logger: logger.With().Str("component", "codegen").Logger(),
	}
}

// BarcodeFilename is the stored name of a product's barcode image.
func BarcodeFilename(productID string) string {
	return "barcode_" + productID + ".png"
}

// QRFilename is the stored name of a product's QR image.
func QRFilename(productID string) string {
	return "qr_" + productID + ".png"
}

// Barcode renders and stores the barcode for productID, returning its root-relative path.
func (g *Generator) Barcode(ctx context.Context, productID, folder string) (string, error) {
	data, err := RenderBarcode(productID)
	if err != nil {
		g.logger.Error().Err(err).Str("product_id", productID).Msg("failed to render barcode")
		return "", err
	}

	rel, err := g.store.Put(ctx, data, folder, BarcodeFilename(productID))
	if err != nil {
		return "", fmt.Errorf("failed to store barcode: %w", err)
	}

	g.logger.Debug().Str("product_id", productID).Str("path", rel).Msg("barcode generated")
	return rel, nil
}

// QR renders and stores the QR code for productID. It returns the
// root-relative path and the same PNG as a data URI.
func (g *Generator) QR(ctx context.Context, productID, folder string) (string, string, error) {
	data, err := RenderQR(productID)
	if err != nil {
		g.logger.Error().Err(err).Str("product_id", productID).Msg("failed to render qr code")
		return "", "", err
	}

	rel, err := g.store.Put(ctx, data, folder, QRFilename(productID))
	if err != nil {
		return "", "", fmt.Errorf("failed to store qr code: %w", err)
	}

	g.logger.Debug().Str("product_id", productID).Str("path", rel).Msg("qr code generated")
	return rel, dataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}
