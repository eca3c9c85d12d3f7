package handler

import (
	"strings"

	"shop-inventory/internal/model"
)

// fullURL prefixes a root-relative path with the public base URL. An empty
// path has no URL.
func fullURL(baseURL, path string) *string {
	if path == "" {
		return nil
	}
	u := strings.TrimRight(baseURL, "/") + path
	return &u
}

func newProductResponse(p *model.Product, baseURL string) model.ProductResponse {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if u := fullURL(baseURL, img); u != nil {
			images = append(images, *u)
		}
	}

	return model.ProductResponse{
		ID:          p.ID,
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
		Barcode:     fullURL(baseURL, p.Barcode),
		QRCode:      fullURL(baseURL, p.QRCode),
		CreatedAt:   p.CreatedAt,
		LastScanned: p.LastScanned,
	}
}

func newProductResponses(products []model.Product, baseURL string) []model.ProductResponse {
	out := make([]model.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, newProductResponse(&products[i], baseURL))
	}
	return out
}
