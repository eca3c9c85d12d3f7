package model

import "time"

// Product represents a catalogue item tracked by the inventory tool.
// Image, barcode and QR references are root-relative paths into the media store.
type Product struct {
	ID          string     `json:"_id"`
	ProductID   string     `json:"product_id"`
	Name        string     `json:"name"`
	Category    *string    `json:"category"`
	Subcategory *string    `json:"subcategory"`
	Audience    *string    `json:"audience"`
	Closure     *string    `json:"closure"`
	Color       *string    `json:"color"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Price       *float64   `json:"price"`
	Images      []string   `json:"images"`
	Barcode     string     `json:"barcode"`
	QRCode      string     `json:"qr_code"`
	CreatedAt   time.Time  `json:"created_at"`
	LastScanned *time.Time `json:"last_scanned"`
}

// ProductResponse is a product as returned to clients, with every stored path
// rewritten to an absolute URL.
type ProductResponse struct {
	ID           string     `json:"_id"`
	ProductID    string     `json:"product_id"`
	Name         string     `json:"name"`
	Category     *string    `json:"category"`
	Subcategory  *string    `json:"subcategory"`
	Audience     *string    `json:"audience"`
	Closure      *string    `json:"closure"`
	Color        *string    `json:"color"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	Price        *float64   `json:"price"`
	Images       []string   `json:"images"`
	Barcode      *string    `json:"barcode"`
	QRCode       *string    `json:"qr_code"`
	CreatedAt    time.Time  `json:"created_at"`
	LastScanned  *time.Time `json:"last_scanned"`
	QRCodeBase64 string     `json:"qr_code_base64,omitempty"`
}

// ImageUpload is a single uploaded photo waiting to be stored.
type ImageUpload struct {
	Data     []byte
	Filename string
	Prefix   string
}

// CreateProductInput carries the parsed multipart form of a create request.
type CreateProductInput struct {
	Name        string `validate:"required"`
	Category    *string
	Subcategory *string
	Audience    *string
	Closure     *string
	Color       *string
	Description *string
	Location    *string
	Price       *float64
	Images      []ImageUpload `validate:"max=4"`
}

// CreatedProduct is the result of a successful create, including the inline QR image.
type CreatedProduct struct {
	Product      *Product
	QRCodeBase64 string
}
