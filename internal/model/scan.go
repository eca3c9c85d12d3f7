package model

import "time"

// DefaultScannedBy is recorded when a scan request does not name the scanner.
const DefaultScannedBy = "Unknown"

// ScanRequest represents the payload of POST /scan.
type ScanRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	ScannedBy string `json:"scanned_by,omitempty"`
}

// ScanResult is the outcome of a scan event.
type ScanResult struct {
	Product   *Product
	ScannedBy string
	ScannedAt time.Time
}

// ScanResponse is the response payload of POST /scan.
type ScanResponse struct {
	Product   ProductResponse `json:"product"`
	ScannedBy string          `json:"scanned_by"`
	ScannedAt time.Time       `json:"scanned_at"`
}

// LoginResponse is the response payload of POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DeleteResponse confirms a product deletion.
type DeleteResponse struct {
	Detail string `json:"detail"`
}
