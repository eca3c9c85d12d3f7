// Package idgen produces product identifiers and file-name tokens.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// ProductIDPrefix starts every product identifier.
const ProductIDPrefix = "P-"

// NewProductID returns "P-" followed by 8 uppercase hex characters taken from
// a random UUID. Uniqueness is probable, not guaranteed; the repository
// rejects collisions.
func NewProductID() string {
	return ProductIDPrefix + strings.ToUpper(NewFileToken()[:8])
}

// NewFileToken returns a 32 character lowercase hex token.
func NewFileToken() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

// Generator exposes the package functions behind an interface-friendly value.
type Generator struct{}

// NewProductID implements service.IDGenerator.
func (Generator) NewProductID() string {
	return NewProductID()
}
