package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidForm        = "INVALID_FORM"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeDuplicateProductID = "DUPLICATE_PRODUCT_ID"
	ErrCodeImageSave          = "IMAGE_SAVE_FAILED"
	ErrCodeCodeGeneration     = "CODE_GENERATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business error carrying a stable code. Two domain errors
// match under errors.Is when their codes are equal, so wrapped copies still
// compare equal to the sentinel they came from.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of the domain error with cause attached.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: cause}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a caller-facing message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// Common domain errors
var (
	ErrValidation         = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrDuplicateProductID = NewDomainError(ErrCodeDuplicateProductID, "Product ID already exists")
	ErrImageSave          = NewDomainError(ErrCodeImageSave, "Failed to save images")
	ErrCodeGeneration     = NewDomainError(ErrCodeCodeGeneration, "Failed to generate codes")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Unauthorised")
)
