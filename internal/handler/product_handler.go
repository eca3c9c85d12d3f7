package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"shop-inventory/internal/middleware"
	"shop-inventory/internal/model"
	"shop-inventory/internal/service"

	"github.com/rs/zerolog"
)

// maxUploadMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const maxUploadMemory = 32 << 20

// imageFields lists the accepted upload fields and the filename prefix each one gets.
var imageFields = []struct {
	field  string
	prefix string
}{
	{field: "main_image", prefix: "main_"},
	{field: "angle1_image", prefix: "a1_"},
	{field: "angle2_image", prefix: "a2_"},
	{field: "angle3_image", prefix: "a3_"},
}

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	baseURL string
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler. baseURL prefixes every
// stored path in responses.
func NewProductHandler(service service.ProductService, baseURL string, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles POST /products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	multipart := true
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, "invalid multipart form", h.logger)
			return
		}
		// Plain url-encoded forms carry no files.
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, "invalid form", h.logger)
			return
		}
		multipart = false
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	input := &model.CreateProductInput{
		Name:        r.FormValue("name"),
		Category:    optionalFormValue(r, "category"),
		Subcategory: optionalFormValue(r, "subcategory"),
		Audience:    optionalFormValue(r, "audience"),
		Closure:     optionalFormValue(r, "closure"),
		Color:       optionalFormValue(r, "color"),
		Description: optionalFormValue(r, "description"),
		Location:    optionalFormValue(r, "location"),
	}

	if raw := optionalFormValue(r, "price"); raw != nil {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "price must be a number", h.logger)
			return
		}
		input.Price = &price
	}

	if multipart {
		images, err := readImages(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, err.Error(), h.logger)
			return
		}
		input.Images = images
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	resp := newProductResponse(created.Product, h.baseURL)
	resp.QRCodeBase64 = created.QRCodeBase64

	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /products/{pid} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), r.PathValue("pid"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newProductResponse(product, h.baseURL))
}

// List handles GET /products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "limit must be a positive integer", h.logger)
			return
		}
	}

	products, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newProductResponses(products, h.baseURL))
}

// Scan handles POST /scan requests.
func (h *ProductHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req model.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	// An authenticated operator is the scanner unless the request names one.
	if req.ScannedBy == "" {
		if subject, ok := middleware.SubjectFromContext(r.Context()); ok {
			req.ScannedBy = subject
		}
	}

	result, err := h.service.Scan(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ScanResponse{
		Product:   newProductResponse(result.Product, h.baseURL),
		ScannedBy: result.ScannedBy,
		ScannedAt: result.ScannedAt,
	})
}

// Delete handles DELETE /products/{pid} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")

	if err := h.service.Delete(r.Context(), pid); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteResponse{
		Detail: fmt.Sprintf("Product %s deleted successfully", pid),
	})
}

// optionalFormValue returns nil for absent or empty form fields.
func optionalFormValue(r *http.Request, key string) *string {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}

// readImages collects the uploaded photos in field order, skipping empty parts.
func readImages(r *http.Request) ([]model.ImageUpload, error) {
	var images []model.ImageUpload
	for _, f := range imageFields {
		file, header, err := r.FormFile(f.field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			return nil, fmt.Errorf("invalid file in %s", f.field)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s", f.field)
		}

		// Browsers send an empty part for a file input left blank.
		if header.Filename == "" && len(data) == 0 {
			continue
		}

		images = append(images, model.ImageUpload{
			Data:     data,
			Filename: header.Filename,
			Prefix:   f.prefix,
		})
	}
	return images, nil
}
