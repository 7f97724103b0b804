package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/api/response"
	"github.com/labelproof/labelproof/internal/api/validation"
	"github.com/labelproof/labelproof/internal/audit"
	"github.com/labelproof/labelproof/internal/product"
)

type productRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	ShelfLife string `json:"shelfLife"`
}

type productResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	ShelfLife string `json:"shelfLife"`
	CreatedAt string `json:"createdAt"`
}

// ProductHandler handles finished-goods code endpoints. Authentication is
// route-gated; any signed-in user may manage the catalog.
type ProductHandler struct {
	repo  product.Repository
	audit *audit.Recorder
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(repo product.Repository, recorder *audit.Recorder) *ProductHandler {
	return &ProductHandler{repo: repo, audit: recorder}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	products, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products", requestID)
		return
	}

	items := make([]productResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateProductRequest(validation.ProductRequest{
		Code:      req.Code,
		Name:      req.Name,
		ShelfLife: req.ShelfLife,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p := &product.Product{
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		ShelfLife: strings.TrimSpace(req.ShelfLife),
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		if errors.Is(err, product.ErrDuplicateCode) {
			response.Err(w, http.StatusConflict, "DUPLICATE", "Product code already exists", requestID)
			return
		}
		slog.Error("failed to create product", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product", requestID)
		return
	}

	identity := middleware.GetIdentity(r.Context())
	h.audit.Record(r.Context(), identity.UserID, audit.ActionCreateProduct,
		map[string]any{"code": p.Code, "name": p.Name}, r.RemoteAddr)

	response.Success(w, http.StatusCreated, toProductResponse(p), requestID)
}

// Update handles PUT /products/{code}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code := chi.URLParam(r, "code")
	if code == "" {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "product code is required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Code = code
	fieldErrors := validation.ValidateProductRequest(validation.ProductRequest{
		Code:      req.Code,
		Name:      req.Name,
		ShelfLife: req.ShelfLife,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p := &product.Product{
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		ShelfLife: strings.TrimSpace(req.ShelfLife),
	}

	if err := h.repo.Update(r.Context(), p); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to update product", "error", err, "code", code, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product", requestID)
		return
	}

	identity := middleware.GetIdentity(r.Context())
	h.audit.Record(r.Context(), identity.UserID, audit.ActionUpdateProduct,
		map[string]any{"code": p.Code, "name": p.Name}, r.RemoteAddr)

	response.Success(w, http.StatusOK, toProductResponse(p), requestID)
}

// Delete handles DELETE /products/{code}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	code := chi.URLParam(r, "code")
	if code == "" {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "product code is required", requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), code); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to delete product", "error", err, "code", code, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete product", requestID)
		return
	}

	identity := middleware.GetIdentity(r.Context())
	h.audit.Record(r.Context(), identity.UserID, audit.ActionDeleteProduct,
		map[string]any{"code": code}, r.RemoteAddr)

	response.NoContent(w)
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		Code:      p.Code,
		Name:      p.Name,
		ShelfLife: p.ShelfLife,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
