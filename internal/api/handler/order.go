package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/api/response"
	"github.com/labelproof/labelproof/internal/api/validation"
	"github.com/labelproof/labelproof/internal/audit"
	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/order"
	"github.com/labelproof/labelproof/internal/product"
	"github.com/labelproof/labelproof/internal/profile"
)

type createOrderRequest struct {
	OrderDate      string `json:"orderDate"`
	OrderType      string `json:"orderType"`
	LotNumber      string `json:"lotNumber"`
	ProductCode    string `json:"productCode"`
	ProductionDate string `json:"productionDate"`
	Quantity       int    `json:"quantity"`
	Notes          string `json:"notes"`
}

type updateOrderRequest struct {
	OrderType string `json:"orderType"`
	LotNumber string `json:"lotNumber"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

type orderResponse struct {
	ID             string  `json:"id"`
	OrderDate      string  `json:"orderDate"`
	OrderType      string  `json:"orderType"`
	LotNumber      string  `json:"lotNumber"`
	ProductCode    string  `json:"productCode"`
	ProductName    string  `json:"productName"`
	ShelfLife      string  `json:"shelfLife"`
	ProductionDate string  `json:"productionDate"`
	ExpiryDate     string  `json:"expiryDate"`
	Quantity       int     `json:"quantity"`
	Notes          string  `json:"notes,omitempty"`
	CreatedBy      string  `json:"createdBy"`
	CreatedByDept  string  `json:"createdByDepartment,omitempty"`
	Verified       bool    `json:"isVerified"`
	VerifiedBy     *string `json:"verifiedBy,omitempty"`
	VerifiedAt     *string `json:"verifiedAt,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

type statsResponse struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Total        int             `json:"total"`
	ByDepartment []countResponse `json:"byDepartment"`
	ByProduct    []countResponse `json:"byProduct"`
}

type countResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OrderHandler handles print-order endpoints. Creation is open to any
// signed-in user; verification, edits and deletion are moderator-tier
// mutations routed through the gate.
type OrderHandler struct {
	gate     *middleware.Gate
	orders   order.Repository
	products product.Repository
	profiles profile.Repository
	audit    *audit.Recorder
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(gate *middleware.Gate, orders order.Repository, products product.Repository, profiles profile.Repository, recorder *audit.Recorder) *OrderHandler {
	return &OrderHandler{
		gate:     gate,
		orders:   orders,
		products: products,
		profiles: profiles,
		audit:    recorder,
	}
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	orders, err := h.orders.List(r.Context())
	if err != nil {
		slog.Error("failed to list orders", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders", requestID)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /orders. The expiry date is computed here from the
// stored product's shelf life; a client-supplied expiry is ignored.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateOrderRequest(validation.CreateOrderRequest{
		ProductCode:    req.ProductCode,
		LotNumber:      req.LotNumber,
		ProductionDate: req.ProductionDate,
		Quantity:       req.Quantity,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.products.GetByCode(r.Context(), strings.TrimSpace(req.ProductCode))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Product not found", requestID)
			return
		}
		slog.Error("failed to get product", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order", requestID)
		return
	}

	productionDate, _ := time.Parse(validation.DateFormat, req.ProductionDate) // already validated
	expiryDate, err := order.CalculateExpiry(productionDate, p.ShelfLife)
	if err != nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "productCode", Message: "product has an unusable shelf-life rule"}}, requestID)
		return
	}

	orderDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.OrderDate != "" {
		if d, err := time.Parse(validation.DateFormat, req.OrderDate); err == nil {
			orderDate = d
		}
	}

	orderType := strings.TrimSpace(req.OrderType)
	if orderType == "" {
		orderType = "label_print"
	}

	identity := middleware.GetIdentity(r.Context())
	createdBy := "Unknown User"
	createdByDept := ""
	if creator, err := h.profiles.GetByID(r.Context(), identity.UserID); err == nil {
		createdBy = creator.Name
		if creator.Department != nil {
			createdByDept = *creator.Department
		}
	}

	o := &order.Order{
		OrderDate:      orderDate,
		OrderType:      orderType,
		LotNumber:      strings.TrimSpace(req.LotNumber),
		ProductCode:    p.Code,
		ProductName:    p.Name,
		ShelfLife:      p.ShelfLife,
		ProductionDate: productionDate,
		ExpiryDate:     expiryDate,
		Quantity:       req.Quantity,
		Notes:          req.Notes,
		CreatedBy:      createdBy,
		CreatedByDept:  createdByDept,
	}

	if err := h.orders.Create(r.Context(), o); err != nil {
		slog.Error("failed to create order", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order", requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionCreateOrder,
		map[string]any{"orderId": o.ID.String(), "productCode": o.ProductCode, "lotNumber": o.LotNumber, "quantity": o.Quantity}, r.RemoteAddr)

	response.Success(w, http.StatusCreated, toOrderResponse(o), requestID)
}

// Verify handles POST /orders/{id}/verify: a moderator-tier mutation that
// marks an order verified exactly once.
func (h *OrderHandler) Verify(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	identity, _, err := h.gate.Authorize(r, id, authz.ActionVerifyOrder)
	if err != nil {
		writeGateError(w, err, requestID)
		return
	}

	if err := h.orders.Verify(r.Context(), id, identity.UserID); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
		case errors.Is(err, order.ErrAlreadyVerified):
			response.Err(w, http.StatusConflict, "DUPLICATE", "Order already verified", requestID)
		default:
			slog.Error("failed to verify order", "error", err, "id", id, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify order", requestID)
		}
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionVerifyOrder,
		map[string]any{"orderId": id.String()}, r.RemoteAddr)

	response.Success(w, http.StatusOK, map[string]any{"message": "Order verified successfully"}, requestID)
}

// Update handles PUT /orders/{id}: a moderator-tier edit of the mutable
// order fields.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Quantity < 1 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "quantity", Message: "quantity must be at least 1"}}, requestID)
		return
	}

	identity, _, err := h.gate.Authorize(r, id, authz.ActionUpdateOrder)
	if err != nil {
		writeGateError(w, err, requestID)
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
			return
		}
		slog.Error("failed to get order", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order", requestID)
		return
	}

	if req.OrderType != "" {
		o.OrderType = strings.TrimSpace(req.OrderType)
	}
	if req.LotNumber != "" {
		o.LotNumber = strings.TrimSpace(req.LotNumber)
	}
	o.Quantity = req.Quantity
	o.Notes = req.Notes

	if err := h.orders.Update(r.Context(), o); err != nil {
		slog.Error("failed to update order", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order", requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionUpdateOrder,
		map[string]any{"orderId": id.String(), "quantity": o.Quantity}, r.RemoteAddr)

	response.Success(w, http.StatusOK, toOrderResponse(o), requestID)
}

// Delete handles DELETE /orders/{id}: moderator tier only.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	identity, _, err := h.gate.Authorize(r, id, authz.ActionDeleteOrder)
	if err != nil {
		writeGateError(w, err, requestID)
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
			return
		}
		slog.Error("failed to delete order", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete order", requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionDeleteOrder,
		map[string]any{"orderId": id.String()}, r.RemoteAddr)

	response.NoContent(w)
}

// Stats handles GET /statistics, aggregating one calendar month of orders.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			year = y
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}

	stats, err := h.orders.Stats(r.Context(), year, month)
	if err != nil {
		slog.Error("failed to aggregate orders", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load statistics", requestID)
		return
	}

	resp := statsResponse{
		Year:         year,
		Month:        month,
		Total:        stats.Total,
		ByDepartment: toCountResponses(stats.ByDepartment),
		ByProduct:    toCountResponses(stats.ByProduct),
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

func toCountResponses(rows []order.CountRow) []countResponse {
	out := make([]countResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, countResponse{Name: row.Name, Count: row.Count})
	}
	return out
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID.String(),
		OrderDate:      o.OrderDate.UTC().Format(validation.DateFormat),
		OrderType:      o.OrderType,
		LotNumber:      o.LotNumber,
		ProductCode:    o.ProductCode,
		ProductName:    o.ProductName,
		ShelfLife:      o.ShelfLife,
		ProductionDate: o.ProductionDate.UTC().Format(validation.DateFormat),
		ExpiryDate:     o.ExpiryDate.UTC().Format(validation.DateFormat),
		Quantity:       o.Quantity,
		Notes:          o.Notes,
		CreatedBy:      o.CreatedBy,
		CreatedByDept:  o.CreatedByDept,
		Verified:       o.Verified,
		CreatedAt:      o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if o.VerifiedBy != nil {
		v := o.VerifiedBy.String()
		resp.VerifiedBy = &v
	}
	if o.VerifiedAt != nil {
		v := o.VerifiedAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.VerifiedAt = &v
	}
	return resp
}
