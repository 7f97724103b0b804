package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelproof/labelproof/internal/api/handler"
	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/audit"
)

func newProductRouter(resolver *fakeResolver, products *fakeProducts) http.Handler {
	gate := middleware.NewGate(resolver, newFakeProfiles(), nil)
	h := handler.NewProductHandler(products, audit.NewRecorder(nullAuditRepo{}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/products", func(r chi.Router) {
		r.Use(gate.Authenticate)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{code}", h.Update)
		r.Delete("/{code}", h.Delete)
	})
	return r
}

func TestCreateProduct(t *testing.T) {
	products := newFakeProducts()
	router := newProductRouter(signedIn(uuid.New(), "x@example.com"), products)

	rec := do(t, router, http.MethodPost, "/products/", map[string]string{
		"code":      "FG-1001",
		"name":      "Chili Paste 200g",
		"shelfLife": "6 months",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, products.byCode, "FG-1001")
}

func TestCreateProduct_DuplicateCode(t *testing.T) {
	products := newFakeProducts(labelProduct())
	router := newProductRouter(signedIn(uuid.New(), "x@example.com"), products)

	rec := do(t, router, http.MethodPost, "/products/", map[string]string{
		"code":      "FG-1001",
		"name":      "Another",
		"shelfLife": "1 year",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE", errorCode(t, rec))
}

func TestCreateProduct_Validation(t *testing.T) {
	router := newProductRouter(signedIn(uuid.New(), "x@example.com"), newFakeProducts())

	rec := do(t, router, http.MethodPost, "/products/", map[string]string{
		"code": "FG-1001",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestUpdateProduct(t *testing.T) {
	products := newFakeProducts(labelProduct())
	router := newProductRouter(signedIn(uuid.New(), "x@example.com"), products)

	rec := do(t, router, http.MethodPut, "/products/FG-1001", map[string]string{
		"name":      "Chili Paste 400g",
		"shelfLife": "9 months",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chili Paste 400g", products.byCode["FG-1001"].Name)
	assert.Equal(t, "9 months", products.byCode["FG-1001"].ShelfLife)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	router := newProductRouter(signedIn(uuid.New(), "x@example.com"), newFakeProducts())

	rec := do(t, router, http.MethodPut, "/products/NOPE", map[string]string{
		"name":      "X",
		"shelfLife": "1 year",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	products := newFakeProducts(labelProduct())
	router := newProductRouter(signedIn(uuid.New(), "x@example.com"), products)

	rec := do(t, router, http.MethodDelete, "/products/FG-1001", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, products.byCode)
}

func TestProducts_RequireCredential(t *testing.T) {
	router := newProductRouter(anonymous(), newFakeProducts(labelProduct()))

	rec := do(t, router, http.MethodGet, "/products/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodDelete, "/products/FG-1001", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
