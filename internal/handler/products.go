package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antojitos/comanda/internal/model"
	"github.com/antojitos/comanda/internal/store"
)

// Storefronts may highlight at most this many products at once.
const maxHighlightedProducts = 5

// ProductHandler serves the product catalog endpoints.
type ProductHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(st *store.Store, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{store: st, logger: logger}
}

// ListByType returns products filtered by the path segment: "all" lists
// everything, "initialProducts" the highlighted set, anything else filters
// by product type.
// GET /products/{typePath}
func (h *ProductHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	typePath := chi.URLParam(r, "typePath")

	var filter store.ProductFilter
	switch typePath {
	case "all":
	case "initialProducts":
		filter.HighlightOnly = true
	default:
		filter.Type = typePath
	}

	products, err := h.store.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

type productRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ProductType  string  `json:"product_type"`
	ProductSizes string  `json:"product_sizes"`
	ImageURL     string  `json:"image_url"`
}

// Add creates a new product.
// POST /products/add
func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.ProductType == "" {
		writeError(w, http.StatusBadRequest, "Name and product type are required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Price must not be negative")
		return
	}

	p := model.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ProductType:  req.ProductType,
		ProductSizes: req.ProductSizes,
		ImageURL:     req.ImageURL,
	}
	if err := h.store.CreateProduct(r.Context(), &p); err != nil {
		h.logger.Error("create product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error adding product")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Product added successfully",
		"product": p,
	})
}

// Edit replaces the mutable fields of an existing product.
// PUT /products/edit/{id}
func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := model.Product{
		ProductID:    id,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ProductType:  req.ProductType,
		ProductSizes: req.ProductSizes,
		ImageURL:     req.ImageURL,
	}
	if err := h.store.UpdateProduct(r.Context(), &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("update product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	writeMessage(w, http.StatusOK, "Product updated successfully")
}

// Delete removes a product.
// DELETE /products/delete/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("delete product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

// Highlight toggles a product's storefront highlight flag, enforcing the
// global maximum of five highlighted products.
// PUT /products/highlight/{id}
func (h *ProductHandler) Highlight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Highlight bool `json:"highlight"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Highlight {
		count, err := h.store.CountHighlightedProducts(r.Context())
		if err != nil {
			h.logger.Error("count highlighted products failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Error fetching products")
			return
		}
		if count >= maxHighlightedProducts {
			writeError(w, http.StatusBadRequest, "El máximo de productos destacados (5) ha sido alcanzado")
			return
		}
	}

	if err := h.store.SetProductHighlight(r.Context(), id, req.Highlight); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("highlight product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	writeMessage(w, http.StatusOK, "Product updated successfully")
}

// Sizes returns the size labels of one product.
// GET /products/sizes/{id}
func (h *ProductHandler) Sizes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("get product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"product_sizes": p.ProductSizes})
}
