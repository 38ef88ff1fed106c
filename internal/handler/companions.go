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

// CompanionHandler serves the companion (add-on) catalog endpoints.
type CompanionHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCompanionHandler creates a CompanionHandler.
func NewCompanionHandler(st *store.Store, logger *slog.Logger) *CompanionHandler {
	return &CompanionHandler{store: st, logger: logger}
}

// List returns all companions.
// GET /companions
func (h *CompanionHandler) List(w http.ResponseWriter, r *http.Request) {
	companions, err := h.store.ListCompanions(r.Context())
	if err != nil {
		h.logger.Error("list companions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching companions")
		return
	}
	if companions == nil {
		companions = []model.Companion{}
	}
	writeJSON(w, http.StatusOK, companions)
}

type companionRequest struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	CompanionType string  `json:"companion_type"`
}

// Add creates a new companion.
// POST /companions/add
func (h *CompanionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req companionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Price must not be negative")
		return
	}

	c := model.Companion{Name: req.Name, Price: req.Price, CompanionType: req.CompanionType}
	if err := h.store.CreateCompanion(r.Context(), &c); err != nil {
		h.logger.Error("create companion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error adding companion")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Companion added successfully",
		"companion": c,
	})
}

// Edit replaces the mutable fields of an existing companion.
// PUT /companions/edit/{id}
func (h *CompanionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid companion ID")
		return
	}

	var req companionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := model.Companion{CompanionID: id, Name: req.Name, Price: req.Price, CompanionType: req.CompanionType}
	if err := h.store.UpdateCompanion(r.Context(), &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Companion not found")
			return
		}
		h.logger.Error("update companion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating companion")
		return
	}
	writeMessage(w, http.StatusOK, "Companion updated successfully")
}

// Delete removes a companion.
// DELETE /companions/delete/{id}
func (h *CompanionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid companion ID")
		return
	}
	if err := h.store.DeleteCompanion(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Companion not found")
			return
		}
		h.logger.Error("delete companion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting companion")
		return
	}
	writeMessage(w, http.StatusOK, "Companion deleted successfully")
}
