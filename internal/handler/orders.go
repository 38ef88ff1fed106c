package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antojitos/comanda/internal/model"
	"github.com/antojitos/comanda/internal/notify"
	"github.com/antojitos/comanda/internal/service"
	"github.com/antojitos/comanda/internal/store"
)

// OrderHandler serves order intake and management: token generation for the
// public submission gate, submission itself with the WhatsApp side effect,
// and the admin-only listing and state updates.
type OrderHandler struct {
	store  *store.Store
	tokens *service.TokenService
	sender notify.Sender
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(st *store.Store, tokens *service.TokenService, sender notify.Sender, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{store: st, tokens: tokens, sender: sender, logger: logger}
}

// GenerateToken issues a short-lived order-submission token. The client
// requests one immediately before submitting; the window is a few seconds.
// POST /orders/generateToken
func (h *OrderHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.IssueOrderToken()
	if err != nil {
		h.logger.Error("issue order token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate order token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ListByState returns orders filtered by the path segment: "all",
// "completed", or "incomplete".
// GET /orders/{typePath}
func (h *OrderHandler) ListByState(w http.ResponseWriter, r *http.Request) {
	var filter store.OrderFilter
	switch chi.URLParam(r, "typePath") {
	case "completed":
		state := true
		filter.State = &state
	case "incomplete":
		state := false
		filter.State = &state
	}

	orders, err := h.store.ListOrders(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type addOrderRequest struct {
	ClientName    string           `json:"client_name"`
	ClientEmail   string           `json:"client_email"`
	ClientPhone   string           `json:"client_phone"`
	DeliveryDate  string           `json:"delivery_date"`
	DeliveryTime  string           `json:"delivery_time"`
	PaymentMethod string           `json:"payment_method"`
	CartItems     []model.CartItem `json:"cart_items"`
}

// Add persists a new order and dispatches the formatted summary over
// WhatsApp. The order-token gate has already run by the time this handler
// does. When the insert succeeds but dispatch fails, the response is a 500
// telling the client the order was saved without the notification. Dispatch
// is fire-once, never queued.
// POST /orders/add
func (h *OrderHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addOrderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ClientName == "" || req.ClientPhone == "" {
		writeError(w, http.StatusBadRequest, "Client name and phone are required")
		return
	}
	if len(req.CartItems) == 0 {
		writeError(w, http.StatusBadRequest, "Cart must not be empty")
		return
	}

	msg := notify.FormatOrderMessage(notify.OrderDetails{
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		DeliveryDate:  req.DeliveryDate,
		DeliveryTime:  req.DeliveryTime,
		PaymentMethod: req.PaymentMethod,
		CartItems:     req.CartItems,
	})

	order := model.Order{
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		DeliveryDate:  req.DeliveryDate,
		DeliveryTime:  req.DeliveryTime,
		PaymentMethod: req.PaymentMethod,
		OrderMsg:      msg,
	}
	if err := h.store.CreateOrder(r.Context(), &order); err != nil {
		h.logger.Error("create order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error adding order")
		return
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		h.logger.Error("order notification failed", "error", err, "order_id", order.OrderID)
		writeError(w, http.StatusInternalServerError, "Order saved but WhatsApp message failed")
		return
	}

	writeMessage(w, http.StatusOK, "Order added successfully")
}

// EditState marks an order completed or pending.
// PUT /orders/edit/{id}
func (h *OrderHandler) EditState(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		OrderState bool `json:"order_state"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateOrderState(r.Context(), id, req.OrderState); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("update order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating order")
		return
	}
	writeMessage(w, http.StatusOK, "Order updated successfully")
}
