package http

import (
	"log/slog"
	"net/http"

	"github.com/JJ-Sinklaire/desesperanza/internal/service"
	"github.com/JJ-Sinklaire/desesperanza/pkg/httputil"
	"github.com/JJ-Sinklaire/desesperanza/pkg/middleware"
)

// OrderHandler handles HTTP requests for the customer's order history.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

// ListMine handles GET /api/pedidos/mis-pedidos
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())

	orders, err := h.service.ListMine(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, orders)
}

// Get handles GET /api/pedidos/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), customerID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, detail)
}

// Ticket handles GET /api/pedidos/{id}/ticket
func (h *OrderHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ticket, err := h.service.Ticket(r.Context(), customerID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, ticket)
}
