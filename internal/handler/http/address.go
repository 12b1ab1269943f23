package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JJ-Sinklaire/desesperanza/internal/service"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
	"github.com/JJ-Sinklaire/desesperanza/pkg/httputil"
	"github.com/JJ-Sinklaire/desesperanza/pkg/middleware"
)

// AddressHandler handles HTTP requests for the customer's address book.
type AddressHandler struct {
	service *service.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateAddressRequest is the JSON request body for saving a new address.
type CreateAddressRequest struct {
	Alias        string   `json:"alias"`
	Street       string   `json:"calle"`
	Neighborhood string   `json:"colonia"`
	PostalCode   string   `json:"codigo_postal"`
	City         string   `json:"ciudad"`
	State        string   `json:"estado"`
	References   string   `json:"referencias"`
	Latitude     *float64 `json:"latitud"`
	Longitude    *float64 `json:"longitud"`
}

// UpdateAddressRequest is the JSON request body for a partial address update.
// Absent fields are left unchanged.
type UpdateAddressRequest struct {
	Alias        *string  `json:"alias"`
	Street       *string  `json:"calle"`
	Neighborhood *string  `json:"colonia"`
	PostalCode   *string  `json:"codigo_postal"`
	City         *string  `json:"ciudad"`
	State        *string  `json:"estado"`
	References   *string  `json:"referencias"`
	Latitude     *float64 `json:"latitud"`
	Longitude    *float64 `json:"longitud"`
}

// --- Handlers ---

// List handles GET /api/direcciones
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())

	addresses, err := h.service.List(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, addresses)
}

// Get handles GET /api/direcciones/{id}
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	address, err := h.service.Get(r.Context(), customerID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, address)
}

// Create handles POST /api/direcciones
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Message: "cuerpo de la peticion invalido",
		})
		return
	}

	address, err := h.service.Create(r.Context(), customerID, &service.CreateAddressInput{
		Alias:        req.Alias,
		Street:       req.Street,
		Neighborhood: req.Neighborhood,
		PostalCode:   req.PostalCode,
		City:         req.City,
		State:        req.State,
		References:   req.References,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Created(w, "direccion guardada", address)
}

// Update handles PUT /api/direcciones/{id}
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Message: "cuerpo de la peticion invalido",
		})
		return
	}

	address, err := h.service.Update(r.Context(), customerID, id, &service.UpdateAddressInput{
		Alias:        req.Alias,
		Street:       req.Street,
		Neighborhood: req.Neighborhood,
		PostalCode:   req.PostalCode,
		City:         req.City,
		State:        req.State,
		References:   req.References,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, address)
}

// Delete handles DELETE /api/direcciones/{id}
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), customerID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OKMessage(w, "direccion eliminada")
}

// parseID extracts the {id} route parameter. A non-numeric ID can never match
// a row, so it reports 404 rather than 400.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		httputil.WriteError(w, r, apperrors.NotFound("recurso", raw), nil)
		return 0, false
	}
	return id, true
}
