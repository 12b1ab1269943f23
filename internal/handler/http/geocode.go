package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JJ-Sinklaire/desesperanza/internal/geocode"
	"github.com/JJ-Sinklaire/desesperanza/pkg/httputil"
	"github.com/JJ-Sinklaire/desesperanza/pkg/validator"
)

// Geocoder resolves coordinates and free-text queries to addresses.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*geocode.Result, error)
	Search(ctx context.Context, query string) (*geocode.Result, error)
}

// GeocodeHandler proxies address lookups for the address form.
type GeocodeHandler struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewGeocodeHandler creates a new geocoding HTTP handler.
func NewGeocodeHandler(g Geocoder, logger *slog.Logger) *GeocodeHandler {
	return &GeocodeHandler{geocoder: g, logger: logger}
}

// reverseQuery carries the parsed coordinates of a reverse lookup.
type reverseQuery struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lng" validate:"longitude"`
}

// Reverse handles GET /api/geocode/reverse?lat=..&lng=..
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Message: "lat y lng deben ser numeros",
		})
		return
	}

	if err := validator.Validate(reverseQuery{Latitude: lat, Longitude: lng}); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.geocoder.Reverse(r.Context(), lat, lng)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, result)
}

// Search handles GET /api/geocode/search?q=..
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 3 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Message: "q debe tener al menos 3 caracteres",
		})
		return
	}

	result, err := h.geocoder.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.OK(w, result)
}
