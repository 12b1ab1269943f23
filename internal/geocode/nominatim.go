// Package geocode proxies address lookups to Nominatim so browsers never
// talk to the third-party geocoder directly. Lookups are best effort: no
// retries, a circuit breaker for sustained failure, and an optional Redis
// cache in front of the upstream.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
	"github.com/JJ-Sinklaire/desesperanza/pkg/httpclient"
)

// userAgent identifies the service to Nominatim, which rejects anonymous
// clients.
const userAgent = "desesperanza/1.0 (ordering service)"

// Result is a normalized geocoding answer shaped for the address form.
type Result struct {
	Street       string  `json:"calle"`
	Neighborhood string  `json:"colonia"`
	PostalCode   string  `json:"codigo_postal"`
	City         string  `json:"ciudad"`
	State        string  `json:"estado"`
	Latitude     float64 `json:"latitud"`
	Longitude    float64 `json:"longitud"`
	Description  string  `json:"descripcion"`
}

// nominatimPlace is the subset of the Nominatim response the service reads.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road          string `json:"road"`
		HouseNumber   string `json:"house_number"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		Postcode      string `json:"postcode"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		State         string `json:"state"`
	} `json:"address"`
}

// Client performs reverse and forward geocoding against Nominatim.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	cache   *redis.Client
	baseURL string
	ttl     time.Duration
	logger  *slog.Logger
}

// NewClient creates a geocoding client. cache may be nil, in which case every
// lookup goes to the upstream.
func NewClient(http *httpclient.CircuitBreakerClient, cache *redis.Client, baseURL string, ttl time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http:    http,
		cache:   cache,
		baseURL: baseURL,
		ttl:     ttl,
		logger:  logger,
	}
}

// Reverse resolves coordinates to an address.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Result, error) {
	key := fmt.Sprintf("geocode:rev:%.5f:%.5f", lat, lng)
	if cached := c.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	var place nominatimPlace
	if err := c.fetch(ctx, c.baseURL+"/reverse?"+q.Encode(), &place); err != nil {
		return nil, err
	}

	result := placeToResult(place)
	c.toCache(ctx, key, result)
	return result, nil
}

// Search resolves a free-text query to the best matching address.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	key := "geocode:q:" + query
	if cached := c.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")
	q.Set("q", query)

	var places []nominatimPlace
	if err := c.fetch(ctx, c.baseURL+"/search?"+q.Encode(), &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, apperrors.NotFound("ubicacion", query)
	}

	result := placeToResult(places[0])
	c.toCache(ctx, key, result)
	return result, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "geocode lookup failed",
			slog.String("error", err.Error()),
		)
		return apperrors.Unavailable("servicio de geolocalizacion no disponible")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Unavailable("servicio de geolocalizacion no disponible")
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return apperrors.Unavailable("servicio de geolocalizacion no disponible")
	}

	return nil
}

func (c *Client) fromCache(ctx context.Context, key string) *Result {
	if c.cache == nil {
		return nil
	}

	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "geocode cache read failed",
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil
	}
	return &r
}

func (c *Client) toCache(ctx context.Context, key string, r *Result) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "geocode cache write failed",
			slog.String("error", err.Error()),
		)
	}
}

func placeToResult(p nominatimPlace) *Result {
	lat, _ := strconv.ParseFloat(p.Lat, 64)
	lon, _ := strconv.ParseFloat(p.Lon, 64)

	street := p.Address.Road
	if p.Address.HouseNumber != "" {
		street = p.Address.Road + " " + p.Address.HouseNumber
	}

	neighborhood := p.Address.Suburb
	if neighborhood == "" {
		neighborhood = p.Address.Neighbourhood
	}

	city := p.Address.City
	if city == "" {
		city = p.Address.Town
	}
	if city == "" {
		city = p.Address.Village
	}

	return &Result{
		Street:       street,
		Neighborhood: neighborhood,
		PostalCode:   p.Address.Postcode,
		City:         city,
		State:        p.Address.State,
		Latitude:     lat,
		Longitude:    lon,
		Description:  p.DisplayName,
	}
}
