package meteostat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/couchcryptid/ballpark-weather-etl/internal/observability"
)

// Client talks to the Meteostat JSON API. It implements domain.ObservationSource
// and the raw station lookups used by Directory.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Meteostat client. apiKey may be empty for self-hosted
// endpoints that do not sit behind RapidAPI.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Nearby returns up to limit station ids ordered by distance from lat/lon.
func (c *Client) Nearby(ctx context.Context, lat, lon float64, limit int) ([]domain.StationID, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 6, 64)},
		"limit": {strconv.Itoa(limit)},
	}

	var resp nearbyResponse
	if err := c.doRequest(ctx, "/stations/nearby", params, "nearby", &resp); err != nil {
		return nil, err
	}

	ids := make([]domain.StationID, 0, len(resp.Data))
	for _, s := range resp.Data {
		if s.ID != "" {
			ids = append(ids, domain.StationID(s.ID))
		}
	}
	c.recordOutcome("nearby", len(ids) == 0)
	return ids, nil
}

// StationMeta returns the station's metadata and daily inventory. Unknown
// stations come back with only the ID set.
func (c *Client) StationMeta(ctx context.Context, id domain.StationID) (domain.Station, error) {
	params := url.Values{"id": {string(id)}}

	var resp metaResponse
	if err := c.doRequest(ctx, "/stations/meta", params, "meta", &resp); err != nil {
		return domain.Station{}, err
	}
	if resp.Data == nil {
		c.recordOutcome("meta", true)
		return domain.Station{ID: id}, nil
	}
	c.recordOutcome("meta", false)

	d := resp.Data
	station := domain.Station{
		ID:   id,
		Name: d.Name.En,
		Lat:  d.Location.Latitude,
		Lon:  d.Location.Longitude,
	}
	station.DailyStart = parseOptionalDate(d.Inventory.Daily.Start)
	station.DailyEnd = parseOptionalDate(d.Inventory.Daily.End)
	return station, nil
}

// Daily fetches daily observations for a station over r, in metric units.
func (c *Client) Daily(ctx context.Context, id domain.StationID, r domain.DateRange) ([]domain.DailyObservation, error) {
	params := url.Values{
		"station": {string(id)},
		"start":   {r.Start.Format(domain.DateLayout)},
		"end":     {r.End.Format(domain.DateLayout)},
		"units":   {"metric"},
	}

	var resp dailyResponse
	if err := c.doRequest(ctx, "/stations/daily", params, "daily", &resp); err != nil {
		return nil, err
	}

	out := make([]domain.DailyObservation, 0, len(resp.Data))
	for _, row := range resp.Data {
		date, err := time.Parse(domain.DateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("daily %s: parse date %q: %w", id, row.Date, err)
		}
		out = append(out, domain.DailyObservation{Date: date, Metrics: row.Metrics})
	}
	c.recordOutcome("daily", len(out) == 0)
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values, endpoint string, v any) error {
	fullURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-rapidapi-key", c.apiKey)
		req.Header.Set("x-rapidapi-host", req.URL.Host)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("meteostat API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.logger.Debug("meteostat request", "endpoint", endpoint, "params", params.Encode(), "status", resp.StatusCode)
	return nil
}

func (c *Client) recordOutcome(endpoint string, empty bool) {
	outcome := "success"
	if empty {
		outcome = "empty"
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, outcome).Inc()
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// Meteostat API response types.

type nearbyResponse struct {
	Data []struct {
		ID       string  `json:"id"`
		Distance float64 `json:"distance"` // meters
	} `json:"data"`
}

type metaResponse struct {
	Data *stationMeta `json:"data"`
}

type stationMeta struct {
	ID   string `json:"id"`
	Name struct {
		En string `json:"en"`
	} `json:"name"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Inventory struct {
		Daily struct {
			Start *string `json:"start"`
			End   *string `json:"end"`
		} `json:"daily"`
	} `json:"inventory"`
}

type dailyResponse struct {
	Data []dailyRow `json:"data"`
}

type dailyRow struct {
	Date string `json:"date"`
	domain.Metrics
}
