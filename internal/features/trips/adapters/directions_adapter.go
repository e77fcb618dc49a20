package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fleetops/internal/core/config"
	"fleetops/internal/core/httpclient"
	"fleetops/internal/core/logger"
	"fleetops/internal/features/trips/domain"

	"go.uber.org/zap"
)

// DirectionsAdapter fetches route geometry from a Google-style directions
// API. The encoded overview polyline is cached on the lane and consumed by
// the route-deviation check.
type DirectionsAdapter struct {
	cfg    config.DirectionsConfig
	client *http.Client
	logger *zap.Logger
}

// NewDirectionsAdapter creates a new DirectionsAdapter.
func NewDirectionsAdapter(cfg config.DirectionsConfig) *DirectionsAdapter {
	return &DirectionsAdapter{
		cfg:    cfg,
		client: httpclient.NewClient(15 * time.Second),
		logger: logger.Get(),
	}
}

// directionsResponse mirrors the provider JSON.
type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// FetchRoute retrieves route geometry between origin and destination.
func (a *DirectionsAdapter) FetchRoute(ctx context.Context, origin, destination string) (*domain.RouteData, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	if a.cfg.APIKey != "" {
		q.Set("key", a.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directions request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions API returned status %d", resp.StatusCode)
	}

	var parsed directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}

	if parsed.Status != "OK" || len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("directions API returned no route (status %q)", parsed.Status)
	}

	route := parsed.Routes[0]
	data := &domain.RouteData{
		EncodedPolyline: route.OverviewPolyline.Points,
	}
	for _, leg := range route.Legs {
		data.TotalDistanceMeters += leg.Distance.Value
		data.TotalDurationSeconds += leg.Duration.Value
	}

	a.logger.Debug("Fetched route from directions API",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Int("distance_meters", data.TotalDistanceMeters),
	)
	return data, nil
}
