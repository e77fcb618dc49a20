package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleetops/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDirectionsAdapter_FetchRoute verifies parsing of a provider response.
func TestDirectionsAdapter_FetchRoute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mumbai", r.URL.Query().Get("origin"))
		assert.Equal(t, "Nagpur", r.URL.Query().Get("destination"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC"},
				"legs": [
					{"distance": {"value": 400000}, "duration": {"value": 20000}},
					{"distance": {"value": 412000}, "duration": {"value": 25200}}
				]
			}]
		}`))
	}))
	defer ts.Close()

	adapter := NewDirectionsAdapter(config.DirectionsConfig{BaseURL: ts.URL, APIKey: "test-key"})

	route, err := adapter.FetchRoute(context.Background(), "Mumbai", "Nagpur")
	require.NoError(t, err)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC", route.EncodedPolyline)
	assert.Equal(t, 812000, route.TotalDistanceMeters)
	assert.Equal(t, 45200, route.TotalDurationSeconds)
}

// TestDirectionsAdapter_FetchRoute_NoRoute verifies provider-level failures.
func TestDirectionsAdapter_FetchRoute_NoRoute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer ts.Close()

	adapter := NewDirectionsAdapter(config.DirectionsConfig{BaseURL: ts.URL})

	_, err := adapter.FetchRoute(context.Background(), "Nowhere", "NowhereElse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route")
}

// TestDirectionsAdapter_FetchRoute_HTTPError verifies non-200 handling.
func TestDirectionsAdapter_FetchRoute_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	adapter := NewDirectionsAdapter(config.DirectionsConfig{BaseURL: ts.URL})

	_, err := adapter.FetchRoute(context.Background(), "Mumbai", "Nagpur")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
