package vendorapi

import (
	"context"
	"encoding/json"

	"github.com/mysterie/creditgate/internal/shared/config"
	"github.com/mysterie/creditgate/internal/shared/metrics"
)

const maxNearbyResults = 10

// PlacesClient calls the Google Places searchNearby API.
type PlacesClient struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewPlacesClient creates a new Places vendor client.
func NewPlacesClient(cfg *config.PlacesConfig, m *metrics.Metrics) *PlacesClient {
	return &PlacesClient{
		client:  NewClient("places", cfg.Timeout, m),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// NearbySearchParams describes a nearby search around a center point.
type NearbySearchParams struct {
	Lat    float64
	Lng    float64
	Type   string
	Radius float64
}

// NearbySearch returns up to 10 nearby places of the requested category.
// The vendor response is passed through verbatim.
func (c *PlacesClient) NearbySearch(ctx context.Context, params NearbySearchParams) (json.RawMessage, error) {
	placeType := params.Type
	if placeType == "" {
		placeType = "doctor"
	}
	radius := params.Radius
	if radius <= 0 {
		radius = 5000
	}

	payload := map[string]any{
		"includedTypes":  []string{placeType},
		"maxResultCount": maxNearbyResults,
		"locationRestriction": map[string]any{
			"circle": map[string]any{
				"center": map[string]any{
					"latitude":  params.Lat,
					"longitude": params.Lng,
				},
				"radius": radius,
			},
		},
	}

	headers := map[string]string{
		"X-Goog-Api-Key":   c.apiKey,
		"X-Goog-FieldMask": "*",
	}

	body, err := c.client.PostJSON(ctx, "nearby_search", c.baseURL+"/places:searchNearby", headers, payload)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}
