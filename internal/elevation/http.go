package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// HTTPLookup queries an Open-Elevation compatible endpoint:
//
//	POST {URL}/api/v1/lookup {"locations":[{"latitude":..,"longitude":..}]}
type HTTPLookup struct {
	URL    string
	Client *http.Client
}

// NewHTTPLookup creates a lookup against baseURL with a 10s client timeout.
func NewHTTPLookup(baseURL string) *HTTPLookup {
	return &HTTPLookup{
		URL:    strings.TrimRight(baseURL, "/"),
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

type lookupRequest struct {
	Locations []location `json:"locations"`
}

type lookupResponse struct {
	Results []location `json:"results"`
}

func (h *HTTPLookup) Lookup(ctx context.Context, points []orb.Point) ([]float64, error) {
	req := lookupRequest{Locations: make([]location, len(points))}
	for i, p := range points {
		req.Locations[i] = location{Latitude: p.Lat(), Longitude: p.Lon()}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL+"/api/v1/lookup", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevation service: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(out.Results) != len(points) {
		return nil, fmt.Errorf("%d results for %d points: %w", len(out.Results), len(points), ErrMalformed)
	}
	elev := make([]float64, len(out.Results))
	for i, r := range out.Results {
		if r.Elevation == nil {
			return nil, fmt.Errorf("result %d has no elevation: %w", i, ErrMalformed)
		}
		elev[i] = *r.Elevation
	}
	return elev, nil
}
