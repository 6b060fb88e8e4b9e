package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/chineseneo/fuel-bot/internal/fuel"
)

// BoundingBox is the geographic query area for the station-box API.
type BoundingBox struct {
	NELat float64 `toml:"ne_lat"`
	NELng float64 `toml:"ne_lng"`
	SWLat float64 `toml:"sw_lat"`
	SWLng float64 `toml:"sw_lng"`
}

// StationBoxSource fetches per-station prices from the regional bounding-box
// API and normalizes them against the allow-list and resolver.
type StationBoxSource struct {
	baseURL  string
	box      BoundingBox
	grade    string
	filter   *fuel.Filter
	resolver *fuel.Resolver
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewStationBoxSource creates a StationBoxSource for the target fuel grade.
func NewStationBoxSource(client *http.Client, baseURL string, box BoundingBox, grade string, filter *fuel.Filter, resolver *fuel.Resolver) *StationBoxSource {
	return &StationBoxSource{
		baseURL:  baseURL,
		box:      box,
		grade:    grade,
		filter:   filter,
		resolver: resolver,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("stationbox"),
	}
}

func (s *StationBoxSource) Name() fuel.Source {
	return fuel.SourceStationBox
}

// stationBoxPayload is the canonical response shape: stations nested under
// message.list, with a per-grade price object keyed by grade code.
type stationBoxPayload struct {
	Message struct {
		List []struct {
			Name    string `json:"name"`
			Brand   string `json:"brand"`
			Address string `json:"address"`
			Prices  map[string]struct {
				Amount json.RawMessage `json:"amount"`
			} `json:"prices"`
		} `json:"list"`
	} `json:"message"`
}

// Fetch queries the bounding box and emits one observation per allow-listed
// station that carries the target grade. Stations missing the grade, off the
// allow-list, or with unparseable amounts are silently skipped.
func (s *StationBoxSource) Fetch(ctx context.Context) ([]fuel.Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("neLat", fmt.Sprintf("%f", s.box.NELat))
		values.Set("neLng", fmt.Sprintf("%f", s.box.NELng))
		values.Set("swLat", fmt.Sprintf("%f", s.box.SWLat))
		values.Set("swLng", fmt.Sprintf("%f", s.box.SWLng))

		u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload stationBoxPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding station box response: %w", err)
	}

	var observations []fuel.Observation
	for _, st := range payload.Message.List {
		if !s.filter.Allows(st.Name, st.Address) {
			continue
		}

		entry, ok := st.Prices[s.grade]
		if !ok {
			continue
		}
		amount, ok := parseAmount(entry.Amount)
		if !ok || amount < 0 {
			continue
		}

		observations = append(observations, fuel.Observation{
			Key:        s.resolver.Resolve(st.Name, st.Address),
			RawName:    st.Name,
			RawAddress: st.Address,
			Brand:      st.Brand,
			FuelType:   s.grade,
			Price:      amount,
			Source:     fuel.SourceStationBox,
		})
	}

	return observations, nil
}
