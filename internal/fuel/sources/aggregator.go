package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/chineseneo/fuel-bot/internal/fuel"
)

// AggregatorSource fetches the national price aggregator and reduces it to a
// single state-wide lowest observation for the target state and grade. It is
// independent of the station allow-list.
type AggregatorSource struct {
	baseURL     string
	state       string
	grade       string
	sentinelKey string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

// NewAggregatorSource creates an AggregatorSource. sentinelKey is the fixed
// display key for the synthetic state-wide lowest series.
func NewAggregatorSource(client *http.Client, baseURL, state, grade, sentinelKey string) *AggregatorSource {
	return &AggregatorSource{
		baseURL:     baseURL,
		state:       state,
		grade:       grade,
		sentinelKey: sentinelKey,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("aggregator"),
	}
}

func (s *AggregatorSource) Name() fuel.Source {
	return fuel.SourceAggregator
}

type aggregatorPayload struct {
	Regions []struct {
		Region string `json:"region"`
		Prices []struct {
			State    string          `json:"state"`
			FuelType string          `json:"fueltype"`
			Price    json.RawMessage `json:"price"`
			Name     string          `json:"name"`
			Suburb   string          `json:"suburb"`
			Postcode string          `json:"postcode"`
		} `json:"prices"`
	} `json:"regions"`
}

// Fetch returns at most one observation: the minimum price across all
// entries matching the target state and grade. No qualifying entries is not
// an error; the source simply contributes nothing this run.
func (s *AggregatorSource) Fetch(ctx context.Context) ([]fuel.Observation, error) {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, s.baseURL, nil)
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

	var payload aggregatorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding aggregator response: %w", err)
	}

	var (
		found  bool
		lowest fuel.Observation
	)

	for _, region := range payload.Regions {
		for _, entry := range region.Prices {
			if entry.State != s.state || entry.FuelType != s.grade {
				continue
			}
			price, ok := parseAmount(entry.Price)
			if !ok || price < 0 {
				continue
			}
			if !found || price < lowest.Price {
				found = true
				lowest = fuel.Observation{
					Key:      s.sentinelKey,
					RawName:  entry.Name,
					FuelType: s.grade,
					Price:    price,
					Source:   fuel.SourceAggregator,
				}
			}
		}
	}

	if !found {
		return nil, nil
	}

	return []fuel.Observation{lowest}, nil
}
