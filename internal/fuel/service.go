package fuel

import (
	"context"
	"sync"
	"time"

	"github.com/chineseneo/fuel-bot/internal/common"
)

// PriceSource abstracts an upstream price source (station-box API, national
// aggregator). A source returns zero or more normalized observations.
type PriceSource interface {
	Name() Source
	Fetch(ctx context.Context) ([]Observation, error)
}

// Service orchestrates fetching from all configured price sources.
type Service struct {
	sources []PriceSource
	timeout time.Duration
	logger  *common.Logger
}

// NewService creates a new Service. Each source fetch is bounded by timeout.
func NewService(sources []PriceSource, timeout time.Duration, logger *common.Logger) *Service {
	return &Service{
		sources: sources,
		timeout: timeout,
		logger:  logger,
	}
}

// FetchToday fetches from all sources concurrently and merges the results.
// Sources fail independently: a network error, bad status, or malformed
// payload on one source never aborts the others. Failures are recorded in
// the returned statuses and surface as absent series in the report.
func (s *Service) FetchToday(ctx context.Context) ([]Observation, []FetchStatus) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		merged   []Observation
		statuses = make([]FetchStatus, len(s.sources))
	)

	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src PriceSource) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			obs, err := src.Fetch(fetchCtx)
			if err != nil {
				s.logger.Warn().Err(err).Str("source", string(src.Name())).Msg("source fetch failed; continuing without it")
				mu.Lock()
				statuses[i] = FetchStatus{Source: src.Name(), Err: err}
				mu.Unlock()
				return
			}

			mu.Lock()
			merged = append(merged, obs...)
			statuses[i] = FetchStatus{Source: src.Name(), Observations: len(obs)}
			mu.Unlock()
		}(i, src)
	}

	wg.Wait()

	return merged, statuses
}
