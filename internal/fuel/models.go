package fuel

// Source identifies an upstream price source.
type Source string

const (
	// SourceStationBox is the regional bounding-box station API.
	SourceStationBox Source = "stationbox"
	// SourceAggregator is the national price aggregator.
	SourceAggregator Source = "aggregator"
)

// Observation is one fresh price reading from a single fetch cycle.
// Only its (Key, Price) projection is persisted; the raw fields are kept
// for logging and ranking context.
type Observation struct {
	Key        string  `json:"key"`
	RawName    string  `json:"rawName,omitempty"`
	RawAddress string  `json:"rawAddress,omitempty"`
	Brand      string  `json:"brand,omitempty"`
	FuelType   string  `json:"fuelType"`
	Price      float64 `json:"price"` // cents per litre
	Source     Source  `json:"source"`
}

// FetchStatus records the outcome of one source's fetch. A failed source
// contributes zero observations and a non-nil Err; the run continues.
type FetchStatus struct {
	Source       Source
	Observations int
	Err          error
}

// Failed reports whether the source fetch itself errored. An empty result
// with no error is not a failure.
func (s FetchStatus) Failed() bool {
	return s.Err != nil
}

// Station is one tracked station identity from the allow-list. Address is
// optional; when set, only the physical site at that exact address matches.
// Display, when set, becomes the canonical key for matching observations.
type Station struct {
	Name    string `toml:"name"`
	Address string `toml:"address,omitempty"`
	Display string `toml:"display,omitempty"`
}
