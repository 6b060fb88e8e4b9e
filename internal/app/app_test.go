package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chineseneo/fuel-bot/internal/common"
	"github.com/chineseneo/fuel-bot/internal/config"
	"github.com/chineseneo/fuel-bot/internal/fuel"
	"github.com/chineseneo/fuel-bot/internal/mail"
	"github.com/chineseneo/fuel-bot/internal/store"
)

func testConfig(t *testing.T, stationBoxURL, aggregatorURL string) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		Grade:         "U98",
		State:         "VIC",
		Suburb:        "Wantirna South",
		SentinelKey:   "VIC Lowest",
		SeriesKeys:    []string{"Coles", "VIC Lowest"},
		Stations:      []fuel.Station{{Name: "Coles Express Wantirna South", Display: "Coles"}},
		StationBoxURL: stationBoxURL,
		AggregatorURL: aggregatorURL,
		RetentionDays: 45,
		HistoryPath:   filepath.Join(t.TempDir(), "history.json"),
		Location:      time.UTC,
		FetchTimeout:  2 * time.Second,
		Mail:          mail.Config{Provider: "mock"},
	}
}

func TestRunDailyRecordsAndPersists(t *testing.T) {
	stationSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"list": [
			{"name": "Coles Express Wantirna South", "brand": "Coles Express", "address": "300 Stud Rd",
			 "prices": {"U98": {"amount": 189.9}}}
		]}}`))
	}))
	defer stationSrv.Close()

	aggSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"regions": [{"region": "All", "prices": [
			{"state": "VIC", "fueltype": "U98", "price": 165.2, "name": "Liberty Dandenong", "suburb": "Dandenong", "postcode": "3175"}
		]}]}`))
	}))
	defer aggSrv.Close()

	cfg := testConfig(t, stationSrv.URL, aggSrv.URL)
	a := New(cfg, common.NewSilentLogger())

	require.NoError(t, a.RunDaily(context.Background()))

	// The history file is durable and holds today's observations.
	reloaded := store.Load(cfg.HistoryPath, common.NewSilentLogger())
	today := time.Now().UTC().Format(store.DateFormat)
	day, ok := reloaded.Day(today)
	require.True(t, ok)
	assert.Equal(t, 189.9, day["Coles"])
	assert.Equal(t, 165.2, day["VIC Lowest"])
}

func TestRunDailySourceFailureStillPersists(t *testing.T) {
	// Station box is down; aggregator works.
	stationSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer stationSrv.Close()

	aggSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"regions": [{"region": "All", "prices": [
			{"state": "VIC", "fueltype": "U98", "price": 165.2, "name": "Liberty Dandenong", "suburb": "Dandenong", "postcode": "3175"}
		]}]}`))
	}))
	defer aggSrv.Close()

	cfg := testConfig(t, stationSrv.URL, aggSrv.URL)
	a := New(cfg, common.NewSilentLogger())

	require.NoError(t, a.RunDaily(context.Background()))

	reloaded := store.Load(cfg.HistoryPath, common.NewSilentLogger())
	today := time.Now().UTC().Format(store.DateFormat)
	day, ok := reloaded.Day(today)
	require.True(t, ok)
	assert.Equal(t, 165.2, day["VIC Lowest"])
	assert.NotContains(t, day, "Coles")
}

func TestRunDailyIdempotentRerun(t *testing.T) {
	price := "189.9"
	stationSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"list": [
			{"name": "Coles Express Wantirna South", "brand": "Coles Express", "address": "300 Stud Rd",
			 "prices": {"U98": {"amount": ` + price + `}}}
		]}}`))
	}))
	defer stationSrv.Close()

	aggSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"regions": []}`))
	}))
	defer aggSrv.Close()

	cfg := testConfig(t, stationSrv.URL, aggSrv.URL)
	a := New(cfg, common.NewSilentLogger())

	require.NoError(t, a.RunDaily(context.Background()))
	price = "191.5"
	require.NoError(t, a.RunDaily(context.Background()))

	reloaded := store.Load(cfg.HistoryPath, common.NewSilentLogger())
	today := time.Now().UTC().Format(store.DateFormat)
	day, ok := reloaded.Day(today)
	require.True(t, ok)
	assert.Equal(t, 191.5, day["Coles"], "re-run on the same day converges to the latest observation")
}
