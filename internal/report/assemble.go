// Package report turns the retained history and today's observations into
// chart series, a ranked price list, and the email summary text.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chineseneo/fuel-bot/internal/fuel"
)

// SeriesPoint is one day on a chart series. Present is false on days the key
// has no observation; gaps are explicit, never interpolated or zero-filled.
type SeriesPoint struct {
	Date    string
	Price   float64
	Present bool
}

// Series is the full retained window for one display key, ascending by date.
type Series struct {
	Key    string
	Points []SeriesPoint
}

// RankedEntry is one line of today's price ranking.
type RankedEntry struct {
	Key   string
	Price float64
}

// Options fixes the report shape: which series to chart, the sentinel key
// for the state-wide lowest, and whether that sentinel joins the ranking.
type Options struct {
	SeriesKeys   []string
	SentinelKey  string
	RankSentinel bool
	Suburb       string
	Grade        string
}

// Report is the assembled output consumed by the chart renderer and mailer.
type Report struct {
	Chart   []Series
	Ranked  []RankedEntry
	Summary string
}

// Assemble builds the report. Output is deterministic for identical input:
// chart dates ascend, ranking sorts by price with lexical key tie-break.
func Assemble(history map[string]map[string]float64, today []fuel.Observation, statuses []fuel.FetchStatus, opts Options) Report {
	dates := make([]string, 0, len(history))
	for date := range history {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	chart := make([]Series, 0, len(opts.SeriesKeys))
	for _, key := range opts.SeriesKeys {
		points := make([]SeriesPoint, 0, len(dates))
		for _, date := range dates {
			price, ok := history[date][key]
			points = append(points, SeriesPoint{Date: date, Price: price, Present: ok})
		}
		chart = append(chart, Series{Key: key, Points: points})
	}

	ranked := rankToday(today, opts)
	summary := summarize(today, ranked, statuses, opts)

	return Report{Chart: chart, Ranked: ranked, Summary: summary}
}

// rankToday reduces today's observations to one entry per key (last one
// wins, matching store upsert semantics) and sorts ascending by price,
// breaking ties on key order.
func rankToday(today []fuel.Observation, opts Options) []RankedEntry {
	latest := make(map[string]float64)
	order := make([]string, 0, len(today))
	for _, obs := range today {
		if obs.Key == opts.SentinelKey && !opts.RankSentinel {
			continue
		}
		if _, seen := latest[obs.Key]; !seen {
			order = append(order, obs.Key)
		}
		latest[obs.Key] = obs.Price
	}

	ranked := make([]RankedEntry, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, RankedEntry{Key: key, Price: latest[key]})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Price != ranked[j].Price {
			return ranked[i].Price < ranked[j].Price
		}
		return ranked[i].Key < ranked[j].Key
	})

	return ranked
}

// summarize builds the email body. Missing data is stated explicitly so a
// degraded run is visible in the report rather than silently shorter.
func summarize(today []fuel.Observation, ranked []RankedEntry, statuses []fuel.FetchStatus, opts Options) string {
	var b strings.Builder

	if len(ranked) > 0 {
		fmt.Fprintf(&b, "Cheapest %s in %s today:\n\n", opts.Grade, opts.Suburb)
		for _, entry := range ranked {
			fmt.Fprintf(&b, "%s: %.1f ¢/L\n", entry.Key, entry.Price)
		}
	} else {
		fmt.Fprintf(&b, "No matching %s prices found today.\n", opts.Grade)
	}

	if !opts.RankSentinel {
		if price, ok := sentinelPrice(today, opts.SentinelKey); ok {
			fmt.Fprintf(&b, "\n%s: %.1f ¢/L\n", opts.SentinelKey, price)
		}
	}

	for _, status := range statuses {
		if status.Failed() {
			fmt.Fprintf(&b, "\n%s unavailable\n", sourceLabel(status.Source, opts))
		}
	}

	return b.String()
}

func sentinelPrice(today []fuel.Observation, sentinelKey string) (float64, bool) {
	var (
		price float64
		found bool
	)
	for _, obs := range today {
		if obs.Key == sentinelKey {
			price = obs.Price
			found = true
		}
	}
	return price, found
}

func sourceLabel(src fuel.Source, opts Options) string {
	switch src {
	case fuel.SourceStationBox:
		return fmt.Sprintf("%s station prices", opts.Suburb)
	case fuel.SourceAggregator:
		return opts.SentinelKey
	default:
		return string(src)
	}
}
