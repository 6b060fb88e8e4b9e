package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChartProducesPNG(t *testing.T) {
	series := []Series{
		{Key: "BP", Points: []SeriesPoint{
			{Date: "2024-01-01", Price: 150.0, Present: true},
			{Date: "2024-01-02", Price: 151.5, Present: true},
			{Date: "2024-01-03", Price: 149.9, Present: true},
		}},
		{Key: "Coles", Points: []SeriesPoint{
			{Date: "2024-01-01", Price: 148.5, Present: true},
			{Date: "2024-01-02", Price: 149.0, Present: true},
			{Date: "2024-01-03", Price: 148.0, Present: true},
		}},
	}

	png, err := RenderChart("U98 Price Trend", series)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestRenderChartNoData(t *testing.T) {
	_, err := RenderChart("empty", []Series{
		{Key: "BP", Points: []SeriesPoint{
			{Date: "2024-01-01", Present: false},
			{Date: "2024-01-02", Present: false},
		}},
	})
	assert.Error(t, err)
}

func TestSplitRunsBreaksOnGaps(t *testing.T) {
	points := []SeriesPoint{
		{Date: "2024-01-01", Price: 150.0, Present: true},
		{Date: "2024-01-02", Price: 151.0, Present: true},
		{Date: "2024-01-03", Present: false},
		{Date: "2024-01-04", Price: 152.0, Present: true},
	}

	runs := splitRuns(points)
	require.Len(t, runs, 2)
	assert.Len(t, runs[0], 2)
	assert.Len(t, runs[1], 1)
}

func TestSplitRunsAllAbsent(t *testing.T) {
	runs := splitRuns([]SeriesPoint{
		{Date: "2024-01-01", Present: false},
		{Date: "2024-01-02", Present: false},
	})
	assert.Empty(t, runs)
}
