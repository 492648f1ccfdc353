package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticHistory(t *testing.T) {
	now := time.Date(2024, time.May, 17, 13, 45, 0, 0, time.UTC)
	samples := SyntheticHistory(now)

	require.Len(t, samples, 6)

	wantDates := []string{"2023-12-01", "2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01", "2024-05-01"}
	wantCounts := []int{120, 108, 96, 84, 72, 60}
	for i, s := range samples {
		assert.Equal(t, wantDates[i], s.Date)
		assert.Equal(t, wantCounts[i], s.Count)
	}
}

func TestSyntheticHistory_YearBoundary(t *testing.T) {
	now := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	samples := SyntheticHistory(now)

	require.Len(t, samples, 6)
	assert.Equal(t, "2023-08-01", samples[0].Date)
	assert.Equal(t, "2024-01-01", samples[5].Date)
	// strictly increasing dates
	for i := 1; i < len(samples); i++ {
		assert.Less(t, samples[i-1].Date, samples[i].Date)
	}
}

func TestParseHistoryCSV(t *testing.T) {
	in := "date,count\n2024-01-01,42\n2024-02-01,38\n"
	samples, err := ParseHistoryCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{Date: "2024-01-01", Count: 42}, samples[0])
	assert.Equal(t, Sample{Date: "2024-02-01", Count: 38}, samples[1])
}

func TestParseHistoryCSV_ExtraColumns(t *testing.T) {
	in := "site,date,notes,count\nA,2024-01-01,cloudy,10\n"
	samples, err := ParseHistoryCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, Sample{Date: "2024-01-01", Count: 10}, samples[0])
}

func TestParseHistoryCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"missing count column": "date,total\n2024-01-01,10\n",
		"bad date":             "date,count\nJanuary,10\n",
		"bad count":            "date,count\n2024-01-01,lots\n",
		"no data rows":         "date,count\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHistoryCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestHistoryCSV_RoundTrip(t *testing.T) {
	samples := []Sample{
		{Date: "2024-01-01", Count: 42},
		{Date: "2024-02-01", Count: 38},
	}
	out := HistoryCSV(samples)
	assert.Equal(t, "date,count\n2024-01-01,42\n2024-02-01,38", out)

	back, err := ParseHistoryCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, samples, back)
}
