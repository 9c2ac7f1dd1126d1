package analyzer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustingSword/time-tracker/internal/classifier"
	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/models"
)

// mapResolver returns fixed categories and counts lookups
type mapResolver struct {
	categories map[string]string
	calls      map[string]int
	err        error
}

func (r *mapResolver) Resolve(activity string) (string, error) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[activity]++
	if r.err != nil {
		return "", r.err
	}
	if activity == classifier.UnknownActivity {
		return config.UnknownCategory, nil
	}
	if c, ok := r.categories[activity]; ok {
		return c, nil
	}
	return config.UncategorizedCategory, nil
}

func newTestAnalyzer(r Resolver) *Analyzer {
	return New(classifier.New(), r, 5*time.Second, time.UTC)
}

func TestDurations(t *testing.T) {
	records := []models.WindowRecord{
		{AppName: "a", Timestamp: 100},
		{AppName: "b", Timestamp: 130},
		{AppName: "c", Timestamp: 200},
	}
	assert.Equal(t, []int64{30, 70}, Durations(records))
	assert.Nil(t, Durations(records[:1]))
	assert.Nil(t, Durations(nil))
}

func TestClassifyDropsNoiseAndLastRecord(t *testing.T) {
	r := &mapResolver{categories: map[string]string{"Terminal": "Work", "Slack": "Chat"}}
	a := newTestAnalyzer(r)

	records := []models.WindowRecord{
		{AppName: "Terminal", Title: "bash", Timestamp: 0},
		{AppName: "Slack", Title: "general", Timestamp: 4}, // 4s: noise
		{AppName: "Slack", Title: "random", Timestamp: 8},  // 5s: kept
		{AppName: "Terminal", Title: "vim", Timestamp: 13}, // last row: no duration
	}

	got, err := a.Classify(records)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Slack", got[0].Activity)
	assert.Equal(t, "Chat", got[0].Category)
	assert.Equal(t, int64(5), got[0].Duration)
	assert.Equal(t, time.Unix(8, 0).UTC(), got[0].Start)

	// The noise record is never classified
	assert.Equal(t, 1, r.calls["Slack"])
	assert.Zero(t, r.calls["Terminal"])
}

func TestClassifyDropsUnknownCategory(t *testing.T) {
	a := newTestAnalyzer(&mapResolver{categories: map[string]string{"Terminal": "Work"}})

	records := []models.WindowRecord{
		{AppName: "Terminal", Title: "bash", Timestamp: 0},
		{AppName: models.PauseMarker, Title: "", Timestamp: 600},
		{AppName: "Terminal", Title: "bash", Timestamp: 1200},
		{AppName: models.ExitMarker, Title: "", Timestamp: 1500},
	}

	got, err := a.Classify(records)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Equal(t, "Work", rec.Category)
	}
}

func TestClassifyResolverError(t *testing.T) {
	a := newTestAnalyzer(&mapResolver{err: errors.New("aborted")})

	_, err := a.Classify([]models.WindowRecord{
		{AppName: "Terminal", Title: "bash", Timestamp: 0},
		{AppName: "Terminal", Title: "bash", Timestamp: 60},
	})
	assert.EqualError(t, err, "aborted")
}

func TestSummarize(t *testing.T) {
	records := []models.ClassifiedRecord{
		{Category: "Work", Duration: 600},
		{Category: "Fun", Duration: 300},
		{Category: "Work", Duration: 300},
		{Category: "Chat", Duration: 300},
	}

	got := Summarize(records)
	require.Len(t, got, 3)

	assert.Equal(t, "Work", got[0].Category)
	assert.InDelta(t, 15.0, got[0].Minutes, 1e-9)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 60.0, got[0].Percentage, 1e-9)

	// Equal totals fall back to name order
	assert.Equal(t, "Chat", got[1].Category)
	assert.Equal(t, "Fun", got[2].Category)

	var total float64
	for _, s := range got {
		total += s.Percentage
	}
	assert.InDelta(t, 100.0, total, 1e-6)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}

func TestBuildInsights(t *testing.T) {
	at := func(hour int) time.Time { return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC) }

	var records []models.ClassifiedRecord
	apps := []string{"a", "b", "c", "d", "e", "f"}
	for i, app := range apps {
		records = append(records, models.ClassifiedRecord{
			WindowRecord: models.WindowRecord{AppName: app},
			Duration:     int64(60 * (i + 1)),
			Start:        at(9 + i),
		})
	}

	ins := BuildInsights(records)

	require.Len(t, ins.TopApps, 5)
	assert.Equal(t, "f", ins.TopApps[0].AppName)
	assert.InDelta(t, 6.0, ins.TopApps[0].Minutes, 1e-9)
	assert.Equal(t, "b", ins.TopApps[4].AppName)

	require.Len(t, ins.PeakHours, 3)
	assert.Equal(t, []int{14, 13, 12}, []int{ins.PeakHours[0].Hour, ins.PeakHours[1].Hour, ins.PeakHours[2].Hour})
}

func TestAnalyze(t *testing.T) {
	r := &mapResolver{categories: map[string]string{
		"VSCode - main.go": "Coding",
		"go.dev":           "Docs",
	}}
	a := newTestAnalyzer(r)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Unix()
	records := []models.WindowRecord{
		{AppName: "Code", Title: "main.go - project - Visual Studio Code", Timestamp: base},
		{AppName: "Google Chrome", Title: "Go - https://go.dev/doc - Google Chrome", Timestamp: base + 1800},
		{AppName: "Code", Title: "main.go - project - Visual Studio Code", Timestamp: base + 2400},
		{AppName: models.ExitMarker, Timestamp: base + 3600},
	}

	report, err := a.Analyze(time.Unix(base, 0), records)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", report.Date)
	require.Len(t, report.Summaries, 2)
	assert.Equal(t, "Coding", report.Summaries[0].Category)
	assert.InDelta(t, 50.0, report.Summaries[0].Minutes, 1e-9)
	assert.Equal(t, 2, report.Summaries[0].Count)
	assert.Equal(t, "Docs", report.Summaries[1].Category)
	assert.InDelta(t, 60.0, report.TotalMinutes, 1e-9)

	require.NotEmpty(t, report.Insights.TopApps)
	assert.Equal(t, "Code", report.Insights.TopApps[0].AppName)
	assert.Equal(t, 10, report.Insights.PeakHours[0].Hour)
}

func TestAnalyzeEmptyDay(t *testing.T) {
	a := newTestAnalyzer(&mapResolver{})

	report, err := a.Analyze(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", report.Date)
	assert.Empty(t, report.Summaries)
	assert.Zero(t, report.TotalMinutes)
}

func TestAnalyzeAllBelowNoiseThreshold(t *testing.T) {
	r := &mapResolver{categories: map[string]string{"Terminal": "Work"}}
	a := newTestAnalyzer(r)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Unix()
	records := []models.WindowRecord{
		{AppName: "Terminal", Title: "bash", Timestamp: base},
		{AppName: "Slack", Title: "general", Timestamp: base + 4},
		{AppName: "Terminal", Title: "vim", Timestamp: base + 8},
	}

	report, err := a.Analyze(time.Unix(base, 0), records)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", report.Date)
	assert.Empty(t, report.Summaries)
	assert.Zero(t, report.TotalMinutes)
	assert.Empty(t, report.Insights.TopApps)
	assert.Empty(t, r.calls)
}
