package analyzer

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/RustingSword/time-tracker/internal/classifier"
	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/logging"
	"github.com/RustingSword/time-tracker/internal/models"
)

const (
	topAppsLimit   = 5
	peakHoursLimit = 3
)

// Resolver maps an activity label to a category
type Resolver interface {
	Resolve(activity string) (string, error)
}

type Analyzer struct {
	classifier  *classifier.Classifier
	resolver    Resolver
	minDuration int64
	loc         *time.Location
	log         zerolog.Logger
}

func New(c *classifier.Classifier, resolver Resolver, minDuration time.Duration, loc *time.Location) *Analyzer {
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{
		classifier:  c,
		resolver:    resolver,
		minDuration: int64(minDuration / time.Second),
		loc:         loc,
		log:         logging.For("analyzer"),
	}
}

// Durations returns ts[i+1]-ts[i] for every record that has a successor.
// The result is one shorter than records; the last record has no duration.
func Durations(records []models.WindowRecord) []int64 {
	if len(records) < 2 {
		return nil
	}
	out := make([]int64, len(records)-1)
	for i := range out {
		out[i] = records[i+1].Timestamp - records[i].Timestamp
	}
	return out
}

// Classify computes durations, drops noise, and attaches activity and
// category to each remaining record. Records in the unknown category are dropped.
func (a *Analyzer) Classify(records []models.WindowRecord) ([]models.ClassifiedRecord, error) {
	durations := Durations(records)

	var out []models.ClassifiedRecord
	for i, d := range durations {
		if d < a.minDuration {
			continue
		}

		rec := records[i]
		activity := a.classifier.Classify(rec.AppName, rec.Title)
		category, err := a.resolver.Resolve(activity)
		if err != nil {
			return nil, err
		}
		if category == config.UnknownCategory {
			continue
		}

		out = append(out, models.ClassifiedRecord{
			WindowRecord: rec,
			Duration:     d,
			Start:        rec.Time(a.loc),
			Activity:     activity,
			Category:     category,
		})
	}
	return out, nil
}

// Summarize groups records by category, sorted by total time descending
func Summarize(records []models.ClassifiedRecord) []models.ActivitySummary {
	type group struct {
		seconds int64
		count   int
	}

	groups := make(map[string]*group)
	var total int64
	for _, rec := range records {
		g, ok := groups[rec.Category]
		if !ok {
			g = &group{}
			groups[rec.Category] = g
		}
		g.seconds += rec.Duration
		g.count++
		total += rec.Duration
	}

	if total <= 0 {
		return nil
	}

	out := make([]models.ActivitySummary, 0, len(groups))
	for category, g := range groups {
		out = append(out, models.ActivitySummary{
			Category:   category,
			Minutes:    float64(g.seconds) / 60,
			Count:      g.count,
			Percentage: float64(g.seconds) / float64(total) * 100,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// BuildInsights finds the most used applications and the busiest hours
func BuildInsights(records []models.ClassifiedRecord) models.Insights {
	apps := make(map[string]int64)
	hours := make(map[int]int64)
	for _, rec := range records {
		apps[rec.AppName] += rec.Duration
		hours[rec.Start.Hour()] += rec.Duration
	}

	topApps := make([]models.AppUsage, 0, len(apps))
	for app, seconds := range apps {
		topApps = append(topApps, models.AppUsage{AppName: app, Minutes: float64(seconds) / 60})
	}
	sort.Slice(topApps, func(i, j int) bool {
		if topApps[i].Minutes != topApps[j].Minutes {
			return topApps[i].Minutes > topApps[j].Minutes
		}
		return topApps[i].AppName < topApps[j].AppName
	})
	if len(topApps) > topAppsLimit {
		topApps = topApps[:topAppsLimit]
	}

	peaks := make([]models.HourUsage, 0, len(hours))
	for hour, seconds := range hours {
		peaks = append(peaks, models.HourUsage{Hour: hour, Minutes: float64(seconds) / 60})
	}
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].Minutes != peaks[j].Minutes {
			return peaks[i].Minutes > peaks[j].Minutes
		}
		return peaks[i].Hour < peaks[j].Hour
	})
	if len(peaks) > peakHoursLimit {
		peaks = peaks[:peakHoursLimit]
	}

	return models.Insights{TopApps: topApps, PeakHours: peaks}
}

// Analyze runs the whole pipeline over one day's records. An empty day
// yields a report with no summaries rather than an error.
func (a *Analyzer) Analyze(day time.Time, records []models.WindowRecord) (*models.Report, error) {
	report := &models.Report{
		Date:        day.In(a.loc).Format(time.DateOnly),
		GeneratedAt: time.Now(),
	}

	if len(records) == 0 {
		a.log.Warn().Str("date", report.Date).Msg("No data found for date")
		return report, nil
	}

	classified, err := a.Classify(records)
	if err != nil {
		return nil, err
	}

	report.Records = classified
	report.Summaries = Summarize(classified)
	report.Insights = BuildInsights(classified)
	for _, s := range report.Summaries {
		report.TotalMinutes += s.Minutes
	}
	return report, nil
}
