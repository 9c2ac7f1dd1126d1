package models

import "time"

// ActivitySummary is the aggregated time of one category for a day
type ActivitySummary struct {
	Category   string  `json:"category"`
	Minutes    float64 `json:"minutes"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AppUsage is the total time spent in one application
type AppUsage struct {
	AppName string  `json:"app_name"`
	Minutes float64 `json:"minutes"`
}

// HourUsage is the total time recorded in one hour of the day
type HourUsage struct {
	Hour    int     `json:"hour"`
	Minutes float64 `json:"minutes"`
}

type Insights struct {
	TopApps   []AppUsage  `json:"top_apps"`
	PeakHours []HourUsage `json:"peak_hours"`
}

// ClassifiedRecord is a log row with its computed duration and category
type ClassifiedRecord struct {
	WindowRecord
	Duration int64     `json:"duration"` // seconds until the next record
	Start    time.Time `json:"start"`
	Activity string    `json:"activity"`
	Category string    `json:"category"`
}

// Report bundles everything one analysis run produces
type Report struct {
	Date         string             `json:"date"`
	Summaries    []ActivitySummary  `json:"summaries"`
	Insights     Insights           `json:"insights"`
	Records      []ClassifiedRecord `json:"-"`
	TotalMinutes float64            `json:"total_minutes"`
	GeneratedAt  time.Time          `json:"generated_at"`
}
