package models

import (
	"strconv"
	"time"
)

// Marker app names written by the tracker instead of a real window
const (
	PauseMarker = "_pause"
	ExitMarker  = "_exit"
)

// WindowRecord is one row of the activity log
type WindowRecord struct {
	AppName   string `json:"app_name"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"` // Unix seconds
}

// Time returns the record timestamp in the given location
func (r WindowRecord) Time(loc *time.Location) time.Time {
	return time.Unix(r.Timestamp, 0).In(loc)
}

// IsMarker reports whether the record is a synthetic pause/exit row
func (r WindowRecord) IsMarker() bool {
	return r.AppName == PauseMarker || r.AppName == ExitMarker
}

// SameWindow compares app name and title, ignoring the timestamp
func (r WindowRecord) SameWindow(o WindowRecord) bool {
	return r.AppName == o.AppName && r.Title == o.Title
}

// CSVRow renders the record in log column order
func (r WindowRecord) CSVRow() []string {
	return []string{r.AppName, r.Title, strconv.FormatInt(r.Timestamp, 10)}
}
