package activitylog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/RustingSword/time-tracker/internal/logging"
	"github.com/RustingSword/time-tracker/internal/models"
)

// Header is the first row of every activity log
var Header = []string{"app_name", "title", "timestamp"}

// Log is an append-only CSV file of window records. The file is opened and
// closed on every operation, so several readers may look at it while the
// tracker is running.
type Log struct {
	path string
	log  zerolog.Logger
}

// New creates a handle for the log at path; nothing is touched on disk
func New(path string) *Log {
	return &Log{path: path, log: logging.For("activitylog")}
}

// Path returns the file location
func (l *Log) Path() string {
	return l.path
}

// Initialize creates the log with its header when it doesn't exist yet
func (l *Log) Initialize() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to stat activity log")
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to create activity log")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return errors.Wrap(err, "failed to write activity log header")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to write activity log header")
	}

	l.log.Info().Str("path", l.path).Msg("Created new log file")
	return nil
}

// Append writes one record at the end of the log
func (l *Log) Append(rec models.WindowRecord) error {
	if err := l.Initialize(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to open activity log")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rec.CSVRow()); err != nil {
		return errors.Wrap(err, "failed to append record")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to append record")
	}
	return nil
}

// ReadAll returns every record in file order. A missing or unreadable log is an error.
func (l *Log) ReadAll() ([]models.WindowRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open activity log %s", l.path)
	}
	defer f.Close()

	return l.parse(f)
}

// ReadDay returns the records whose timestamp falls on day's calendar date in loc
func (l *Log) ReadDay(day time.Time, loc *time.Location) ([]models.WindowRecord, error) {
	records, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	return FilterDay(records, day, loc), nil
}

// FilterDay keeps records on day's calendar date in loc, preserving order
func FilterDay(records []models.WindowRecord, day time.Time, loc *time.Location) []models.WindowRecord {
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var out []models.WindowRecord
	for _, rec := range records {
		t := rec.Time(loc)
		if !t.Before(start) && t.Before(end) {
			out = append(out, rec)
		}
	}
	return out
}

func (l *Log) parse(r io.Reader) ([]models.WindowRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read activity log header")
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range Header {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("activity log is missing column %q", name)
		}
	}

	var records []models.WindowRecord
	line := 1
	for {
		row, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Warn().Err(err).Int("line", line).Msg("Skipping malformed row")
			continue
		}

		ts, err := strconv.ParseInt(field(row, cols["timestamp"]), 10, 64)
		if err != nil {
			l.log.Warn().Int("line", line).Str("timestamp", field(row, cols["timestamp"])).Msg("Skipping row with invalid timestamp")
			continue
		}

		records = append(records, models.WindowRecord{
			AppName:   field(row, cols["app_name"]),
			Title:     field(row, cols["title"]),
			Timestamp: ts,
		})
	}

	return records, nil
}

func field(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
