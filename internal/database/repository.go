package database

import (
	"time"

	"github.com/pkg/errors"

	"github.com/RustingSword/time-tracker/internal/models"
)

// Repository stores errors the tracker hit while running unattended
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecordError stores err under source, stamped with the current time
func (r *Repository) RecordError(source string, err error) error {
	return r.CreateErrorLog(&models.ErrorLog{
		Timestamp: time.Now(),
		Source:    source,
		ErrorMsg:  err.Error(),
	})
}

// RecentErrors returns up to limit error logs, newest first. A non-positive
// limit returns all of them.
func (r *Repository) RecentErrors(limit int) ([]models.ErrorLog, error) {
	var logs []models.ErrorLog
	query := r.db.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query error logs")
	}
	return logs, nil
}

// DeleteErrorsBefore soft-deletes error logs older than before
func (r *Repository) DeleteErrorsBefore(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all error logs from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM error_logs")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
