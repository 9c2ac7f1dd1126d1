package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/RustingSword/time-tracker/internal/activitylog"
	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/logging"
	"github.com/RustingSword/time-tracker/internal/models"
	"github.com/RustingSword/time-tracker/pkg/window"
)

// Error sources stored alongside each recorded error
const (
	SourcePoller = "poller"
	SourceLogger = "logger"
)

// ErrorRecorder persists errors hit while polling. The database repository
// implements it.
type ErrorRecorder interface {
	RecordError(source string, err error) error
}

type Service struct {
	detector  window.Detector
	activity  *activitylog.Log
	recorder  ErrorRecorder
	interval  time.Duration
	threshold int64
	log       zerolog.Logger

	now func() time.Time

	mu        sync.Mutex
	prev      *models.WindowRecord
	prevMouse *window.MousePosition
	lastWrite int64
	exitOnce  sync.Once
}

// NewService wires a tracker. recorder may be nil, in which case errors are
// only logged.
func NewService(cfg *config.Config, detector window.Detector, activity *activitylog.Log, recorder ErrorRecorder) *Service {
	return &Service{
		detector:  detector,
		activity:  activity,
		recorder:  recorder,
		interval:  cfg.Tracker.PollInterval,
		threshold: int64(cfg.Tracker.InactivityThreshold / time.Second),
		log:       logging.For("tracker"),
		now:       time.Now,
	}
}

// Start creates the log if needed and polls until ctx is done, then writes
// the exit marker. Only a failure to create the log is returned.
func (s *Service) Start(ctx context.Context) error {
	if err := s.activity.Initialize(); err != nil {
		return err
	}

	s.mu.Lock()
	s.prevMouse = s.mousePosition()
	s.mu.Unlock()

	s.log.Info().
		Dur("interval", s.interval).
		Str("log_file", s.activity.Path()).
		Msg("Starting activity tracking")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick()
	for {
		select {
		case <-ctx.Done():
			s.Exit()
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one poll: pause detection first, then a write when the focused
// window changed since the last written record.
func (s *Service) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	pos := s.mousePosition()

	if s.inactive(pos, now) {
		s.pause(now)
		return
	}
	s.prevMouse = pos

	info, err := s.detector.GetFocusedWindow()
	if errors.Is(err, window.ErrNoFocusedWindow) {
		s.log.Debug().Msg("No focused window")
		return
	}
	if err != nil {
		s.fail(SourcePoller, err)
		return
	}
	if info == nil {
		return
	}

	rec := models.WindowRecord{AppName: info.AppName, Title: info.WindowTitle, Timestamp: now}
	if s.prev != nil && s.prev.SameWindow(rec) {
		return
	}
	if s.write(rec) {
		s.log.Info().Str("app", rec.AppName).Str("title", rec.Title).Msg("Logged activity")
	}
}

// Exit writes the exit marker. Later calls do nothing.
func (s *Service) Exit() {
	s.exitOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.write(models.WindowRecord{AppName: models.ExitMarker, Timestamp: s.now().Unix()})
		s.log.Info().Msg("Activity tracker shutting down")
	})
}

// mousePosition returns nil when the pointer can't be read, which disables
// inactivity detection for the tick.
func (s *Service) mousePosition() *window.MousePosition {
	pos, err := s.detector.GetMousePosition()
	if err != nil {
		if !errors.Is(err, window.ErrUnsupported) {
			s.log.Debug().Err(err).Msg("Failed to read mouse position")
		}
		return nil
	}
	return pos
}

func (s *Service) inactive(pos *window.MousePosition, now int64) bool {
	if !pos.Equal(s.prevMouse) || s.lastWrite == 0 {
		return false
	}
	return now-s.lastWrite > s.threshold
}

func (s *Service) pause(now int64) {
	if s.prev != nil && s.prev.AppName == models.PauseMarker {
		return
	}
	if s.write(models.WindowRecord{AppName: models.PauseMarker, Timestamp: now}) {
		s.log.Info().Msg("Activity paused due to inactivity")
	}
}

// write appends rec; on failure the previous record is kept so the same
// window is retried on the next tick.
func (s *Service) write(rec models.WindowRecord) bool {
	if err := s.activity.Append(rec); err != nil {
		s.fail(SourceLogger, err)
		return false
	}
	s.prev = &rec
	s.lastWrite = rec.Timestamp
	return true
}

func (s *Service) fail(source string, err error) {
	s.log.Error().Err(err).Str("source", source).Msg("Tracking error")

	if s.recorder == nil {
		return
	}
	if dbErr := s.recorder.RecordError(source, err); dbErr != nil {
		s.log.Warn().Err(dbErr).Msg("Failed to store error in database")
	}
}
