package web

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/RustingSword/time-tracker/internal/activitylog"
	"github.com/RustingSword/time-tracker/internal/analyzer"
	"github.com/RustingSword/time-tracker/internal/categories"
	"github.com/RustingSword/time-tracker/internal/classifier"
	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/daemon"
	"github.com/RustingSword/time-tracker/internal/database"
	"github.com/RustingSword/time-tracker/internal/logging"
	"github.com/RustingSword/time-tracker/internal/models"
	"github.com/RustingSword/time-tracker/pkg/utils"
)

const defaultErrorLimit = 20

// Handler serves read-only views of the activity log. Categories are never
// prompted for here: unseen activities show up as "Uncategorized".
type Handler struct {
	config     *config.Config
	activity   *activitylog.Log
	repo       *database.Repository
	daemon     *daemon.Daemon
	classifier *classifier.Classifier
	now        func() time.Time
	log        zerolog.Logger
}

// NewHandler creates a handler. repo may be nil when the error store is
// unavailable.
func NewHandler(cfg *config.Config, repo *database.Repository) *Handler {
	return &Handler{
		config:     cfg,
		activity:   activitylog.New(cfg.Files.LogFile),
		repo:       repo,
		daemon:     daemon.New(cfg.Daemon.PIDFile),
		classifier: classifier.New(),
		now:        time.Now,
		log:        logging.For("web"),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/summary", h.handleSummary)
	mux.HandleFunc("/api/records", h.handleRecords)
	mux.HandleFunc("/api/errors", h.handleErrors)
	mux.HandleFunc("/api/status", h.handleStatus)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

// report runs the analysis for the date query parameter and returns an
// HTTP status alongside any error.
func (h *Handler) report(r *http.Request) (*models.Report, int, error) {
	loc, err := h.config.Location()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	day, err := analyzer.ParseDay(r.URL.Query().Get("date"), h.now(), loc)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	records, err := h.activity.ReadDay(day, loc)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, http.StatusNotFound, fmt.Errorf("activity log %s not found", h.activity.Path())
		}
		return nil, http.StatusInternalServerError, err
	}

	store := categories.Load(h.config.Files.CategoryFile, nil)
	a := analyzer.New(h.classifier, store, h.config.Analysis.MinDuration, loc)

	report, err := a.Analyze(day, records)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return report, http.StatusOK, nil
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, status, err := h.report(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondSummaryHTML(w, report)
		return
	}

	h.respondJSON(w, report)
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, status, err := h.report(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	records := report.Records
	if records == nil {
		records = []models.ClassifiedRecord{}
	}
	h.respondJSON(w, map[string]interface{}{
		"date":    report.Date,
		"records": records,
	})
}

func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.repo == nil {
		http.Error(w, "Error store unavailable", http.StatusServiceUnavailable)
		return
	}

	limit := defaultErrorLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = l
	}

	logs, err := h.repo.RecentErrors(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch errors: %v", err), http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.ErrorLog{}
	}
	h.respondJSON(w, logs)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	running, pid, err := h.daemon.IsRunning()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read tracker status")
	}

	status := map[string]interface{}{
		"running":       running,
		"poll_interval": h.config.Tracker.PollInterval.String(),
		"log_file":      h.config.Files.LogFile,
		"category_file": h.config.Files.CategoryFile,
		"categories":    categories.Load(h.config.Files.CategoryFile, nil).Len(),
	}
	if running {
		status["pid"] = pid
	}

	if records, err := h.activity.ReadAll(); err == nil && len(records) > 0 {
		status["state"] = trackingState(records[len(records)-1])
		for i := len(records) - 1; i >= 0; i-- {
			if rec := records[i]; !rec.IsMarker() {
				status["latest_record"] = map[string]interface{}{
					"app_name":  rec.AppName,
					"title":     rec.Title,
					"timestamp": rec.Timestamp,
				}
				break
			}
		}
	}

	h.respondJSON(w, status)
}

// trackingState reads the tracker state off the last logged row
func trackingState(last models.WindowRecord) string {
	switch last.AppName {
	case models.ExitMarker:
		return "stopped"
	case models.PauseMarker:
		return "paused"
	default:
		return "active"
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

func (h *Handler) respondSummaryHTML(w http.ResponseWriter, report *models.Report) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if len(report.Summaries) == 0 {
		w.Write([]byte(`<div class="loading">No data available</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	for _, s := range report.Summaries {
		fmt.Fprintf(&b, `
		<div class="category-item" style="--bar-width: %.1f%%">
			<span class="category-name">%s</span>
			<div>
				<span class="category-time">%s</span>
				<span class="category-percentage">%.1f%%</span>
			</div>
		</div>`, s.Percentage, html.EscapeString(s.Category), utils.FormatMinutes(s.Minutes), s.Percentage)
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div class="total">Total: %s</div>`, utils.FormatMinutes(report.TotalMinutes))

	w.Write([]byte(b.String()))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Time Tracker</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #f5f5f5;
            color: #333;
            padding: 20px;
        }
        .report-box {
            max-width: 640px;
            background: white;
            border-radius: 8px;
            padding: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .category-item {
            display: flex;
            justify-content: space-between;
            padding: 8px 0;
            border-bottom: 1px solid #eee;
            background: linear-gradient(to right, #d6eaf8 var(--bar-width), transparent var(--bar-width));
        }
        .category-time, .category-percentage {
            font-family: monospace;
            margin-left: 12px;
        }
        .total {
            margin-top: 12px;
            font-weight: bold;
        }
    </style>
</head>
<body>
    <h1>Today</h1>
    <div class="report-box">
        <div hx-get="/api/summary?date=today" hx-trigger="load, every 60s" hx-swap="innerHTML">
            <div class="loading">Loading...</div>
        </div>
    </div>
    <h1>Yesterday</h1>
    <div class="report-box">
        <div hx-get="/api/summary?date=yesterday" hx-trigger="load" hx-swap="innerHTML">
            <div class="loading">Loading...</div>
        </div>
    </div>
</body>
</html>
`

func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Error encoding JSON")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
