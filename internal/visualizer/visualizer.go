// Package visualizer renders daily category summaries as PNG charts.
package visualizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/RustingSword/time-tracker/internal/logging"
	"github.com/RustingSword/time-tracker/internal/models"
)

const (
	BarFile = "activity_bar.png"
	PieFile = "activity_pie.png"

	OtherLabel = "Other"
)

type Kind string

const (
	KindBar  Kind = "bar"
	KindPie  Kind = "pie"
	KindBoth Kind = "both"
)

// ParseKind accepts bar, pie or both
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBar, KindPie, KindBoth:
		return k, nil
	default:
		return "", fmt.Errorf("invalid output type %q (valid: bar, pie, both)", s)
	}
}

func (k Kind) bar() bool { return k == KindBar || k == KindBoth }
func (k Kind) pie() bool { return k == KindPie || k == KindBoth }

var otherColor = drawing.ColorFromHex("999999")

type Visualizer struct {
	outputDir string
	threshold float64
	log       zerolog.Logger
}

// New creates a visualizer writing into outputDir. Pie slices under
// threshold percent are merged into one "Other" slice.
func New(outputDir string, threshold float64) *Visualizer {
	if outputDir == "" {
		outputDir = "."
	}
	return &Visualizer{
		outputDir: outputDir,
		threshold: threshold,
		log:       logging.For("visualizer"),
	}
}

// Render draws the requested charts and returns the written paths.
// Nothing is written for empty summaries.
func (v *Visualizer) Render(summaries []models.ActivitySummary, date string, kind Kind) ([]string, error) {
	if len(summaries) == 0 {
		return nil, nil
	}

	var written []string
	if kind.bar() {
		path := filepath.Join(v.outputDir, BarFile)
		if err := v.write(path, barChart(summaries, date)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if kind.pie() {
		path := filepath.Join(v.outputDir, PieFile)
		if err := v.write(path, pieChart(summaries, date, v.threshold)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (v *Visualizer) write(path string, c renderable) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create chart file")
	}
	defer f.Close()

	if err := c.Render(chart.PNG, f); err != nil {
		return errors.Wrapf(err, "failed to render %s", filepath.Base(path))
	}

	v.log.Info().Str("path", path).Msg("Chart saved")
	return nil
}

// BarValues returns one bar per category, shortest first
func BarValues(summaries []models.ActivitySummary) []chart.Value {
	sorted := make([]models.ActivitySummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Minutes < sorted[j].Minutes
	})

	values := make([]chart.Value, len(sorted))
	for i, s := range sorted {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.1fm)", s.Category, s.Minutes),
			Value: s.Minutes,
		}
	}
	return values
}

func barChart(summaries []models.ActivitySummary, date string) *chart.BarChart {
	bars := BarValues(summaries)

	top := 0.0
	for _, b := range bars {
		if b.Value > top {
			top = b.Value
		}
	}
	if top <= 0 {
		top = 1
	}

	width := 200 + 170*len(bars)
	if width < 1200 {
		width = 1200
	}

	return &chart.BarChart{
		Title:    "Time Spent per Category - " + date,
		Width:    width,
		Height:   600,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Name:  "Time (minutes)",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
}

// Slice is one pie segment
type Slice struct {
	Label      string
	Minutes    float64
	Percentage float64
}

// PieSlices keeps categories at or above threshold percent and folds the
// rest into a trailing "Other" slice.
func PieSlices(summaries []models.ActivitySummary, threshold float64) []Slice {
	var total float64
	for _, s := range summaries {
		total += s.Minutes
	}
	if total <= 0 {
		return nil
	}

	var (
		slices []Slice
		other  float64
	)
	for _, s := range summaries {
		pct := s.Minutes / total * 100
		if pct < threshold {
			other += s.Minutes
			continue
		}
		slices = append(slices, Slice{Label: s.Category, Minutes: s.Minutes, Percentage: pct})
	}
	if other > 0 {
		slices = append(slices, Slice{Label: OtherLabel, Minutes: other, Percentage: other / total * 100})
	}
	return slices
}

func pieChart(summaries []models.ActivitySummary, date string, threshold float64) *chart.PieChart {
	slices := PieSlices(summaries, threshold)

	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.1f%% (%.1fm)", s.Label, s.Percentage, s.Minutes),
			Value: s.Minutes,
		}
		if s.Label == OtherLabel {
			values[i].Style = chart.Style{FillColor: otherColor}
		}
	}

	return &chart.PieChart{
		Title:  "Time Distribution by Category - " + date,
		Width:  1200,
		Height: 800,
		Values: values,
	}
}
