package reporter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/RustingSword/time-tracker/internal/models"
	"github.com/RustingSword/time-tracker/pkg/utils"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5A9BD5"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// FormatReportText renders the summary table followed by the insights
func FormatReportText(report *models.Report) string {
	if len(report.Summaries) == 0 {
		return mutedStyle.Render(fmt.Sprintf("No activity data found for %s", report.Date)) + "\n"
	}

	var b strings.Builder
	b.WriteString(FormatSummaryTable(report))
	b.WriteString("\n")
	b.WriteString(FormatInsights(report.Insights))
	return b.String()
}

// FormatSummaryTable renders one row per category
func FormatSummaryTable(report *models.Report) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Activity Summary - %s", report.Date)
	t.AppendHeader(table.Row{"Category", "Time (min)", "Activities", "Percentage"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for _, s := range report.Summaries {
		t.AppendRow(table.Row{
			s.Category,
			fmt.Sprintf("%.1f", s.Minutes),
			s.Count,
			fmt.Sprintf("%.1f%%", s.Percentage),
		})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.1f", report.TotalMinutes), "", utils.FormatMinutes(report.TotalMinutes)})

	return t.Render() + "\n"
}

// FormatInsights renders the top applications and peak hours
func FormatInsights(ins models.Insights) string {
	if len(ins.TopApps) == 0 {
		return mutedStyle.Render("No data available for insights") + "\n"
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Activity Insights:") + "\n\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("Top %d Applications:", len(ins.TopApps))) + "\n")
	for _, app := range ins.TopApps {
		fmt.Fprintf(&b, "  • %s: %.1f minutes\n", app.AppName, app.Minutes)
	}

	b.WriteString("\n" + labelStyle.Render("Peak Activity Hours:") + "\n")
	for _, h := range ins.PeakHours {
		fmt.Fprintf(&b, "  • %02d:00 - %02d:59: %.1f minutes\n", h.Hour, h.Hour, h.Minutes)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// FormatErrors renders stored tracker errors, newest first
func FormatErrors(logs []models.ErrorLog) string {
	if len(logs) == 0 {
		return "No errors recorded.\n"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Source", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 80},
	})
	for _, l := range logs {
		t.AppendRow(table.Row{l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.Source, l.ErrorMsg})
	}
	return t.Render() + "\n"
}
