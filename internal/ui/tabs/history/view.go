package history

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgrendel/quotapace/internal/ui/components"
	"github.com/mgrendel/quotapace/internal/ui/styles"
)

// View renders the history chart and summary.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())

	switch {
	case m.loadErr != nil:
		sections = append(sections, styles.ErrorTextStyle.Render(fmt.Sprintf("Failed to load history: %v", m.loadErr)))
	case !m.loaded:
		sections = append(sections, styles.HelpStyle.Render("Loading history..."))
	case len(m.snapshots) == 0:
		sections = append(sections, styles.HelpStyle.Render("No history yet. Readings are recorded as you use the dashboard."))
	default:
		sections = append(sections, m.renderChart())
		sections = append(sections, m.renderStats())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Usage History")
	rangeLabel := styles.ButtonActiveStyle.Render(m.timeRange.String())
	hint := styles.HelpStyle.Render("press t to change range")

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeLabel, "  ", hint)
	return lipgloss.JoinVertical(lipgloss.Left, header, "")
}

func (m *Model) renderChart() string {
	session := make([]float64, len(m.snapshots))
	weekly := make([]float64, len(m.snapshots))
	for i, snap := range m.snapshots {
		session[i] = snap.SessionPercent
		weekly[i] = snap.WeeklyPercent
	}

	chartWidth := max(m.width-16, 20)
	chartHeight := max(m.height-12, 6)

	chart := components.RenderDualLineChart(session, weekly, chartWidth, chartHeight, "usage %")

	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Session", Color: styles.Session},
		{Label: "Weekly", Color: styles.Weekly},
	})

	return lipgloss.JoinVertical(lipgloss.Left, chart, "", legend, "")
}

func (m *Model) renderStats() string {
	if m.stats == nil || m.stats.BucketCount == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Summary"))
	rows = append(rows, fmt.Sprintf("Readings      %d", m.stats.BucketCount))
	rows = append(rows, fmt.Sprintf("Peak session  %s",
		styles.GetPercentStyle(m.stats.PeakSession).Render(fmt.Sprintf("%.0f%%", m.stats.PeakSession))))
	rows = append(rows, fmt.Sprintf("Avg session   %.1f%%", m.stats.AvgSession))
	rows = append(rows, fmt.Sprintf("Peak weekly   %.0f%%", m.stats.PeakWeekly))

	if m.stats.CriticalEvents > 0 {
		rows = append(rows, styles.WarningTextStyle.Render(
			fmt.Sprintf("Critical readings: %d", m.stats.CriticalEvents)))
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
