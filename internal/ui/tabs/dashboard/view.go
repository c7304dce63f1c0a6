package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgrendel/quotapace/internal/models"
	"github.com/mgrendel/quotapace/internal/quota"
	"github.com/mgrendel/quotapace/internal/ui/components"
	"github.com/mgrendel/quotapace/internal/ui/styles"
)

// View renders the dashboard.
func (m *Model) View() string {
	if !m.state.HasResults() {
		return styles.CenterBoth(m.spinner.ViewWithLabel(), m.width, m.height)
	}

	results := m.state.GetResults()

	sections := []string{
		m.renderTitle(results),
		m.renderSessionCard(results),
		m.renderWeeklyCard(results),
		m.renderMonthlyCard(results),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle(results models.Results) string {
	title := styles.TitleStyle.Render("Usage Pace")
	badge := components.StatusBadge(results.WorstStatus())
	clock := styles.HelpStyle.Render(results.Now.Format("Mon 2 Jan 15:04:05"))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge)
	return lipgloss.JoinVertical(lipgloss.Left, header, clock, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 44)
}

func (m *Model) renderSessionCard(results models.Results) string {
	s := results.Session
	width := m.cardWidth()
	barWidth := max(width-8, 24)

	var rows []string
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.CardTitleStyle.Render("Session Window"),
		"  ",
		components.StatusBadge(s.Status),
	)
	rows = append(rows, header)

	if !s.WindowActive {
		rows = append(rows, styles.HelpStyle.Render("Window not started yet"))
		rows = append(rows, styles.HelpStyle.Render(
			"Opens "+quota.FormatRelativeTime(s.WindowStart, results.Now)))
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, components.UsageBar(s.PercentUsed, "Used    ", barWidth))
	rows = append(rows, components.TimeBar(s.TimeProgressPercent, s.WindowEnd.Sub(results.Now), "Window  ", barWidth))
	rows = append(rows, "")

	rows = append(rows, m.detailLine("Pace",
		components.PaceLine(s.PercentUsed, s.TimeProgressPercent, s.Status)))
	rows = append(rows, m.detailLine("Burn rate",
		fmt.Sprintf("%.1f%%/h (safe %.1f%%/h)", s.RatePerHour, s.SafeRatePerHour)))
	rows = append(rows, m.detailLine("Forecast",
		styles.GetPercentStyle(s.ForecastPercent).Render(fmt.Sprintf("%.0f%% by reset", s.ForecastPercent))))

	if s.HasEstimate() {
		rows = append(rows, m.detailLine("Runs out",
			quota.FormatRelativeTime(s.EstimatedFinish, results.Now)))
	}
	rows = append(rows, m.detailLine("Resets",
		quota.FormatRelativeTime(s.WindowEnd, results.Now)))

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderWeeklyCard(results models.Results) string {
	width := m.cardWidth()
	barWidth := max(width-8, 24)

	var rows []string
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.CardTitleStyle.Render("Weekly Windows"),
		"  ",
		components.StatusBadge(worseOf(results.Weekly.Status, results.Sonnet.Status)),
	)
	rows = append(rows, header)

	rows = append(rows, m.renderWeeklyRows("All models", results.Weekly, results.Now, barWidth)...)
	rows = append(rows, "")
	rows = append(rows, m.renderWeeklyRows("Sonnet    ", results.Sonnet, results.Now, barWidth)...)

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderWeeklyRows(label string, w models.WeeklyResult, now time.Time, barWidth int) []string {
	var rows []string

	rows = append(rows, components.UsageBar(w.PercentUsed, label, barWidth))

	benchmark := fmt.Sprintf("benchmark %.0f%%", w.BenchmarkPercent)
	pace := fmt.Sprintf("%.1f%%/day (safe %.1f%%/day)", w.DailyPace, w.MaxSafeDailyPace)
	remaining := fmt.Sprintf("resets %s (%dd %dh left)",
		quota.FormatRelativeTime(w.ResetDate, now), w.DaysRemaining, w.HoursRemaining)

	rows = append(rows, "  "+styles.GetStatusStyle(w.Status).Render(benchmark)+
		styles.HelpStyle.Render("  "+pace))
	rows = append(rows, "  "+styles.HelpStyle.Render(remaining))

	return rows
}

func (m *Model) detailLine(label, value string) string {
	return fmt.Sprintf("%s %s",
		styles.ProgressLabelStyle.Render(label),
		value,
	)
}

func (m *Model) renderMonthlyCard(results models.Results) string {
	mo := results.Monthly
	width := m.cardWidth()
	barWidth := max(width-8, 24)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Billing Cycle"))

	rows = append(rows, components.RenderTimeBarChars(mo.ProgressPercent, barWidth-12)+
		styles.ProgressPercentStyle.Render(fmt.Sprintf("%.0f%%", mo.ProgressPercent)))
	rows = append(rows, "")

	if mo.DaysRemaining < 0 {
		rows = append(rows, m.detailLine("Renewal",
			styles.WarningTextStyle.Render(fmt.Sprintf("%d days overdue, update the payment date", -mo.DaysRemaining))))
	} else {
		rows = append(rows, m.detailLine("Renews",
			fmt.Sprintf("%s (%d days)", mo.NextPaymentDate.Format("2 Jan 2006"), mo.DaysRemaining)))
	}
	rows = append(rows, m.detailLine("Cycle", fmt.Sprintf("%d days total", mo.TotalDaysInCycle)))

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func worseOf(a, b models.Status) models.Status {
	if a.Severity() >= b.Severity() {
		return a
	}
	return b
}
