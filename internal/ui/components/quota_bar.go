// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgrendel/quotapace/internal/logger"
	"github.com/mgrendel/quotapace/internal/models"
	"github.com/mgrendel/quotapace/internal/ui/styles"
)

// RenderGradientBar renders the bar part of a usage gauge, shading from
// green toward red as the percentage climbs.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// UsageBar renders a labelled usage gauge with the percentage on the right.
func UsageBar(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetPercentStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

// RenderTimeBarChars renders the bar characters for a time gauge, which
// fills up as the window runs out.
func RenderTimeBarChars(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#ffd93d", "#6c5ce7", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// TimeBar renders a labelled time gauge with the remaining time on the
// right. percent is how much of the window has elapsed.
func TimeBar(percent float64, remaining time.Duration, label string, width int) string {
	labelWidth := len(label) + 1
	timeWidth := 8
	barWidth := width - labelWidth - timeWidth - 4
	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderTimeBarChars(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	timeStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(timeWidth).
		Align(lipgloss.Right).
		Render(formatBarDuration(remaining))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, timeStr)
}

func formatBarDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// StatusBadge renders a colored badge for a quota status.
func StatusBadge(status models.Status) string {
	return styles.GetStatusBadgeStyle(status).Render(string(status))
}

// PaceLine renders a one-line comparison of usage versus time, colored
// by how far ahead of schedule the usage is running.
func PaceLine(percentUsed, timePercent float64, status models.Status) string {
	deviation := percentUsed - timePercent

	var verdict string
	switch {
	case deviation > 10:
		verdict = fmt.Sprintf("%.0f%% ahead of schedule", deviation)
	case deviation > 0:
		verdict = fmt.Sprintf("%.0f%% ahead", deviation)
	case deviation < -10:
		verdict = fmt.Sprintf("%.0f%% in hand", -deviation)
	default:
		verdict = "on pace"
	}

	return styles.GetStatusStyle(status).Render(verdict)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
