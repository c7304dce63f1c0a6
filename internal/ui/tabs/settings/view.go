package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgrendel/quotapace/internal/ui/styles"
)

// View renders the settings tab.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")
	b.WriteString(m.renderForm())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return styles.DocStyle.Render(b.String())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Readings")
	hint := styles.SubTitleStyle.Render("enter your latest numbers from the usage page")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", hint)
}

func (m *Model) renderForm() string {
	labelWidth := 0
	for _, label := range fieldLabels {
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
	}

	rows := make([]string, 0, fieldCount)
	for i := 0; i < fieldCount; i++ {
		cursor := "  "
		labelStyle := styles.BlurredStyle
		if i == m.focusIndex {
			labelStyle = styles.FocusedStyle
			cursor = styles.FocusedStyle.Render("> ")
		}

		label := labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, fieldLabels[i]))
		rows = append(rows, cursor+label+"  "+m.inputs[i].View())
	}

	return styles.CardStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter() string {
	if m.editing {
		return styles.HelpStyle.Render("editing, enter to confirm, esc to cancel")
	}
	if m.dirty {
		return styles.WarningTextStyle.Render("unsaved changes, press s to save")
	}
	return styles.HelpStyle.Render("enter to edit a field, s to save")
}
