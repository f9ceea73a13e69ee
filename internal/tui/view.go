package tui

import (
	"fmt"
	"strings"

	"github.com/atinyakov/GophRoster/internal/models"
	"github.com/charmbracelet/lipgloss"
)

const cellWidth = 20

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	editingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// View renders the grid.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Users"))
	b.WriteString("\n")
	if m.focus == focusSearch {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(dimStyle.Render("search: " + m.state.SearchText))
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(row("#", "First Name", "Last Name", "City", "Action")))
	b.WriteString("\n")

	for i, r := range m.state.Records {
		b.WriteString(m.recordRow(i, r))
		b.WriteString("\n")
	}
	b.WriteString(m.draftRow())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s: %v", m.status, m.err)))
	case m.inFlight > 0:
		b.WriteString(statusStyle.Render("working..."))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help()))
	return b.String()
}

func (m Model) recordRow(i int, r models.Record) string {
	num := fmt.Sprintf("%d", i+1)
	if m.state.IsEditing(r.ID) {
		cells := [3]string{r.FName, r.LName, r.City}
		if m.focus == focusCell {
			cells[m.col] = m.cell.View()
		}
		line := row(num, cells[0], cells[1], cells[2], "[save] [cancel] [delete]")
		return editingStyle.Render(line)
	}
	line := row(num, r.FName, r.LName, r.City, "[delete]")
	if m.focus == focusTable && i == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

func (m Model) draftRow() string {
	d := m.state.Draft
	cells := [3]string{d.FirstName, d.LastName, d.City}
	if m.focus == focusDraft {
		cells[m.col] = m.cell.View()
	}
	line := row(fmt.Sprintf("%d", len(m.state.Records)+1), cells[0], cells[1], cells[2], "[add user]")
	if m.focus == focusTable && m.cursor == len(m.state.Records) {
		return cursorStyle.Render(line)
	}
	return line
}

func (m Model) help() string {
	switch m.focus {
	case focusSearch:
		return "enter search • esc back"
	case focusCell:
		return "tab next field • enter save • esc cancel • ctrl+d delete"
	case focusDraft:
		return "tab next field • enter add • esc back"
	default:
		return "↑/↓ move • enter edit • a add • d delete • / search • r reload • q quit"
	}
}

func row(num, first, last, city, action string) string {
	return fmt.Sprintf("%-4s %s %s %s %s", num, pad(first), pad(last), pad(city), action)
}

func pad(s string) string {
	w := lipgloss.Width(s)
	if w >= cellWidth {
		return s
	}
	return s + strings.Repeat(" ", cellWidth-w)
}
