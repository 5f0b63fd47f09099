package tui

import (
	"fmt"
	"strings"

	"github.com/ankityadav/sitewatch/internal/storage"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formModel struct {
	db    *storage.Database
	input textinput.Model
	err   error
}

func newFormModel(db *storage.Database) formModel {
	input := textinput.New()
	input.Placeholder = "https://example.com"
	input.Focus()
	input.CharLimit = 500
	input.Width = 50

	return formModel{
		db:    db,
		input: input,
	}
}

func (m *formModel) reset() {
	m.err = nil
	m.input.SetValue("")
	m.input.Focus()
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, backToList()

		case "enter":
			url := strings.TrimSpace(m.input.Value())
			if url == "" {
				m.err = fmt.Errorf("URL is required")
				return m, nil
			}
			if _, err := m.db.AddSite(url); err != nil {
				m.err = err
				return m, nil
			}
			return m, siteSaved()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m formModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Add Site"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("URL:"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("enter: save • esc: cancel"))

	return baseStyle.Render(b.String())
}
