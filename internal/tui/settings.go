package tui

import (
	"fmt"
	"strings"

	"github.com/ankityadav/sitewatch/internal/mailer"
	"github.com/ankityadav/sitewatch/internal/storage"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsModel struct {
	db         *storage.Database
	mailer     *mailer.Mailer
	inputs     []textinput.Model
	focusIndex int
	status     string
	testing    bool
	err        error
}

const (
	inputEmail = iota
	inputPassword
)

type testResultMsg struct {
	err error
}

func newSettingsModel(db *storage.Database, m *mailer.Mailer) settingsModel {
	inputs := make([]textinput.Model, 2)

	inputs[inputEmail] = textinput.New()
	inputs[inputEmail].Placeholder = "admin@example.com"
	inputs[inputEmail].Focus()
	inputs[inputEmail].CharLimit = 200
	inputs[inputEmail].Width = 50

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "app password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].CharLimit = 200
	inputs[inputPassword].Width = 50

	return settingsModel{
		db:     db,
		mailer: m,
		inputs: inputs,
	}
}

func (m *settingsModel) load() {
	m.focusIndex = 0
	m.status = ""
	m.testing = false
	m.err = nil

	email, _ := m.db.GetCredential(storage.KeyAdminEmail)
	password, _ := m.db.GetCredential(storage.KeyAdminPassword)
	m.inputs[inputEmail].SetValue(email)
	m.inputs[inputPassword].SetValue(password)

	m.inputs[inputEmail].Focus()
	m.inputs[inputPassword].Blur()
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case testResultMsg:
		m.testing = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Test failed: %v", msg.err)
		} else {
			m.status = "Test email sent"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, backToList()

		case "tab", "down", "shift+tab", "up":
			m.focusIndex = 1 - m.focusIndex
			return m, m.updateFocus()

		case "enter":
			if m.focusIndex == inputEmail {
				m.focusIndex = inputPassword
				return m, m.updateFocus()
			}
			return m, m.save()

		case "ctrl+t":
			if !m.testing {
				m.testing = true
				m.status = "Sending test email..."
				return m, m.sendTest()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *settingsModel) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))

	for i := 0; i < len(m.inputs); i++ {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}

	return tea.Batch(cmds...)
}

func (m *settingsModel) save() tea.Cmd {
	email := strings.TrimSpace(m.inputs[inputEmail].Value())
	password := m.inputs[inputPassword].Value()

	if err := m.db.SetCredential(storage.KeyAdminEmail, email); err != nil {
		m.err = err
		return nil
	}
	if err := m.db.SetCredential(storage.KeyAdminPassword, password); err != nil {
		m.err = err
		return nil
	}

	return backToList()
}

func (m *settingsModel) sendTest() tea.Cmd {
	email := strings.TrimSpace(m.inputs[inputEmail].Value())
	password := m.inputs[inputPassword].Value()
	mail := m.mailer

	return func() tea.Msg {
		return testResultMsg{err: mail.SendTest(email, password)}
	}
}

func (m settingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Mail Settings"))
	b.WriteString("\n\n")

	labels := []string{"Admin Email:", "App Password:"}
	for i, input := range m.inputs {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("tab: switch field • enter: save • ctrl+t: send test • esc: cancel"))

	return baseStyle.Render(b.String())
}
