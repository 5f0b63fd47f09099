package tui

import (
	"time"

	"github.com/ankityadav/sitewatch/internal/mailer"
	"github.com/ankityadav/sitewatch/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
)

type sessionState int

const (
	listView sessionState = iota
	addView
	settingsView
)

type Model struct {
	db       *storage.Database
	state    sessionState
	list     listModel
	form     formModel
	settings settingsModel
	width    int
	height   int
}

type tickMsg time.Time

// SitesChangedMsg is delivered through Program.Send when a check cycle
// persisted changes; the list re-fetches everything on receipt.
type SitesChangedMsg struct{}

// New builds the TUI. checkNow triggers an immediate check cycle and
// may be nil.
func New(db *storage.Database, m *mailer.Mailer, checkNow func()) Model {
	return Model{
		db:       db,
		state:    listView,
		list:     newListModel(db, checkNow),
		form:     newFormModel(db),
		settings: newSettingsModel(db, m),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second*5, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == listView {
				return m, tea.Quit
			}
			m.state = listView
			m.list.loadSites()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.state == listView {
			m.list.loadSites()
		}
		return m, tickCmd()

	case SitesChangedMsg:
		m.list.loadSites()
		return m, nil

	case AddSiteMsg:
		m.state = addView
		m.form.reset()
		return m, nil

	case OpenSettingsMsg:
		m.state = settingsView
		m.settings.load()
		return m, nil

	case SiteSavedMsg, BackToListMsg:
		m.state = listView
		m.list.loadSites()
		return m, nil
	}

	switch m.state {
	case listView:
		listModel, listCmd := m.list.Update(msg)
		m.list = listModel
		cmds = append(cmds, listCmd)

	case addView:
		formModel, formCmd := m.form.Update(msg)
		m.form = formModel
		cmds = append(cmds, formCmd)

	case settingsView:
		settingsModel, settingsCmd := m.settings.Update(msg)
		m.settings = settingsModel
		cmds = append(cmds, settingsCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case listView:
		return m.list.View()
	case addView:
		return m.form.View()
	case settingsView:
		return m.settings.View()
	default:
		return "Unknown state"
	}
}

type AddSiteMsg struct{}

type OpenSettingsMsg struct{}

type SiteSavedMsg struct{}

type BackToListMsg struct{}

func addSite() tea.Cmd {
	return func() tea.Msg {
		return AddSiteMsg{}
	}
}

func openSettings() tea.Cmd {
	return func() tea.Msg {
		return OpenSettingsMsg{}
	}
}

func siteSaved() tea.Cmd {
	return func() tea.Msg {
		return SiteSavedMsg{}
	}
}

func backToList() tea.Cmd {
	return func() tea.Msg {
		return BackToListMsg{}
	}
}
