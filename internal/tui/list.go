package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ankityadav/sitewatch/internal/storage"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type listModel struct {
	db       *storage.Database
	checkNow func()
	table    table.Model
	sites    []storage.Site
}

func newListModel(db *storage.Database, checkNow func()) listModel {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "URL", Width: 40},
		{Title: "Status", Width: 10},
		{Title: "Last Check", Width: 18},
		{Title: "Last Change", Width: 18},
		{Title: "Down Since", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	lm := listModel{
		db:       db,
		checkNow: checkNow,
		table:    t,
	}
	lm.loadSites()
	return lm
}

func (m *listModel) loadSites() {
	sites, err := m.db.ListSites()
	if err != nil {
		return
	}
	m.sites = sites

	rows := []table.Row{}
	for _, site := range sites {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", site.ID),
			site.URL,
			formatStatus(site.Status),
			formatTimePtr(site.LastChecked),
			formatTimePtr(site.LastStatusChange),
			formatTimePtr(site.LastDownAt),
		})
	}
	m.table.SetRows(rows)
}

func formatStatus(status string) string {
	switch status {
	case storage.StatusUp:
		return "✓ UP"
	case storage.StatusDown:
		return "✗ DOWN"
	default:
		return "? UNKNOWN"
	}
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			return m, addSite()
		case "s":
			return m, openSettings()
		case "d":
			if len(m.sites) > 0 && m.table.Cursor() < len(m.sites) {
				site := &m.sites[m.table.Cursor()]
				m.db.DeleteSite(site.ID)
				m.loadSites()
				return m, nil
			}
		case "c":
			if m.checkNow != nil {
				m.checkNow()
			}
			return m, nil
		case "r":
			m.loadSites()
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m listModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🌐 Sitewatch - Website Monitor"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	help := helpStyle.Render(
		"a: add • d: delete • c: check now • s: mail settings • r: refresh • q: quit",
	)
	b.WriteString(help)

	return b.String()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Format("Jan 02 15:04:05")
}
