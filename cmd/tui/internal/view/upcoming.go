package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfonseca/fluxo/internal/obligation"
)

var upcomingWindows = []int{7, 30, 90}

type UpcomingModel struct {
	CommonModel
	svc   *obligation.Service
	scope obligation.Scope

	table     table.Model
	windowIdx int
	loading   bool
	err       error
}

func NewUpcomingModel(svc *obligation.Service, scope obligation.Scope) UpcomingModel {
	columns := []table.Column{
		{Title: "Due", Width: 12},
		{Title: "Category", Width: 18},
		{Title: "Description", Width: 30},
		{Title: "Amount", Width: 12},
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
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return UpcomingModel{
		svc:       svc,
		scope:     scope,
		table:     t,
		windowIdx: 1,
	}
}

func (m UpcomingModel) Title() string { return "Upcoming Recurrences" }
func (m UpcomingModel) ShortHelp() string {
	return "Esc: back | w: window | r: refresh"
}

func (m UpcomingModel) Init() tea.Cmd {
	return m.loadCmd()
}

type loadUpcomingMsg struct {
	rows []obligation.Upcoming
	err  error
}

func (m UpcomingModel) loadCmd() tea.Cmd {
	days := upcomingWindows[m.windowIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.svc.ListUpcoming(ctx, m.scope, time.Now(), days)

		return loadUpcomingMsg{rows: rows, err: err}
	}
}

func (m UpcomingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadUpcomingMsg:
		m.loading = false

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		rows := make([]table.Row, len(msg.rows))
		for i, u := range msg.rows {
			rows[i] = table.Row{
				FormatDate(u.DueDate),
				u.Obligation.Category,
				u.Obligation.Description,
				FormatAmount(u.Obligation.Amount),
			}
		}

		m.table.SetRows(rows)
		m.err = nil

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "w":
			m.windowIdx = (m.windowIdx + 1) % len(upcomingWindows)
			m.loading = true

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m UpcomingModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Next %d days", upcomingWindows[m.windowIdx])

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)
}
