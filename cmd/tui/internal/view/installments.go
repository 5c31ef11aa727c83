package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfonseca/fluxo/internal/installment"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type InstallmentsModel struct {
	CommonModel
	svc   *obligation.Service
	scope obligation.Scope

	table   table.Model
	groups  []installment.Group
	loading bool
	err     error
	status  string
}

func NewInstallmentsModel(svc *obligation.Service, scope obligation.Scope) InstallmentsModel {
	columns := []table.Column{
		{Title: "Description", Width: 30},
		{Title: "Progress", Width: 12},
		{Title: "Percent", Width: 10},
		{Title: "Next Due", Width: 12},
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

	return InstallmentsModel{
		svc:   svc,
		scope: scope,
		table: t,
	}
}

func (m InstallmentsModel) Title() string { return "Installment Plans" }
func (m InstallmentsModel) ShortHelp() string {
	return "Esc: back | p: pay next installment | r: refresh"
}

func (m InstallmentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

type loadInstallmentsMsg struct {
	groups []installment.Group
	err    error
}

type payInstallmentMsg struct {
	err error
}

func (m InstallmentsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.svc.List(ctx, obligation.ListFilter{
			Scope:            m.scope,
			InstallmentsOnly: true,
		})
		if err != nil {
			return loadInstallmentsMsg{err: err}
		}

		return loadInstallmentsMsg{groups: installment.GroupInstallments(rows)}
	}
}

func (m InstallmentsModel) payCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.groups) {
		return nil
	}

	next := m.groups[idx].NextUnpaid
	if next == nil {
		return nil
	}

	id := next.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return payInstallmentMsg{err: m.svc.SetPaid(ctx, id, true)}
	}
}

func (m InstallmentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInstallmentsMsg:
		m.loading = false

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.groups = msg.groups
		m.err = nil
		m.refreshTable()

		return m, nil

	case payInstallmentMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = "Installment marked paid"

		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "p":
			return m, m.payCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *InstallmentsModel) refreshTable() {
	rows := make([]table.Row, len(m.groups))

	for i, g := range m.groups {
		nextDue := "paid off"
		if g.NextUnpaid != nil {
			nextDue = FormatDate(g.NextUnpaid.AnchorDate)
		}

		rows[i] = table.Row{
			g.Description,
			fmt.Sprintf("%d/%d", g.PaidCount, g.Total),
			fmt.Sprintf("%.0f%%", g.ProgressPercent),
			nextDue,
		}
	}

	m.table.SetRows(rows)
}

func (m InstallmentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.status == "" {
		return tableView
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tableView,
		lipgloss.NewStyle().PaddingTop(1).Faint(true).Render(m.status),
	)
}
