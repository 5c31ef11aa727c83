package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mfonseca/fluxo/internal/obligation"
	"github.com/mfonseca/fluxo/internal/projection"
)

type projectionState int

const (
	projectionStateForm projectionState = iota
	projectionStateRunning
	projectionStateResult
)

type ProjectionModel struct {
	CommonModel
	svc   *projection.Service
	scope obligation.Scope

	state projectionState
	form  *huh.Form
	table table.Model
	err   error

	formBalance string
	formHorizon string
}

func NewProjectionModel(svc *projection.Service, scope obligation.Scope) ProjectionModel {
	columns := []table.Column{
		{Title: "Month", Width: 10},
		{Title: "Inflow", Width: 12},
		{Title: "Outflow", Width: 12},
		{Title: "Balance", Width: 14},
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

	m := ProjectionModel{
		svc:         svc,
		scope:       scope,
		table:       t,
		formHorizon: "12",
	}
	m.form = m.newForm()

	return m
}

func (m ProjectionModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("balance").
				Title("Initial Balance").
				Description("Leave empty to derive it from history").
				Placeholder("0.00").
				Value(&m.formBalance).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					if _, err := decimal.NewFromString(s); err != nil {
						return fmt.Errorf("not a valid amount")
					}

					return nil
				}),

			huh.NewInput().
				Key("horizon").
				Title("Horizon (months)").
				Value(&m.formHorizon).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("must be a positive number")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ProjectionModel) Title() string { return "Cash Flow Projection" }
func (m ProjectionModel) ShortHelp() string {
	if m.state == projectionStateResult {
		return "Esc: back | n: new projection"
	}

	return "Navigate form | Esc: back"
}

func (m ProjectionModel) Init() tea.Cmd {
	return m.form.Init()
}

type projectionResultMsg struct {
	points []projection.Point
	err    error
}

func (m ProjectionModel) runCmd() tea.Cmd {
	balance := strings.TrimSpace(m.formBalance)
	horizon, _ := strconv.Atoi(m.formHorizon)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var initial *decimal.Decimal

		if balance != "" {
			d, err := decimal.NewFromString(balance)
			if err != nil {
				return projectionResultMsg{err: err}
			}

			initial = &d
		}

		points, err := m.svc.Run(ctx, m.scope, initial, horizon, time.Now())

		return projectionResultMsg{points: points, err: err}
	}
}

func (m ProjectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectionResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = projectionStateForm
			m.form = m.newForm()

			return m, m.form.Init()
		}

		rows := make([]table.Row, len(msg.points))
		for i, p := range msg.points {
			rows[i] = table.Row{
				p.Month.Format("2006-01"),
				FormatAmount(p.Inflow),
				FormatAmount(p.Outflow),
				FormatAmount(p.Balance),
			}
		}

		m.table.SetRows(rows)
		m.err = nil
		m.state = projectionStateResult

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == projectionStateResult && msg.String() == "n" {
			m.state = projectionStateForm
			m.form = m.newForm()

			return m, m.form.Init()
		}
	}

	switch m.state {
	case projectionStateForm:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State == huh.StateCompleted {
			m.formBalance = m.form.GetString("balance")
			m.formHorizon = m.form.GetString("horizon")
			m.state = projectionStateRunning

			return m, m.runCmd()
		}

		return m, cmd

	case projectionStateResult:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ProjectionModel) View() string {
	switch m.state {
	case projectionStateForm:
		content := m.form.View()
		if m.err != nil {
			content = fmt.Sprintf("Error: %v\n\n%s", m.err, content)
		}

		return lipgloss.NewStyle().Padding(1).Render(content)

	case projectionStateRunning:
		return lipgloss.NewStyle().Padding(1).Render("Projecting...")

	case projectionStateResult:
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	return ""
}
