package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfonseca/fluxo/internal/appointment"
	"github.com/mfonseca/fluxo/internal/obligation"
)

type AgendaModel struct {
	CommonModel
	obligations  *obligation.Service
	appointments *appointment.Service
	scope        obligation.Scope

	day     time.Time
	due     []*obligation.Obligation
	appts   []*appointment.Appointment
	loading bool
	err     error
}

func NewAgendaModel(obligations *obligation.Service, appointments *appointment.Service, scope obligation.Scope) AgendaModel {
	return AgendaModel{
		obligations:  obligations,
		appointments: appointments,
		scope:        scope,
		day:          time.Now(),
	}
}

func (m AgendaModel) Title() string { return "Agenda" }
func (m AgendaModel) ShortHelp() string {
	return "Esc: back | left/right: day | t: today"
}

func (m AgendaModel) Init() tea.Cmd {
	return m.loadCmd()
}

type loadAgendaMsg struct {
	due   []*obligation.Obligation
	appts []*appointment.Appointment
	err   error
}

func (m AgendaModel) loadCmd() tea.Cmd {
	day := m.day

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		due, err := m.obligations.DueOn(ctx, m.scope, day)
		if err != nil {
			return loadAgendaMsg{err: err}
		}

		appts, err := m.appointments.OnDate(ctx, m.scope, day)
		if err != nil {
			return loadAgendaMsg{err: err}
		}

		return loadAgendaMsg{due: due, appts: appts}
	}
}

func (m AgendaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAgendaMsg:
		m.loading = false

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.due = msg.due
		m.appts = msg.appts
		m.err = nil

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.day = m.day.AddDate(0, 0, -1)
			m.loading = true

			return m, m.loadCmd()
		case "right", "l":
			m.day = m.day.AddDate(0, 0, 1)
			m.loading = true

			return m, m.loadCmd()
		case "t":
			m.day = time.Now()
			m.loading = true

			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m AgendaModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(m.day.Format("Monday, 2006-01-02")))
	sb.WriteString("\n\nDue:\n")

	if len(m.due) == 0 {
		sb.WriteString("  nothing due\n")
	}

	for _, o := range m.due {
		paid := " "
		if o.IsPaid {
			paid = "x"
		}

		sb.WriteString(fmt.Sprintf("  [%s] %s  %s  %s\n", paid, FormatAmount(o.Amount), o.Category, o.Description))
	}

	sb.WriteString("\nAppointments:\n")

	if len(m.appts) == 0 {
		sb.WriteString("  none\n")
	}

	for _, a := range m.appts {
		sb.WriteString(fmt.Sprintf("  - %s", a.Title))

		if a.Notes != "" {
			sb.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("  (%s)", a.Notes)))
		}

		sb.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}
