package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mfonseca/fluxo/cmd/tui/internal/view"
	"github.com/mfonseca/fluxo/internal/appointment"
	appointmentStore "github.com/mfonseca/fluxo/internal/appointment/store"
	"github.com/mfonseca/fluxo/internal/config"
	"github.com/mfonseca/fluxo/internal/crypto"
	"github.com/mfonseca/fluxo/internal/database"
	"github.com/mfonseca/fluxo/internal/obligation"
	obligationStore "github.com/mfonseca/fluxo/internal/obligation/store"
	"github.com/mfonseca/fluxo/internal/projection"
)

type model struct {
	obligationService  *obligation.Service
	appointmentService *appointment.Service
	projectionService  *projection.Service
	scope              obligation.Scope

	currentView View

	projectionView   view.ProjectionModel
	upcomingView     view.UpcomingModel
	installmentsView view.InstallmentsModel
	agendaView       view.AgendaModel
}

type View int

const (
	ViewMenu         View = 0
	ViewProjection   View = 1
	ViewUpcoming     View = 2
	ViewInstallments View = 3
	ViewAgenda       View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		slog.Error("TUI_USER_ID must be a valid uuid", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	codec, err := crypto.NewAESCodec(cfg.Crypto.Passphrase)
	if err != nil {
		slog.Error("failed to build codec", "error", err)
		os.Exit(1)
	}

	obligationSvc := obligation.NewService(obligationStore.New(db, codec))
	appointmentSvc := appointment.NewService(appointmentStore.New(db, codec))
	projectionSvc := projection.NewService(obligationSvc)

	scope := obligation.Scope{OwnerID: userID}

	return model{
		obligationService:  obligationSvc,
		appointmentService: appointmentSvc,
		projectionService:  projectionSvc,
		scope:              scope,
		currentView:        ViewMenu,
		projectionView:     view.NewProjectionModel(projectionSvc, scope),
		upcomingView:       view.NewUpcomingModel(obligationSvc, scope),
		installmentsView:   view.NewInstallmentsModel(obligationSvc, scope),
		agendaView:         view.NewAgendaModel(obligationSvc, appointmentSvc, scope),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewProjection
				m.projectionView = view.NewProjectionModel(m.projectionService, m.scope)

				return m, m.projectionView.Init()
			case "2":
				m.currentView = ViewUpcoming
				m.upcomingView = view.NewUpcomingModel(m.obligationService, m.scope)

				return m, m.upcomingView.Init()
			case "3":
				m.currentView = ViewInstallments
				m.installmentsView = view.NewInstallmentsModel(m.obligationService, m.scope)

				return m, m.installmentsView.Init()
			case "4":
				m.currentView = ViewAgenda
				m.agendaView = view.NewAgendaModel(m.obligationService, m.appointmentService, m.scope)

				return m, m.agendaView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewProjection:
		var newModel tea.Model
		newModel, cmd = m.projectionView.Update(msg)
		m.projectionView = newModel.(view.ProjectionModel)
	case ViewUpcoming:
		var newModel tea.Model
		newModel, cmd = m.upcomingView.Update(msg)
		m.upcomingView = newModel.(view.UpcomingModel)
	case ViewInstallments:
		var newModel tea.Model
		newModel, cmd = m.installmentsView.Update(msg)
		m.installmentsView = newModel.(view.InstallmentsModel)
	case ViewAgenda:
		var newModel tea.Model
		newModel, cmd = m.agendaView.Update(msg)
		m.agendaView = newModel.(view.AgendaModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Fluxo TUI\n\n" +
				"1. Cash Flow Projection\n" +
				"2. Upcoming Recurrences\n" +
				"3. Installment Plans\n" +
				"4. Agenda\n\n" +
				"q. Quit",
		)
	case ViewProjection:
		return m.projectionView.View()
	case ViewUpcoming:
		return m.upcomingView.View()
	case ViewInstallments:
		return m.installmentsView.View()
	case ViewAgenda:
		return m.agendaView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
