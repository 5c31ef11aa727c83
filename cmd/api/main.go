package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mfonseca/fluxo/internal/appointment"
	appointmentStore "github.com/mfonseca/fluxo/internal/appointment/store"
	"github.com/mfonseca/fluxo/internal/budget"
	budgetStore "github.com/mfonseca/fluxo/internal/budget/store"
	"github.com/mfonseca/fluxo/internal/card"
	cardStore "github.com/mfonseca/fluxo/internal/card/store"
	"github.com/mfonseca/fluxo/internal/category"
	categoryStore "github.com/mfonseca/fluxo/internal/category/store"
	"github.com/mfonseca/fluxo/internal/config"
	"github.com/mfonseca/fluxo/internal/crypto"
	"github.com/mfonseca/fluxo/internal/database"
	"github.com/mfonseca/fluxo/internal/goal"
	goalStore "github.com/mfonseca/fluxo/internal/goal/store"
	"github.com/mfonseca/fluxo/internal/group"
	groupStore "github.com/mfonseca/fluxo/internal/group/store"
	fluxoHttp "github.com/mfonseca/fluxo/internal/http"
	agendaHandler "github.com/mfonseca/fluxo/internal/http/agenda"
	appointmentHandler "github.com/mfonseca/fluxo/internal/http/appointment"
	budgetHandler "github.com/mfonseca/fluxo/internal/http/budget"
	cardHandler "github.com/mfonseca/fluxo/internal/http/card"
	categoryHandler "github.com/mfonseca/fluxo/internal/http/category"
	eventsHandler "github.com/mfonseca/fluxo/internal/http/events"
	goalHandler "github.com/mfonseca/fluxo/internal/http/goal"
	groupHandler "github.com/mfonseca/fluxo/internal/http/group"
	installmentHandler "github.com/mfonseca/fluxo/internal/http/installment"
	obligationHandler "github.com/mfonseca/fluxo/internal/http/obligation"
	projectionHandler "github.com/mfonseca/fluxo/internal/http/projection"
	"github.com/mfonseca/fluxo/internal/notify"
	"github.com/mfonseca/fluxo/internal/obligation"
	obligationStore "github.com/mfonseca/fluxo/internal/obligation/store"
	"github.com/mfonseca/fluxo/internal/projection"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	codec, err := crypto.NewAESCodec(cfg.Crypto.Passphrase)
	if err != nil {
		slog.Error("failed to build codec", "error", err)
		os.Exit(1)
	}

	var (
		obligationService  = obligation.NewService(obligationStore.New(db, codec))
		appointmentService = appointment.NewService(appointmentStore.New(db, codec))
		budgetService      = budget.NewService(budgetStore.New(db), obligationService)
		goalService        = goal.NewService(goalStore.New(db))
		cardService        = card.NewService(cardStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		groupService       = group.NewService(groupStore.New(db))
		projectionService  = projection.NewService(obligationService)
	)

	listener := notify.NewListener(cfg.ConnectionString())

	go func() {
		if err := listener.Run(context.Background()); err != nil {
			slog.Error("notify listener stopped", "error", err)
		}
	}()

	router := fluxoHttp.New(cfg.Auth.JWTSecret, groupService, fluxoHttp.Handlers{
		Obligations:  obligationHandler.NewHandler(obligationService),
		Installments: installmentHandler.NewHandler(obligationService),
		Projections:  projectionHandler.NewHandler(projectionService),
		Agenda:       agendaHandler.NewHandler(obligationService, appointmentService),
		Appointments: appointmentHandler.NewHandler(appointmentService),
		Budgets:      budgetHandler.NewHandler(budgetService),
		Goals:        goalHandler.NewHandler(goalService),
		Cards:        cardHandler.NewHandler(cardService),
		Categories:   categoryHandler.NewHandler(categoryService),
		Groups:       groupHandler.NewHandler(groupService),
		Events:       eventsHandler.NewHandler(listener),
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
