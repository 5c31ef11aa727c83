package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mfonseca/fluxo/internal/group"
	"github.com/mfonseca/fluxo/internal/http/agenda"
	"github.com/mfonseca/fluxo/internal/http/appointment"
	"github.com/mfonseca/fluxo/internal/http/auth"
	"github.com/mfonseca/fluxo/internal/http/budget"
	"github.com/mfonseca/fluxo/internal/http/card"
	"github.com/mfonseca/fluxo/internal/http/category"
	"github.com/mfonseca/fluxo/internal/http/events"
	"github.com/mfonseca/fluxo/internal/http/goal"
	grouphttp "github.com/mfonseca/fluxo/internal/http/group"
	"github.com/mfonseca/fluxo/internal/http/installment"
	"github.com/mfonseca/fluxo/internal/http/obligation"
	"github.com/mfonseca/fluxo/internal/http/projection"
)

type Handlers struct {
	Obligations  *obligation.Handler
	Installments *installment.Handler
	Projections  *projection.Handler
	Agenda       *agenda.Handler
	Appointments *appointment.Handler
	Budgets      *budget.Handler
	Goals        *goal.Handler
	Cards        *card.Handler
	Categories   *category.Handler
	Groups       *grouphttp.Handler
	Events       *events.Handler
}

func New(jwtSecret string, groups *group.Service, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))
		r.Use(auth.GroupGuard(groups))

		r.Route("/obligations", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Obligations.Routes(r)
		})

		r.Route("/installments", h.Installments.Routes)

		r.Route("/projections", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Projections.Routes(r)
		})

		r.Route("/agenda", h.Agenda.Routes)

		r.Route("/appointments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Appointments.Routes(r)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Budgets.Routes(r)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Goals.Routes(r)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Cards.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Groups.Routes(r)
		})

		r.Route("/events", h.Events.Routes)
	})

	return router
}
