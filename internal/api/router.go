/**
 * @description
 * This file sets up the HTTP router for the service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * middleware for logging, panic recovery, CORS, and authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for chi.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles the per-area handler groups wired by the router.
type Handlers struct {
	Auth        *AuthHandlers
	Trips       *TripHandlers
	Splits      *SplitHandlers
	PlanReality *PlanRealityHandlers
}

// NewRouter creates and returns the service router.
func NewRouter(h Handlers, jwtSecret, allowedOrigins string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(allowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public account endpoints.
	r.Post("/auth/register", h.Auth.RegisterHandler)
	r.Post("/auth/login", h.Auth.LoginHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Get("/me", h.Auth.MeHandler)
		r.Put("/me", h.Auth.UpdateMeHandler)

		r.Get("/friendships", h.Auth.ListFriendshipsHandler)
		r.Post("/friendships", h.Auth.SendFriendRequestHandler)
		r.Put("/friendships/{id}", h.Auth.RespondFriendRequestHandler)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", h.Trips.CreateTripHandler)
			r.Get("/", h.Trips.ListTripsHandler)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Trips.GetTripHandler)
				r.Put("/", h.Trips.UpdateTripHandler)
				r.Delete("/", h.Trips.DeleteTripHandler)

				r.Get("/members", h.Trips.ListMembersHandler)
				r.Post("/members", h.Trips.AddMemberHandler)
				r.Delete("/members/{memberID}", h.Trips.RemoveMemberHandler)

				r.Get("/expenses", h.Trips.ListExpensesHandler)
				r.Post("/expenses", h.Trips.CreateExpenseHandler)

				r.Get("/balances", h.Splits.TripBalancesHandler)

				r.Get("/differences", h.PlanReality.ListDifferencesHandler)
				r.Post("/differences", h.PlanReality.CreateDifferenceHandler)
				r.Get("/analysis", h.PlanReality.TripAnalysisHandler)
				r.Get("/insights", h.PlanReality.TripInsightsHandler)
			})
		})

		r.Route("/expenses/{expenseID}", func(r chi.Router) {
			r.Get("/", h.Trips.GetExpenseHandler)
			r.Put("/", h.Trips.UpdateExpenseHandler)
			r.Delete("/", h.Trips.DeleteExpenseHandler)
			r.Get("/splits", h.Splits.ListExpenseSplitsHandler)
			r.Post("/splits", h.Splits.CreateSplitsHandler)
			r.Put("/splits", h.Splits.ReplaceSplitsHandler)
		})

		r.Route("/splits", func(r chi.Router) {
			r.Get("/me", h.Splits.ListMySplitsHandler)
			r.Get("/me/pending", h.Splits.ListMyPendingSplitsHandler)
			r.Put("/{id}/pay", h.Splits.MarkPaidHandler)
			r.Put("/{id}/pending", h.Splits.MarkPendingHandler)
			r.Put("/{id}/cancel", h.Splits.CancelSplitHandler)
		})

		r.Route("/differences/{diffID}", func(r chi.Router) {
			r.Put("/", h.PlanReality.UpdateDifferenceHandler)
			r.Delete("/", h.PlanReality.DeleteDifferenceHandler)
		})
	})

	return r
}

func splitOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return []string{"https://*", "http://*"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
