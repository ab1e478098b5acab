package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures access to the command server
type RouterOptions struct {
	// APIToken, when set, is required as a bearer token on mutating requests
	APIToken string
	// AllowedOrigins lists the browser origins allowed to call the server
	AllowedOrigins []string
}

// NewRouter creates and configures the Chi router
func NewRouter(h *Handler, log *slog.Logger, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(Recoverer(log))
	r.Use(Logger(log))
	r.Use(CORS(opts.AllowedOrigins))

	// Health check endpoint
	r.Get("/health", h.HealthCheck)

	// Command dispatch for the UI shell
	r.Group(func(r chi.Router) {
		r.Use(JSONContentType)
		r.Use(BearerAuth(opts.APIToken))

		r.Post("/invoke/{command}", h.Invoke)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONContentType)
		r.Use(BearerAuth(opts.APIToken))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", h.ListCards)
			r.Post("/", h.SaveCard)

			// Special routes before /{id} to avoid conflicts
			r.Get("/by-word/{word}", h.GetCardByWord)
			r.Post("/import", h.ImportWords)
			r.Get("/export", h.ExportCards)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", h.DeleteCard)
				r.Put("/familiarity", h.UpdateFamiliarity)
				r.Post("/seen", h.IncrementSeen)
			})
		})
	})

	return r
}
