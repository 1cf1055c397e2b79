package router

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	userHandler *handler.UserHandler,
	tokens *auth.Manager,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS -> Authenticate
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.Authenticate(tokens, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.Search)
		r.Get("/{id}", productHandler.GetByID)
		r.With(middleware.RequireAuth).Post("/{id}/reviews", productHandler.AddReview)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", orderHandler.Create)
		r.Get("/myorders", orderHandler.ListMine)
		r.Get("/{id}", orderHandler.GetByID)
		r.Put("/{id}/pay", orderHandler.Pay)
		r.With(middleware.RequireAdmin).Put("/{id}/deliver", orderHandler.Deliver)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.With(middleware.RequireAuth).Get("/profile", userHandler.Profile)
	})

	return r
}
