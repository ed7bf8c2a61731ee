package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avieira/tourbase-be/internal/api/handlers"
	"github.com/avieira/tourbase-be/internal/auth"
	"github.com/avieira/tourbase-be/internal/config"
	"github.com/avieira/tourbase-be/internal/mailer"
	"github.com/avieira/tourbase-be/internal/models"
	"github.com/avieira/tourbase-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, tokens *auth.TokenService, hasher *auth.PasswordHasher, userService services.UserServiceProvider, auditService services.AuditServiceProvider, mail mailer.Mailer) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Soft authentication: attaches the identity when a valid token is
	// present, never rejects.
	r.Use(auth.IsLoggedIn(tokens, userService))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService, tokens, hasher, mail, cfg)
	userHandler := handlers.NewUserHandler(userService, auditService)
	eventHandler := handlers.NewEventHandler(auditService)
	healthHandler := handlers.NewHealthHandler()

	protect := auth.Protect(tokens, userService)
	adminOnly := auth.RestrictTo(models.RoleAdmin)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.Post("/forgotPassword", authHandler.ForgotPassword)
			r.Patch("/resetPassword/{token}", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Patch("/updateMyPassword", authHandler.UpdateMyPassword)
				r.Get("/me", userHandler.GetMe)
				r.Patch("/updateMe", userHandler.UpdateMe)
				r.Delete("/deleteMe", userHandler.DeleteMe)

				// Account administration requires the admin role.
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Get("/", userHandler.List)
					r.Get("/{id}", userHandler.Get)
					r.Delete("/{id}", userHandler.Delete)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(protect, adminOnly)
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
