package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/securevote/securevote-be/internal/api/handlers"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/web"
	"github.com/securevote/securevote-be/internal/websocket"
)

// Options carries the router settings that come from configuration.
type Options struct {
	CORSOrigins   []string
	SecureCookies bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options, svc handlers.Services, tokens *auth.Manager, pages *web.Renderer, emails *mail.Renderer, hub *websocket.Hub) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(tokens.Session())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Accounts, svc.Audit, tokens, opts.SecureCookies)
	viewHandler := handlers.NewViewHandler(svc.Ballots)
	voteHandler := handlers.NewVoteHandler(svc.Candidates, svc.Ballots)
	dashboardHandler := handlers.NewDashboardHandler(svc.Ballots, svc.Stats)
	adminHandler := handlers.NewAdminHandler(svc.Directory, svc.Audit, svc.Security, svc.Stats)
	emailHandler := handlers.NewEmailHandler(emails)
	wsHandler := handlers.NewWebSocketHandler(hub, opts.CORSOrigins)
	pageHandler := handlers.NewPageHandler(pages, emails, svc, authHandler, adminHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Server-rendered pages
	r.Get("/", pageHandler.Home)
	r.Get("/login", pageHandler.LoginForm)
	r.Post("/login", pageHandler.Login)
	r.Post("/logout", pageHandler.Logout)
	r.Get("/dashboard", pageHandler.Dashboard)
	r.Get("/vote", pageHandler.VoteForm)
	r.Post("/vote", pageHandler.CastVote)
	r.Get("/vote/status/{id}", pageHandler.VoteStatus)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", pageHandler.Admin)
		r.Get("/audit.csv", pageHandler.AuditCSV)
		r.Post("/users/{id}/suspend", pageHandler.Suspend)
		r.Post("/users/{id}/reactivate", pageHandler.Reactivate)
	})
	r.Get("/emails", pageHandler.Emails)
	r.Get("/emails/styles.css", emailHandler.Styles)
	r.Get("/access-denied", pageHandler.AccessDenied)
	r.Get("/session-expired", pageHandler.SessionExpired)
	r.NotFound(pageHandler.NotFound)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket connection endpoint
		r.Get("/ws", wsHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.GetMe)
		})

		r.Get("/views/{page}", viewHandler.Resolve)

		r.Route("/emails", func(r chi.Router) {
			r.Get("/", emailHandler.List)
			r.Get("/{name}", emailHandler.Preview)
		})

		r.With(handlers.RequireRole()).Get("/candidates", voteHandler.Candidates)

		// Voter-only endpoints
		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireRole(models.RoleVoter))
			r.Get("/dashboard", dashboardHandler.Get)
			r.Post("/votes", voteHandler.Submit)
			r.Get("/votes/{id}", voteHandler.Status)
			r.Get("/receipt", voteHandler.Receipt)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(handlers.RequireRole(models.RoleAdmin))
			r.Get("/overview", adminHandler.Overview)
			r.Get("/alerts", adminHandler.Alerts)
			r.Get("/users", adminHandler.Users)
			r.Post("/users/{id}/suspend", adminHandler.Suspend)
			r.Post("/users/{id}/reactivate", adminHandler.Reactivate)
			r.Get("/audit", adminHandler.Audit)
			r.Get("/audit.csv", adminHandler.AuditCSV)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		})
	})

	return r
}
