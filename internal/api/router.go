package api

import (
	"net/http"
	"time"

	"gamehub/internal/api/handler"
	"gamehub/internal/api/middleware"
	"gamehub/internal/app/service"
	"gamehub/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	authService *service.AuthService,
	discordService *service.DiscordService,
	recoveryService *service.RecoveryService,
	serverListService *service.ServerListService,
	forumService *service.ForumService,
	settingsService *service.SettingsService,
	userRepo repository.UserRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Edge pre-filter for the admin area. Signature-free local decode only;
	// the authoritative check runs per-route below.
	edgeGate := middleware.NewEdgeGate(
		[]string{"/admin"},
		[]string{"/api/v1/admin"},
		"/login",
	)
	r.Use(edgeGate.Handler)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth + recovery routes (public)
		authHandler := handler.NewAuthHandler(authService, discordService)
		recoveryHandler := handler.NewRecoveryHandler(recoveryService)
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterRoutes(auth)
			recoveryHandler.RegisterRoutes(auth)
		})

		// Server browser (public listing, heartbeats from game servers)
		serverHandler := handler.NewServerHandler(serverListService)
		v1.Route("/servers", serverHandler.RegisterRoutes)

		// Forum: public reads, authenticated writes, admin deletes
		forumHandler := handler.NewForumHandler(forumService)
		v1.Route("/forum", func(forum chi.Router) {
			forumHandler.RegisterPublicRoutes(forum)
			forum.Group(func(authed chi.Router) {
				authed.Use(middleware.Authenticator(authService))
				forumHandler.RegisterAuthedRoutes(authed)
			})
			forum.Group(func(admin chi.Router) {
				admin.Use(middleware.Authenticator(authService))
				admin.Use(middleware.AdminOnly)
				forumHandler.RegisterAdminRoutes(admin)
			})
		})

		// Admin area (also covered by the edge gate prefix above)
		adminHandler := handler.NewAdminHandler(settingsService, userRepo)
		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.Authenticator(authService))
			admin.Group(func(g chi.Router) {
				g.Use(middleware.AdminOnly)
				adminHandler.RegisterRoutes(g)
			})
			admin.Group(func(g chi.Router) {
				g.Use(middleware.OwnerOnly)
				adminHandler.RegisterOwnerRoutes(g)
			})
		})
	})

	return r
}
