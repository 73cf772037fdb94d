// Package api provides the HTTP API server and handlers for the Shelfmark application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/media/images"
	"github.com/shelfmark/shelfmark-server/internal/ratelimit"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// Credential endpoints are throttled per client IP.
const (
	authRateRPS   = 5
	authRateBurst = 20
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	authService    *service.AuthService
	profileService *service.ProfileService
	libraryService *service.LibraryService
	catalog        *catalog.Client
	pictures       *images.Storage
	router         *chi.Mux
	api            huma.API
	authLimiter    *ratelimit.KeyedRateLimiter
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, authService *service.AuthService, profileService *service.ProfileService, libraryService *service.LibraryService, catalogClient *catalog.Client, pictures *images.Storage, logger *slog.Logger) *Server {
	s := &Server{
		store:          st,
		authService:    authService,
		profileService: profileService,
		libraryService: libraryService,
		catalog:        catalogClient,
		pictures:       pictures,
		router:         chi.NewRouter(),
		authLimiter:    ratelimit.New(authRateRPS, authRateBurst),
		logger:         logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Shelfmark API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerProfileRoutes()
	s.registerShelfRoutes()
	s.registerCatalogRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(authRateLimit(s.authLimiter, s.logger))
	s.router.Use(authMiddleware(s.authService))
}
