// Package web provides the HTTP server and screens of the console.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/config"
	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/csvimport"
	"github.com/JonMunkholm/ecole-console/internal/session"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Backend is the remote API as seen by the screens. *api.Client
// satisfies it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	PlatformStats(ctx context.Context) (*api.PlatformStats, error)
	SchoolStats(ctx context.Context) (*api.SchoolStats, error)

	ListSchools(ctx context.Context, search string) ([]api.School, error)
	GetSchool(ctx context.Context, id string) (*api.School, error)
	CreateSchool(ctx context.Context, s api.School) (*api.School, error)
	UpdateSchool(ctx context.Context, id string, s api.School) (*api.School, error)
	DeleteSchool(ctx context.Context, id string) error

	ListStudents(ctx context.Context, class string) ([]api.Student, error)
	GetStudent(ctx context.Context, id string) (*api.Student, error)
	CreateStudent(ctx context.Context, s api.Student) (*api.Student, error)
	UpdateStudent(ctx context.Context, id string, s api.Student) (*api.Student, error)
	DeleteStudent(ctx context.Context, id string) error

	ListContents(ctx context.Context) ([]api.Content, error)
	GetContent(ctx context.Context, id string) (*api.Content, error)
	CreateContent(ctx context.Context, c api.Content) (*api.Content, error)
	UpdateContent(ctx context.Context, id string, c api.Content) (*api.Content, error)
	DeleteContent(ctx context.Context, id string) error
	BulkCreateContent(ctx context.Context, records []csvimport.Record) (*api.BulkResult, error)

	ListContacts(ctx context.Context) ([]api.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	ListSubscriptions(ctx context.Context) ([]api.Subscription, error)
	CurrentSubscription(ctx context.Context) (*api.Subscription, error)
	ListPlans(ctx context.Context) ([]api.Plan, error)
	ListInvoices(ctx context.Context) ([]api.Invoice, error)
}

// Server is the HTTP server for the console.
type Server struct {
	cfg      *config.Config
	backend  Backend
	imports  *core.Service
	sessions *session.Manager
	forms    *formValidator
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the router. imports must share backend as its
// submitter so imported contents land in the same API.
func NewServer(cfg *config.Config, backend Backend, imports *core.Service, sessions *session.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		backend:  backend,
		imports:  imports,
		sessions: sessions,
		forms:    newFormValidator(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware(s))
	}

	if len(s.cfg.Security.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   s.cfg.Security.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request"},
			AllowCredentials: true,
			MaxAge:           300,
		})
		s.router.Use(c.Handler)
	}
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Server.Metrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}
	s.router.Get("/login", s.handleLoginPage)
	s.router.Post("/login", s.handleLogin)
	s.router.Post("/logout", s.handleLogout)

	// Imports get their own, stricter budget on top of the global one.
	var importMW []func(http.Handler) http.Handler
	if s.cfg.Rate.Enabled && s.cfg.Rate.ImportLimit > 0 {
		importMW = append(importMW, newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute).middleware(s))
	}

	s.router.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(s.sessions))
		r.Use(mw.RequireRole)

		r.Get("/", s.handleHome)

		// Super admin
		r.Get("/super/dashboard", s.handleSuperDashboard)
		r.Get("/super/schools", s.handleSchools)
		r.Post("/super/schools", s.handleCreateSchool)
		r.Get("/super/schools/{id}", s.handleEditSchool)
		r.Post("/super/schools/{id}", s.handleUpdateSchool)
		r.Post("/super/schools/{id}/delete", s.handleDeleteSchool)
		r.Get("/super/contacts", s.handleContacts)
		r.Post("/super/contacts/{id}/delete", s.handleDeleteContact)
		r.Get("/super/subscriptions", s.handleSubscriptions)

		// School admin
		r.Get("/admin/dashboard", s.handleAdminDashboard)
		r.Get("/admin/students", s.handleStudents)
		r.Post("/admin/students", s.handleCreateStudent)
		r.Get("/admin/students/{id}", s.handleEditStudent)
		r.Post("/admin/students/{id}", s.handleUpdateStudent)
		r.Post("/admin/students/{id}/delete", s.handleDeleteStudent)
		r.Get("/admin/contents", s.handleContents)
		r.Post("/admin/contents", s.handleCreateContent)
		r.Get("/admin/contents/export.xlsx", s.handleExportContents)
		r.Get("/admin/contents/import-log", s.handleImportLog)
		r.With(importMW...).Post("/admin/contents/import", s.handleImport)
		r.Get("/admin/contents/{id}", s.handleEditContent)
		r.Post("/admin/contents/{id}", s.handleUpdateContent)
		r.Post("/admin/contents/{id}/delete", s.handleDeleteContent)
		r.Get("/admin/subscription", s.handleSubscription)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'")
		}
		next.ServeHTTP(w, r)
	})
}
