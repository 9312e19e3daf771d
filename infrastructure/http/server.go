// Package http wires the chi router, the bearer-token authentication
// middleware and the role-gated API routes.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fichaflow/api/auth"
	"fichaflow/api/shared/appctx"
	"fichaflow/api/shared/web"
	"fichaflow/infrastructure/audit"
	"fichaflow/infrastructure/cache"
	"fichaflow/infrastructure/rbac"
	"fichaflow/infrastructure/sqlite"
	"fichaflow/models"
)

var ShutdownTimeout = 2 * time.Second

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB           *sqlite.DB
	SessionCache *cache.SessionCache
	UserCache    *cache.UserCache
	Rbac         *rbac.Rbac
	Audit        *audit.Service
}

// NewServer creates a new http server.
func NewServer(addr string, db *sqlite.DB, sessionCache *cache.SessionCache, userCache *cache.UserCache, r *rbac.Rbac, auditSvc *audit.Service) *Server {
	s := &Server{
		Addr:         addr,
		router:       chi.NewRouter(),
		DB:           db,
		SessionCache: sessionCache,
		UserCache:    userCache,
		Rbac:         r,
		Audit:        auditSvc,
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": environment(),
		})
	})

	s.router.Post("/api/auth/login", auth.LoginHandler(s.DB, s.SessionCache, s.UserCache))

	s.router.Group(func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		r.Get("/api/auth/verify", auth.VerifyHandler())
		r.Post("/api/auth/logout", auth.LogoutHandler(s.DB, s.SessionCache))
		s.RegisterAPIRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// AuthenticateMiddleware resolves the bearer token to a session and
// applies the RBAC check for the requested route.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			web.Error(w, http.StatusUnauthorized, "token de acceso requerido")
			return
		}

		session, ok := s.resolveSession(r.Context(), token)
		if !ok {
			web.Error(w, http.StatusUnauthorized, "token inválido")
			return
		}

		if session.Expired() {
			s.SessionCache.Delete(token)
			if err := auth.DeleteSessionByToken(r.Context(), s.DB, token); err != nil {
				slog.Error("cannot delete expired session", slog.Any("err", err))
			}
			web.Error(w, http.StatusUnauthorized, "token expirado")
			return
		}

		// verify/logout are open to any authenticated user; everything
		// else goes through the role's registered resources.
		path := r.URL.Path
		if path != "/api/auth/verify" && path != "/api/auth/logout" {
			if !s.Rbac.Allowed(session.User.Rol, path, r.Method) {
				web.Error(w, http.StatusForbidden, "no tienes permisos para esta acción")
				return
			}
		}

		ctx := appctx.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func (s *Server) resolveSession(ctx context.Context, token string) (models.Session, bool) {
	if cached, found := s.SessionCache.Find(token); found {
		return cached, true
	}

	dbSession, err := auth.LoadSessionByToken(ctx, s.DB, token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("load session from db failed", slog.Any("err", err))
		}
		return models.Session{}, false
	}

	s.SessionCache.Add(dbSession)
	s.UserCache.Add(dbSession.User.Email, dbSession.User)
	return dbSession, true
}

func environment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
