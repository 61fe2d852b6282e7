package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mux is the minimal interface required to register net/http handlers.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Routes lists the patterns Register installs.
type Routes struct {
	Page   string
	Submit string
	Health string
	Assets string
}

// Register installs the relay routes under basePath on mux.
func (s *Server) Register(mux Mux, basePath string) (Routes, error) {
	if mux == nil {
		return Routes{}, fmt.Errorf("server: missing mux")
	}
	base := strings.TrimRight(mountPath(basePath, "/"), "/")
	action := mountPath(basePath, s.opts.SubmitPath)
	assets := base + "/assets/"

	routes := Routes{
		Page:   "GET " + base + "/{$}",
		Submit: "POST " + action,
		Health: "GET " + base + "/healthz",
		Assets: "GET " + assets,
	}
	mux.Handle(routes.Page, s.handlePage(action))
	mux.Handle(routes.Submit, s.handleSubmit(action))
	mux.Handle(routes.Health, http.HandlerFunc(s.handleHealth))
	mux.Handle(routes.Assets, http.StripPrefix(assets, http.FileServerFS(s.opts.Assets)))
	return routes, nil
}

// Handler returns a mux with every route mounted at the root, wrapped in
// request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	_, _ = s.Register(mux, "/")
	return LogRequests(s.opts.Logger, mux)
}

// RegisterRoutes builds a Server from fns and installs it under basePath.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (*Server, Routes, error) {
	s, err := New(fns...)
	if err != nil {
		return nil, Routes{}, err
	}
	routes, err := s.Register(mux, basePath)
	if err != nil {
		return nil, Routes{}, err
	}
	return s, routes, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}

type loggerKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogRequests tags every request with an id and logs its outcome. Handlers
// reach the request-scoped logger through loggerFrom.
func LogRequests(logger *zap.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		log := logger.With(zap.String("request_id", id))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey{}, log)))

		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func loggerFrom(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if r != nil {
		if log, ok := r.Context().Value(loggerKey{}).(*zap.Logger); ok && log != nil {
			return log
		}
	}
	return fallback
}
