package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/ticketlens/pkg/usecase"
	"github.com/secmon-lab/ticketlens/pkg/utils/logging"
	"github.com/secmon-lab/ticketlens/pkg/utils/safe"
)

// Server is the thin request layer over the embedding pipeline.
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases

	minQueryLength int
	defaultLimit   int
	maxLimit       int
}

type Options func(*Server)

// WithSearchLimits sets the default and maximum result counts accepted by
// the search endpoints.
func WithSearchLimits(defaultLimit, maxLimit int) Options {
	return func(s *Server) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithMinQueryLength sets the minimum accepted query length.
func WithMinQueryLength(n int) Options {
	return func(s *Server) {
		if n > 0 {
			s.minQueryLength = n
		}
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		uc:             uc,
		minQueryLength: 3,
		defaultLimit:   5,
		maxLimit:       20,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/test-connection", s.handleTestConnection)
		r.Post("/embeddings", s.handleGenerateEmbedding)
		r.Post("/embeddings/ticket", s.handleGenerateTicketEmbedding)
		r.Post("/embeddings/store", s.handleStoreEmbedding)
		r.Post("/search", s.handleSearch)
		r.Post("/context", s.handleContext)
		r.Post("/reindex", s.handleReindex)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func respondJSON(r *http.Request, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	data, err := json.Marshal(v)
	if err != nil {
		logging.From(r.Context()).Error("failed to marshal response", "error", err)
		return
	}
	safe.Write(r.Context(), w, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(r, w, http.StatusOK, map[string]string{"status": "ok"})
}
