// Package httpapi binds the review pipeline to HTTP. Handlers are a thin
// layer over pkg/session and the workbook builders; all responses are JSON
// except the xlsx exports, served as attachments.
package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/M00N69/NEOREVIEW/pkg/metrics"
	"github.com/M00N69/NEOREVIEW/pkg/reftable"
	"github.com/M00N69/NEOREVIEW/pkg/session"
)

// TableFetcher downloads the requirement id table.
type TableFetcher interface {
	Fetch(ctx context.Context) (*reftable.Table, error)
}

// Server carries the handler dependencies. The requirement table is fetched
// lazily on the first session creation and kept for the process lifetime;
// a failed fetch is retried on the next creation.
type Server struct {
	store   *session.Store
	fetcher TableFetcher
	logger  *zap.Logger

	mu    sync.Mutex
	table *reftable.Table
}

// New wires a Server. A nil logger is replaced by a no-op one.
func New(store *session.Store, fetcher TableFetcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, fetcher: fetcher, logger: logger}
}

// Routes mounts every endpoint on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Post("/resume", s.resumeSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/profile", s.getProfile)
			r.Get("/checklist", s.getChecklist)
			r.Get("/nonconformities", s.getNonConformities)
			r.Get("/statistics", s.getStatistics)
			r.Put("/commentary/profile/{label}", s.putProfileComment)
			r.Put("/commentary/checklist/{num}", s.putChecklistComment)
			r.Put("/commentary/nonconformities/{num}", s.putActionComment)
			r.Get("/export/worksave", s.exportWorkSave)
			r.Get("/export/report", s.exportReport)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// requirementTable returns the cached id table, fetching it on first use.
// Returns nil when the table cannot be obtained; the pipeline degrades to
// raw identifiers in that case.
func (s *Server) requirementTable(ctx context.Context) *reftable.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table != nil {
		return s.table
	}
	table, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.TableFetchTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Warn("requirement table unavailable", zap.Error(err))
		return nil
	}
	metrics.TableFetchTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	s.table = table
	return table
}
