package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Router struct {
	router   *chi.Mux
	svc      *Service
	detailed bool
}

// NewRouter serves the health report on path. With detailed set every report is detailed,
// otherwise only requests with ?detailed=1 or ?detailed=true are.
func NewRouter(svc *Service, path string, detailed bool) *Router {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	r := chi.NewRouter()
	router := &Router{router: r, svc: svc, detailed: detailed}

	r.Use(setContentTypeJSON)
	r.Get(path, router.handleHealth)

	return router
}

func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, req)
	})
}

func isDetailed(req *http.Request) bool {
	switch req.URL.Query().Get("detailed") {
	case "1", "true":
		return true
	default:
		return false
	}
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	report := r.svc.Check(req.Context(), r.detailed || isDetailed(req))

	w.WriteHeader(report.Status)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		slog.ErrorContext(req.Context(), "writing health response", "error", err)
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
