// Package httpapi is the HTTP integration surface of spec.md §6.2: a
// thin net/http.ServeMux wrapping a kreuzberg.Core, grounded on the
// teacher's own HTTP servers (internal/cli/indexer_start.go,
// internal/cli/embed.go) — http.NewServeMux plus a plain *http.Server,
// no router library, since none is wired in the teacher's go.mod for
// this purpose either.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/kreuzberg-go/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/config"
)

// Server serves spec.md §6.2's routes over a kreuzberg.Core.
type Server struct {
	core *kreuzberg.Core
	cfg  *config.ServerConfig
	mux  *http.ServeMux
}

// NewServer builds a Server routing every request through core using
// cfg's body-size and CORS settings.
func NewServer(core *kreuzberg.Core, cfg *config.ServerConfig) *Server {
	if cfg == nil {
		cfg = &config.Default().Server
	}
	s := &Server{core: core, cfg: cfg, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /extract", s.handleExtract)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /info", s.handleInfo)
	s.mux.HandleFunc("GET /cache/stats", s.handleCacheStats)
	s.mux.HandleFunc("DELETE /cache/clear", s.handleCacheClear)
}

// Handler returns the fully wrapped request handler (CORS, body-size
// limit) ready to hand to an *http.Server.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.withBodyLimit(s.mux))
}

// withBodyLimit caps the request body at cfg.MaxRequestBodyBytes
// (spec.md §6.2), the same http.MaxBytesReader idiom net/http's own
// docs recommend for untrusted upload endpoints.
func (s *Server) withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.MaxRequestBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// withCORS applies spec.md §6.2's CORS policy: an empty origin list is
// permissive (reflects the request's Origin, logging a warning once per
// process so operators notice they haven't locked it down), a
// non-empty list only reflects an allowed origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	if len(s.cfg.CORSOrigins) == 0 {
		warnPermissiveCORSOnce()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.cfg.CORSOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.CORSOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

var warnedPermissiveCORS bool

func warnPermissiveCORSOnce() {
	if warnedPermissiveCORS {
		return
	}
	warnedPermissiveCORS = true
	log.Print("httpapi: KREUZBERG_CORS_ORIGINS unset, serving with permissive CORS")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encoding response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
