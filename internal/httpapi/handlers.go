package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/kreuzberg-go/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/ffi"
	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/mimetype"
)

const multipartMemoryThreshold = 32 << 20 // buffer up to 32MiB in memory before spilling to disk

// handleExtract implements POST /extract (spec.md §6.2): a multipart
// request with a "file" part and an optional "config" part holding the
// §6.1 JSON config schema (the same wire schema the C ABI's
// kreuzberg_config_from_json accepts, reused here rather than inventing
// a second config format for the HTTP surface).
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryThreshold); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parsing multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing \"file\" part: %w", err))
		return
	}
	defer file.Close()

	limit := s.cfg.MaxMultipartFieldBytes
	if limit <= 0 {
		limit = multipartMemoryThreshold
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading \"file\" part: %w", err))
		return
	}
	if int64(len(data)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("file part exceeds the %s limit", humanize.Bytes(uint64(limit))))
		return
	}

	cfg := kreuzberg.DefaultConfig()
	if raw := r.FormValue("config"); raw != "" {
		cfg, err = ffi.ConfigFromJSON([]byte(raw))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime, err = mimetype.Detect(header.Filename, data, true)
		if err != nil {
			writeError(w, http.StatusUnsupportedMediaType, err)
			return
		}
	}

	result, err := s.core.Extract(r.Context(), data, mime, cfg)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// statusForError maps a kerr.Kind to the HTTP status spec.md §6.2
// readers would expect it to surface as.
func statusForError(err error) int {
	switch kerr.KindOf(err) {
	case kerr.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case kerr.KindValidation:
		return http.StatusBadRequest
	case kerr.KindMissingDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth implements GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type infoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// handleInfo implements GET /info.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{Name: "kreuzberg", Version: resolvedVersion()})
}

// handleCacheStats implements GET /cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.core.CacheStats())
}

// handleCacheClear implements DELETE /cache/clear.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.core.ClearCache(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
