// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"fintech_sentiment/internal/app"
	"fintech_sentiment/internal/domain"
)

type Handlers struct {
	Q      *app.DashboardService
	A      *app.AnswerService
	AskRPS float64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/apps", h.listApps)
	s.mux.Get("/v1/apps/{app}/versions", h.listVersions)
	s.mux.Get("/v1/apps/{app}/dashboard", h.getDashboard)

	askRPS := h.AskRPS
	if askRPS <= 0 {
		askRPS = 5
	}
	s.mux.With(RateLimit(askRPS, int(askRPS)*2)).Post("/v1/ask", h.ask)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func appParam(r *http.Request) string {
	raw := chi.URLParam(r, "app")
	if dec, err := url.PathUnescape(raw); err == nil {
		return dec
	}
	return raw
}

func (h *Handlers) listApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Q.Apps(r.Context())
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
		return
	}
	writeJSON(w, map[string]any{"apps": apps})
}

func (h *Handlers) listVersions(w http.ResponseWriter, r *http.Request) {
	name := appParam(r)
	versions, err := h.Q.Versions(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "unknown app")
			return
		}
		writeProblem(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
		return
	}
	writeJSON(w, map[string]any{"app": name, "versions": versions})
}

func (h *Handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	name := appParam(r)
	version := r.URL.Query().Get("version")
	chart := strings.ToLower(r.URL.Query().Get("chart"))
	if chart == "" {
		chart = app.ChartAll
	}
	if !app.ValidChart(chart) {
		writeProblem(w, http.StatusBadRequest, "Invalid chart",
			"chart must be one of pie, bar, box, line, heatmap, all")
		return
	}

	d, err := h.Q.Dashboard(r.Context(), name, version, chart)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "unknown app")
			return
		}
		writeProblem(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
		return
	}

	etag, body := calcETagAndBody(d)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard body")
	}
}

func (h *Handlers) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid request", "body must be {\"question\": \"...\"}")
		return
	}
	answer, err := h.A.Answer(r.Context(), req.Question)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
		return
	}
	writeJSON(w, map[string]string{"answer": answer})
}
