package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 64 << 10

// NewRouter exposes the same endpoints as Handle over plain net/http, for local runs.
func NewRouter(h *Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(requestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"support-agent"}`))
	})

	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/question", func(w http.ResponseWriter, req *http.Request) {
			corrID := correlationID(flattenHeaders(req.Header))
			body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
			if err != nil {
				writeResult(w, corrID, invalidQuestion())
				return
			}
			logger := h.logger.With("correlation_id", corrID)
			writeResult(w, corrID, h.ask(req.Context(), logger, body))
		})
		r.Get("/interactions/{id}", func(w http.ResponseWriter, req *http.Request) {
			corrID := correlationID(flattenHeaders(req.Header))
			logger := h.logger.With("correlation_id", corrID)
			writeResult(w, corrID, h.interaction(req.Context(), logger, chi.URLParam(req, "id")))
		})
	})

	return r
}

func writeResult(w http.ResponseWriter, corrID string, res result) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(correlationHeader, corrID)
	w.WriteHeader(res.status)
	_ = json.NewEncoder(w).Encode(res.body)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
