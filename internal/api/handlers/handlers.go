// Package handlers exposes a session over a JSON HTTP API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/zenith/internal/api/middleware"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/gcsuploader"
	"github.com/dvloznov/zenith/internal/session"
)

// maxBodyBytes bounds JSON bodies and raw receipt uploads.
const maxBodyBytes = 10 << 20

// Handler serves the zenith API for one session.
type Handler struct {
	session  *session.Session
	receipts gcsuploader.ReceiptStore
	log      zerolog.Logger
	now      func() time.Time
}

// New creates a Handler. receipts may be nil, in which case scanning by
// gs:// URI is unavailable.
func New(s *session.Session, receipts gcsuploader.ReceiptStore, log zerolog.Logger) *Handler {
	return &Handler{session: s, receipts: receipts, log: log, now: time.Now}
}

// Register adds every route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/transactions", h.CreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.DeleteTransaction)
	mux.HandleFunc("POST /api/transactions/suggest-category", h.SuggestCategory)
	mux.HandleFunc("POST /api/receipts/scan", h.ScanReceipt)

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/snapshot", h.GetSnapshot)
	mux.HandleFunc("GET /api/points", h.GetPoints)

	mux.HandleFunc("GET /api/goals", h.ListGoals)
	mux.HandleFunc("POST /api/goals", h.CreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", h.GetGoal)
	mux.HandleFunc("POST /api/goals/{id}/plan", h.RequestPlan)
	mux.HandleFunc("POST /api/goals/suggest", h.SuggestGoals)
	mux.HandleFunc("POST /api/scenario", h.AnalyzeScenario)

	mux.HandleFunc("GET /api/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.GetJob)

	mux.HandleFunc("GET /health", h.Health)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGatewayFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeErr(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		h.log.Error().Err(err).Str("op", op).Msg("Request failed")
	} else {
		h.log.Debug().Err(err).Str("op", op).Msg("Request rejected")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	middleware.WriteError(w, status, msg)
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
