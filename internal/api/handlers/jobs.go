package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dvloznov/zenith/internal/api/middleware"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/jobs"
)

// GetJob handles GET /api/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.session.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, "GetJob", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs?goal_id=&status=&limit=&offset=
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		GoalID: query.Get("goal_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	var err error
	if filter.Limit, err = intParam(query.Get("limit")); err != nil {
		h.writeErr(w, "ListJobs", err)
		return
	}
	if filter.Offset, err = intParam(query.Get("offset")); err != nil {
		h.writeErr(w, "ListJobs", err)
		return
	}

	list, err := h.session.Jobs(r.Context(), filter)
	if err != nil {
		h.writeErr(w, "ListJobs", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  list,
		"count": len(list),
	})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: expected a non-negative integer, got %q", domain.ErrInvalidInput, s)
	}
	return n, nil
}
