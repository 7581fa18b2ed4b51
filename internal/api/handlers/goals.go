package handlers

import (
	"net/http"
	"strconv"

	"github.com/dvloznov/zenith/internal/api/middleware"
	"github.com/dvloznov/zenith/internal/domain"
)

// ListGoals handles GET /api/goals
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals := h.session.Goals()
	if goals == nil {
		goals = []domain.Goal{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"goals": goals,
		"count": len(goals),
	})
}

// CreateGoal handles POST /api/goals
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		TargetAmount string `json:"target_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, "CreateGoal", err)
		return
	}
	target, err := domain.ParseAmount(req.TargetAmount)
	if err != nil {
		h.writeErr(w, "CreateGoal", err)
		return
	}

	goal, change, err := h.session.AddGoal(req.Name, target)
	if err != nil {
		h.writeErr(w, "CreateGoal", err)
		return
	}

	h.log.Info().Str("goal_id", goal.ID).Bool("completed", goal.IsCompleted).Msg("Goal added")
	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"goal":   goal,
		"change": change,
	})
}

// GetGoal handles GET /api/goals/{id}
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.session.Goal(r.PathValue("id"))
	if err != nil {
		h.writeErr(w, "GetGoal", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, goal)
}

// RequestPlan handles POST /api/goals/{id}/plan. The plan is generated in
// the background; ?wait=true blocks until the request finishes.
func (h *Handler) RequestPlan(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")

	task, err := h.session.RequestPlan(r.Context(), goalID)
	if err != nil {
		h.writeErr(w, "RequestPlan", err)
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		middleware.WriteJSON(w, http.StatusAccepted, map[string]any{
			"job_id":     task.JobID,
			"goal_id":    task.GoalID,
			"generation": task.Generation,
			"kind":       task.Kind,
			"status":     domain.PlanStatusGenerating,
		})
		return
	}

	res, err := task.Wait(r.Context())
	if err != nil {
		// the client went away; the plan still commits in the background
		h.log.Debug().Err(err).Str("goal_id", goalID).Msg("Stopped waiting for plan")
		return
	}
	goal, err := h.session.Goal(goalID)
	if err != nil {
		h.writeErr(w, "RequestPlan", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"result": res,
		"goal":   goal,
	})
}

// SuggestGoals handles POST /api/goals/suggest
func (h *Handler) SuggestGoals(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.session.SuggestGoals(r.Context())
	if err != nil {
		h.writeErr(w, "SuggestGoals", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// AnalyzeScenario handles POST /api/scenario
func (h *Handler) AnalyzeScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, "AnalyzeScenario", err)
		return
	}

	analysis, err := h.session.AnalyzeScenario(r.Context(), req.Scenario)
	if err != nil {
		h.writeErr(w, "AnalyzeScenario", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
