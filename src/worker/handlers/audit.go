package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"brokerage/src/models"
	"brokerage/src/utils"
	"brokerage/src/worker/controllers"
)

type auditResponse struct {
	Violations []models.InvariantViolation `json:"violations"`
}

type scheduleRequest struct {
	CronSpec string `json:"cron_spec"`
}

type scheduleResponse struct {
	Job     string    `json:"job"`
	NextRun time.Time `json:"next_run"`
}

func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	violations, err := h.Controller.RunAudit(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	if violations == nil {
		violations = []models.InvariantViolation{}
	}

	h.respond(w, r, auditResponse{Violations: violations}, http.StatusOK)
}

func (h *Handler) ScheduleAudit(w http.ResponseWriter, r *http.Request) {
	var body scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CronSpec == "" {
		h.HandleErrors(w, utils.BadRequest("cron_spec is required"))
		return
	}

	next, err := h.Controller.ScheduleAudit(body.CronSpec)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}

	h.respond(w, r, scheduleResponse{Job: controllers.AuditJob, NextRun: next}, http.StatusOK)
}
