package handlers

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status string               `json:"status"`
	Jobs   map[string]time.Time `json:"jobs"`
}

// Healthcheck reports the next run of every scheduled job.
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	jobs := map[string]time.Time{}
	for name, task := range h.Controller.GetSchedulers() {
		jobs[name] = task.Next()
	}
	h.respond(w, r, healthResponse{Status: "Im alive!", Jobs: jobs}, http.StatusOK)
}
