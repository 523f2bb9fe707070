package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/interfaces"
)

// SchedulerHandler exposes scheduled job management
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// ListJobsHandler handles GET /api/jobs - all registered jobs with status
func (h *SchedulerHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.GetAllJobStatuses(),
	})
}

// JobActionHandler handles POST /api/jobs/{name}/trigger|enable|disable
func (h *SchedulerHandler) JobActionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/jobs/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Expected /api/jobs/{name}/{action}")
		return
	}
	name, action := parts[0], parts[1]

	var err error
	switch action {
	case "trigger":
		err = h.scheduler.TriggerJobNow(name)
	case "enable":
		err = h.scheduler.EnableJob(name)
	case "disable":
		err = h.scheduler.DisableJob(name)
	default:
		WriteError(w, http.StatusBadRequest, "Unknown job action: "+action)
		return
	}

	if err != nil {
		h.logger.Error().Err(err).Str("job_name", name).Str("action", action).Msg("Job action failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(w, "Job "+action+" accepted for "+name)
}
