package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limkokwing/registry-sync/internal/dto"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/jobs"
	"github.com/limkokwing/registry-sync/pkg/response"
)

// JobHandler exposes the runner's run history.
type JobHandler struct {
	runner *jobs.Runner
}

// NewJobHandler constructs JobHandler.
func NewJobHandler(runner *jobs.Runner) *JobHandler {
	return &JobHandler{runner: runner}
}

// List returns every tracked run, newest first.
func (h *JobHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.JobList{Jobs: h.runner.List()})
}

// Get returns one run by id.
func (h *JobHandler) Get(c *gin.Context) {
	snapshot, ok := h.runner.Get(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound, "job not found"))
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// Cancel stops a running job.
func (h *JobHandler) Cancel(c *gin.Context) {
	if err := h.runner.Cancel(c.Param("id")); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "job not found"))
		return
	}
	response.NoContent(c)
}
