package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limkokwing/registry-sync/internal/dto"
	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/service"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/jobs"
	"github.com/limkokwing/registry-sync/pkg/response"
)

type studentPuller interface {
	PullStudent(ctx context.Context, req service.PullStudentRequest, progress service.Progress) (*service.PullSummary, error)
}

type studentPusher interface {
	PushStudent(ctx context.Context, req service.PushStudentRequest) error
	PushModule(ctx context.Context, req service.PushModuleRequest) (*models.StudentModule, error)
	BulkPushModules(ctx context.Context, req service.BulkPushModulesRequest, progress service.Progress) (*service.BatchResult, error)
}

type structureChanger interface {
	BulkChangeStructure(ctx context.Context, req service.BulkChangeStructureRequest, progress service.Progress) (*service.BatchResult, error)
}

// SyncHandler exposes the pull and push orchestrations. Long-running
// flows are submitted to the runner and polled through the jobs API;
// single-entity pushes answer inline.
type SyncHandler struct {
	pull       studentPuller
	push       studentPusher
	structures structureChanger
	runner     *jobs.Runner
}

// NewSyncHandler constructs SyncHandler.
func NewSyncHandler(pull studentPuller, push studentPusher, structures structureChanger, runner *jobs.Runner) *SyncHandler {
	return &SyncHandler{pull: pull, push: push, structures: structures, runner: runner}
}

// PullStudent submits a student import run.
func (h *SyncHandler) PullStudent(c *gin.Context) {
	var req service.PullStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := h.runner.Submit("pull-student", func(ctx context.Context, run *jobs.Run) error {
		summary, err := h.pull.PullStudent(ctx, req, run.Report)
		if err != nil {
			return err
		}
		for _, msg := range summary.Errors {
			run.AddError(msg)
		}
		for i := 0; i < summary.Modules; i++ {
			run.AddSuccess()
		}
		return nil
	})
	response.Accepted(c, dto.JobSubmitted{JobID: id, Type: "pull-student"})
}

// PushStudent applies field edits to the CMS student record inline.
func (h *SyncHandler) PushStudent(c *gin.Context) {
	var req service.PushStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.push.PushStudent(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PushModule applies a diff to one student-module inline.
func (h *SyncHandler) PushModule(c *gin.Context) {
	var req service.PushModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.push.PushModule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module)
}

// BulkPushModules submits a batch module update run.
func (h *SyncHandler) BulkPushModules(c *gin.Context) {
	var req service.BulkPushModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := h.runner.Submit("bulk-push-modules", func(ctx context.Context, run *jobs.Run) error {
		result, err := h.push.BulkPushModules(ctx, req, run.Report)
		if err != nil {
			return err
		}
		recordBatch(run, result)
		return nil
	})
	response.Accepted(c, dto.JobSubmitted{JobID: id, Type: "bulk-push-modules"})
}

// ChangeStructure submits a bulk structure migration run.
func (h *SyncHandler) ChangeStructure(c *gin.Context) {
	var req service.BulkChangeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := h.runner.Submit("change-structure", func(ctx context.Context, run *jobs.Run) error {
		result, err := h.structures.BulkChangeStructure(ctx, req, run.Report)
		if err != nil {
			return err
		}
		recordBatch(run, result)
		return nil
	})
	response.Accepted(c, dto.JobSubmitted{JobID: id, Type: "change-structure"})
}

func recordBatch(run *jobs.Run, result *service.BatchResult) {
	for _, msg := range result.Errors {
		run.AddError(msg)
	}
	for i := 0; i < result.Success; i++ {
		run.AddSuccess()
	}
}
