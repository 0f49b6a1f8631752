package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/limkokwing/registry-sync/internal/dto"
	"github.com/limkokwing/registry-sync/internal/service"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/jobs"
	"github.com/limkokwing/registry-sync/pkg/response"
)

// EnrollmentHandler turns approved registration requests into CMS
// enrollments. The flow makes several CMS round-trips per module, so
// it always runs as a job.
type EnrollmentHandler struct {
	enrollments requestEnroller
	runner      *jobs.Runner
}

type requestEnroller interface {
	EnrollRequest(ctx context.Context, requestID int) (*service.EnrollSummary, error)
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments requestEnroller, runner *jobs.Runner) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, runner: runner}
}

// Enroll submits an enrollment run for one approved request.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request id"))
		return
	}

	id := h.runner.Submit("enroll-request", func(ctx context.Context, run *jobs.Run) error {
		summary, err := h.enrollments.EnrollRequest(ctx, requestID)
		if err != nil {
			return err
		}
		for _, msg := range summary.Errors {
			run.AddError(msg)
		}
		for i := 0; i < summary.Added+summary.Skipped; i++ {
			run.AddSuccess()
		}
		return nil
	})
	response.Accepted(c, dto.JobSubmitted{JobID: id, Type: "enroll-request"})
}
