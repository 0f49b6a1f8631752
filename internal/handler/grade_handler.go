package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limkokwing/registry-sync/internal/service"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/response"
)

type gradeRecalculator interface {
	Preview(ctx context.Context, req service.RecalculateRequest) ([]service.GradeChange, error)
	Apply(ctx context.Context, req service.ApplyGradesRequest) (*service.BatchResult, error)
}

// GradeHandler previews and applies grade recalculations. Both steps
// answer inline so an operator can review the preview before applying.
type GradeHandler struct {
	grades gradeRecalculator
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades gradeRecalculator) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Preview computes weighted totals without writing anything.
func (h *GradeHandler) Preview(c *gin.Context) {
	var req service.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	changes, err := h.grades.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, changes)
}

// Apply writes a confirmed set of grade changes to the local store.
func (h *GradeHandler) Apply(c *gin.Context) {
	var req service.ApplyGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.grades.Apply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
