package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/service"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/response"
)

type semesterWriter interface {
	CreateSemester(ctx context.Context, req service.CreateSemesterRequest) (*models.StudentSemester, error)
	EditSemester(ctx context.Context, req service.EditSemesterRequest) (*models.StudentSemester, error)
}

type moduleRegistrar interface {
	AddModule(ctx context.Context, req service.AddModuleRequest) (*models.StudentModule, error)
}

// SemesterHandler creates and edits student semesters on the CMS.
type SemesterHandler struct {
	semesters semesterWriter
	modules   moduleRegistrar
}

// NewSemesterHandler constructs SemesterHandler.
func NewSemesterHandler(semesters semesterWriter, modules moduleRegistrar) *SemesterHandler {
	return &SemesterHandler{semesters: semesters, modules: modules}
}

// Create registers a new semester under a program.
func (h *SemesterHandler) Create(c *gin.Context) {
	var req service.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	semester, err := h.semesters.CreateSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, semester)
}

// Edit updates an existing semester.
func (h *SemesterHandler) Edit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semester id"))
		return
	}
	var req service.EditSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.SemesterID = id
	semester, err := h.semesters.EditSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester)
}

// AddModule registers a curriculum module under a semester.
func (h *SemesterHandler) AddModule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semester id"))
		return
	}
	var req service.AddModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.SemesterID = id
	module, err := h.modules.AddModule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, module)
}
