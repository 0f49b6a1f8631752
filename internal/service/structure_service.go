package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms"
	"github.com/limkokwing/registry-sync/internal/cms/form"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type programStructureWriter interface {
	UpdateStructure(ctx context.Context, programID, structureID int) error
}

// BulkChangeStructureRequest repoints selected student-programs at a new
// curriculum structure.
type BulkChangeStructureRequest struct {
	ProgramIDs  []int `json:"program_ids" validate:"required,min=1,dive,gt=0"`
	StructureID int   `json:"structure_id" validate:"required,gt=0"`
}

// StructureService migrates student-programs between curriculum
// structures.
type StructureService struct {
	fetch     formFetcher
	push      formPusher
	urls      cms.URLs
	programs  programStructureWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStructureService constructs StructureService.
func NewStructureService(fetch formFetcher, push formPusher, urls cms.URLs, programs programStructureWriter,
	validate *validator.Validate, logger *zap.Logger) *StructureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructureService{fetch: fetch, push: push, urls: urls, programs: programs, validator: validate, logger: logger}
}

// BulkChangeStructure rewrites x_StructureID on each selected program's
// edit form, leaving the thirty-odd other fields exactly as the CMS
// holds them. The local row follows only after the CMS accepts.
func (s *StructureService) BulkChangeStructure(ctx context.Context, req BulkChangeStructureRequest, progress Progress) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change request")
	}

	result := &BatchResult{}
	progress.report("programs", 0, len(req.ProgramIDs))

	for i, programID := range req.ProgramIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.changeOne(ctx, programID, req.StructureID); err != nil {
			result.fail(programID, err)
			s.logger.Warn("structure change failed", zap.Int("program_id", programID), zap.Error(err))
		} else {
			result.Success++
		}
		progress.report("programs", i+1, len(req.ProgramIDs))
	}
	return result, nil
}

func (s *StructureService) changeOne(ctx context.Context, programID, structureID int) error {
	editURL := s.urls.ProgramEdit(programID)
	doc, err := s.fetch.Document(ctx, editURL)
	if err != nil {
		return err
	}
	payload, err := form.FromDocument(doc, programEditForm)
	if err != nil {
		return err
	}

	payload.Set("a_edit", "U")
	payload.Set("x_StructureID", strconv.Itoa(structureID))

	if _, err := s.push.PushForm(ctx, editURL, payload); err != nil {
		return err
	}
	return s.programs.UpdateStructure(ctx, programID, structureID)
}
