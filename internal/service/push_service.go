package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms"
	"github.com/limkokwing/registry-sync/internal/cms/form"
	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type formFetcher interface {
	Document(ctx context.Context, pageURL string) (*goquery.Document, error)
}

type formPusher interface {
	PushForm(ctx context.Context, pageURL string, payload url.Values) (string, error)
}

type moduleReader interface {
	FindByID(ctx context.Context, id int) (*models.StudentModule, error)
}

type semesterReader interface {
	FindByID(ctx context.Context, id int) (*models.StudentSemester, error)
}

type programReader interface {
	FindByID(ctx context.Context, id int) (*models.StudentProgram, error)
}

type pushScraper interface {
	Student(ctx context.Context, stdNo int) (*scraper.StudentRecord, error)
	Module(ctx context.Context, moduleID int) (*scraper.ModuleRecord, error)
}

type pushReconciler interface {
	ReconcileStudent(ctx context.Context, st *scraper.StudentRecord, personal *scraper.PersonalRecord) error
	ReconcileModule(ctx context.Context, semesterID, structureID int, rec *scraper.ModuleRecord) (*models.StudentModule, error)
}

// PushStudentRequest overlays field changes onto the student edit form.
// Keys are CMS form field names; a nil value removes the field from the
// submission.
type PushStudentRequest struct {
	StdNo  int                `json:"std_no" validate:"required,gt=0"`
	Fields map[string]*string `json:"fields" validate:"required,min=1"`
}

// ModuleDiff is the set of student-module fields a push may change.
type ModuleDiff struct {
	Status           *string `json:"status,omitempty"`
	Credits          *int    `json:"credits,omitempty"`
	AlterMark        *string `json:"alter_mark,omitempty"`
	AlterGrade       *string `json:"alter_grade,omitempty"`
	SemesterModuleID *int    `json:"semester_module_id,omitempty"`
}

// PushModuleRequest applies a diff to one student-module.
type PushModuleRequest struct {
	ModuleID int `json:"module_id" validate:"required,gt=0"`
	ModuleDiff
}

// BulkPushModulesRequest applies one diff to many student-modules.
type BulkPushModulesRequest struct {
	ModuleIDs []int `json:"module_ids" validate:"required,min=1,dive,gt=0"`
	ModuleDiff
}

// PushService writes local edits back to the CMS. Every push preserves
// the full form payload, overlays the diff, submits, verifies the
// success marker, then re-scrapes the entity so the store reflects
// whatever the CMS actually saved.
type PushService struct {
	fetch     formFetcher
	push      formPusher
	urls      cms.URLs
	scrape    pushScraper
	reconcile pushReconciler
	modules   moduleReader
	semesters semesterReader
	programs  programReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPushService constructs PushService.
func NewPushService(fetch formFetcher, push formPusher, urls cms.URLs, scrape pushScraper, reconcile pushReconciler,
	modules moduleReader, semesters semesterReader, programs programReader,
	validate *validator.Validate, logger *zap.Logger) *PushService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushService{fetch: fetch, push: push, urls: urls, scrape: scrape, reconcile: reconcile,
		modules: modules, semesters: semesters, programs: programs, validator: validate, logger: logger}
}

// PushStudent submits field changes to the student edit form and
// refreshes the local row from the CMS afterwards.
func (s *PushService) PushStudent(ctx context.Context, req PushStudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid push request")
	}

	editURL := s.urls.StudentEdit(req.StdNo)
	doc, err := s.fetch.Document(ctx, editURL)
	if err != nil {
		return err
	}
	payload, err := form.FromDocument(doc, studentEditForm)
	if err != nil {
		return err
	}
	form.Overlay(payload, req.Fields)
	payload.Set("a_edit", "U")

	if _, err := s.push.PushForm(ctx, editURL, payload); err != nil {
		return err
	}

	rec, err := s.scrape.Student(ctx, req.StdNo)
	if err != nil {
		return err
	}
	return s.reconcile.ReconcileStudent(ctx, rec, nil)
}

// PushModule submits a diff to the module edit form. The module's
// semester and program must already exist locally; they anchor the
// post-push reconcile.
func (s *PushService) PushModule(ctx context.Context, req PushModuleRequest) (*models.StudentModule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid push request")
	}

	existing, err := s.modules.FindByID(ctx, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"student module "+strconv.Itoa(req.ModuleID)+" not in local store")
	}
	semester, err := s.semesters.FindByID(ctx, existing.StudentSemesterID)
	if err != nil {
		return nil, err
	}
	if semester == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "semester missing for module")
	}
	program, err := s.programs.FindByID(ctx, semester.StudentProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "program missing for module")
	}

	editURL := s.urls.ModuleEdit(req.ModuleID)
	doc, err := s.fetch.Document(ctx, editURL)
	if err != nil {
		return nil, err
	}
	payload, err := form.FromDocument(doc, moduleEditForm)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{"a_edit": form.Set("U")}
	if req.Status != nil {
		overrides["x_StdModStatCode"] = form.Set(*req.Status)
	}
	if req.Credits != nil {
		overrides["x_StdModCredits"] = form.Set(strconv.Itoa(*req.Credits))
	}
	if req.AlterMark != nil {
		overrides["x_AlterMark"] = form.Set(*req.AlterMark)
	}
	if req.AlterGrade != nil {
		overrides["x_AlterGrade"] = form.Set(*req.AlterGrade)
	}
	if req.SemesterModuleID != nil {
		overrides["x_SemModuleID"] = form.Set(strconv.Itoa(*req.SemesterModuleID))
	}
	form.Overlay(payload, overrides)

	if _, err := s.push.PushForm(ctx, editURL, payload); err != nil {
		return nil, err
	}

	rec, err := s.scrape.Module(ctx, req.ModuleID)
	if err != nil {
		return nil, err
	}
	return s.reconcile.ReconcileModule(ctx, semester.ID, program.StructureID, rec)
}

// BulkPushModules applies one diff across selected student-modules,
// reporting per-item progress. A failed item does not stop the batch.
func (s *PushService) BulkPushModules(ctx context.Context, req BulkPushModulesRequest, progress Progress) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid push request")
	}

	result := &BatchResult{}
	progress.report("modules", 0, len(req.ModuleIDs))

	for i, moduleID := range req.ModuleIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.PushModule(ctx, PushModuleRequest{ModuleID: moduleID, ModuleDiff: req.ModuleDiff}); err != nil {
			result.fail(moduleID, err)
			s.logger.Warn("bulk module push failed", zap.Int("module_id", moduleID), zap.Error(err))
		} else {
			result.Success++
		}
		progress.report("modules", i+1, len(req.ModuleIDs))
	}
	return result, nil
}
