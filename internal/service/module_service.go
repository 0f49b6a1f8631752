package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms"
	"github.com/limkokwing/registry-sync/internal/cms/form"
	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type moduleListScraper interface {
	ModuleListEntries(ctx context.Context, semesterID int) ([]scraper.ModuleListEntry, error)
	Module(ctx context.Context, moduleID int) (*scraper.ModuleRecord, error)
}

type moduleReconciler interface {
	ReconcileModule(ctx context.Context, semesterID, structureID int, rec *scraper.ModuleRecord) (*models.StudentModule, error)
}

type curriculumReader interface {
	SemesterModuleByID(ctx context.Context, id int) (*models.SemesterModule, error)
	ModuleByID(ctx context.Context, id int) (*models.Module, error)
}

// AddModuleRequest registers one curriculum module under a
// student-semester.
type AddModuleRequest struct {
	SemesterID       int    `json:"semester_id" validate:"required,gt=0"`
	SemesterModuleID int    `json:"semester_module_id" validate:"required,gt=0"`
	ModuleStatus     string `json:"module_status" validate:"required"`
	Credits          int    `json:"credits" validate:"required,gt=0"`

	// Amount is the fee figure the add form insists on; zero means the
	// configured default.
	Amount int `json:"amount,omitempty"`
}

// ModuleService adds curriculum modules to student-semesters on the CMS.
type ModuleService struct {
	fetch      formFetcher
	push       formPusher
	urls       cms.URLs
	scrape     moduleListScraper
	reconcile  moduleReconciler
	curriculum curriculumReader
	semesters  semesterReader
	programs   programReader
	amount     int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewModuleService constructs ModuleService. amount is the default fee
// figure for the add form.
func NewModuleService(fetch formFetcher, push formPusher, urls cms.URLs, scrape moduleListScraper, reconcile moduleReconciler,
	curriculum curriculumReader, semesters semesterReader, programs programReader, amount int,
	validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if amount <= 0 {
		amount = 1200
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{fetch: fetch, push: push, urls: urls, scrape: scrape, reconcile: reconcile,
		curriculum: curriculum, semesters: semesters, programs: programs, amount: amount, validator: validate, logger: logger}
}

// AddModule posts the composite take[] entry to the add form, verifies
// the module now appears in the semester's list, then re-scrapes the
// new student-module so the store picks up the CMS-assigned id.
func (s *ModuleService) AddModule(ctx context.Context, req AddModuleRequest) (*models.StudentModule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid add request")
	}

	semester, err := s.semesters.FindByID(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	if semester == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"semester "+strconv.Itoa(req.SemesterID)+" not in local store")
	}
	program, err := s.programs.FindByID(ctx, semester.StudentProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "program missing for semester")
	}

	semModule, err := s.curriculum.SemesterModuleByID(ctx, req.SemesterModuleID)
	if err != nil {
		return nil, err
	}
	if semModule == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrReference.Code, appErrors.ErrReference.Status,
			"semester module "+strconv.Itoa(req.SemesterModuleID)+" not in curriculum")
	}
	module, err := s.curriculum.ModuleByID(ctx, semModule.ModuleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrReference.Code, appErrors.ErrReference.Status,
			"module "+strconv.Itoa(semModule.ModuleID)+" not in curriculum")
	}

	// the list visit also scopes the add form to this semester on the
	// CMS side
	before, err := s.scrape.ModuleListEntries(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	for _, entry := range before {
		if entry.Code == module.Code {
			return nil, appErrors.Wrap(nil, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				module.Code+" already registered in semester "+strconv.Itoa(req.SemesterID))
		}
	}

	addURL := s.urls.ModuleAdd()
	doc, err := s.fetch.Document(ctx, addURL)
	if err != nil {
		return nil, err
	}
	payload, err := form.FromDocument(doc, moduleAddForm)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount <= 0 {
		amount = s.amount
	}
	payload.Set("Submit", "Add Modules")
	payload.Add("take[]", fmt.Sprintf("%d-%s-%d-%d", req.SemesterModuleID, req.ModuleStatus, req.Credits, amount))

	if _, err := s.push.PushForm(ctx, addURL, payload); err != nil {
		return nil, err
	}

	after, err := s.scrape.ModuleListEntries(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	moduleID := 0
	for _, entry := range after {
		if entry.Code == module.Code {
			moduleID = entry.ID
			break
		}
	}
	if moduleID == 0 {
		return nil, appErrors.Wrap(nil, appErrors.ErrCMSRejected.Code, appErrors.ErrCMSRejected.Status,
			module.Code+" not listed after add")
	}

	rec, err := s.scrape.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	return s.reconcile.ReconcileModule(ctx, req.SemesterID, program.StructureID, rec)
}
