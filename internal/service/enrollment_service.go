package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type requestStore interface {
	FindByID(ctx context.Context, id int) (*models.RegistrationRequest, error)
	RequestedModules(ctx context.Context, requestID int) ([]models.RequestedModule, error)
	MarkRegistered(ctx context.Context, id int) error
}

type activeProgramReader interface {
	ActiveByStudent(ctx context.Context, stdNo int) (*models.StudentProgram, error)
}

type semesterCreator interface {
	CreateSemester(ctx context.Context, req CreateSemesterRequest) (*models.StudentSemester, error)
}

type moduleAdder interface {
	AddModule(ctx context.Context, req AddModuleRequest) (*models.StudentModule, error)
}

type enrollScraper interface {
	SemesterListEntries(ctx context.Context, programID int) ([]scraper.SemesterListEntry, error)
	Semester(ctx context.Context, semesterID int) (*scraper.SemesterRecord, error)
	ModuleListEntries(ctx context.Context, semesterID int) ([]scraper.ModuleListEntry, error)
}

type enrollReconciler interface {
	ReconcileSemester(ctx context.Context, programID, structureID int, rec *scraper.SemesterRecord) (*models.StudentSemester, error)
}

// EnrollSummary reports what one registration attempt achieved. The
// request is marked registered only when nothing failed; otherwise it
// stays in its prior state so a retry can finish the remainder.
type EnrollSummary struct {
	SemesterID int      `json:"semester_id"`
	Added      int      `json:"added"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Registered bool     `json:"registered"`
	Errors     []string `json:"errors,omitempty"`
}

// EnrollmentService turns approved registration requests into CMS
// semester and module registrations.
type EnrollmentService struct {
	requests   requestStore
	programs   activeProgramReader
	semesters  semesterCreator
	modules    moduleAdder
	scrape     enrollScraper
	reconcile  enrollReconciler
	curriculum curriculumReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(requests requestStore, programs activeProgramReader, semesters semesterCreator, modules moduleAdder,
	scrape enrollScraper, reconcile enrollReconciler, curriculum curriculumReader,
	validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{requests: requests, programs: programs, semesters: semesters, modules: modules,
		scrape: scrape, reconcile: reconcile, curriculum: curriculum, validator: validate, logger: logger}
}

// EnrollRequest registers one approved request on the CMS: reuse or
// create the term's semester, then add each requested module that is
// not already present.
func (s *EnrollmentService) EnrollRequest(ctx context.Context, requestID int) (*EnrollSummary, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"registration request "+strconv.Itoa(requestID)+" not found")
	}
	if request.Status != models.RequestStatusApproved {
		return nil, appErrors.Wrap(nil, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			"request is "+string(request.Status)+", not approved")
	}

	program, err := s.programs.ActiveByStudent(ctx, request.StdNo)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"student "+strconv.Itoa(request.StdNo)+" has no active program")
	}

	semester, err := s.findOrCreateSemester(ctx, request, program)
	if err != nil {
		return nil, err
	}
	summary := &EnrollSummary{SemesterID: semester.ID}

	requested, err := s.requests.RequestedModules(ctx, requestID)
	if err != nil {
		return nil, err
	}
	present, err := s.presentCodes(ctx, semester.ID)
	if err != nil {
		return nil, err
	}

	for _, rm := range requested {
		semModule, err := s.curriculum.SemesterModuleByID(ctx, rm.SemesterModuleID)
		if err != nil {
			return nil, err
		}
		if semModule == nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("semester module %d not in curriculum", rm.SemesterModuleID))
			continue
		}
		module, err := s.curriculum.ModuleByID(ctx, semModule.ModuleID)
		if err != nil {
			return nil, err
		}
		if module == nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("module %d not in curriculum", semModule.ModuleID))
			continue
		}
		if present[module.Code] {
			summary.Skipped++
			continue
		}

		_, err = s.modules.AddModule(ctx, AddModuleRequest{
			SemesterID:       semester.ID,
			SemesterModuleID: rm.SemesterModuleID,
			ModuleStatus:     rm.ModuleStatus,
			Credits:          semModule.Credits,
		})
		if appErrors.Is(err, appErrors.ErrConflict) {
			summary.Skipped++
			continue
		}
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", module.Code, err))
			s.logger.Warn("module registration failed",
				zap.Int("request_id", requestID), zap.String("module_code", module.Code), zap.Error(err))
			continue
		}
		summary.Added++
	}

	if summary.Failed == 0 {
		if err := s.requests.MarkRegistered(ctx, requestID); err != nil {
			return nil, err
		}
		summary.Registered = true
	}
	return summary, nil
}

func (s *EnrollmentService) findOrCreateSemester(ctx context.Context, request *models.RegistrationRequest, program *models.StudentProgram) (*models.StudentSemester, error) {
	entries, err := s.scrape.SemesterListEntries(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Term != request.TermCode {
			continue
		}
		rec, err := s.scrape.Semester(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		return s.reconcile.ReconcileSemester(ctx, program.ID, program.StructureID, rec)
	}

	number := "01"
	if request.SemesterNumber != nil {
		number = *request.SemesterNumber
	}
	return s.semesters.CreateSemester(ctx, CreateSemesterRequest{
		ProgramID:      program.ID,
		Term:           request.TermCode,
		SemesterNumber: number,
		Status:         request.SemesterStatus,
		SponsorID:      request.SponsorID,
	})
}

func (s *EnrollmentService) presentCodes(ctx context.Context, semesterID int) (map[string]bool, error) {
	entries, err := s.scrape.ModuleListEntries(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]bool, len(entries))
	for _, entry := range entries {
		codes[entry.Code] = true
	}
	return codes, nil
}
