package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/pool"
)

type pullScraper interface {
	Student(ctx context.Context, stdNo int) (*scraper.StudentRecord, error)
	Personal(ctx context.Context, stdNo int) (*scraper.PersonalRecord, error)
	EducationList(ctx context.Context, stdNo int) ([]scraper.EducationRow, error)
	ProgramIDs(ctx context.Context, stdNo int) ([]int, error)
	Program(ctx context.Context, programID int) (*scraper.ProgramRecord, error)
	SemesterIDs(ctx context.Context, programID int) ([]int, error)
	Semester(ctx context.Context, semesterID int) (*scraper.SemesterRecord, error)
	ModuleIDs(ctx context.Context, semesterID int) ([]int, error)
	Module(ctx context.Context, moduleID int) (*scraper.ModuleRecord, error)
}

type pullReconciler interface {
	Prime(ctx context.Context) error
	ReconcileStudent(ctx context.Context, st *scraper.StudentRecord, personal *scraper.PersonalRecord) error
	ReconcileEducation(ctx context.Context, stdNo int, rows []scraper.EducationRow) error
	ReconcileProgram(ctx context.Context, rec *scraper.ProgramRecord) (*models.StudentProgram, error)
	ReconcileSemester(ctx context.Context, programID, structureID int, rec *scraper.SemesterRecord) (*models.StudentSemester, error)
	ReconcileModule(ctx context.Context, semesterID, structureID int, rec *scraper.ModuleRecord) (*models.StudentModule, error)
}

type programCleaner interface {
	DeleteByStudent(ctx context.Context, stdNo int) error
}

// PullStudentRequest selects which sections of a student to import.
type PullStudentRequest struct {
	StdNo            int  `json:"std_no" validate:"required,gt=0"`
	StudentInfo      bool `json:"student_info"`
	PersonalInfo     bool `json:"personal_info"`
	EducationHistory bool `json:"education_history"`
	EnrollmentData   bool `json:"enrollment_data"`

	// DeletePrograms drops the student's local programs before the
	// import, for students whose CMS history was rebuilt.
	DeletePrograms bool `json:"delete_programs"`
}

// PullSummary counts what one pull touched.
type PullSummary struct {
	Programs  int      `json:"programs"`
	Semesters int      `json:"semesters"`
	Modules   int      `json:"modules"`
	Errors    []string `json:"errors,omitempty"`
}

// PullService imports a student's CMS state into the local store.
type PullService struct {
	scrape    pullScraper
	reconcile pullReconciler
	programs  programCleaner
	workers   int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPullService constructs PullService. workers bounds the parallel
// module scrape per semester.
func NewPullService(scrape pullScraper, reconcile pullReconciler, programs programCleaner, workers int, validate *validator.Validate, logger *zap.Logger) *PullService {
	if workers <= 0 {
		workers = 10
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PullService{scrape: scrape, reconcile: reconcile, programs: programs, workers: workers, validator: validate, logger: logger}
}

// PullStudent runs the pull workflow for one student. Section scrapes
// run top-down; per-program and per-module failures are recorded in the
// summary without aborting the rest of the import.
func (s *PullService) PullStudent(ctx context.Context, req PullStudentRequest, progress Progress) (*PullSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pull request")
	}

	summary := &PullSummary{}

	if req.StudentInfo || req.PersonalInfo {
		progress.report("student record", 0, 1)
		st := &scraper.StudentRecord{StdNo: req.StdNo}
		if req.StudentInfo {
			rec, err := s.scrape.Student(ctx, req.StdNo)
			if err != nil {
				return nil, err
			}
			st = rec
		}
		var personal *scraper.PersonalRecord
		if req.PersonalInfo {
			rec, err := s.scrape.Personal(ctx, req.StdNo)
			if err != nil {
				return nil, err
			}
			personal = rec
		}
		if err := s.reconcile.ReconcileStudent(ctx, st, personal); err != nil {
			return nil, err
		}
		progress.report("student record", 1, 1)
	}

	if req.EducationHistory {
		rows, err := s.scrape.EducationList(ctx, req.StdNo)
		if err != nil {
			return nil, err
		}
		if err := s.reconcile.ReconcileEducation(ctx, req.StdNo, rows); err != nil {
			return nil, err
		}
		progress.report("education history", 1, 1)
	}

	if !req.EnrollmentData {
		return summary, nil
	}

	if req.DeletePrograms {
		if err := s.programs.DeleteByStudent(ctx, req.StdNo); err != nil {
			return nil, err
		}
	}
	if err := s.reconcile.Prime(ctx); err != nil {
		return nil, err
	}

	programIDs, err := s.scrape.ProgramIDs(ctx, req.StdNo)
	if err != nil {
		return nil, err
	}
	progress.report("programs", 0, len(programIDs))

	for i, programID := range programIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.pullProgram(ctx, programID, summary, progress); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("program %d: %v", programID, err))
			s.logger.Warn("program import failed", zap.Int("program_id", programID), zap.Error(err))
		}
		progress.report("programs", i+1, len(programIDs))
	}
	return summary, nil
}

func (s *PullService) pullProgram(ctx context.Context, programID int, summary *PullSummary, progress Progress) error {
	rec, err := s.scrape.Program(ctx, programID)
	if err != nil {
		return err
	}
	program, err := s.reconcile.ReconcileProgram(ctx, rec)
	if err != nil {
		return err
	}
	summary.Programs++

	semesterIDs, err := s.scrape.SemesterIDs(ctx, programID)
	if err != nil {
		return err
	}
	progress.report("semesters", 0, len(semesterIDs))

	for i, semesterID := range semesterIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.pullSemester(ctx, program, semesterID, summary, progress); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("semester %d: %v", semesterID, err))
			s.logger.Warn("semester import failed", zap.Int("semester_id", semesterID), zap.Error(err))
		}
		progress.report("semesters", i+1, len(semesterIDs))
	}
	return nil
}

func (s *PullService) pullSemester(ctx context.Context, program *models.StudentProgram, semesterID int, summary *PullSummary, progress Progress) error {
	rec, err := s.scrape.Semester(ctx, semesterID)
	if err != nil {
		return err
	}
	semester, err := s.reconcile.ReconcileSemester(ctx, program.ID, program.StructureID, rec)
	if err != nil {
		return err
	}
	summary.Semesters++

	moduleIDs, err := s.scrape.ModuleIDs(ctx, semesterID)
	if err != nil {
		return err
	}
	progress.report("modules", 0, len(moduleIDs))

	// scrape in parallel, upsert sequentially: the store runs on one
	// SQLite connection
	results := pool.Map(ctx, s.workers, moduleIDs, func(ctx context.Context, moduleID int) (*scraper.ModuleRecord, error) {
		return s.scrape.Module(ctx, moduleID)
	})
	for i, res := range results {
		if res.Err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("module %d: %v", moduleIDs[res.Index], res.Err))
			continue
		}
		if _, err := s.reconcile.ReconcileModule(ctx, semester.ID, program.StructureID, res.Value); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("module %d: %v", moduleIDs[res.Index], err))
			continue
		}
		summary.Modules++
		progress.report("modules", i+1, len(moduleIDs))
	}
	return nil
}
