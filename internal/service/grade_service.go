package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/normalize"
	"github.com/limkokwing/registry-sync/internal/repository"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type moduleGradeStore interface {
	FindByID(ctx context.Context, id int) (*models.StudentModule, error)
	UpdateGrade(ctx context.Context, id int, marks, grade string) error
}

type markReader interface {
	MarksForStudent(ctx context.Context, stdNo, moduleID int, termCode string) ([]repository.StudentMarkRow, error)
}

type semesterModuleReader interface {
	SemesterModuleByID(ctx context.Context, id int) (*models.SemesterModule, error)
}

// RecalculateRequest selects student-modules for a weighted-mark
// recalculation.
type RecalculateRequest struct {
	StudentModuleIDs []int `json:"student_module_ids" validate:"required,min=1,dive,gt=0"`

	// SkipPP leaves provisional passes untouched.
	SkipPP bool `json:"skip_pp"`
	// SkipBorderline leaves marks ending in 4 or 9 for manual review.
	SkipBorderline bool `json:"skip_borderline"`
}

// GradeChange is one previewed recalculation. Skipped rows carry the
// reason; only non-skipped rows are eligible for Apply.
type GradeChange struct {
	StudentModuleID int    `json:"student_module_id"`
	StdNo           int    `json:"std_no"`
	OldMarks        string `json:"old_marks"`
	OldGrade        string `json:"old_grade"`
	NewMarks        int    `json:"new_marks"`
	NewGrade        string `json:"new_grade"`
	Skip            bool   `json:"skip"`
	Reason          string `json:"reason,omitempty"`
}

// ApplyGradesRequest carries the confirmed subset of a preview.
type ApplyGradesRequest struct {
	Changes []GradeChange `json:"changes" validate:"required,min=1"`
}

// neverRecalculated grades mark administrative outcomes a weighted total
// must not overwrite.
var neverRecalculated = map[string]string{
	normalize.GradeANN: "annulled",
	normalize.GradeDNS: "did not sit",
	normalize.GradeEXP: "expelled",
	normalize.GradeDEF: "deferred",
}

// GradeService recomputes module marks from assessment weightings.
type GradeService struct {
	modules    moduleGradeStore
	semesters  semesterReader
	programs   programReader
	curriculum semesterModuleReader
	marks      markReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(modules moduleGradeStore, semesters semesterReader, programs programReader,
	curriculum semesterModuleReader, marks markReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{modules: modules, semesters: semesters, programs: programs,
		curriculum: curriculum, marks: marks, validator: validate, logger: logger}
}

// Preview computes the weighted total for each selected student-module
// and reports what Apply would change, without touching the store.
func (s *GradeService) Preview(ctx context.Context, req RecalculateRequest) ([]GradeChange, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recalculate request")
	}

	changes := make([]GradeChange, 0, len(req.StudentModuleIDs))
	for _, id := range req.StudentModuleIDs {
		if err := ctx.Err(); err != nil {
			return changes, err
		}
		change, err := s.previewOne(ctx, id, req)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *change)
	}
	return changes, nil
}

func (s *GradeService) previewOne(ctx context.Context, id int, req RecalculateRequest) (*GradeChange, error) {
	change := &GradeChange{StudentModuleID: id}
	skip := func(reason string) (*GradeChange, error) {
		change.Skip = true
		change.Reason = reason
		return change, nil
	}

	module, err := s.modules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return skip("not in local store")
	}
	change.OldMarks = module.Marks
	change.OldGrade = module.Grade

	if reason, ok := neverRecalculated[module.Grade]; ok {
		return skip(reason)
	}
	if req.SkipPP && module.Grade == normalize.GradePP {
		return skip("provisional pass")
	}

	semester, err := s.semesters.FindByID(ctx, module.StudentSemesterID)
	if err != nil {
		return nil, err
	}
	if semester == nil {
		return skip("semester missing")
	}
	program, err := s.programs.FindByID(ctx, semester.StudentProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return skip("program missing")
	}
	change.StdNo = program.StdNo

	semModule, err := s.curriculum.SemesterModuleByID(ctx, module.SemesterModuleID)
	if err != nil {
		return nil, err
	}
	if semModule == nil {
		return skip("no curriculum reference")
	}

	rows, err := s.marks.MarksForStudent(ctx, program.StdNo, semModule.ModuleID, semester.Term)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return skip("no assessment marks")
	}

	var total float64
	for _, row := range rows {
		if row.TotalMarks <= 0 {
			return skip(fmt.Sprintf("assessment %d has zero total marks", row.AssessmentID))
		}
		total += row.Marks / row.TotalMarks * row.Weight
	}
	weighted := int(math.Round(total))

	if req.SkipBorderline && (weighted%10 == 4 || weighted%10 == 9) {
		change.NewMarks = weighted
		change.NewGrade = normalize.GradeFromMarks(float64(weighted))
		return skip("borderline mark")
	}

	change.NewMarks = weighted
	change.NewGrade = normalize.GradeFromMarks(float64(weighted))
	if strconv.Itoa(weighted) == module.Marks && change.NewGrade == module.Grade {
		return skip("unchanged")
	}
	return change, nil
}

// Apply writes the confirmed changes. Skipped rows in the payload are
// ignored rather than rejected, so a preview can be posted back as-is.
func (s *GradeService) Apply(ctx context.Context, req ApplyGradesRequest) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid apply request")
	}

	result := &BatchResult{}
	for _, change := range req.Changes {
		if change.Skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.modules.UpdateGrade(ctx, change.StudentModuleID, strconv.Itoa(change.NewMarks), change.NewGrade); err != nil {
			result.fail(change.StudentModuleID, err)
			continue
		}
		result.Success++
	}
	return result, nil
}
