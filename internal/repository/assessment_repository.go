package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// AssessmentRepository reads assessment definitions and marks for the
// grade recalculator.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ByModuleAndTerm lists the assessment components for a module in a term.
func (r *AssessmentRepository) ByModuleAndTerm(ctx context.Context, moduleID int, termCode string) ([]models.Assessment, error) {
	var rows []models.Assessment
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, module_id, term_code, name, total_marks, weight
        FROM assessments WHERE module_id = ? AND term_code = ? ORDER BY id`, moduleID, termCode)
	if err != nil {
		return nil, fmt.Errorf("assessments by module and term: %w", err)
	}
	return rows, nil
}

// StudentMarkRow joins a student's mark with its assessment weighting.
type StudentMarkRow struct {
	AssessmentID int     `db:"assessment_id"`
	Marks        float64 `db:"marks"`
	TotalMarks   float64 `db:"total_marks"`
	Weight       float64 `db:"weight"`
}

// MarksForStudent returns the weighted mark rows for one student across
// a module's assessments in a term.
func (r *AssessmentRepository) MarksForStudent(ctx context.Context, stdNo, moduleID int, termCode string) ([]StudentMarkRow, error) {
	const query = `SELECT am.assessment_id, am.marks, a.total_marks, a.weight
        FROM assessment_marks am
        JOIN assessments a ON a.id = am.assessment_id
        WHERE am.std_no = ? AND a.module_id = ? AND a.term_code = ?
        ORDER BY am.assessment_id`

	var rows []StudentMarkRow
	if err := r.db.SelectContext(ctx, &rows, query, stdNo, moduleID, termCode); err != nil {
		return nil, fmt.Errorf("marks for student: %w", err)
	}
	return rows, nil
}
