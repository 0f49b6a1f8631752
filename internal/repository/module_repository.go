package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// ModuleRepository persists student-module rows keyed by CMS id.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// Upsert writes a student-module row. SemesterModuleID may be zero when
// the curriculum lookup missed; the row persists regardless.
func (r *ModuleRepository) Upsert(ctx context.Context, m *models.StudentModule) error {
	const query = `INSERT INTO student_modules
        (id, student_semester_id, semester_module_id, status, credits, marks, grade)
        VALUES (:id, :student_semester_id, :semester_module_id, :status, :credits, :marks, :grade)
        ON CONFLICT(id) DO UPDATE SET
        student_semester_id = excluded.student_semester_id,
        semester_module_id = excluded.semester_module_id,
        status = excluded.status,
        credits = excluded.credits,
        marks = excluded.marks,
        grade = excluded.grade`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("upsert student module: %w", err)
	}
	return nil
}

// FindByID fetches one student-module row; nil when absent.
func (r *ModuleRepository) FindByID(ctx context.Context, id int) (*models.StudentModule, error) {
	var m models.StudentModule
	err := r.db.GetContext(ctx, &m,
		`SELECT id, student_semester_id, semester_module_id, status, credits, marks, grade
        FROM student_modules WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student module: %w", err)
	}
	return &m, nil
}

// ListBySemester returns all module rows under a student semester.
func (r *ModuleRepository) ListBySemester(ctx context.Context, semesterID int) ([]models.StudentModule, error) {
	var rows []models.StudentModule
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, student_semester_id, semester_module_id, status, credits, marks, grade
        FROM student_modules WHERE student_semester_id = ? ORDER BY id`, semesterID)
	if err != nil {
		return nil, fmt.Errorf("list student modules: %w", err)
	}
	return rows, nil
}

// UpdateGrade records a recalculated mark and grade.
func (r *ModuleRepository) UpdateGrade(ctx context.Context, id int, marks, grade string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE student_modules SET marks = ?, grade = ? WHERE id = ?", marks, grade, id); err != nil {
		return fmt.Errorf("update module grade: %w", err)
	}
	return nil
}
