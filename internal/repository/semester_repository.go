package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// SemesterRepository persists student-semester rows keyed by CMS id,
// unique per (program, term).
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs a SemesterRepository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Upsert writes a student-semester row.
func (r *SemesterRepository) Upsert(ctx context.Context, s *models.StudentSemester) error {
	const query = `INSERT INTO student_semesters
        (id, student_program_id, term, structure_semester_id, status, caf_date, sponsor_id)
        VALUES (:id, :student_program_id, :term, :structure_semester_id, :status, :caf_date, :sponsor_id)
        ON CONFLICT(id) DO UPDATE SET
        student_program_id = excluded.student_program_id,
        term = excluded.term,
        status = excluded.status,
        structure_semester_id = COALESCE(excluded.structure_semester_id, student_semesters.structure_semester_id),
        caf_date = COALESCE(excluded.caf_date, student_semesters.caf_date),
        sponsor_id = COALESCE(excluded.sponsor_id, student_semesters.sponsor_id)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("upsert student semester: %w", err)
	}
	return nil
}

// FindByID fetches one student-semester row; nil when absent.
func (r *SemesterRepository) FindByID(ctx context.Context, id int) (*models.StudentSemester, error) {
	var s models.StudentSemester
	err := r.db.GetContext(ctx, &s,
		`SELECT id, student_program_id, term, structure_semester_id, status, caf_date, sponsor_id
        FROM student_semesters WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student semester: %w", err)
	}
	return &s, nil
}

// FindByProgramAndTerm locates the unique semester for (program, term);
// nil when absent.
func (r *SemesterRepository) FindByProgramAndTerm(ctx context.Context, programID int, term string) (*models.StudentSemester, error) {
	var s models.StudentSemester
	err := r.db.GetContext(ctx, &s,
		`SELECT id, student_program_id, term, structure_semester_id, status, caf_date, sponsor_id
        FROM student_semesters WHERE student_program_id = ? AND term = ?`, programID, term)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("semester by program and term: %w", err)
	}
	return &s, nil
}
