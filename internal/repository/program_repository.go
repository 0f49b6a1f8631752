package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// ProgramRepository persists student-program rows keyed by CMS id.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs a ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Upsert writes a student-program row. The caller has already resolved
// StructureID; rows never arrive here without one.
func (r *ProgramRepository) Upsert(ctx context.Context, p *models.StudentProgram) error {
	const query = `INSERT INTO student_programs
        (id, std_no, structure_id, intake_date, reg_date, start_term, stream, status, assist_provider, graduation_date)
        VALUES (:id, :std_no, :structure_id, :intake_date, :reg_date, :start_term, :stream, :status, :assist_provider, :graduation_date)
        ON CONFLICT(id) DO UPDATE SET
        std_no = excluded.std_no,
        structure_id = excluded.structure_id,
        status = excluded.status,
        intake_date = COALESCE(excluded.intake_date, student_programs.intake_date),
        reg_date = COALESCE(excluded.reg_date, student_programs.reg_date),
        start_term = COALESCE(excluded.start_term, student_programs.start_term),
        stream = COALESCE(excluded.stream, student_programs.stream),
        assist_provider = COALESCE(excluded.assist_provider, student_programs.assist_provider),
        graduation_date = COALESCE(excluded.graduation_date, student_programs.graduation_date)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("upsert student program: %w", err)
	}
	return nil
}

// FindByID fetches one student-program row; nil when absent.
func (r *ProgramRepository) FindByID(ctx context.Context, id int) (*models.StudentProgram, error) {
	var p models.StudentProgram
	err := r.db.GetContext(ctx, &p,
		`SELECT id, std_no, structure_id, intake_date, reg_date, start_term, stream, status, assist_provider, graduation_date
        FROM student_programs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student program: %w", err)
	}
	return &p, nil
}

// ActiveByStudent returns the student's Active program; nil when none.
func (r *ProgramRepository) ActiveByStudent(ctx context.Context, stdNo int) (*models.StudentProgram, error) {
	var p models.StudentProgram
	err := r.db.GetContext(ctx, &p,
		`SELECT id, std_no, structure_id, intake_date, reg_date, start_term, stream, status, assist_provider, graduation_date
        FROM student_programs WHERE std_no = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		stdNo, models.ProgramStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active program: %w", err)
	}
	return &p, nil
}

// UpdateStructure repoints a program at a new structure after a bulk
// structure change was accepted by the CMS.
func (r *ProgramRepository) UpdateStructure(ctx context.Context, programID, structureID int) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE student_programs SET structure_id = ? WHERE id = ?", structureID, programID); err != nil {
		return fmt.Errorf("update program structure: %w", err)
	}
	return nil
}

// DeleteByStudent removes a student's programs ahead of a re-import.
// Only the delete-programs-before-import pull option reaches this.
func (r *ProgramRepository) DeleteByStudent(ctx context.Context, stdNo int) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_programs WHERE std_no = ?", stdNo); err != nil {
		return fmt.Errorf("delete student programs: %w", err)
	}
	return nil
}
