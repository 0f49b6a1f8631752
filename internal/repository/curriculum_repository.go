package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// CurriculumRepository reads the curriculum tree. Sync flows never
// modify curriculum rows, so there are no writes here.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository constructs a CurriculumRepository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// StructureByCode resolves a structure by its CMS code, e.g. "BSCIT23".
func (r *CurriculumRepository) StructureByCode(ctx context.Context, code string) (*models.Structure, error) {
	var s models.Structure
	err := r.db.GetContext(ctx, &s, "SELECT id, program_id, code FROM structures WHERE code = ?", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("structure by code: %w", err)
	}
	return &s, nil
}

// StructureSemesterNumbers returns semester-number → id for a structure.
func (r *CurriculumRepository) StructureSemesterNumbers(ctx context.Context, structureID int) (map[string]int, error) {
	var rows []models.StructureSemester
	err := r.db.SelectContext(ctx, &rows,
		"SELECT id, structure_id, semester_number, name FROM structure_semesters WHERE structure_id = ?", structureID)
	if err != nil {
		return nil, fmt.Errorf("structure semesters: %w", err)
	}

	numbers := make(map[string]int, len(rows))
	for _, row := range rows {
		numbers[row.SemesterNumber] = row.ID
	}
	return numbers, nil
}

// SemesterModuleByCode resolves the semester-module binding a module
// code into a structure. The join is not constrained by the semester
// within the structure: when a code repeats across semesters the first
// row wins, which mirrors how the registry has always resolved these.
func (r *CurriculumRepository) SemesterModuleByCode(ctx context.Context, code string, structureID int) (*models.SemesterModule, error) {
	const query = `SELECT sm.id, sm.structure_semester_id, sm.module_id, sm.type, sm.credits
        FROM semester_modules sm
        JOIN modules m ON m.id = sm.module_id
        JOIN structure_semesters ss ON ss.id = sm.structure_semester_id
        WHERE m.code = ? AND ss.structure_id = ?
        ORDER BY sm.id LIMIT 1`

	var sm models.SemesterModule
	err := r.db.GetContext(ctx, &sm, query, code, structureID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("semester module by code: %w", err)
	}
	return &sm, nil
}

// Sponsors returns every sponsor keyed by code, for cache priming.
func (r *CurriculumRepository) Sponsors(ctx context.Context) (map[string]int, error) {
	var rows []models.Sponsor
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, code, name FROM sponsors"); err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}

	sponsors := make(map[string]int, len(rows))
	for _, row := range rows {
		sponsors[row.Code] = row.ID
	}
	return sponsors, nil
}

// TermByCode resolves a term row by code.
func (r *CurriculumRepository) TermByCode(ctx context.Context, code string) (*models.Term, error) {
	var t models.Term
	err := r.db.GetContext(ctx, &t, "SELECT id, code, is_active, year FROM terms WHERE code = ?", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("term by code: %w", err)
	}
	return &t, nil
}

// ModuleByCode resolves a module by code.
func (r *CurriculumRepository) ModuleByCode(ctx context.Context, code string) (*models.Module, error) {
	var m models.Module
	err := r.db.GetContext(ctx, &m, "SELECT id, code, name FROM modules WHERE code = ?", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("module by code: %w", err)
	}
	return &m, nil
}

// ModuleByID fetches one module row.
func (r *CurriculumRepository) ModuleByID(ctx context.Context, id int) (*models.Module, error) {
	var m models.Module
	err := r.db.GetContext(ctx, &m, "SELECT id, code, name FROM modules WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("module by id: %w", err)
	}
	return &m, nil
}

// SemesterModuleByID fetches one semester-module row.
func (r *CurriculumRepository) SemesterModuleByID(ctx context.Context, id int) (*models.SemesterModule, error) {
	var sm models.SemesterModule
	err := r.db.GetContext(ctx, &sm,
		"SELECT id, structure_semester_id, module_id, type, credits FROM semester_modules WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("semester module by id: %w", err)
	}
	return &sm, nil
}
