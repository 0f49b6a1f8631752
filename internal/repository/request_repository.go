package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// RequestRepository reads the approval-workflow entities the enrollment
// orchestrator consumes and records registration outcomes.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// FindByID fetches one registration request; nil when absent.
func (r *RequestRepository) FindByID(ctx context.Context, id int) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT id, std_no, term_code, semester_status, sponsor_id, status, semester_number
        FROM registration_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find registration request: %w", err)
	}
	return &req, nil
}

// RequestedModules lists the modules inside a request.
func (r *RequestRepository) RequestedModules(ctx context.Context, requestID int) ([]models.RequestedModule, error) {
	var rows []models.RequestedModule
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, request_id, semester_module_id, module_status
        FROM requested_modules WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list requested modules: %w", err)
	}
	return rows, nil
}

// Clearances lists the departmental sign-offs for a request.
func (r *RequestRepository) Clearances(ctx context.Context, requestID int) ([]models.Clearance, error) {
	var rows []models.Clearance
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, request_id, department, status FROM clearances WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list clearances: %w", err)
	}
	return rows, nil
}

// MarkRegistered flips a request to registered after every module
// landed on the CMS. Partial failures leave the prior status for retry.
func (r *RequestRepository) MarkRegistered(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE registration_requests SET status = ? WHERE id = ?", models.RequestStatusRegistered, id); err != nil {
		return fmt.Errorf("mark request registered: %w", err)
	}
	return nil
}
