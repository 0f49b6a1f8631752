package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/models"
)

// StudentRepository persists student rows and their owned records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Upsert merges non-null scraped fields over any existing row, keyed by
// the CMS student number. Fields the scrape omitted keep their stored
// value.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students
        (std_no, name, national_id, gender, date_of_birth, phone1, phone2, country, nationality, race, religion, marital_status, status)
        VALUES (:std_no, :name, :national_id, :gender, :date_of_birth, :phone1, :phone2, :country, :nationality, :race, :religion, :marital_status, :status)
        ON CONFLICT(std_no) DO UPDATE SET
        name = COALESCE(NULLIF(excluded.name, ''), students.name),
        gender = COALESCE(NULLIF(excluded.gender, ''), students.gender),
        national_id = COALESCE(excluded.national_id, students.national_id),
        date_of_birth = COALESCE(excluded.date_of_birth, students.date_of_birth),
        phone1 = COALESCE(excluded.phone1, students.phone1),
        phone2 = COALESCE(excluded.phone2, students.phone2),
        country = COALESCE(excluded.country, students.country),
        nationality = COALESCE(excluded.nationality, students.nationality),
        race = COALESCE(excluded.race, students.race),
        religion = COALESCE(excluded.religion, students.religion),
        marital_status = COALESCE(excluded.marital_status, students.marital_status),
        status = COALESCE(excluded.status, students.status)`

	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// FindByStdNo fetches one student row.
func (r *StudentRepository) FindByStdNo(ctx context.Context, stdNo int) (*models.Student, error) {
	var s models.Student
	err := r.db.GetContext(ctx, &s,
		`SELECT std_no, name, national_id, gender, date_of_birth, phone1, phone2, country, nationality, race, religion, marital_status, status
        FROM students WHERE std_no = ?`, stdNo)
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &s, nil
}

// ReplaceNextOfKin swaps a student's contact rows for the scraped set.
// The CMS page is the single source of truth for these, so replacement
// is safe.
func (r *StudentRepository) ReplaceNextOfKin(ctx context.Context, stdNo int, kin []models.NextOfKin) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin next-of-kin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM next_of_kin WHERE std_no = ?", stdNo); err != nil {
		return fmt.Errorf("clear next of kin: %w", err)
	}
	for _, k := range kin {
		k.StdNo = stdNo
		if _, err := tx.NamedExecContext(ctx,
			"INSERT INTO next_of_kin (std_no, name, relationship, phone) VALUES (:std_no, :name, :relationship, :phone)", k); err != nil {
			return fmt.Errorf("insert next of kin: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit next of kin: %w", err)
	}
	return nil
}

// UpsertEducation records one prior-education row, keyed by the natural
// (student, school, level) identity since the CMS exposes no id.
func (r *StudentRepository) UpsertEducation(ctx context.Context, rec *models.EducationRecord) error {
	const query = `INSERT INTO education_records (std_no, level, school, programme, start_date, end_date)
        VALUES (:std_no, :level, :school, :programme, :start_date, :end_date)
        ON CONFLICT(std_no, school, level) DO UPDATE SET
        programme = COALESCE(excluded.programme, education_records.programme),
        start_date = COALESCE(excluded.start_date, education_records.start_date),
        end_date = COALESCE(excluded.end_date, education_records.end_date)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("upsert education: %w", err)
	}
	return nil
}
