package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// StudentRegistrationRepository persists per-student registration state
// inside a window. Methods take an optional exec so the rollover can run
// them inside its own transaction.
type StudentRegistrationRepository struct {
	db *sqlx.DB
}

// NewStudentRegistrationRepository constructs the repository.
func NewStudentRegistrationRepository(db *sqlx.DB) *StudentRegistrationRepository {
	return &StudentRegistrationRepository{db: db}
}

func (r *StudentRegistrationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByStudentAndRegistration returns the student's state for a window.
func (r *StudentRegistrationRepository) FindByStudentAndRegistration(ctx context.Context, exec sqlx.ExtContext, studentID, registrationID string) (*models.StudentSemesterRegistration, error) {
	const query = `SELECT id, student_id, semester_registration_id, is_confirmed, total_credits_taken, created_at, updated_at
FROM student_semester_registrations
WHERE student_id = $1 AND semester_registration_id = $2`
	var record models.StudentSemesterRegistration
	if err := sqlx.GetContext(ctx, r.exec(exec), &record, query, studentID, registrationID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create starts a registration for the student with zero credits taken.
func (r *StudentRegistrationRepository) Create(ctx context.Context, exec sqlx.ExtContext, record *models.StudentSemesterRegistration) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO student_semester_registrations (id, student_id, semester_registration_id, is_confirmed, total_credits_taken, created_at, updated_at)
VALUES (:id, :student_id, :semester_registration_id, :is_confirmed, :total_credits_taken, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, record); err != nil {
		return fmt.Errorf("insert student registration: %w", err)
	}
	return nil
}

// SetConfirmed flips the confirmation flag.
func (r *StudentRegistrationRepository) SetConfirmed(ctx context.Context, exec sqlx.ExtContext, id string, confirmed bool) error {
	const query = `UPDATE student_semester_registrations SET is_confirmed = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id, confirmed, time.Now().UTC()); err != nil {
		return fmt.Errorf("set confirmed: %w", err)
	}
	return nil
}

// ListConfirmed returns all confirmed student registrations in a window,
// used by the semester rollover.
func (r *StudentRegistrationRepository) ListConfirmed(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.StudentSemesterRegistration, error) {
	const query = `SELECT id, student_id, semester_registration_id, is_confirmed, total_credits_taken, created_at, updated_at
FROM student_semester_registrations
WHERE semester_registration_id = $1 AND is_confirmed = TRUE
ORDER BY created_at`
	var records []models.StudentSemesterRegistration
	if err := sqlx.SelectContext(ctx, r.exec(exec), &records, query, registrationID); err != nil {
		return nil, fmt.Errorf("list confirmed registrations: %w", err)
	}
	return records, nil
}
