package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// SemesterRepository reads academic semesters and swaps the current flag
// during rollover. Semester CRUD itself lives outside the core.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

func (r *SemesterRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID returns a semester by its ID.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.AcademicSemester, error) {
	const query = `SELECT id, title, year, is_current, created_at, updated_at FROM academic_semesters WHERE id = $1`
	var semester models.AcademicSemester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindCurrent returns the semester flagged as current.
func (r *SemesterRepository) FindCurrent(ctx context.Context) (*models.AcademicSemester, error) {
	const query = `SELECT id, title, year, is_current, created_at, updated_at FROM academic_semesters WHERE is_current = TRUE LIMIT 1`
	var semester models.AcademicSemester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		return nil, err
	}
	return &semester, nil
}

// MakeCurrent unsets the previous current semester and marks the given one,
// inside the caller's transaction when exec is provided.
func (r *SemesterRepository) MakeCurrent(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	if _, err := target.ExecContext(ctx, `UPDATE academic_semesters SET is_current = FALSE, updated_at = $1 WHERE is_current = TRUE AND id <> $2`, now, id); err != nil {
		return fmt.Errorf("unset current semester: %w", err)
	}
	if _, err := target.ExecContext(ctx, `UPDATE academic_semesters SET is_current = TRUE, updated_at = $2 WHERE id = $1`, id, now); err != nil {
		return fmt.Errorf("set current semester: %w", err)
	}
	return nil
}
