package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// OfferedCourseRepository reads course offerings and their credit values.
type OfferedCourseRepository struct {
	db *sqlx.DB
}

// NewOfferedCourseRepository constructs the repository.
func NewOfferedCourseRepository(db *sqlx.DB) *OfferedCourseRepository {
	return &OfferedCourseRepository{db: db}
}

// FindByID returns an offering by its ID.
func (r *OfferedCourseRepository) FindByID(ctx context.Context, id string) (*models.OfferedCourse, error) {
	const query = `SELECT id, course_id, academic_department_id, semester_registration_id, created_at
FROM offered_courses WHERE id = $1`
	var offered models.OfferedCourse
	if err := r.db.GetContext(ctx, &offered, query, id); err != nil {
		return nil, err
	}
	return &offered, nil
}

// FindDetailByID returns an offering joined with its course.
func (r *OfferedCourseRepository) FindDetailByID(ctx context.Context, id string) (*models.OfferedCourseDetail, error) {
	const query = `SELECT oc.id, oc.course_id, oc.academic_department_id, oc.semester_registration_id, oc.created_at,
        c.title AS course_title, c.code AS course_code, c.credits AS course_credits
        FROM offered_courses oc
        JOIN courses c ON c.id = oc.course_id
        WHERE oc.id = $1`
	var detail models.OfferedCourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByRegistrationAndDepartment returns every offering available to a
// department within one registration window.
func (r *OfferedCourseRepository) ListByRegistrationAndDepartment(ctx context.Context, registrationID, departmentID string) ([]models.OfferedCourseDetail, error) {
	const query = `SELECT oc.id, oc.course_id, oc.academic_department_id, oc.semester_registration_id, oc.created_at,
        c.title AS course_title, c.code AS course_code, c.credits AS course_credits
        FROM offered_courses oc
        JOIN courses c ON c.id = oc.course_id
        WHERE oc.semester_registration_id = $1 AND oc.academic_department_id = $2
        ORDER BY c.code ASC`
	var offerings []models.OfferedCourseDetail
	if err := r.db.SelectContext(ctx, &offerings, query, registrationID, departmentID); err != nil {
		return nil, fmt.Errorf("list offered courses: %w", err)
	}
	return offerings, nil
}

// ListCompletedCourseIDs returns course IDs the student has completed.
func (r *OfferedCourseRepository) ListCompletedCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_id FROM student_enrolled_courses WHERE student_id = $1 AND status = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, models.EnrolledCourseCompleted); err != nil {
		return nil, fmt.Errorf("list completed courses: %w", err)
	}
	return ids, nil
}
