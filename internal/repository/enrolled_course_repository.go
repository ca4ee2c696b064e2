package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// EnrolledCourseRepository persists the permanent enrollment records the
// rollover promotes ledger rows into. All writers are tx-scoped because
// the rollover runs them inside one transaction.
type EnrolledCourseRepository struct {
	db *sqlx.DB
}

// NewEnrolledCourseRepository constructs the repository.
func NewEnrolledCourseRepository(db *sqlx.DB) *EnrolledCourseRepository {
	return &EnrolledCourseRepository{db: db}
}

func (r *EnrolledCourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Exists reports whether a record for the student, course and semester is
// already present. Keeps the rollover idempotent.
func (r *EnrolledCourseRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, semesterID string) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM student_enrolled_courses
WHERE student_id = $1 AND course_id = $2 AND academic_semester_id = $3)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, studentID, courseID, semesterID); err != nil {
		return false, fmt.Errorf("check enrolled course: %w", err)
	}
	return exists, nil
}

// Create inserts a permanent enrollment record.
func (r *EnrolledCourseRepository) Create(ctx context.Context, exec sqlx.ExtContext, record *models.StudentEnrolledCourse) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.EnrolledCourseOngoing
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_enrolled_courses (id, student_id, course_id, academic_semester_id, status, grade, point, total_marks, created_at)
VALUES (:id, :student_id, :course_id, :academic_semester_id, :status, :grade, :point, :total_marks, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, record); err != nil {
		return fmt.Errorf("insert enrolled course: %w", err)
	}
	return nil
}

// CreateDefaultMarks seeds the MIDTERM and FINAL mark buckets for a fresh
// enrollment record.
func (r *EnrolledCourseRepository) CreateDefaultMarks(ctx context.Context, exec sqlx.ExtContext, record *models.StudentEnrolledCourse) error {
	const query = `INSERT INTO student_enrolled_course_marks (id, student_id, student_enrolled_course_id, academic_semester_id, exam_type, marks)
VALUES ($1, $2, $3, $4, $5, 0)`
	for _, exam := range []models.ExamType{models.ExamMidterm, models.ExamFinal} {
		if _, err := r.exec(exec).ExecContext(ctx, query,
			uuid.NewString(), record.StudentID, record.ID, record.AcademicSemesterID, exam); err != nil {
			return fmt.Errorf("insert %s mark: %w", exam, err)
		}
	}
	return nil
}

// ListByStudentAndSemester returns a student's permanent records for one
// semester.
func (r *EnrolledCourseRepository) ListByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.StudentEnrolledCourse, error) {
	const query = `SELECT id, student_id, course_id, academic_semester_id, status, grade, point, total_marks, created_at
FROM student_enrolled_courses
WHERE student_id = $1 AND academic_semester_id = $2
ORDER BY created_at`
	var records []models.StudentEnrolledCourse
	if err := r.db.SelectContext(ctx, &records, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return records, nil
}
