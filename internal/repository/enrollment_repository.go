package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

var (
	// ErrAlreadyEnrolled is returned when a ledger row for the student and
	// offering already exists.
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	// ErrSectionFull is returned when the seat update matches no rows,
	// meaning capacity was reached by a concurrent enrollment.
	ErrSectionFull = errors.New("section has no remaining capacity")
	// ErrEnrollmentNotFound is returned by Withdraw when no ledger row
	// exists for the student and offering.
	ErrEnrollmentNotFound = errors.New("enrollment record not found")
)

// EnrollmentParams identifies one ledger mutation.
type EnrollmentParams struct {
	SemesterRegistrationID string
	StudentID              string
	OfferedCourseID        string
	SectionID              string
	CourseCredits          int
}

// EnrollmentRepository owns the enrollment ledger and the counters kept in
// step with it. Enroll and Withdraw each run their three mutations in a
// single transaction so the counters never drift from the ledger.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Enroll inserts the ledger row, takes a seat, and adds the course credits
// to the student's running total. The seat update is conditional on
// remaining capacity, so two students cannot take the last seat.
func (r *EnrollmentRepository) Enroll(ctx context.Context, params EnrollmentParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	var insertedCourseID string
	err = tx.GetContext(ctx, &insertedCourseID,
		`INSERT INTO student_semester_registration_courses
                 (semester_registration_id, student_id, offered_course_id, offered_course_section_id, created_at)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (semester_registration_id, student_id, offered_course_id) DO NOTHING
         RETURNING offered_course_id`,
		params.SemesterRegistrationID, params.StudentID, params.OfferedCourseID, params.SectionID, time.Now().UTC())
	if err == sql.ErrNoRows {
		return ErrAlreadyEnrolled
	}
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}

	seat, err := tx.ExecContext(ctx,
		`UPDATE offered_course_sections
         SET currently_enrolled_student = currently_enrolled_student + 1, updated_at = $2
         WHERE id = $1 AND (max_capacity IS NULL OR currently_enrolled_student < max_capacity)`,
		params.SectionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("take seat: %w", err)
	}
	taken, err := seat.RowsAffected()
	if err != nil {
		return fmt.Errorf("take seat result: %w", err)
	}
	if taken == 0 {
		return ErrSectionFull
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE student_semester_registrations
         SET total_credits_taken = total_credits_taken + $3, updated_at = $4
         WHERE student_id = $1 AND semester_registration_id = $2`,
		params.StudentID, params.SemesterRegistrationID, params.CourseCredits, time.Now().UTC()); err != nil {
		return fmt.Errorf("add credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll: %w", err)
	}
	commit = true
	return nil
}

// Withdraw removes the ledger row, releases the seat, and subtracts the
// course credits, all in one transaction.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, params EnrollmentParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin withdraw: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	removed, err := tx.ExecContext(ctx,
		`DELETE FROM student_semester_registration_courses
         WHERE semester_registration_id = $1 AND student_id = $2 AND offered_course_id = $3`,
		params.SemesterRegistrationID, params.StudentID, params.OfferedCourseID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	deleted, err := removed.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment result: %w", err)
	}
	if deleted == 0 {
		return ErrEnrollmentNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE offered_course_sections
         SET currently_enrolled_student = currently_enrolled_student - 1, updated_at = $2
         WHERE id = $1`,
		params.SectionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE student_semester_registrations
         SET total_credits_taken = total_credits_taken - $3, updated_at = $4
         WHERE student_id = $1 AND semester_registration_id = $2`,
		params.StudentID, params.SemesterRegistrationID, params.CourseCredits, time.Now().UTC()); err != nil {
		return fmt.Errorf("subtract credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit withdraw: %w", err)
	}
	commit = true
	return nil
}

// FindByStudentAndCourse returns the ledger row for one offering, if any.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, registrationID, studentID, offeredCourseID string) (*models.StudentSemesterRegistrationCourse, error) {
	const query = `SELECT semester_registration_id, student_id, offered_course_id, offered_course_section_id, created_at
FROM student_semester_registration_courses
WHERE semester_registration_id = $1 AND student_id = $2 AND offered_course_id = $3`
	var row models.StudentSemesterRegistrationCourse
	if err := r.db.GetContext(ctx, &row, query, registrationID, studentID, offeredCourseID); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByStudent returns the student's ledger rows enriched with course
// info, used by the my-courses view and the rollover.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, exec sqlx.ExtContext, registrationID, studentID string) ([]models.RegistrationCourseDetail, error) {
	const query = `SELECT ssrc.semester_registration_id, ssrc.student_id, ssrc.offered_course_id, ssrc.offered_course_section_id, ssrc.created_at,
        c.id AS course_id, c.title AS course_title, c.credits AS course_credits,
        ocs.title AS section_title
        FROM student_semester_registration_courses ssrc
        JOIN offered_courses oc ON oc.id = ssrc.offered_course_id
        JOIN courses c ON c.id = oc.course_id
        JOIN offered_course_sections ocs ON ocs.id = ssrc.offered_course_section_id
        WHERE ssrc.semester_registration_id = $1 AND ssrc.student_id = $2
        ORDER BY ssrc.created_at`
	var rows []models.RegistrationCourseDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, registrationID, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return rows, nil
}

// ListBySection returns the roster for one section.
func (r *EnrollmentRepository) ListBySection(ctx context.Context, sectionID string) ([]models.SectionRosterRow, error) {
	const query = `SELECT s.student_id AS student_code, s.first_name || ' ' || s.last_name AS student_name, s.email,
        ssr.is_confirmed, ssr.total_credits_taken
        FROM student_semester_registration_courses ssrc
        JOIN students s ON s.id = ssrc.student_id
        JOIN student_semester_registrations ssr
          ON ssr.student_id = ssrc.student_id AND ssr.semester_registration_id = ssrc.semester_registration_id
        WHERE ssrc.offered_course_section_id = $1
        ORDER BY s.student_id`
	var rows []models.SectionRosterRow
	if err := r.db.SelectContext(ctx, &rows, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section roster: %w", err)
	}
	return rows, nil
}
