package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func enrollParams() EnrollmentParams {
	return EnrollmentParams{
		SemesterRegistrationID: "reg-1",
		StudentID:              "stu-1",
		OfferedCourseID:        "oc-1",
		SectionID:              "sec-1",
		CourseCredits:          3,
	}
}

func TestEnrollmentRepositoryEnroll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO student_semester_registration_courses")).
		WillReturnRows(sqlmock.NewRows([]string{"offered_course_id"}).AddRow("oc-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE offered_course_sections")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_semester_registrations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Enroll(context.Background(), enrollParams()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryEnrollSectionFull(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO student_semester_registration_courses")).
		WillReturnRows(sqlmock.NewRows([]string{"offered_course_id"}).AddRow("oc-1"))
	// conditional seat update matches no rows when capacity is reached
	mock.ExpectExec(regexp.QuoteMeta("UPDATE offered_course_sections")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Enroll(context.Background(), enrollParams())
	require.ErrorIs(t, err, ErrSectionFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryEnrollDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO student_semester_registration_courses")).
		WillReturnRows(sqlmock.NewRows([]string{"offered_course_id"}))
	mock.ExpectRollback()

	err := repo.Enroll(context.Background(), enrollParams())
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryWithdraw(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_semester_registration_courses")).
		WithArgs("reg-1", "stu-1", "oc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE offered_course_sections")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_semester_registrations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Withdraw(context.Background(), enrollParams()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryWithdrawNotEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_semester_registration_courses")).
		WithArgs("reg-1", "stu-1", "oc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Withdraw(context.Background(), enrollParams())
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListBySection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"student_code", "student_name", "email", "is_confirmed", "total_credits_taken"}).
		AddRow("2021-001", "Ada Lovelace", "ada@example.edu", true, 12).
		AddRow("2021-002", "Alan Turing", "alan@example.edu", false, 9)
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_semester_registration_courses ssrc")).
		WithArgs("sec-1").
		WillReturnRows(rows)

	roster, err := repo.ListBySection(context.Background(), "sec-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "2021-001", roster[0].StudentCode)
	require.True(t, roster[0].IsConfirmed)
	require.NoError(t, mock.ExpectationsWereMet())
}
