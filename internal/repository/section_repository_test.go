package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/academic-core-api/internal/models"
)

func testSection() *models.OfferedCourseSection {
	capacity := 40
	return &models.OfferedCourseSection{
		Title:                  "Section A",
		MaxCapacity:            &capacity,
		OfferedCourseID:        "oc-1",
		SemesterRegistrationID: "reg-1",
		AcademicDepartmentID:   "dept-1",
	}
}

func TestSectionRepositoryCreateWithSchedules(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	section := testSection()
	schedules := []models.ClassSchedule{
		{DayOfWeek: models.Tuesday, StartTime: "08:00", EndTime: "09:30", RoomID: "room-1", FacultyID: "fac-1"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO offered_course_sections")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1")).
		WithArgs("room-1", models.Tuesday).
		WillReturnRows(slotRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE faculty_id = $1")).
		WithArgs("fac-1", models.Tuesday).
		WillReturnRows(slotRows())
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithSchedules(context.Background(), section, schedules))
	require.NotEmpty(t, section.ID)
	require.Equal(t, section.ID, schedules[0].OfferedCourseSectionID)
	require.Equal(t, "reg-1", schedules[0].SemesterRegistrationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreateWithSchedulesRollsBackOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	section := testSection()
	schedules := []models.ClassSchedule{
		{DayOfWeek: models.Tuesday, StartTime: "08:00", EndTime: "09:30", RoomID: "room-1", FacultyID: "fac-1"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO offered_course_sections")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1")).
		WithArgs("room-1", models.Tuesday).
		WillReturnRows(slotRows(models.TimeSlot{DayOfWeek: models.Tuesday, StartTime: "09:00", EndTime: "10:00"}))
	mock.ExpectRollback()

	err := repo.CreateWithSchedules(context.Background(), section, schedules)
	require.ErrorIs(t, err, ErrRoomSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryExistsByCourseAndTitle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM offered_course_sections WHERE offered_course_id = $1 AND title = $2")).
		WithArgs("oc-1", "Section A").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	taken, err := repo.ExistsByCourseAndTitle(context.Background(), "oc-1", "Section A")
	require.NoError(t, err)
	require.True(t, taken)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM offered_course_sections")).
		WithArgs("oc-1", "Section B").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	taken, err = repo.ExistsByCourseAndTitle(context.Background(), "oc-1", "Section B")
	require.NoError(t, err)
	require.False(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}
