package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/academic-core-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testSchedule() *models.ClassSchedule {
	return &models.ClassSchedule{
		DayOfWeek:              models.Monday,
		StartTime:              "09:00",
		EndTime:                "10:30",
		RoomID:                 "room-1",
		FacultyID:              "fac-1",
		OfferedCourseSectionID: "sec-1",
		SemesterRegistrationID: "reg-1",
	}
}

func expectSlotLocks(mock sqlmock.Sqlmock, roomID, facultyID string) {
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("room:" + roomID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("faculty:" + facultyID).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func slotRows(slots ...models.TimeSlot) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"day_of_week", "start_time", "end_time"})
	for _, slot := range slots {
		rows.AddRow(slot.DayOfWeek, slot.StartTime, slot.EndTime)
	}
	return rows
}

func TestClassScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassScheduleRepository(db)
	schedule := testSchedule()

	mock.ExpectBegin()
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1 AND day_of_week = $2")).
		WithArgs("room-1", models.Monday).
		WillReturnRows(slotRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE faculty_id = $1 AND day_of_week = $2")).
		WithArgs("fac-1", models.Monday).
		WillReturnRows(slotRows())
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), schedule))
	require.NotEmpty(t, schedule.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryCreateRoomConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassScheduleRepository(db)
	schedule := testSchedule()

	mock.ExpectBegin()
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1")).
		WithArgs("room-1", models.Monday).
		WillReturnRows(slotRows(models.TimeSlot{DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "11:00"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), schedule)
	require.ErrorIs(t, err, ErrRoomSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryCreateFacultyConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassScheduleRepository(db)
	schedule := testSchedule()

	mock.ExpectBegin()
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1")).
		WithArgs("room-1", models.Monday).
		WillReturnRows(slotRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE faculty_id = $1")).
		WithArgs("fac-1", models.Monday).
		WillReturnRows(slotRows(models.TimeSlot{DayOfWeek: models.Monday, StartTime: "09:30", EndTime: "10:00"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), schedule)
	require.ErrorIs(t, err, ErrFacultySlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryCreateBackToBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassScheduleRepository(db)
	schedule := testSchedule()

	mock.ExpectBegin()
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1")).
		WithArgs("room-1", models.Monday).
		WillReturnRows(slotRows(models.TimeSlot{DayOfWeek: models.Monday, StartTime: "07:30", EndTime: "09:00"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, start_time, end_time FROM class_schedules WHERE faculty_id = $1")).
		WithArgs("fac-1", models.Monday).
		WillReturnRows(slotRows(models.TimeSlot{DayOfWeek: models.Monday, StartTime: "10:30", EndTime: "12:00"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), schedule))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryUpdateExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewClassScheduleRepository(db)
	schedule := testSchedule()
	schedule.ID = "sched-1"

	mock.ExpectBegin()
	expectSlotLocks(mock, "room-1", "fac-1")
	mock.ExpectQuery(regexp.QuoteMeta("AND id <> $3")).
		WithArgs("room-1", models.Monday, "sched-1").
		WillReturnRows(slotRows())
	mock.ExpectQuery(regexp.QuoteMeta("AND id <> $3")).
		WithArgs("fac-1", models.Monday, "sched-1").
		WillReturnRows(slotRows())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_schedules")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), schedule))
	require.NoError(t, mock.ExpectationsWereMet())
}
