package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/academic-core-api/internal/models"
)

func TestRegistrationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs(registrationCreateLock).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM semester_registrations WHERE status IN ($1, $2)")).
		WithArgs(models.RegistrationUpcoming, models.RegistrationOngoing).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_registrations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	registration := &models.SemesterRegistration{
		StartDate:          time.Now(),
		EndDate:            time.Now().Add(14 * 24 * time.Hour),
		MinCredit:          6,
		MaxCredit:          18,
		AcademicSemesterID: "sem-1",
	}
	require.NoError(t, repo.Create(context.Background(), registration))
	require.NotEmpty(t, registration.ID)
	require.Equal(t, models.RegistrationUpcoming, registration.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCreateBlockedByActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs(registrationCreateLock).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM semester_registrations")).
		WithArgs(models.RegistrationUpcoming, models.RegistrationOngoing).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.RegistrationOngoing))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.SemesterRegistration{AcademicSemesterID: "sem-1"})
	var active *ActiveRegistrationError
	require.ErrorAs(t, err, &active)
	require.Equal(t, models.RegistrationOngoing, active.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryFindOngoing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "start_date", "end_date", "status", "min_credit", "max_credit", "academic_semester_id", "created_at", "updated_at"}).
		AddRow("reg-1", now, now.Add(24*time.Hour), models.RegistrationOngoing, 6, 18, "sem-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM semester_registrations WHERE status IN ($1)")).
		WithArgs(models.RegistrationOngoing).
		WillReturnRows(rows)

	registration, err := repo.FindOngoing(context.Background())
	require.NoError(t, err)
	require.Equal(t, "reg-1", registration.ID)
	require.Equal(t, models.RegistrationOngoing, registration.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE semester_registrations SET status = $2")).
		WithArgs("reg-1", models.RegistrationOngoing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "reg-1", models.RegistrationOngoing))
	require.NoError(t, mock.ExpectationsWereMet())
}
