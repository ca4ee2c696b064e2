package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/dto"
	"github.com/campus-hub/academic-core-api/internal/models"
	"github.com/campus-hub/academic-core-api/internal/repository"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/events"
)

type registrationRepository interface {
	Create(ctx context.Context, registration *models.SemesterRegistration) error
	FindByID(ctx context.Context, id string) (*models.SemesterRegistration, error)
	FindDetailByID(ctx context.Context, id string) (*models.SemesterRegistrationDetail, error)
	FindByStatuses(ctx context.Context, statuses ...models.SemesterRegistrationStatus) (*models.SemesterRegistration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.SemesterRegistrationDetail, int, error)
	UpdateStatus(ctx context.Context, id string, status models.SemesterRegistrationStatus) error
	Update(ctx context.Context, registration *models.SemesterRegistration) error
	Delete(ctx context.Context, id string) error
}

type semesterRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicSemester, error)
	MakeCurrent(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type confirmedRegistrationLister interface {
	ListConfirmed(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.StudentSemesterRegistration, error)
}

type ledgerLister interface {
	ListByStudent(ctx context.Context, exec sqlx.ExtContext, registrationID, studentID string) ([]models.RegistrationCourseDetail, error)
}

type enrolledCourseWriter interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, semesterID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, record *models.StudentEnrolledCourse) error
	CreateDefaultMarks(ctx context.Context, exec sqlx.ExtContext, record *models.StudentEnrolledCourse) error
}

type paymentWriter interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, payment *models.StudentSemesterPayment) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// RegistrationService owns the registration window lifecycle: creation
// under the single-active-window rule, the strictly forward status machine,
// and the close-and-rollover that turns a finished window into permanent
// academic records.
type RegistrationService struct {
	registrations registrationRepository
	semesters     semesterRepository
	studentRegs   confirmedRegistrationLister
	ledger        ledgerLister
	enrolled      enrolledCourseWriter
	payments      paymentWriter
	tx            txProvider
	publisher     events.Publisher
	validator     *validator.Validate
	logger        *zap.Logger
	perCreditFee  float64
}

// NewRegistrationService wires the window lifecycle dependencies.
func NewRegistrationService(
	registrations registrationRepository,
	semesters semesterRepository,
	studentRegs confirmedRegistrationLister,
	ledger ledgerLister,
	enrolled enrolledCourseWriter,
	payments paymentWriter,
	tx txProvider,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
	perCreditFee float64,
) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if perCreditFee <= 0 {
		perCreditFee = 5000
	}
	return &RegistrationService{
		registrations: registrations,
		semesters:     semesters,
		studentRegs:   studentRegs,
		ledger:        ledger,
		enrolled:      enrolled,
		payments:      payments,
		tx:            tx,
		publisher:     publisher,
		validator:     validate,
		logger:        logger,
		perCreditFee:  perCreditFee,
	}
}

// Create opens a new UPCOMING registration window. At most one window may
// be UPCOMING or ONGOING at a time; the repository enforces that inside
// its transaction and this maps the refusal onto a conflict.
func (s *RegistrationService) Create(ctx context.Context, req dto.CreateRegistrationRequest) (*models.SemesterRegistrationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}
	if req.MaxCredit < req.MinCredit {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max credit must not be below min credit")
	}
	if _, err := s.semesters.FindByID(ctx, req.AcademicSemesterID); err != nil {
		return nil, notFoundOr(err, "academic semester not found")
	}

	registration := &models.SemesterRegistration{
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Status:             models.RegistrationUpcoming,
		MinCredit:          req.MinCredit,
		MaxCredit:          req.MaxCredit,
		AcademicSemesterID: req.AcademicSemesterID,
	}
	if err := s.registrations.Create(ctx, registration); err != nil {
		var active *repository.ActiveRegistrationError
		if errors.As(err, &active) {
			return nil, appErrors.Clone(appErrors.ErrConflict, active.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	return s.registrations.FindDetailByID(ctx, registration.ID)
}

// Get returns one registration with its semester.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.SemesterRegistrationDetail, error) {
	detail, err := s.registrations.FindDetailByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "semester registration not found")
	}
	return detail, nil
}

// List returns registrations matching the query.
func (s *RegistrationService) List(ctx context.Context, query dto.RegistrationQuery) ([]models.SemesterRegistrationDetail, int, error) {
	status := models.SemesterRegistrationStatus(query.Status)
	if status != "" && !status.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown registration status %q", query.Status))
	}
	filter := models.RegistrationFilter{
		Status:             status,
		AcademicSemesterID: query.AcademicSemesterID,
		Search:             query.Search,
		Page:               query.Page,
		PageSize:           query.PageSize,
		SortBy:             query.SortBy,
		SortOrder:          query.SortOrder,
	}
	registrations, total, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return registrations, total, nil
}

// Update patches window dates and credit bounds. ENDED windows are frozen.
func (s *RegistrationService) Update(ctx context.Context, id string, req dto.UpdateRegistrationRequest) (*models.SemesterRegistrationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	registration, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "semester registration not found")
	}
	if registration.Status == models.RegistrationEnded {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an ended registration cannot be modified")
	}
	if req.StartDate != nil {
		registration.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		registration.EndDate = *req.EndDate
	}
	if !registration.EndDate.After(registration.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}
	if req.MinCredit != nil {
		registration.MinCredit = *req.MinCredit
	}
	if req.MaxCredit != nil {
		registration.MaxCredit = *req.MaxCredit
	}
	if registration.MaxCredit < registration.MinCredit {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max credit must not be below min credit")
	}
	if err := s.registrations.Update(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration")
	}
	return s.registrations.FindDetailByID(ctx, id)
}

// AdvanceStatus moves the window strictly forward through
// UPCOMING, ONGOING, ENDED. Any other move is illegal.
func (s *RegistrationService) AdvanceStatus(ctx context.Context, id string, target models.SemesterRegistrationStatus) (*models.SemesterRegistrationDetail, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown registration status %q", target))
	}
	registration, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "semester registration not found")
	}
	if !registration.Status.CanAdvanceTo(target) {
		return nil, appErrors.Clone(appErrors.ErrIllegalTransition,
			fmt.Sprintf("registration cannot move from %s to %s", registration.Status, target))
	}
	if err := s.registrations.UpdateStatus(ctx, id, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration status")
	}

	_ = s.publisher.Publish(ctx, events.TopicRegistrationStatus, map[string]interface{}{
		"registration_id": id,
		"from":            registration.Status,
		"to":              target,
	})
	s.logger.Sugar().Infow("registration status advanced", "registration_id", id, "from", registration.Status, "to", target)
	return s.registrations.FindDetailByID(ctx, id)
}

// Delete removes a window that never opened. Anything past UPCOMING has
// history attached and stays.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	registration, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "semester registration not found")
	}
	if registration.Status != models.RegistrationUpcoming {
		return appErrors.Clone(appErrors.ErrConflict, "only an upcoming registration can be deleted")
	}
	if err := s.registrations.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}
	return nil
}

// StartNewSemester performs the rollover for an ENDED window: marks its
// semester current, creates a payment-due record for every confirmed
// student with credits taken, and promotes each ledger row into a
// permanent enrollment with default exam marks. Everything runs in one
// transaction and every step is idempotent, so a crashed rollover can be
// retried.
func (s *RegistrationService) StartNewSemester(ctx context.Context, registrationID string) error {
	registration, err := s.registrations.FindByID(ctx, registrationID)
	if err != nil {
		return notFoundOr(err, "semester registration not found")
	}
	if registration.Status != models.RegistrationEnded {
		return appErrors.Clone(appErrors.ErrConflict, "semester registration is not ended yet")
	}
	semester, err := s.semesters.FindByID(ctx, registration.AcademicSemesterID)
	if err != nil {
		return notFoundOr(err, "academic semester not found")
	}
	if semester.IsCurrent {
		return appErrors.Clone(appErrors.ErrConflict, "semester has already been started")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start rollover")
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if err := s.semesters.MakeCurrent(ctx, tx, semester.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to switch current semester")
	}

	confirmed, err := s.studentRegs.ListConfirmed(ctx, tx, registration.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list confirmed registrations")
	}

	var payments []models.StudentSemesterPayment
	for _, studentReg := range confirmed {
		if studentReg.TotalCreditsTaken > 0 {
			payment, err := s.ensurePayment(ctx, tx, studentReg, semester.ID)
			if err != nil {
				return err
			}
			if payment != nil {
				payments = append(payments, *payment)
			}
		}
		if err := s.promoteLedger(ctx, tx, studentReg, registration.ID, semester.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit rollover")
	}
	commit = true

	_ = s.publisher.Publish(ctx, events.TopicSemesterStarted, map[string]interface{}{
		"registration_id":      registration.ID,
		"academic_semester_id": semester.ID,
		"students_confirmed":   len(confirmed),
	})
	for i := range payments {
		_ = s.publisher.Publish(ctx, events.TopicSemesterPaymentDue, payments[i])
	}
	s.logger.Sugar().Infow("semester rollover completed",
		"registration_id", registration.ID,
		"academic_semester_id", semester.ID,
		"students_confirmed", len(confirmed),
		"payments_created", len(payments))
	return nil
}

// ensurePayment creates the payment-due record unless one exists already.
// Returns nil when the record was already there.
func (s *RegistrationService) ensurePayment(ctx context.Context, tx *sqlx.Tx, studentReg models.StudentSemesterRegistration, semesterID string) (*models.StudentSemesterPayment, error) {
	exists, err := s.payments.Exists(ctx, tx, studentReg.StudentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester payment")
	}
	if exists {
		return nil, nil
	}
	total := float64(studentReg.TotalCreditsTaken) * s.perCreditFee
	payment := &models.StudentSemesterPayment{
		StudentID:            studentReg.StudentID,
		AcademicSemesterID:   semesterID,
		FullPaymentAmount:    total,
		PartialPaymentAmount: total / 2,
		TotalDueAmount:       total,
		TotalPaidAmount:      0,
	}
	if err := s.payments.Create(ctx, tx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester payment")
	}
	return payment, nil
}

// promoteLedger copies the student's ledger rows into permanent enrollment
// records, skipping courses already promoted.
func (s *RegistrationService) promoteLedger(ctx context.Context, tx *sqlx.Tx, studentReg models.StudentSemesterRegistration, registrationID, semesterID string) error {
	courses, err := s.ledger.ListByStudent(ctx, tx, registrationID, studentReg.StudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registration courses")
	}
	for _, course := range courses {
		exists, err := s.enrolled.Exists(ctx, tx, studentReg.StudentID, course.CourseID, semesterID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrolled course")
		}
		if exists {
			continue
		}
		record := &models.StudentEnrolledCourse{
			StudentID:          studentReg.StudentID,
			CourseID:           course.CourseID,
			AcademicSemesterID: semesterID,
			Status:             models.EnrolledCourseOngoing,
			CreatedAt:          time.Now().UTC(),
		}
		if err := s.enrolled.Create(ctx, tx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrolled course")
		}
		if err := s.enrolled.CreateDefaultMarks(ctx, tx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed course marks")
		}
	}
	return nil
}
