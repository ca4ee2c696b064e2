package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/dto"
	"github.com/campus-hub/academic-core-api/internal/models"
	"github.com/campus-hub/academic-core-api/internal/repository"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/events"
)

type studentReader interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

type activeRegistrationReader interface {
	FindByStatuses(ctx context.Context, statuses ...models.SemesterRegistrationStatus) (*models.SemesterRegistration, error)
	FindOngoing(ctx context.Context) (*models.SemesterRegistration, error)
}

type studentRegistrationRepository interface {
	FindByStudentAndRegistration(ctx context.Context, exec sqlx.ExtContext, studentID, registrationID string) (*models.StudentSemesterRegistration, error)
	Create(ctx context.Context, exec sqlx.ExtContext, record *models.StudentSemesterRegistration) error
	SetConfirmed(ctx context.Context, exec sqlx.ExtContext, id string, confirmed bool) error
}

type offeredCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourse, error)
	FindDetailByID(ctx context.Context, id string) (*models.OfferedCourseDetail, error)
	ListByRegistrationAndDepartment(ctx context.Context, registrationID, departmentID string) ([]models.OfferedCourseDetail, error)
	ListCompletedCourseIDs(ctx context.Context, studentID string) ([]string, error)
}

type enrollmentLedger interface {
	Enroll(ctx context.Context, params repository.EnrollmentParams) error
	Withdraw(ctx context.Context, params repository.EnrollmentParams) error
	FindByStudentAndCourse(ctx context.Context, registrationID, studentID, offeredCourseID string) (*models.StudentSemesterRegistrationCourse, error)
	ListByStudent(ctx context.Context, exec sqlx.ExtContext, registrationID, studentID string) ([]models.RegistrationCourseDetail, error)
}

type registrationSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error)
	ListDetailByRegistration(ctx context.Context, registrationID string) ([]models.SectionDetail, error)
}

// MyRegistration pairs the active window with the student's own state in
// it. Registration is nil until the student has started.
type MyRegistration struct {
	Window       *models.SemesterRegistration        `json:"semester_registration"`
	Registration *models.StudentSemesterRegistration `json:"student_registration,omitempty"`
}

// EnrollmentService runs the student-facing registration flows: starting a
// registration, enrolling into and withdrawing from offerings, confirming
// the final course list, and browsing the per-student catalogue.
type EnrollmentService struct {
	students      studentReader
	registrations activeRegistrationReader
	studentRegs   studentRegistrationRepository
	courses       offeredCourseReader
	sections      registrationSectionReader
	ledger        enrollmentLedger
	publisher     events.Publisher
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewEnrollmentService wires the enrollment flow dependencies.
func NewEnrollmentService(
	students studentReader,
	registrations activeRegistrationReader,
	studentRegs studentRegistrationRepository,
	courses offeredCourseReader,
	sections registrationSectionReader,
	ledger enrollmentLedger,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &EnrollmentService{
		students:      students,
		registrations: registrations,
		studentRegs:   studentRegs,
		courses:       courses,
		sections:      sections,
		ledger:        ledger,
		publisher:     publisher,
		validator:     validate,
		logger:        logger,
	}
}

// StartMyRegistration lazily creates the student's registration row for the
// active window. Starting twice returns the existing row.
func (s *EnrollmentService) StartMyRegistration(ctx context.Context, studentExternalID string) (*MyRegistration, error) {
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindByStatuses(ctx, models.RegistrationUpcoming, models.RegistrationOngoing)
	if err != nil {
		return nil, preconditionOr(err, appErrors.ErrNoActiveWindow, "no upcoming or ongoing semester registration")
	}
	if window.Status == models.RegistrationUpcoming {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester registration has not started yet")
	}

	record, err := s.studentRegs.FindByStudentAndRegistration(ctx, nil, student.ID, window.ID)
	if err == nil {
		return &MyRegistration{Window: window, Registration: record}, nil
	}
	if !isNoRows(err) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student registration")
	}

	record = &models.StudentSemesterRegistration{
		StudentID:              student.ID,
		SemesterRegistrationID: window.ID,
	}
	if err := s.studentRegs.Create(ctx, nil, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start registration")
	}
	s.logger.Sugar().Infow("student registration started", "student_id", student.ID, "registration_id", window.ID)
	return &MyRegistration{Window: window, Registration: record}, nil
}

// GetMyRegistration returns the active window together with the student's
// row in it, if any.
func (s *EnrollmentService) GetMyRegistration(ctx context.Context, studentExternalID string) (*MyRegistration, error) {
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindByStatuses(ctx, models.RegistrationUpcoming, models.RegistrationOngoing)
	if err != nil {
		return nil, preconditionOr(err, appErrors.ErrNoActiveWindow, "no upcoming or ongoing semester registration")
	}
	result := &MyRegistration{Window: window}
	record, err := s.studentRegs.FindByStudentAndRegistration(ctx, nil, student.ID, window.ID)
	if err == nil {
		result.Registration = record
	} else if !isNoRows(err) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student registration")
	}
	return result, nil
}

// Enroll adds one offering to the student's ledger. Preconditions are
// checked in a fixed order so callers always see the same failure for the
// same state; the capacity race itself is settled inside the ledger
// transaction.
func (s *EnrollmentService) Enroll(ctx context.Context, studentExternalID string, req dto.EnrollCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindOngoing(ctx)
	if err != nil {
		return preconditionOr(err, appErrors.ErrNoActiveWindow, "")
	}
	course, err := s.courses.FindDetailByID(ctx, req.OfferedCourseID)
	if err != nil {
		return notFoundOr(err, "offered course not found")
	}
	section, err := s.sections.FindByID(ctx, req.OfferedCourseSectionID)
	if err != nil {
		return notFoundOr(err, "offered course section not found")
	}
	if section.OfferedCourseID != course.ID {
		return appErrors.Clone(appErrors.ErrValidation, "section does not belong to the offered course")
	}
	if _, err := s.studentRegs.FindByStudentAndRegistration(ctx, nil, student.ID, window.ID); err != nil {
		return preconditionOr(err, appErrors.ErrNotRegistered, "")
	}
	if section.MaxCapacity != nil && section.CurrentlyEnrolledStudent >= *section.MaxCapacity {
		return appErrors.Clone(appErrors.ErrCapacityFull, "")
	}

	err = s.ledger.Enroll(ctx, repository.EnrollmentParams{
		SemesterRegistrationID: window.ID,
		StudentID:              student.ID,
		OfferedCourseID:        course.ID,
		SectionID:              section.ID,
		CourseCredits:          course.CourseCredits,
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		return appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
	case errors.Is(err, repository.ErrSectionFull):
		return appErrors.Clone(appErrors.ErrCapacityFull, "")
	case err != nil:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}

	_ = s.publisher.Publish(ctx, events.TopicStudentEnrolled, map[string]interface{}{
		"student_id":        student.ID,
		"registration_id":   window.ID,
		"offered_course_id": course.ID,
		"section_id":        section.ID,
	})
	s.logger.Sugar().Infow("student enrolled",
		"student_id", student.ID, "offered_course_id", course.ID, "section_id", section.ID)
	return nil
}

// Withdraw removes one offering from the student's ledger and releases the
// seat and credits taken by it.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentExternalID string, req dto.WithdrawCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid withdrawal payload")
	}
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindOngoing(ctx)
	if err != nil {
		return preconditionOr(err, appErrors.ErrNoActiveWindow, "")
	}
	course, err := s.courses.FindDetailByID(ctx, req.OfferedCourseID)
	if err != nil {
		return notFoundOr(err, "offered course not found")
	}
	row, err := s.ledger.FindByStudentAndCourse(ctx, window.ID, student.ID, course.ID)
	if err != nil {
		return preconditionOr(err, appErrors.ErrNotEnrolled, "")
	}

	err = s.ledger.Withdraw(ctx, repository.EnrollmentParams{
		SemesterRegistrationID: window.ID,
		StudentID:              student.ID,
		OfferedCourseID:        course.ID,
		SectionID:              row.OfferedCourseSectionID,
		CourseCredits:          course.CourseCredits,
	})
	if errors.Is(err, repository.ErrEnrollmentNotFound) {
		return appErrors.Clone(appErrors.ErrNotEnrolled, "")
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw")
	}

	_ = s.publisher.Publish(ctx, events.TopicStudentWithdrawn, map[string]interface{}{
		"student_id":        student.ID,
		"registration_id":   window.ID,
		"offered_course_id": course.ID,
	})
	s.logger.Sugar().Infow("student withdrew",
		"student_id", student.ID, "offered_course_id", course.ID)
	return nil
}

// Confirm locks the student's course list for the window. Total credits
// taken must fall inside the window's inclusive bounds.
func (s *EnrollmentService) Confirm(ctx context.Context, studentExternalID string) error {
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindOngoing(ctx)
	if err != nil {
		return preconditionOr(err, appErrors.ErrNoActiveWindow, "")
	}
	record, err := s.studentRegs.FindByStudentAndRegistration(ctx, nil, student.ID, window.ID)
	if err != nil {
		return preconditionOr(err, appErrors.ErrNotRegistered, "")
	}
	if record.TotalCreditsTaken == 0 {
		return appErrors.Clone(appErrors.ErrNotEnrolled, "no courses enrolled for this registration")
	}
	if record.TotalCreditsTaken < window.MinCredit || record.TotalCreditsTaken > window.MaxCredit {
		return appErrors.Clone(appErrors.ErrCreditOutOfRange,
			fmt.Sprintf("total credits taken must be between %d and %d", window.MinCredit, window.MaxCredit))
	}
	if err := s.studentRegs.SetConfirmed(ctx, nil, record.ID, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm registration")
	}

	_ = s.publisher.Publish(ctx, events.TopicRegistrationConfirmed, map[string]interface{}{
		"student_id":      student.ID,
		"registration_id": window.ID,
		"credits_taken":   record.TotalCreditsTaken,
	})
	s.logger.Sugar().Infow("registration confirmed",
		"student_id", student.ID, "registration_id", window.ID, "credits", record.TotalCreditsTaken)
	return nil
}

// MyCourses returns the catalogue of the active window for the student's
// department, one entry per course with its sections hydrated, flagged
// against the student's history and current ledger.
func (s *EnrollmentService) MyCourses(ctx context.Context, studentExternalID string) ([]models.AvailableCourse, error) {
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindByStatuses(ctx, models.RegistrationUpcoming, models.RegistrationOngoing)
	if err != nil {
		return nil, preconditionOr(err, appErrors.ErrNoActiveWindow, "no upcoming or ongoing semester registration")
	}

	offerings, err := s.courses.ListByRegistrationAndDepartment(ctx, window.ID, student.AcademicDepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offered courses")
	}
	completedIDs, err := s.courses.ListCompletedCourseIDs(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list completed courses")
	}
	enrollments, err := s.ledger.ListByStudent(ctx, nil, window.ID, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	sections, err := s.sections.ListDetailByRegistration(ctx, window.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}
	takenSection := make(map[string]string, len(enrollments))
	for _, enrollment := range enrollments {
		takenSection[enrollment.OfferedCourseID] = enrollment.OfferedCourseSectionID
	}
	sectionsByOffering := make(map[string][]models.SectionDetail, len(offerings))
	for _, section := range sections {
		sectionsByOffering[section.OfferedCourseID] = append(sectionsByOffering[section.OfferedCourseID], section)
	}

	// One entry per course; offerings are already per-course in a window
	// but the map keeps duplicates from ever surfacing.
	byCourse := make(map[string]*models.AvailableCourse, len(offerings))
	for _, offering := range offerings {
		entry, ok := byCourse[offering.CourseID]
		if !ok {
			entry = &models.AvailableCourse{
				CourseID:        offering.CourseID,
				CourseTitle:     offering.CourseTitle,
				CourseCode:      offering.CourseCode,
				CourseCredits:   offering.CourseCredits,
				OfferedCourseID: offering.ID,
				IsCompleted:     completed[offering.CourseID],
			}
			byCourse[offering.CourseID] = entry
		}
		if sectionID, taken := takenSection[offering.ID]; taken {
			entry.IsTaken = true
			entry.TakenSectionID = sectionID
		}
		entry.Sections = append(entry.Sections, sectionsByOffering[offering.ID]...)
	}

	catalogue := make([]models.AvailableCourse, 0, len(byCourse))
	for _, entry := range byCourse {
		catalogue = append(catalogue, *entry)
	}
	sort.Slice(catalogue, func(i, j int) bool { return catalogue[i].CourseTitle < catalogue[j].CourseTitle })
	return catalogue, nil
}

// MyEnrolledCourses returns the student's current ledger for the active
// window.
func (s *EnrollmentService) MyEnrolledCourses(ctx context.Context, studentExternalID string) ([]models.RegistrationCourseDetail, error) {
	student, err := s.students.FindByStudentID(ctx, studentExternalID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	window, err := s.registrations.FindOngoing(ctx)
	if err != nil {
		return nil, preconditionOr(err, appErrors.ErrNoActiveWindow, "")
	}
	courses, err := s.ledger.ListByStudent(ctx, nil, window.ID, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return courses, nil
}
