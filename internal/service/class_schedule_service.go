package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/dto"
	"github.com/campus-hub/academic-core-api/internal/models"
	"github.com/campus-hub/academic-core-api/internal/repository"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/events"
)

type classScheduleRepository interface {
	List(ctx context.Context, filter models.ClassScheduleFilter) ([]models.ClassScheduleDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSchedule, error)
	Create(ctx context.Context, schedule *models.ClassSchedule) error
	Update(ctx context.Context, schedule *models.ClassSchedule) error
	Delete(ctx context.Context, id string) error
}

type scheduleRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type scheduleFacultyReader interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type scheduleSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error)
}

// ClassScheduleService assigns weekly time slots to rooms and faculty. A
// slot is rejected when it is malformed or when the room or faculty is
// already booked for an overlapping slot on the same day.
type ClassScheduleService struct {
	schedules classScheduleRepository
	rooms     scheduleRoomReader
	faculties scheduleFacultyReader
	sections  scheduleSectionReader
	publisher events.Publisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassScheduleService wires the schedule assigner dependencies.
func NewClassScheduleService(
	schedules classScheduleRepository,
	rooms scheduleRoomReader,
	faculties scheduleFacultyReader,
	sections scheduleSectionReader,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ClassScheduleService{
		schedules: schedules,
		rooms:     rooms,
		faculties: faculties,
		sections:  sections,
		publisher: publisher,
		validator: validate,
		logger:    logger,
	}
}

// List returns schedules matching the query.
func (s *ClassScheduleService) List(ctx context.Context, query dto.ClassScheduleQuery) ([]models.ClassScheduleDetail, int, error) {
	filter := models.ClassScheduleFilter{
		RoomID:                 query.RoomID,
		FacultyID:              query.FacultyID,
		OfferedCourseSectionID: query.OfferedCourseSectionID,
		SemesterRegistrationID: query.SemesterRegistrationID,
		DayOfWeek:              models.WeekDay(query.DayOfWeek),
		Page:                   query.Page,
		PageSize:               query.PageSize,
		SortBy:                 query.SortBy,
		SortOrder:              query.SortOrder,
	}
	if filter.DayOfWeek != "" && !filter.DayOfWeek.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", query.DayOfWeek))
	}
	schedules, total, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class schedules")
	}
	return schedules, total, nil
}

// Get returns one schedule.
func (s *ClassScheduleService) Get(ctx context.Context, id string) (*models.ClassSchedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	return schedule, nil
}

// Assign validates the slot, checks that the referenced resources exist, and
// persists the schedule. Availability is enforced inside the repository
// transaction, so a clean conflict error here means no row was written.
func (s *ClassScheduleService) Assign(ctx context.Context, req dto.CreateClassScheduleRequest) (*models.ClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class schedule payload")
	}
	slot := models.TimeSlot{DayOfWeek: models.WeekDay(req.DayOfWeek), StartTime: req.StartTime, EndTime: req.EndTime}
	if err := slot.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	if _, err := s.sections.FindByID(ctx, req.OfferedCourseSectionID); err != nil {
		return nil, notFoundOr(err, "offered course section not found")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		return nil, notFoundOr(err, "room not found")
	}
	if _, err := s.faculties.FindByID(ctx, req.FacultyID); err != nil {
		return nil, notFoundOr(err, "faculty not found")
	}

	schedule := &models.ClassSchedule{
		DayOfWeek:              slot.DayOfWeek,
		StartTime:              slot.StartTime,
		EndTime:                slot.EndTime,
		RoomID:                 req.RoomID,
		FacultyID:              req.FacultyID,
		OfferedCourseSectionID: req.OfferedCourseSectionID,
		SemesterRegistrationID: req.SemesterRegistrationID,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, mapScheduleConflict(err)
	}

	_ = s.publisher.Publish(ctx, events.TopicScheduleAssigned, schedule)
	s.logger.Sugar().Infow("class schedule assigned",
		"schedule_id", schedule.ID,
		"room_id", schedule.RoomID,
		"faculty_id", schedule.FacultyID,
		"day", schedule.DayOfWeek)
	return schedule, nil
}

// Reassign moves an existing schedule to a new slot, room or faculty.
func (s *ClassScheduleService) Reassign(ctx context.Context, id string, req dto.UpdateClassScheduleRequest) (*models.ClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class schedule payload")
	}
	slot := models.TimeSlot{DayOfWeek: models.WeekDay(req.DayOfWeek), StartTime: req.StartTime, EndTime: req.EndTime}
	if err := slot.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "class schedule not found")
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		return nil, notFoundOr(err, "room not found")
	}
	if _, err := s.faculties.FindByID(ctx, req.FacultyID); err != nil {
		return nil, notFoundOr(err, "faculty not found")
	}

	schedule.DayOfWeek = slot.DayOfWeek
	schedule.StartTime = slot.StartTime
	schedule.EndTime = slot.EndTime
	schedule.RoomID = req.RoomID
	schedule.FacultyID = req.FacultyID
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, mapScheduleConflict(err)
	}

	_ = s.publisher.Publish(ctx, events.TopicScheduleAssigned, schedule)
	return schedule, nil
}

// Remove deletes a schedule.
func (s *ClassScheduleService) Remove(ctx context.Context, id string) error {
	if _, err := s.schedules.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "class schedule not found")
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class schedule")
	}
	return nil
}

// mapScheduleConflict turns the repository slot sentinels into the public
// conflict errors.
func mapScheduleConflict(err error) error {
	switch {
	case errors.Is(err, repository.ErrRoomSlotTaken):
		return appErrors.Clone(appErrors.ErrRoomConflict, "")
	case errors.Is(err, repository.ErrFacultySlotTaken):
		return appErrors.Clone(appErrors.ErrFacultyConflict, "")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist class schedule")
	}
}

// notFoundOr maps sql.ErrNoRows onto a NOT_FOUND with the given message and
// wraps anything else as internal.
func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// preconditionOr maps a missing row onto the given precondition error and
// wraps anything else as internal.
func preconditionOr(err error, precondition *appErrors.Error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(precondition, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, precondition.Message)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
