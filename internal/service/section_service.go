package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/dto"
	"github.com/campus-hub/academic-core-api/internal/models"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/events"
)

type sectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error)
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
	ExistsByCourseAndTitle(ctx context.Context, offeredCourseID, title string) (bool, error)
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error)
	CreateWithSchedules(ctx context.Context, section *models.OfferedCourseSection, schedules []models.ClassSchedule) error
	Update(ctx context.Context, section *models.OfferedCourseSection) error
	Delete(ctx context.Context, id string) error
}

type sectionOfferedCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourse, error)
}

type sectionRosterReader interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.SectionRosterRow, error)
}

// SectionService builds course sections. A build is all-or-nothing: the
// section row and every requested class schedule land in one transaction,
// and a single slot conflict rolls the whole thing back.
type SectionService struct {
	sections  sectionRepository
	courses   sectionOfferedCourseReader
	rooms     scheduleRoomReader
	faculties scheduleFacultyReader
	roster    sectionRosterReader
	publisher events.Publisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService wires the section builder dependencies.
func NewSectionService(
	sections sectionRepository,
	courses sectionOfferedCourseReader,
	rooms scheduleRoomReader,
	faculties scheduleFacultyReader,
	roster sectionRosterReader,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SectionService{
		sections:  sections,
		courses:   courses,
		rooms:     rooms,
		faculties: faculties,
		roster:    roster,
		publisher: publisher,
		validator: validate,
		logger:    logger,
	}
}

// Get returns a hydrated section with its course and schedules.
func (s *SectionService) Get(ctx context.Context, id string) (*models.SectionDetail, error) {
	detail, err := s.sections.FindDetailByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offered course section not found")
	}
	return detail, nil
}

// List returns sections matching the query.
func (s *SectionService) List(ctx context.Context, query dto.SectionQuery) ([]models.SectionDetail, int, error) {
	filter := models.SectionFilter{
		OfferedCourseID:        query.OfferedCourseID,
		SemesterRegistrationID: query.SemesterRegistrationID,
		AcademicDepartmentID:   query.AcademicDepartmentID,
		Search:                 query.Search,
		Page:                   query.Page,
		PageSize:               query.PageSize,
		SortBy:                 query.SortBy,
		SortOrder:              query.SortOrder,
	}
	sections, total, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, total, nil
}

// Create validates every requested slot up front, rejects duplicate titles
// under the same offering, and then persists the section with its schedules
// atomically.
func (s *SectionService) Create(ctx context.Context, req dto.CreateSectionRequest) (*models.SectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}

	offering, err := s.courses.FindByID(ctx, req.OfferedCourseID)
	if err != nil {
		return nil, notFoundOr(err, "offered course not found")
	}

	taken, err := s.sections.ExistsByCourseAndTitle(ctx, req.OfferedCourseID, req.Title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section title")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("section %q already exists for this course", req.Title))
	}

	schedules := make([]models.ClassSchedule, 0, len(req.ClassSchedules))
	for i, slotReq := range req.ClassSchedules {
		slot := models.TimeSlot{DayOfWeek: models.WeekDay(slotReq.DayOfWeek), StartTime: slotReq.StartTime, EndTime: slotReq.EndTime}
		if err := slot.Validate(); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class schedule %d: %v", i+1, err))
		}
		if _, err := s.rooms.FindByID(ctx, slotReq.RoomID); err != nil {
			return nil, notFoundOr(err, fmt.Sprintf("class schedule %d: room not found", i+1))
		}
		if _, err := s.faculties.FindByID(ctx, slotReq.FacultyID); err != nil {
			return nil, notFoundOr(err, fmt.Sprintf("class schedule %d: faculty not found", i+1))
		}
		schedules = append(schedules, models.ClassSchedule{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			RoomID:    slotReq.RoomID,
			FacultyID: slotReq.FacultyID,
		})
	}

	section := &models.OfferedCourseSection{
		Title:                  req.Title,
		MaxCapacity:            req.MaxCapacity,
		OfferedCourseID:        offering.ID,
		SemesterRegistrationID: offering.SemesterRegistrationID,
		AcademicDepartmentID:   offering.AcademicDepartmentID,
	}
	if err := s.sections.CreateWithSchedules(ctx, section, schedules); err != nil {
		return nil, mapScheduleConflict(err)
	}

	_ = s.publisher.Publish(ctx, events.TopicSectionCreated, section)
	s.logger.Sugar().Infow("course section created",
		"section_id", section.ID,
		"offered_course_id", section.OfferedCourseID,
		"schedules", len(schedules))

	detail, err := s.sections.FindDetailByID(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created section")
	}
	return detail, nil
}

// Update changes the section title or capacity.
func (s *SectionService) Update(ctx context.Context, id string, req dto.UpdateSectionRequest) (*models.SectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offered course section not found")
	}
	if req.Title != nil && *req.Title != section.Title {
		taken, err := s.sections.ExistsByCourseAndTitle(ctx, section.OfferedCourseID, *req.Title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section title")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("section %q already exists for this course", *req.Title))
		}
		section.Title = *req.Title
	}
	if req.MaxCapacity != nil {
		section.MaxCapacity = req.MaxCapacity
	}
	if err := s.sections.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return s.sections.FindDetailByID(ctx, id)
}

// Delete removes an empty section. Sections with enrolled students cannot
// be deleted.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "offered course section not found")
	}
	if section.CurrentlyEnrolledStudent > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "section has enrolled students")
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	return nil
}

// Roster returns the enrolled-student roster of a section.
func (s *SectionService) Roster(ctx context.Context, id string) (*models.SectionDetail, []models.SectionRosterRow, error) {
	detail, err := s.sections.FindDetailByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "offered course section not found")
	}
	rows, err := s.roster.ListBySection(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section roster")
	}
	return detail, rows, nil
}
