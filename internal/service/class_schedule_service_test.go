package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-hub/academic-core-api/internal/dto"
	"github.com/campus-hub/academic-core-api/internal/models"
	"github.com/campus-hub/academic-core-api/internal/repository"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
)

type fakeClassScheduleRepo struct {
	schedules map[string]models.ClassSchedule
	createErr error
	updateErr error
	created   *models.ClassSchedule
	updated   *models.ClassSchedule
	deleted   []string
}

func (f *fakeClassScheduleRepo) List(ctx context.Context, filter models.ClassScheduleFilter) ([]models.ClassScheduleDetail, int, error) {
	var list []models.ClassScheduleDetail
	for _, schedule := range f.schedules {
		list = append(list, models.ClassScheduleDetail{ClassSchedule: schedule})
	}
	return list, len(list), nil
}

func (f *fakeClassScheduleRepo) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	if schedule, ok := f.schedules[id]; ok {
		return &schedule, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClassScheduleRepo) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	if f.createErr != nil {
		return f.createErr
	}
	if schedule.ID == "" {
		schedule.ID = "sched-new"
	}
	if f.schedules == nil {
		f.schedules = make(map[string]models.ClassSchedule)
	}
	f.schedules[schedule.ID] = *schedule
	f.created = schedule
	return nil
}

func (f *fakeClassScheduleRepo) Update(ctx context.Context, schedule *models.ClassSchedule) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.schedules[schedule.ID] = *schedule
	f.updated = schedule
	return nil
}

func (f *fakeClassScheduleRepo) Delete(ctx context.Context, id string) error {
	delete(f.schedules, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newScheduleService(repo *fakeClassScheduleRepo) *ClassScheduleService {
	sections := &fakeSectionReader{sections: map[string]models.OfferedCourseSection{
		"sec-1": {ID: "sec-1", OfferedCourseID: "oc-1", SemesterRegistrationID: "reg-1"},
	}}
	return NewClassScheduleService(repo, fakeRoomReader{}, fakeFacultyReader{}, sections, nil, nil, zap.NewNop())
}

func assignRequest() dto.CreateClassScheduleRequest {
	return dto.CreateClassScheduleRequest{
		ScheduleSlotRequest: dto.ScheduleSlotRequest{
			DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "10:30", RoomID: "room-1", FacultyID: "fac-1",
		},
		OfferedCourseSectionID: "sec-1",
		SemesterRegistrationID: "reg-1",
	}
}

func TestClassScheduleServiceAssign(t *testing.T) {
	repo := &fakeClassScheduleRepo{}
	svc := newScheduleService(repo)

	schedule, err := svc.Assign(context.Background(), assignRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.ID)
	assert.Equal(t, models.Monday, repo.created.DayOfWeek)
	assert.Equal(t, "sec-1", repo.created.OfferedCourseSectionID)
}

func TestClassScheduleServiceAssignRejectsInvertedSlot(t *testing.T) {
	repo := &fakeClassScheduleRepo{}
	svc := newScheduleService(repo)

	req := assignRequest()
	req.StartTime = "10:30"
	req.EndTime = "09:00"
	_, err := svc.Assign(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestClassScheduleServiceAssignRejectsUnknownDay(t *testing.T) {
	repo := &fakeClassScheduleRepo{}
	svc := newScheduleService(repo)

	req := assignRequest()
	req.DayOfWeek = "SOMEDAY"
	_, err := svc.Assign(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassScheduleServiceAssignMapsConflicts(t *testing.T) {
	repo := &fakeClassScheduleRepo{createErr: repository.ErrRoomSlotTaken}
	svc := newScheduleService(repo)

	_, err := svc.Assign(context.Background(), assignRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoomConflict.Code, appErrors.FromError(err).Code)

	repo.createErr = repository.ErrFacultySlotTaken
	_, err = svc.Assign(context.Background(), assignRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFacultyConflict.Code, appErrors.FromError(err).Code)
}

func TestClassScheduleServiceAssignUnknownSection(t *testing.T) {
	repo := &fakeClassScheduleRepo{}
	svc := newScheduleService(repo)

	req := assignRequest()
	req.OfferedCourseSectionID = "sec-404"
	_, err := svc.Assign(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassScheduleServiceReassign(t *testing.T) {
	repo := &fakeClassScheduleRepo{schedules: map[string]models.ClassSchedule{
		"sched-1": {ID: "sched-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:30", RoomID: "room-1", FacultyID: "fac-1"},
	}}
	svc := newScheduleService(repo)

	schedule, err := svc.Reassign(context.Background(), "sched-1", dto.UpdateClassScheduleRequest{
		ScheduleSlotRequest: dto.ScheduleSlotRequest{
			DayOfWeek: "WEDNESDAY", StartTime: "13:00", EndTime: "14:30", RoomID: "room-2", FacultyID: "fac-1",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Wednesday, schedule.DayOfWeek)
	assert.Equal(t, "room-2", repo.updated.RoomID)
}

func TestClassScheduleServiceListRejectsUnknownDay(t *testing.T) {
	repo := &fakeClassScheduleRepo{}
	svc := newScheduleService(repo)

	_, _, err := svc.List(context.Background(), dto.ClassScheduleQuery{DayOfWeek: "SOMEDAY"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassScheduleServiceRemove(t *testing.T) {
	repo := &fakeClassScheduleRepo{schedules: map[string]models.ClassSchedule{"sched-1": {ID: "sched-1"}}}
	svc := newScheduleService(repo)

	require.NoError(t, svc.Remove(context.Background(), "sched-1"))
	assert.Contains(t, repo.deleted, "sched-1")

	err := svc.Remove(context.Background(), "sched-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
