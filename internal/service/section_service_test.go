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
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
)

type fakeSectionRepo struct {
	sections  map[string]models.OfferedCourseSection
	taken     map[string]bool
	createErr error
	created   *models.OfferedCourseSection
	schedules []models.ClassSchedule
	updated   *models.OfferedCourseSection
	deleted   []string
}

func sectionTitleKey(offeredCourseID, title string) string {
	return offeredCourseID + "|" + title
}

func (f *fakeSectionRepo) FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error) {
	if section, ok := f.sections[id]; ok {
		return &section, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSectionRepo) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	if section, ok := f.sections[id]; ok {
		return &models.SectionDetail{OfferedCourseSection: section}, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSectionRepo) ExistsByCourseAndTitle(ctx context.Context, offeredCourseID, title string) (bool, error) {
	return f.taken[sectionTitleKey(offeredCourseID, title)], nil
}

func (f *fakeSectionRepo) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error) {
	var list []models.SectionDetail
	for _, section := range f.sections {
		list = append(list, models.SectionDetail{OfferedCourseSection: section})
	}
	return list, len(list), nil
}

func (f *fakeSectionRepo) CreateWithSchedules(ctx context.Context, section *models.OfferedCourseSection, schedules []models.ClassSchedule) error {
	if f.createErr != nil {
		return f.createErr
	}
	if section.ID == "" {
		section.ID = "sec-new"
	}
	if f.sections == nil {
		f.sections = make(map[string]models.OfferedCourseSection)
	}
	f.sections[section.ID] = *section
	f.created = section
	f.schedules = schedules
	return nil
}

func (f *fakeSectionRepo) Update(ctx context.Context, section *models.OfferedCourseSection) error {
	f.sections[section.ID] = *section
	f.updated = section
	return nil
}

func (f *fakeSectionRepo) Delete(ctx context.Context, id string) error {
	delete(f.sections, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRoomReader struct{}

func (fakeRoomReader) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Room{ID: id, RoomNumber: "101"}, nil
}

type fakeFacultyReader struct{}

func (fakeFacultyReader) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Faculty{ID: id, FirstName: "Ada", LastName: "Lovelace"}, nil
}

type fakeRosterReader struct {
	rows []models.SectionRosterRow
}

func (f *fakeRosterReader) ListBySection(ctx context.Context, sectionID string) ([]models.SectionRosterRow, error) {
	return f.rows, nil
}

func newSectionService(sections *fakeSectionRepo, courses *fakeOfferedCourses, roster *fakeRosterReader) *SectionService {
	if roster == nil {
		roster = &fakeRosterReader{}
	}
	return NewSectionService(sections, courses, fakeRoomReader{}, fakeFacultyReader{}, roster, nil, nil, zap.NewNop())
}

func sectionCourses() *fakeOfferedCourses {
	return &fakeOfferedCourses{courses: map[string]models.OfferedCourseDetail{
		"oc-1": {
			OfferedCourse: models.OfferedCourse{ID: "oc-1", CourseID: "course-1", AcademicDepartmentID: "dept-1", SemesterRegistrationID: "reg-1"},
			CourseTitle:   "Algorithms", CourseCode: "CSE-201", CourseCredits: 3,
		},
	}}
}

func createSectionRequest() dto.CreateSectionRequest {
	capacity := 40
	return dto.CreateSectionRequest{
		Title:           "Section A",
		MaxCapacity:     &capacity,
		OfferedCourseID: "oc-1",
		ClassSchedules: []dto.ScheduleSlotRequest{
			{DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "10:30", RoomID: "room-1", FacultyID: "fac-1"},
		},
	}
}

func TestSectionServiceCreate(t *testing.T) {
	repo := &fakeSectionRepo{}
	svc := newSectionService(repo, sectionCourses(), nil)

	detail, err := svc.Create(context.Background(), createSectionRequest())
	require.NoError(t, err)
	assert.Equal(t, "Section A", detail.Title)
	assert.Equal(t, "reg-1", repo.created.SemesterRegistrationID)
	assert.Equal(t, "dept-1", repo.created.AcademicDepartmentID)
	require.Len(t, repo.schedules, 1)
	assert.Equal(t, models.Monday, repo.schedules[0].DayOfWeek)
}

func TestSectionServiceCreateDuplicateTitle(t *testing.T) {
	repo := &fakeSectionRepo{taken: map[string]bool{sectionTitleKey("oc-1", "Section A"): true}}
	svc := newSectionService(repo, sectionCourses(), nil)

	_, err := svc.Create(context.Background(), createSectionRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Section A")
}

func TestSectionServiceCreateRejectsInvertedSlot(t *testing.T) {
	repo := &fakeSectionRepo{}
	svc := newSectionService(repo, sectionCourses(), nil)

	req := createSectionRequest()
	req.ClassSchedules[0].StartTime = "11:00"
	req.ClassSchedules[0].EndTime = "09:00"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "class schedule 1")
	assert.Nil(t, repo.created)
}

func TestSectionServiceCreateUnknownRoom(t *testing.T) {
	repo := &fakeSectionRepo{}
	svc := newSectionService(repo, sectionCourses(), nil)

	req := createSectionRequest()
	req.ClassSchedules[0].RoomID = "missing"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceUpdateDuplicateTitle(t *testing.T) {
	repo := &fakeSectionRepo{
		sections: map[string]models.OfferedCourseSection{"sec-1": {ID: "sec-1", Title: "Section A", OfferedCourseID: "oc-1"}},
		taken:    map[string]bool{sectionTitleKey("oc-1", "Section B"): true},
	}
	svc := newSectionService(repo, sectionCourses(), nil)

	title := "Section B"
	_, err := svc.Update(context.Background(), "sec-1", dto.UpdateSectionRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceDeleteWithEnrolledStudents(t *testing.T) {
	repo := &fakeSectionRepo{
		sections: map[string]models.OfferedCourseSection{"sec-1": {ID: "sec-1", CurrentlyEnrolledStudent: 3}},
	}
	svc := newSectionService(repo, sectionCourses(), nil)

	err := svc.Delete(context.Background(), "sec-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestSectionServiceDeleteEmpty(t *testing.T) {
	repo := &fakeSectionRepo{
		sections: map[string]models.OfferedCourseSection{"sec-1": {ID: "sec-1"}},
	}
	svc := newSectionService(repo, sectionCourses(), nil)

	require.NoError(t, svc.Delete(context.Background(), "sec-1"))
	assert.Contains(t, repo.deleted, "sec-1")
}

func TestSectionServiceRoster(t *testing.T) {
	repo := &fakeSectionRepo{
		sections: map[string]models.OfferedCourseSection{"sec-1": {ID: "sec-1", Title: "Section A"}},
	}
	roster := &fakeRosterReader{rows: []models.SectionRosterRow{
		{StudentCode: "CSE-001", StudentName: "Ada Lovelace", IsConfirmed: true, TotalCreditsTaken: 9},
	}}
	svc := newSectionService(repo, sectionCourses(), roster)

	detail, rows, err := svc.Roster(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, "Section A", detail.Title)
	require.Len(t, rows, 1)
	assert.Equal(t, "CSE-001", rows[0].StudentCode)
}
