package dto

// CreateSectionRequest builds a section together with its class schedules
// in one shot.
type CreateSectionRequest struct {
	Title           string                `json:"title" validate:"required"`
	MaxCapacity     *int                  `json:"maxCapacity" validate:"omitempty,min=1"`
	OfferedCourseID string                `json:"offeredCourseId" validate:"required"`
	ClassSchedules  []ScheduleSlotRequest `json:"classSchedules" validate:"omitempty,dive"`
}

// UpdateSectionRequest changes the mutable section attributes. Capacity may
// be raised or lowered; the enrolled counter is never touched here.
type UpdateSectionRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	MaxCapacity *int    `json:"maxCapacity" validate:"omitempty,min=1"`
}

// SectionQuery filters the section list endpoint.
type SectionQuery struct {
	OfferedCourseID        string `form:"offeredCourseId"`
	SemesterRegistrationID string `form:"semesterRegistrationId"`
	AcademicDepartmentID   string `form:"academicDepartmentId"`
	Search                 string `form:"search"`
	Page                   int    `form:"page"`
	PageSize               int    `form:"pageSize"`
	SortBy                 string `form:"sortBy"`
	SortOrder              string `form:"sortOrder"`
}
