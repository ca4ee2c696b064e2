package dto

// ScheduleSlotRequest is the common shape of one weekly class slot.
type ScheduleSlotRequest struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	RoomID    string `json:"roomId" validate:"required"`
	FacultyID string `json:"facultyId" validate:"required"`
}

// CreateClassScheduleRequest assigns a slot to an existing section.
type CreateClassScheduleRequest struct {
	ScheduleSlotRequest
	OfferedCourseSectionID string `json:"offeredCourseSectionId" validate:"required"`
	SemesterRegistrationID string `json:"semesterRegistrationId" validate:"required"`
}

// UpdateClassScheduleRequest replaces the slot of an existing schedule.
type UpdateClassScheduleRequest struct {
	ScheduleSlotRequest
}

// ClassScheduleQuery filters the schedule list endpoint.
type ClassScheduleQuery struct {
	RoomID                 string `form:"roomId"`
	FacultyID              string `form:"facultyId"`
	OfferedCourseSectionID string `form:"sectionId"`
	SemesterRegistrationID string `form:"semesterRegistrationId"`
	DayOfWeek              string `form:"dayOfWeek"`
	Page                   int    `form:"page"`
	PageSize               int    `form:"pageSize"`
	SortBy                 string `form:"sortBy"`
	SortOrder              string `form:"sortOrder"`
}
