package dto

import "time"

// CreateRegistrationRequest opens a new registration window.
type CreateRegistrationRequest struct {
	StartDate          time.Time `json:"startDate" validate:"required"`
	EndDate            time.Time `json:"endDate" validate:"required"`
	MinCredit          int       `json:"minCredit" validate:"min=0"`
	MaxCredit          int       `json:"maxCredit" validate:"required,min=1"`
	AcademicSemesterID string    `json:"academicSemesterId" validate:"required"`
}

// UpdateRegistrationRequest changes window dates or credit bounds.
type UpdateRegistrationRequest struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	MinCredit *int       `json:"minCredit" validate:"omitempty,min=0"`
	MaxCredit *int       `json:"maxCredit" validate:"omitempty,min=1"`
}

// UpdateRegistrationStatusRequest advances the window state machine.
type UpdateRegistrationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=UPCOMING ONGOING ENDED"`
}

// RegistrationQuery filters the registration list endpoint.
type RegistrationQuery struct {
	Status             string `form:"status"`
	AcademicSemesterID string `form:"academicSemesterId"`
	Search             string `form:"search"`
	Page               int    `form:"page"`
	PageSize           int    `form:"pageSize"`
	SortBy             string `form:"sortBy"`
	SortOrder          string `form:"sortOrder"`
}

// EnrollCourseRequest adds one offering to the student's ledger.
type EnrollCourseRequest struct {
	OfferedCourseID        string `json:"offeredCourseId" validate:"required"`
	OfferedCourseSectionID string `json:"offeredCourseSectionId" validate:"required"`
}

// WithdrawCourseRequest removes one offering from the student's ledger.
type WithdrawCourseRequest struct {
	OfferedCourseID string `json:"offeredCourseId" validate:"required"`
}
