package models

import "time"

// SemesterRegistrationStatus is the lifecycle state of a registration
// window. Transitions are strictly forward: UPCOMING -> ONGOING -> ENDED.
type SemesterRegistrationStatus string

const (
	RegistrationUpcoming SemesterRegistrationStatus = "UPCOMING"
	RegistrationOngoing  SemesterRegistrationStatus = "ONGOING"
	RegistrationEnded    SemesterRegistrationStatus = "ENDED"
)

// Valid reports whether the value is a known status.
func (s SemesterRegistrationStatus) Valid() bool {
	switch s {
	case RegistrationUpcoming, RegistrationOngoing, RegistrationEnded:
		return true
	}
	return false
}

// CanAdvanceTo applies the state machine rule: from UPCOMING only ONGOING
// is legal, from ONGOING only ENDED, and ENDED is terminal.
func (s SemesterRegistrationStatus) CanAdvanceTo(target SemesterRegistrationStatus) bool {
	switch s {
	case RegistrationUpcoming:
		return target == RegistrationOngoing
	case RegistrationOngoing:
		return target == RegistrationEnded
	}
	return false
}

// SemesterRegistration is the administrative window during which students
// enroll for an upcoming academic semester.
type SemesterRegistration struct {
	ID                 string                     `db:"id" json:"id"`
	StartDate          time.Time                  `db:"start_date" json:"start_date"`
	EndDate            time.Time                  `db:"end_date" json:"end_date"`
	Status             SemesterRegistrationStatus `db:"status" json:"status"`
	MinCredit          int                        `db:"min_credit" json:"min_credit"`
	MaxCredit          int                        `db:"max_credit" json:"max_credit"`
	AcademicSemesterID string                     `db:"academic_semester_id" json:"academic_semester_id"`
	CreatedAt          time.Time                  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                  `db:"updated_at" json:"updated_at"`
}

// SemesterRegistrationDetail joins the registration with its semester.
type SemesterRegistrationDetail struct {
	SemesterRegistration
	SemesterTitle     string `db:"semester_title" json:"semester_title"`
	SemesterYear      int    `db:"semester_year" json:"semester_year"`
	SemesterIsCurrent bool   `db:"semester_is_current" json:"semester_is_current"`
}

// RegistrationFilter defines filters supported by list endpoints.
type RegistrationFilter struct {
	Status             SemesterRegistrationStatus
	AcademicSemesterID string
	Search             string
	Page               int
	PageSize           int
	SortBy             string
	SortOrder          string
}

// StudentSemesterRegistration tracks one student inside one registration
// window. The credit counter is mutated only by the enrollment ledger.
type StudentSemesterRegistration struct {
	ID                     string    `db:"id" json:"id"`
	StudentID              string    `db:"student_id" json:"student_id"`
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semester_registration_id"`
	IsConfirmed            bool      `db:"is_confirmed" json:"is_confirmed"`
	TotalCreditsTaken      int       `db:"total_credits_taken" json:"total_credits_taken"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// StudentSemesterRegistrationCourse is the ledger row: its existence means
// "currently enrolled in this offering this window".
type StudentSemesterRegistrationCourse struct {
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semester_registration_id"`
	StudentID              string    `db:"student_id" json:"student_id"`
	OfferedCourseID        string    `db:"offered_course_id" json:"offered_course_id"`
	OfferedCourseSectionID string    `db:"offered_course_section_id" json:"offered_course_section_id"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

// RegistrationCourseDetail enriches a ledger row with course info, used by
// the "my courses" view and the rollover.
type RegistrationCourseDetail struct {
	StudentSemesterRegistrationCourse
	CourseID      string `db:"course_id" json:"course_id"`
	CourseTitle   string `db:"course_title" json:"course_title"`
	CourseCredits int    `db:"course_credits" json:"course_credits"`
	SectionTitle  string `db:"section_title" json:"section_title"`
}
