package models

import "time"

// OfferedCourseSection is one capacity-bounded instance of an offered
// course, owning zero or more class schedules.
type OfferedCourseSection struct {
	ID                       string    `db:"id" json:"id"`
	Title                    string    `db:"title" json:"title"`
	MaxCapacity              *int      `db:"max_capacity" json:"max_capacity,omitempty"`
	CurrentlyEnrolledStudent int       `db:"currently_enrolled_student" json:"currently_enrolled_student"`
	OfferedCourseID          string    `db:"offered_course_id" json:"offered_course_id"`
	SemesterRegistrationID   string    `db:"semester_registration_id" json:"semester_registration_id"`
	AcademicDepartmentID     string    `db:"academic_department_id" json:"academic_department_id"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// SectionDetail is a fully hydrated section: parent course plus every
// schedule with its room and faculty.
type SectionDetail struct {
	OfferedCourseSection
	CourseTitle   string                `db:"course_title" json:"course_title"`
	CourseCode    string                `db:"course_code" json:"course_code"`
	CourseCredits int                   `db:"course_credits" json:"course_credits"`
	Schedules     []ClassScheduleDetail `json:"class_schedules"`
}

// SectionRosterRow is one line of a section's enrolled-student roster.
type SectionRosterRow struct {
	StudentCode       string `db:"student_code" json:"student_code"`
	StudentName       string `db:"student_name" json:"student_name"`
	Email             string `db:"email" json:"email"`
	IsConfirmed       bool   `db:"is_confirmed" json:"is_confirmed"`
	TotalCreditsTaken int    `db:"total_credits_taken" json:"total_credits_taken"`
}

// SectionFilter defines filters supported by list endpoints.
type SectionFilter struct {
	OfferedCourseID        string
	SemesterRegistrationID string
	AcademicDepartmentID   string
	Search                 string
	Page                   int
	PageSize               int
	SortBy                 string
	SortOrder              string
}
