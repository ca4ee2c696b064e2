package models

import "time"

// Course is a catalogue entry with a fixed credit value.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Code      string    `db:"code" json:"code"`
	Credits   int       `db:"credits" json:"credits"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OfferedCourse makes a course available in one registration window for
// one academic department.
type OfferedCourse struct {
	ID                     string    `db:"id" json:"id"`
	CourseID               string    `db:"course_id" json:"course_id"`
	AcademicDepartmentID   string    `db:"academic_department_id" json:"academic_department_id"`
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semester_registration_id"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

// OfferedCourseDetail joins the offering with its course.
type OfferedCourseDetail struct {
	OfferedCourse
	CourseTitle   string `db:"course_title" json:"course_title"`
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseCredits int    `db:"course_credits" json:"course_credits"`
}

// AvailableCourse is the "my courses" aggregation: one course with all of
// its sections in the active window, flagged against the student's history
// and current ledger.
type AvailableCourse struct {
	CourseID        string          `json:"course_id"`
	CourseTitle     string          `json:"course_title"`
	CourseCode      string          `json:"course_code"`
	CourseCredits   int             `json:"course_credits"`
	OfferedCourseID string          `json:"offered_course_id"`
	IsTaken         bool            `json:"is_taken"`
	IsCompleted     bool            `json:"is_completed"`
	TakenSectionID  string          `json:"taken_section_id,omitempty"`
	Sections        []SectionDetail `json:"sections"`
}
