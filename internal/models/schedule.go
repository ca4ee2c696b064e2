package models

import "time"

// ClassSchedule binds a weekly time slot to one room and one faculty member
// for one offered-course section.
type ClassSchedule struct {
	ID                     string    `db:"id" json:"id"`
	DayOfWeek              WeekDay   `db:"day_of_week" json:"day_of_week"`
	StartTime              string    `db:"start_time" json:"start_time"`
	EndTime                string    `db:"end_time" json:"end_time"`
	RoomID                 string    `db:"room_id" json:"room_id"`
	FacultyID              string    `db:"faculty_id" json:"faculty_id"`
	OfferedCourseSectionID string    `db:"offered_course_section_id" json:"offered_course_section_id"`
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semester_registration_id"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// Slot projects the schedule onto its time window.
func (s ClassSchedule) Slot() TimeSlot {
	return TimeSlot{DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime}
}

// ClassScheduleDetail enriches a schedule with room and faculty info.
type ClassScheduleDetail struct {
	ClassSchedule
	RoomNumber   string `db:"room_number" json:"room_number"`
	FacultyName  string `db:"faculty_name" json:"faculty_name"`
	SectionTitle string `db:"section_title" json:"section_title"`
}

// ClassScheduleFilter defines filters supported by list endpoints.
type ClassScheduleFilter struct {
	RoomID                 string
	FacultyID              string
	OfferedCourseSectionID string
	SemesterRegistrationID string
	DayOfWeek              WeekDay
	Page                   int
	PageSize               int
	SortBy                 string
	SortOrder              string
}
