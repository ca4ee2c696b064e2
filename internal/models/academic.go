package models

import "time"

// AcademicSemester is the calendar unit registrations resolve into. At
// most one semester is current at a time.
type AcademicSemester struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Year      int       `db:"year" json:"year"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicDepartment scopes offered courses and students.
type AcademicDepartment struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Room is a bookable class location.
type Room struct {
	ID         string    `db:"id" json:"id"`
	RoomNumber string    `db:"room_number" json:"room_number"`
	Floor      string    `db:"floor" json:"floor"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Faculty is a teaching staff member assignable to class schedules.
type Faculty struct {
	ID        string    `db:"id" json:"id"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Student is the enrolling party, addressed externally by StudentID.
type Student struct {
	ID                   string    `db:"id" json:"id"`
	StudentID            string    `db:"student_id" json:"student_id"`
	FirstName            string    `db:"first_name" json:"first_name"`
	LastName             string    `db:"last_name" json:"last_name"`
	Email                string    `db:"email" json:"email"`
	AcademicDepartmentID string    `db:"academic_department_id" json:"academic_department_id"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// Pagination carries list metadata in the response envelope.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
