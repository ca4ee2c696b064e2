package models

import "time"

// StudentEnrolledCourseStatus is the state of a permanent enrollment.
type StudentEnrolledCourseStatus string

const (
	EnrolledCourseOngoing   StudentEnrolledCourseStatus = "ONGOING"
	EnrolledCourseCompleted StudentEnrolledCourseStatus = "COMPLETED"
	EnrolledCourseWithdrawn StudentEnrolledCourseStatus = "WITHDRAWN"
)

// StudentEnrolledCourse is the permanent historical record created by the
// rollover when a registration window closes.
type StudentEnrolledCourse struct {
	ID                 string                      `db:"id" json:"id"`
	StudentID          string                      `db:"student_id" json:"student_id"`
	CourseID           string                      `db:"course_id" json:"course_id"`
	AcademicSemesterID string                      `db:"academic_semester_id" json:"academic_semester_id"`
	Status             StudentEnrolledCourseStatus `db:"status" json:"status"`
	Grade              *string                     `db:"grade" json:"grade,omitempty"`
	Point              float64                     `db:"point" json:"point"`
	TotalMarks         int                         `db:"total_marks" json:"total_marks"`
	CreatedAt          time.Time                   `db:"created_at" json:"created_at"`
}

// ExamType identifies a mark bucket seeded at rollover.
type ExamType string

const (
	ExamMidterm ExamType = "MIDTERM"
	ExamFinal   ExamType = "FINAL"
)

// StudentEnrolledCourseMark holds marks for one exam of one enrolled course.
type StudentEnrolledCourseMark struct {
	ID                      string   `db:"id" json:"id"`
	StudentID               string   `db:"student_id" json:"student_id"`
	StudentEnrolledCourseID string   `db:"student_enrolled_course_id" json:"student_enrolled_course_id"`
	AcademicSemesterID      string   `db:"academic_semester_id" json:"academic_semester_id"`
	ExamType                ExamType `db:"exam_type" json:"exam_type"`
	Marks                   int      `db:"marks" json:"marks"`
	Grade                   *string  `db:"grade" json:"grade,omitempty"`
}

// StudentSemesterPayment is the payment-due record the rollover emits for
// each confirmed registration with credits taken.
type StudentSemesterPayment struct {
	ID                   string    `db:"id" json:"id"`
	StudentID            string    `db:"student_id" json:"student_id"`
	AcademicSemesterID   string    `db:"academic_semester_id" json:"academic_semester_id"`
	FullPaymentAmount    float64   `db:"full_payment_amount" json:"full_payment_amount"`
	PartialPaymentAmount float64   `db:"partial_payment_amount" json:"partial_payment_amount"`
	TotalDueAmount       float64   `db:"total_due_amount" json:"total_due_amount"`
	TotalPaidAmount      float64   `db:"total_paid_amount" json:"total_paid_amount"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}
