package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// PaymentRepository persists semester payment-due records created by the
// rollover. Writers are tx-scoped for the same reason the enrolled-course
// writers are.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Exists reports whether a payment record already exists for the student
// and semester, keeping the rollover idempotent.
func (r *PaymentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM student_semester_payments
WHERE student_id = $1 AND academic_semester_id = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, studentID, semesterID); err != nil {
		return false, fmt.Errorf("check payment: %w", err)
	}
	return exists, nil
}

// Create inserts a payment-due record.
func (r *PaymentRepository) Create(ctx context.Context, exec sqlx.ExtContext, payment *models.StudentSemesterPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_semester_payments (id, student_id, academic_semester_id, full_payment_amount, partial_payment_amount, total_due_amount, total_paid_amount, created_at)
VALUES (:id, :student_id, :academic_semester_id, :full_payment_amount, :partial_payment_amount, :total_due_amount, :total_paid_amount, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// FindByStudentAndSemester returns the payment record for one semester.
func (r *PaymentRepository) FindByStudentAndSemester(ctx context.Context, studentID, semesterID string) (*models.StudentSemesterPayment, error) {
	const query = `SELECT id, student_id, academic_semester_id, full_payment_amount, partial_payment_amount, total_due_amount, total_paid_amount, created_at
FROM student_semester_payments
WHERE student_id = $1 AND academic_semester_id = $2`
	var payment models.StudentSemesterPayment
	if err := r.db.GetContext(ctx, &payment, query, studentID, semesterID); err != nil {
		return nil, err
	}
	return &payment, nil
}
