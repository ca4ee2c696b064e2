package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// registrationCreateLock serializes registration creation so the
// single-active-window invariant holds under concurrent creates.
const registrationCreateLock = "semester-registration:create"

// ActiveRegistrationError reports which registration blocked a create.
type ActiveRegistrationError struct {
	Status models.SemesterRegistrationStatus
}

func (e *ActiveRegistrationError) Error() string {
	return fmt.Sprintf("there is already an %s registration", e.Status)
}

// RegistrationRepository persists semester registration windows.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, start_date, end_date, status, min_credit, max_credit, academic_semester_id, created_at, updated_at`

// Create inserts a new registration window. The existence probe and the
// insert run in one advisory-locked transaction: at most one registration
// may be UPCOMING or ONGOING system-wide.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.SemesterRegistration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create registration: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, registrationCreateLock); err != nil {
		return fmt.Errorf("acquire registration lock: %w", err)
	}

	var activeStatus models.SemesterRegistrationStatus
	err = tx.GetContext(ctx, &activeStatus,
		`SELECT status FROM semester_registrations WHERE status IN ($1, $2) LIMIT 1`,
		models.RegistrationUpcoming, models.RegistrationOngoing)
	if err == nil {
		return &ActiveRegistrationError{Status: activeStatus}
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check active registration: %w", err)
	}

	now := time.Now().UTC()
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.Status == "" {
		registration.Status = models.RegistrationUpcoming
	}
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = now
	}
	registration.UpdatedAt = now

	const query = `INSERT INTO semester_registrations (id, start_date, end_date, status, min_credit, max_credit, academic_semester_id, created_at, updated_at)
VALUES (:id, :start_date, :end_date, :status, :min_credit, :max_credit, :academic_semester_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, registration); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create registration: %w", err)
	}
	commit = true
	return nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.SemesterRegistration, error) {
	var registration models.SemesterRegistration
	if err := r.db.GetContext(ctx, &registration, `SELECT `+registrationColumns+` FROM semester_registrations WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindDetailByID returns a registration joined with its semester.
func (r *RegistrationRepository) FindDetailByID(ctx context.Context, id string) (*models.SemesterRegistrationDetail, error) {
	const query = `SELECT sr.id, sr.start_date, sr.end_date, sr.status, sr.min_credit, sr.max_credit,
        sr.academic_semester_id, sr.created_at, sr.updated_at,
        sem.title AS semester_title, sem.year AS semester_year, sem.is_current AS semester_is_current
        FROM semester_registrations sr
        JOIN academic_semesters sem ON sem.id = sr.academic_semester_id
        WHERE sr.id = $1`
	var detail models.SemesterRegistrationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByStatuses returns the first registration in any of the given
// statuses.
func (r *RegistrationRepository) FindByStatuses(ctx context.Context, statuses ...models.SemesterRegistrationStatus) (*models.SemesterRegistration, error) {
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, status := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = status
	}
	query := fmt.Sprintf(`SELECT `+registrationColumns+` FROM semester_registrations WHERE status IN (%s) LIMIT 1`, strings.Join(placeholders, ", "))
	var registration models.SemesterRegistration
	if err := r.db.GetContext(ctx, &registration, query, args...); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindOngoing returns the registration currently accepting enrollments.
func (r *RegistrationRepository) FindOngoing(ctx context.Context) (*models.SemesterRegistration, error) {
	return r.FindByStatuses(ctx, models.RegistrationOngoing)
}

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.SemesterRegistrationDetail, int, error) {
	base := `FROM semester_registrations sr
JOIN academic_semesters sem ON sem.id = sr.academic_semester_id`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("sr.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.AcademicSemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("sr.academic_semester_id = $%d", len(args)+1))
		args = append(args, filter.AcademicSemesterID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("sem.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"start_date": "sr.start_date",
		"status":     "sr.status",
		"created_at": "sr.created_at",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "sr.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT sr.id, sr.start_date, sr.end_date, sr.status, sr.min_credit, sr.max_credit,
        sr.academic_semester_id, sr.created_at, sr.updated_at,
        sem.title AS semester_title, sem.year AS semester_year, sem.is_current AS semester_is_current
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var registrations []models.SemesterRegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// UpdateStatus advances the window state. Legality is checked by the
// service; this only applies the change.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.SemesterRegistrationStatus) error {
	const query = `UPDATE semester_registrations SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	return nil
}

// Update modifies window dates and credit bounds.
func (r *RegistrationRepository) Update(ctx context.Context, registration *models.SemesterRegistration) error {
	registration.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semester_registrations
SET start_date = :start_date, end_date = :end_date, min_credit = :min_credit, max_credit = :max_credit, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return nil
}

// Delete removes a registration permanently.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM semester_registrations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}
