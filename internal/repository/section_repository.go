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

// SectionRepository persists offered-course sections and their schedules.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, title, max_capacity, currently_enrolled_student, offered_course_id, semester_registration_id, academic_department_id, created_at, updated_at`

// FindByID returns a section by its ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error) {
	var section models.OfferedCourseSection
	if err := r.db.GetContext(ctx, &section, `SELECT `+sectionColumns+` FROM offered_course_sections WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindDetailByID returns a section hydrated with its course and schedules.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	const query = `SELECT s.id, s.title, s.max_capacity, s.currently_enrolled_student, s.offered_course_id,
        s.semester_registration_id, s.academic_department_id, s.created_at, s.updated_at,
        c.title AS course_title, c.code AS course_code, c.credits AS course_credits
        FROM offered_course_sections s
        JOIN offered_courses oc ON oc.id = s.offered_course_id
        JOIN courses c ON c.id = oc.course_id
        WHERE s.id = $1`
	var detail models.SectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}

	schedules, err := r.listSchedules(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Schedules = schedules
	return &detail, nil
}

func (r *SectionRepository) listSchedules(ctx context.Context, sectionID string) ([]models.ClassScheduleDetail, error) {
	const query = `SELECT cs.id, cs.day_of_week, cs.start_time, cs.end_time, cs.room_id, cs.faculty_id,
        cs.offered_course_section_id, cs.semester_registration_id, cs.created_at, cs.updated_at,
        rm.room_number AS room_number, f.first_name || ' ' || f.last_name AS faculty_name, s.title AS section_title
        FROM class_schedules cs
        LEFT JOIN rooms rm ON rm.id = cs.room_id
        LEFT JOIN faculties f ON f.id = cs.faculty_id
        LEFT JOIN offered_course_sections s ON s.id = cs.offered_course_section_id
        WHERE cs.offered_course_section_id = $1
        ORDER BY cs.day_of_week ASC, cs.start_time ASC`
	var schedules []models.ClassScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section schedules: %w", err)
	}
	return schedules, nil
}

// ExistsByCourseAndTitle probes the (offeredCourseId, title) uniqueness
// invariant.
func (r *SectionRepository) ExistsByCourseAndTitle(ctx context.Context, offeredCourseID, title string) (bool, error) {
	const query = `SELECT 1 FROM offered_course_sections WHERE offered_course_id = $1 AND title = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, offeredCourseID, title); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section title: %w", err)
	}
	return true, nil
}

// List returns sections filtered by the provided criteria.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error) {
	base := `FROM offered_course_sections s
JOIN offered_courses oc ON oc.id = s.offered_course_id
JOIN courses c ON c.id = oc.course_id`
	var conditions []string
	var args []interface{}

	if filter.OfferedCourseID != "" {
		conditions = append(conditions, fmt.Sprintf("s.offered_course_id = $%d", len(args)+1))
		args = append(args, filter.OfferedCourseID)
	}
	if filter.SemesterRegistrationID != "" {
		conditions = append(conditions, fmt.Sprintf("s.semester_registration_id = $%d", len(args)+1))
		args = append(args, filter.SemesterRegistrationID)
	}
	if filter.AcademicDepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("s.academic_department_id = $%d", len(args)+1))
		args = append(args, filter.AcademicDepartmentID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(s.title ILIKE $%d OR c.title ILIKE $%d OR c.code ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"title":      "s.title",
		"created_at": "s.created_at",
		"enrolled":   "s.currently_enrolled_student",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "s.created_at"
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

	query := fmt.Sprintf(`SELECT s.id, s.title, s.max_capacity, s.currently_enrolled_student, s.offered_course_id,
        s.semester_registration_id, s.academic_department_id, s.created_at, s.updated_at,
        c.title AS course_title, c.code AS course_code, c.credits AS course_credits
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}
	return sections, total, nil
}

// ListDetailByRegistration returns every section of a registration window
// with its schedules hydrated, for the per-student course catalogue.
func (r *SectionRepository) ListDetailByRegistration(ctx context.Context, registrationID string) ([]models.SectionDetail, error) {
	const query = `SELECT s.id, s.title, s.max_capacity, s.currently_enrolled_student, s.offered_course_id,
        s.semester_registration_id, s.academic_department_id, s.created_at, s.updated_at,
        c.title AS course_title, c.code AS course_code, c.credits AS course_credits
        FROM offered_course_sections s
        JOIN offered_courses oc ON oc.id = s.offered_course_id
        JOIN courses c ON c.id = oc.course_id
        WHERE s.semester_registration_id = $1
        ORDER BY s.title`
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, registrationID); err != nil {
		return nil, fmt.Errorf("list registration sections: %w", err)
	}

	const scheduleQuery = `SELECT cs.id, cs.day_of_week, cs.start_time, cs.end_time, cs.room_id, cs.faculty_id,
        cs.offered_course_section_id, cs.semester_registration_id, cs.created_at, cs.updated_at,
        rm.room_number AS room_number, f.first_name || ' ' || f.last_name AS faculty_name, s.title AS section_title
        FROM class_schedules cs
        LEFT JOIN rooms rm ON rm.id = cs.room_id
        LEFT JOIN faculties f ON f.id = cs.faculty_id
        LEFT JOIN offered_course_sections s ON s.id = cs.offered_course_section_id
        WHERE cs.semester_registration_id = $1
        ORDER BY cs.day_of_week ASC, cs.start_time ASC`
	var schedules []models.ClassScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, scheduleQuery, registrationID); err != nil {
		return nil, fmt.Errorf("list registration schedules: %w", err)
	}

	bySection := make(map[string][]models.ClassScheduleDetail, len(sections))
	for _, schedule := range schedules {
		bySection[schedule.OfferedCourseSectionID] = append(bySection[schedule.OfferedCourseSectionID], schedule)
	}
	for i := range sections {
		sections[i].Schedules = bySection[sections[i].ID]
	}
	return sections, nil
}

// CreateWithSchedules inserts the section and all of its schedules in one
// transaction. Every slot is guarded in-tx, so a conflict aborts the whole
// build and no partial rows persist.
func (r *SectionRepository) CreateWithSchedules(ctx context.Context, section *models.OfferedCourseSection, schedules []models.ClassSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create section: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now

	const query = `INSERT INTO offered_course_sections (id, title, max_capacity, currently_enrolled_student, offered_course_id, semester_registration_id, academic_department_id, created_at, updated_at)
VALUES (:id, :title, :max_capacity, :currently_enrolled_student, :offered_course_id, :semester_registration_id, :academic_department_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, section); err != nil {
		return fmt.Errorf("insert section: %w", err)
	}

	for i := range schedules {
		schedule := &schedules[i]
		schedule.OfferedCourseSectionID = section.ID
		schedule.SemesterRegistrationID = section.SemesterRegistrationID
		if err := guardScheduleSlot(ctx, tx, schedule, ""); err != nil {
			return err
		}
		if err := insertScheduleTx(ctx, tx, schedule); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create section: %w", err)
	}
	commit = true
	return nil
}

// Update modifies the mutable section fields.
func (r *SectionRepository) Update(ctx context.Context, section *models.OfferedCourseSection) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE offered_course_sections SET title = :title, max_capacity = :max_capacity, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section permanently.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offered_course_sections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
