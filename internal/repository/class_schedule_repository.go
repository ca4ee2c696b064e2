package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-hub/academic-core-api/internal/models"
)

// Sentinel errors surfaced by the slot guard. Services map these onto the
// public conflict errors.
var (
	ErrRoomSlotTaken    = errors.New("room already booked for this slot")
	ErrFacultySlotTaken = errors.New("faculty already booked for this slot")
)

// ClassScheduleRepository persists class schedules. All writes run the
// availability check and the insert inside one transaction, serialized per
// room and per faculty with advisory locks, so two concurrent assignments
// to the same resource cannot both pass the check.
type ClassScheduleRepository struct {
	db *sqlx.DB
}

// NewClassScheduleRepository constructs the repository.
func NewClassScheduleRepository(db *sqlx.DB) *ClassScheduleRepository {
	return &ClassScheduleRepository{db: db}
}

const classScheduleColumns = `id, day_of_week, start_time, end_time, room_id, faculty_id, offered_course_section_id, semester_registration_id, created_at, updated_at`

// List returns schedules filtered by the provided criteria.
func (r *ClassScheduleRepository) List(ctx context.Context, filter models.ClassScheduleFilter) ([]models.ClassScheduleDetail, int, error) {
	base := `FROM class_schedules cs
LEFT JOIN rooms rm ON rm.id = cs.room_id
LEFT JOIN faculties f ON f.id = cs.faculty_id
LEFT JOIN offered_course_sections s ON s.id = cs.offered_course_section_id`
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.OfferedCourseSectionID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.offered_course_section_id = $%d", len(args)+1))
		args = append(args, filter.OfferedCourseSectionID)
	}
	if filter.SemesterRegistrationID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.semester_registration_id = $%d", len(args)+1))
		args = append(args, filter.SemesterRegistrationID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("cs.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"day_of_week": "cs.day_of_week",
		"start_time":  "cs.start_time",
		"created_at":  "cs.created_at",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "cs.created_at"
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

	query := fmt.Sprintf(`SELECT cs.id, cs.day_of_week, cs.start_time, cs.end_time, cs.room_id, cs.faculty_id,
        cs.offered_course_section_id, cs.semester_registration_id, cs.created_at, cs.updated_at,
        rm.room_number AS room_number, f.first_name || ' ' || f.last_name AS faculty_name, s.title AS section_title
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var schedules []models.ClassScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class schedules: %w", err)
	}
	return schedules, total, nil
}

// FindByID returns a schedule by its ID.
func (r *ClassScheduleRepository) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	var schedule models.ClassSchedule
	if err := r.db.GetContext(ctx, &schedule, `SELECT `+classScheduleColumns+` FROM class_schedules WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByRoomAndDay returns booked slots for a room on one day.
func (r *ClassScheduleRepository) ListByRoomAndDay(ctx context.Context, roomID string, day models.WeekDay) ([]models.TimeSlot, error) {
	const query = `SELECT day_of_week, start_time, end_time FROM class_schedules WHERE room_id = $1 AND day_of_week = $2`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, roomID, day); err != nil {
		return nil, fmt.Errorf("list room slots: %w", err)
	}
	return slots, nil
}

// ListByFacultyAndDay returns booked slots for a faculty member on one day.
func (r *ClassScheduleRepository) ListByFacultyAndDay(ctx context.Context, facultyID string, day models.WeekDay) ([]models.TimeSlot, error) {
	const query = `SELECT day_of_week, start_time, end_time FROM class_schedules WHERE faculty_id = $1 AND day_of_week = $2`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, facultyID, day); err != nil {
		return nil, fmt.Errorf("list faculty slots: %w", err)
	}
	return slots, nil
}

// Create checks room and faculty availability and inserts the schedule in
// one transaction.
func (r *ClassScheduleRepository) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create schedule: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if err := guardScheduleSlot(ctx, tx, schedule, ""); err != nil {
		return err
	}
	if err := insertScheduleTx(ctx, tx, schedule); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create schedule: %w", err)
	}
	commit = true
	return nil
}

// Update re-validates the slot (excluding the row itself) and applies the
// new slot, room and faculty in one transaction.
func (r *ClassScheduleRepository) Update(ctx context.Context, schedule *models.ClassSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update schedule: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if err := guardScheduleSlot(ctx, tx, schedule, schedule.ID); err != nil {
		return err
	}

	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_schedules
SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time,
    room_id = :room_id, faculty_id = :faculty_id, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, schedule); err != nil {
		return fmt.Errorf("update class schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update schedule: %w", err)
	}
	commit = true
	return nil
}

// Delete removes a schedule permanently.
func (r *ClassScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class schedule: %w", err)
	}
	return nil
}

// guardScheduleSlot serializes writers on the schedule's room and faculty
// with advisory locks, then re-reads same-day bookings and rejects
// overlaps. Lock order is fixed (room before faculty) to avoid deadlocks.
func guardScheduleSlot(ctx context.Context, tx *sqlx.Tx, schedule *models.ClassSchedule, excludeID string) error {
	if err := acquireSlotLock(ctx, tx, "room:"+schedule.RoomID); err != nil {
		return err
	}
	if err := acquireSlotLock(ctx, tx, "faculty:"+schedule.FacultyID); err != nil {
		return err
	}

	candidate := schedule.Slot()

	roomSlots, err := bookedSlotsTx(ctx, tx, "room_id", schedule.RoomID, schedule.DayOfWeek, excludeID)
	if err != nil {
		return err
	}
	if models.HasTimeConflict(roomSlots, candidate) {
		return ErrRoomSlotTaken
	}

	facultySlots, err := bookedSlotsTx(ctx, tx, "faculty_id", schedule.FacultyID, schedule.DayOfWeek, excludeID)
	if err != nil {
		return err
	}
	if models.HasTimeConflict(facultySlots, candidate) {
		return ErrFacultySlotTaken
	}
	return nil
}

func acquireSlotLock(ctx context.Context, tx *sqlx.Tx, key string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("acquire slot lock %s: %w", key, err)
	}
	return nil
}

func bookedSlotsTx(ctx context.Context, tx *sqlx.Tx, column, id string, day models.WeekDay, excludeID string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf(`SELECT day_of_week, start_time, end_time FROM class_schedules WHERE %s = $1 AND day_of_week = $2`, column)
	args := []interface{}{id, day}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var slots []models.TimeSlot
	if err := tx.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("select booked slots: %w", err)
	}
	return slots, nil
}

func insertScheduleTx(ctx context.Context, tx *sqlx.Tx, schedule *models.ClassSchedule) error {
	now := time.Now().UTC()
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now
	const query = `INSERT INTO class_schedules (id, day_of_week, start_time, end_time, room_id, faculty_id, offered_course_section_id, semester_registration_id, created_at, updated_at)
VALUES (:id, :day_of_week, :start_time, :end_time, :room_id, :faculty_id, :offered_course_section_id, :semester_registration_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, schedule); err != nil {
		return fmt.Errorf("insert class schedule: %w", err)
	}
	return nil
}
