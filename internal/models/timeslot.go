package models

import (
	"fmt"
	"strconv"
	"strings"
)

// WeekDay enumerates class days. The academic week starts on Saturday.
type WeekDay string

const (
	Saturday  WeekDay = "SATURDAY"
	Sunday    WeekDay = "SUNDAY"
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
)

// Valid reports whether the value is a known week day.
func (d WeekDay) Valid() bool {
	switch d {
	case Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	}
	return false
}

// TimeSlot is a recurring weekly window. Times are wall-clock "HH:MM".
type TimeSlot struct {
	DayOfWeek WeekDay `db:"day_of_week" json:"day_of_week"`
	StartTime string  `db:"start_time" json:"start_time"`
	EndTime   string  `db:"end_time" json:"end_time"`
}

// Validate rejects malformed days, malformed times and empty or inverted
// windows. Inverted windows would silently never conflict, so they are
// refused at the boundary.
func (s TimeSlot) Validate() error {
	if !s.DayOfWeek.Valid() {
		return fmt.Errorf("invalid day of week %q", s.DayOfWeek)
	}
	start, err := MinuteOfDay(s.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	end, err := MinuteOfDay(s.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if start >= end {
		return fmt.Errorf("start time %s must be before end time %s", s.StartTime, s.EndTime)
	}
	return nil
}

// Overlaps reports whether two slots on the same day share any time.
// The comparison is half-open: a slot ending exactly when the other
// starts does not overlap. Slots on different days never overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.DayOfWeek != other.DayOfWeek {
		return false
	}
	aStart, err := MinuteOfDay(s.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := MinuteOfDay(s.EndTime)
	if err != nil {
		return false
	}
	bStart, err := MinuteOfDay(other.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := MinuteOfDay(other.EndTime)
	if err != nil {
		return false
	}
	return aStart < bEnd && aEnd > bStart
}

// HasTimeConflict reports whether the candidate slot overlaps any of the
// existing slots. Pure and deterministic; used for both room and faculty
// availability checks.
func HasTimeConflict(existing []TimeSlot, candidate TimeSlot) bool {
	for _, slot := range existing {
		if candidate.Overlaps(slot) {
			return true
		}
	}
	return false
}

// MinuteOfDay parses "HH:MM" into minutes since midnight.
func MinuteOfDay(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour*60 + minute, nil
}
