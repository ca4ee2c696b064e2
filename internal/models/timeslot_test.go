package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(day WeekDay, start, end string) TimeSlot {
	return TimeSlot{DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestHasTimeConflictOverlap(t *testing.T) {
	existing := []TimeSlot{slot(Monday, "09:00", "10:00")}

	assert.True(t, HasTimeConflict(existing, slot(Monday, "09:30", "10:30")))
	assert.True(t, HasTimeConflict(existing, slot(Monday, "08:30", "09:30")))
	assert.True(t, HasTimeConflict(existing, slot(Monday, "09:15", "09:45")))
	assert.True(t, HasTimeConflict(existing, slot(Monday, "08:00", "11:00")))
}

func TestHasTimeConflictBackToBack(t *testing.T) {
	existing := []TimeSlot{slot(Monday, "09:00", "10:00")}

	assert.False(t, HasTimeConflict(existing, slot(Monday, "10:00", "11:00")))
	assert.False(t, HasTimeConflict(existing, slot(Monday, "08:00", "09:00")))
}

func TestHasTimeConflictDifferentDay(t *testing.T) {
	existing := []TimeSlot{slot(Monday, "09:00", "10:00")}

	assert.False(t, HasTimeConflict(existing, slot(Tuesday, "09:00", "10:00")))
	assert.False(t, HasTimeConflict(existing, slot(Saturday, "09:30", "10:30")))
}

func TestHasTimeConflictSymmetric(t *testing.T) {
	pairs := []struct {
		a, b TimeSlot
	}{
		{slot(Monday, "09:00", "10:00"), slot(Monday, "09:30", "10:30")},
		{slot(Monday, "09:00", "10:00"), slot(Monday, "10:00", "11:00")},
		{slot(Friday, "13:00", "15:00"), slot(Friday, "14:59", "16:00")},
		{slot(Sunday, "08:00", "09:00"), slot(Sunday, "09:01", "10:00")},
	}

	for _, pair := range pairs {
		assert.Equal(t,
			pair.a.Overlaps(pair.b),
			pair.b.Overlaps(pair.a),
			"overlap must be symmetric for %v and %v", pair.a, pair.b,
		)
	}
}

func TestHasTimeConflictEmptyExisting(t *testing.T) {
	assert.False(t, HasTimeConflict(nil, slot(Monday, "09:00", "10:00")))
}

func TestTimeSlotValidate(t *testing.T) {
	require.NoError(t, slot(Monday, "09:00", "10:00").Validate())

	assert.Error(t, slot(Monday, "10:00", "09:00").Validate(), "inverted window")
	assert.Error(t, slot(Monday, "09:00", "09:00").Validate(), "zero-length window")
	assert.Error(t, slot(Monday, "9am", "10:00").Validate(), "malformed time")
	assert.Error(t, slot(Monday, "24:00", "25:00").Validate(), "out-of-range hour")
	assert.Error(t, slot(WeekDay("FUNDAY"), "09:00", "10:00").Validate(), "unknown day")
}

func TestMinuteOfDay(t *testing.T) {
	got, err := MinuteOfDay("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13*60+45, got)

	_, err = MinuteOfDay("99:99")
	assert.Error(t, err)
}
