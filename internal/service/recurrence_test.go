package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/clinic-agenda-api/internal/models"
)

func recurringAppointment(id, date, clock, rule string) models.Appointment {
	appt := appointment(id, date, clock, 30)
	appt.Recurrence = &rule
	return appt
}

func eventIDs(items []occurrence) []string {
	ids := make([]string, len(items))
	for i, occ := range items {
		ids[i] = occ.Event.ID
	}
	return ids
}

func TestExpandOccurrencesSingleAppointments(t *testing.T) {
	items := expandOccurrences([]models.Appointment{
		appointment("late", "2025-03-12", "09:00", 30),
		appointment("early", "2025-03-10", "09:00", 30),
		appointment("outside", "2025-04-01", "09:00", 30),
	}, day("2025-03-10"), day("2025-03-16"), zap.NewNop())

	assert.Equal(t, []string{"early", "late"}, eventIDs(items))
	assert.False(t, items[0].Recurring)
	assert.Equal(t, "2025-03-10", items[0].Event.Date)
}

func TestExpandOccurrencesWeeklySeries(t *testing.T) {
	items := expandOccurrences([]models.Appointment{
		recurringAppointment("w", "2025-03-03", "10:00", "RRULE:FREQ=WEEKLY;BYDAY=MO,WE"),
	}, day("2025-03-10"), day("2025-03-16"), zap.NewNop())

	require.Len(t, items, 2)
	assert.Equal(t, []string{"w@20250310", "w@20250312"}, eventIDs(items))
	for _, occ := range items {
		assert.True(t, occ.Recurring)
		assert.Equal(t, "w", occ.AppointmentID)
		assert.Equal(t, "10:00", occ.Event.Time)
	}
}

func TestExpandOccurrencesHonoursUntilAndCount(t *testing.T) {
	items := expandOccurrences([]models.Appointment{
		recurringAppointment("c", "2025-03-08", "08:00", "FREQ=DAILY;COUNT=4"),
		recurringAppointment("u", "2025-03-01", "08:00", "FREQ=DAILY;UNTIL=20250310T235959Z"),
	}, day("2025-03-10"), day("2025-03-16"), zap.NewNop())

	assert.Equal(t, []string{"c@20250310", "u@20250310", "c@20250311"}, eventIDs(items))
}

func TestExpandOccurrencesCollapsesSubDailyRules(t *testing.T) {
	items := expandOccurrences([]models.Appointment{
		recurringAppointment("h", "2025-03-10", "09:00", "FREQ=HOURLY;COUNT=5"),
	}, day("2025-03-10"), day("2025-03-10"), zap.NewNop())

	assert.Equal(t, []string{"h@20250310"}, eventIDs(items))
}

func TestExpandOccurrencesInvalidRuleFallsBackToAnchor(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	items := expandOccurrences([]models.Appointment{
		recurringAppointment("x", "2025-03-11", "09:00", "FREQ=SOMETIMES"),
	}, day("2025-03-10"), day("2025-03-16"), zap.New(core))

	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].Event.ID)
	assert.False(t, items[0].Recurring)
	assert.Equal(t, 1, logs.FilterMessage("invalid recurrence, using anchor date only").Len())
}

func TestExpandOccurrencesCapsLongSeries(t *testing.T) {
	items := expandOccurrences([]models.Appointment{
		recurringAppointment("d", "2020-01-01", "09:00", "FREQ=DAILY"),
	}, day("2020-01-01"), day("2025-01-01"), zap.NewNop())

	assert.Len(t, items, maxOccurrencesPerSeries)
}

func TestValidRRule(t *testing.T) {
	assert.True(t, ValidRRule("FREQ=WEEKLY;BYDAY=TU"))
	assert.True(t, ValidRRule("RRULE:FREQ=MONTHLY;BYMONTHDAY=1"))
	assert.False(t, ValidRRule(""))
	assert.False(t, ValidRRule("FREQ=SOMETIMES"))
}
