package availability

import (
	"testing"

	"mentorly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monday = "2025-03-03"

func mondayTemplate() models.AvailabilityTemplate {
	return models.AvailabilityTemplate{
		SpecialistID: "sp-1",
		Timezone:     "Europe/Berlin",
		WeeklyPattern: map[string]models.DayPattern{
			"monday":  {Enabled: true, Ranges: []models.TimeRange{{StartTime: "09:00", EndTime: "17:00", IsAvailable: true}}},
			"tuesday": {Enabled: false, Ranges: []models.TimeRange{{StartTime: "09:00", EndTime: "17:00", IsAvailable: true}}},
		},
		BreakRules: []models.BreakRule{{Weekday: "Monday", StartTime: "12:00", EndTime: "13:00", Recurring: true}},
		SlotConfig: models.SlotConfig{DefaultDurationMinutes: 60},
	}
}

func TestResolveOpenRangesAppliesBreaks(t *testing.T) {
	got, err := ResolveOpenRanges(mondayTemplate(), monday)
	require.NoError(t, err)
	assert.Equal(t, []models.Range{{Start: 540, End: 720}, {Start: 780, End: 1020}}, got)
}

func TestResolveOpenRangesDisabledDay(t *testing.T) {
	got, err := ResolveOpenRanges(mondayTemplate(), "2025-03-04")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Wednesday has no entry at all.
	got, err = ResolveOpenRanges(mondayTemplate(), "2025-03-05")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveOpenRangesCaseVariantKeys(t *testing.T) {
	tmpl := mondayTemplate()
	tmpl.BreakRules = nil
	delete(tmpl.WeeklyPattern, "monday")
	tmpl.WeeklyPattern["Monday"] = models.DayPattern{Enabled: true, Ranges: []models.TimeRange{{StartTime: "09:00", EndTime: "10:00", IsAvailable: true}}}
	tmpl.WeeklyPattern["MONDAY"] = models.DayPattern{Enabled: true, Ranges: []models.TimeRange{{StartTime: "14:00", EndTime: "15:00", IsAvailable: true}}}

	for i := 0; i < 20; i++ {
		got, err := ResolveOpenRanges(tmpl, monday)
		require.NoError(t, err)
		require.Equal(t, []models.Range{{Start: 840, End: 900}}, got)
	}
}

func TestResolveOpenRangesExceptions(t *testing.T) {
	tmpl := mondayTemplate()

	t.Run("closed date short-circuits", func(t *testing.T) {
		tmpl.DateExceptions = []models.DateException{{Date: monday, IsAvailable: false}}
		got, err := ResolveOpenRanges(tmpl, monday)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("override ranges replace the pattern", func(t *testing.T) {
		tmpl.DateExceptions = []models.DateException{{
			Date:        monday,
			IsAvailable: true,
			Ranges: []models.TimeRange{
				{StartTime: "14:00", EndTime: "16:00", IsAvailable: true},
				{StartTime: "10:00", EndTime: "12:30", IsAvailable: true},
				{StartTime: "18:00", EndTime: "19:00", IsAvailable: false},
			},
		}}
		got, err := ResolveOpenRanges(tmpl, monday)
		require.NoError(t, err)
		// Sorted, and the Monday break still trims 12:00-12:30.
		assert.Equal(t, []models.Range{{Start: 600, End: 720}, {Start: 840, End: 960}}, got)
	})

	t.Run("open exception without ranges falls through", func(t *testing.T) {
		tmpl.DateExceptions = []models.DateException{{Date: monday, IsAvailable: true}}
		got, err := ResolveOpenRanges(tmpl, monday)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("exception on a disabled weekday opens it", func(t *testing.T) {
		tmpl.DateExceptions = []models.DateException{{
			Date:        "2025-03-04",
			IsAvailable: true,
			Ranges:      []models.TimeRange{{StartTime: "08:00", EndTime: "09:00", IsAvailable: true}},
		}}
		got, err := ResolveOpenRanges(tmpl, "2025-03-04")
		require.NoError(t, err)
		assert.Equal(t, []models.Range{{Start: 480, End: 540}}, got)
	})
}

func TestResolveOpenRangesIsDeterministicAndSorted(t *testing.T) {
	tmpl := mondayTemplate()
	tmpl.WeeklyPattern["monday"] = models.DayPattern{Enabled: true, Ranges: []models.TimeRange{
		{StartTime: "15:00", EndTime: "18:00", IsAvailable: true},
		{StartTime: "07:00", EndTime: "10:00", IsAvailable: true},
		{StartTime: "11:00", EndTime: "14:00", IsAvailable: true},
	}}
	tmpl.BreakRules = append(tmpl.BreakRules, models.BreakRule{Weekday: "monday", StartTime: "09:30", EndTime: "11:30"})

	first, err := ResolveOpenRanges(tmpl, monday)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ResolveOpenRanges(tmpl, monday)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].End, first[i].Start)
	}
	assert.Equal(t, []models.Range{
		{Start: 420, End: 570},
		{Start: 690, End: 720},
		{Start: 780, End: 840},
		{Start: 900, End: 1080},
	}, first)
}

// Breaks that overlap each other are subtracted in the order listed. The result is the
// same either way for plain subtraction; this pins the behaviour so a change is noticed.
func TestResolveOpenRangesOverlappingBreaksAreSequential(t *testing.T) {
	tmpl := mondayTemplate()
	tmpl.BreakRules = []models.BreakRule{
		{Weekday: "monday", StartTime: "11:00", EndTime: "13:00"},
		{Weekday: "monday", StartTime: "12:00", EndTime: "14:00"},
	}
	forward, err := ResolveOpenRanges(tmpl, monday)
	require.NoError(t, err)

	tmpl.BreakRules[0], tmpl.BreakRules[1] = tmpl.BreakRules[1], tmpl.BreakRules[0]
	reversed, err := ResolveOpenRanges(tmpl, monday)
	require.NoError(t, err)

	want := []models.Range{{Start: 540, End: 660}, {Start: 840, End: 1020}}
	assert.Equal(t, want, forward)
	assert.Equal(t, want, reversed)
}

func TestResolveOpenRangesErrors(t *testing.T) {
	tmpl := mondayTemplate()
	var schedErr *models.InvalidScheduleError

	_, err := ResolveOpenRanges(tmpl, "03/03/2025")
	require.ErrorAs(t, err, &schedErr)

	tmpl.Timezone = "Mars/Olympus"
	_, err = ResolveOpenRanges(tmpl, monday)
	require.ErrorAs(t, err, &schedErr)

	tmpl = mondayTemplate()
	tmpl.WeeklyPattern["monday"] = models.DayPattern{Enabled: true, Ranges: []models.TimeRange{{StartTime: "17:00", EndTime: "09:00", IsAvailable: true}}}
	_, err = ResolveOpenRanges(tmpl, monday)
	require.ErrorAs(t, err, &schedErr)
}
