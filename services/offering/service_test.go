package offering

import (
	"context"
	"testing"
	"time"

	memoryRepo "mentorly/database/repository/memory"
	"mentorly/models"
	"mentorly/services/slots"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var owner = Editor{ID: "sp-1", Role: RoleSpecialist}

type fixture struct {
	svc       *DefaultOfferingService
	slots     *slots.DefaultSlotService
	offerings *memoryRepo.OfferingRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := &fixture{offerings: memoryRepo.NewOfferingRepo()}
	f.slots = &slots.DefaultSlotService{
		Slots:          memoryRepo.NewSlotRepo(),
		Offerings:      f.offerings,
		Templates:      memoryRepo.NewTemplateRepo(),
		Logger:         zap.NewNop(),
		HorizonDays:    14,
		RecurringWeeks: 4,
		Now:            clock,
	}
	f.svc = &DefaultOfferingService{Repo: f.offerings, Slots: f.slots, Logger: zap.NewNop(), Now: clock}
	return f
}

func (f *fixture) draft(t *testing.T, id string, mode models.SlotMode) {
	t.Helper()
	o := &models.Offering{
		ID:           id,
		SpecialistID: "sp-1",
		Title:        "Weekly Q&A",
		ServiceType:  models.ServiceTypeWebinar,
		Status:       models.OfferingStatusDraft,
		SlotMode:     mode,
		Timezone:     "UTC",
		WeeklySchedule: []models.WeeklyScheduleEntry{
			{Day: "monday", Enabled: true, Time: "18:00", DurationMinutes: 60, Capacity: 50},
			{Day: "wednesday", Enabled: true, Time: "09:00", DurationMinutes: 60, Capacity: 50},
		},
	}
	require.NoError(t, f.offerings.Create(context.Background(), o))
}

func (f *fixture) slotCount(t *testing.T, id string) int {
	t.Helper()
	got, err := f.slots.ListSlots(context.Background(), id, "")
	require.NoError(t, err)
	return len(got)
}

func TestPublishAndUnpublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.draft(t, "webinar-1", models.SlotModeRecurring)
	assert.Zero(t, f.slotCount(t, "webinar-1"))

	res, err := f.svc.Publish(ctx, "webinar-1", owner)
	require.NoError(t, err)
	assert.Equal(t, models.OfferingStatusPublished, res.Offering.Status)
	assert.Equal(t, 8, res.Slots.Created)
	assert.Equal(t, 8, f.slotCount(t, "webinar-1"))

	again, err := f.svc.Publish(ctx, "webinar-1", owner)
	require.NoError(t, err)
	assert.Nil(t, again.Slots, "publishing twice changes nothing")

	res, err = f.svc.Unpublish(ctx, "webinar-1", owner)
	require.NoError(t, err)
	assert.Equal(t, models.OfferingStatusDraft, res.Offering.Status)
	assert.Equal(t, int64(8), res.Slots.Deleted)
	assert.Zero(t, f.slotCount(t, "webinar-1"))
}

func TestPublishWithoutTemplateReverts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.draft(t, "consult-1", models.SlotModeTemplate)

	_, err := f.svc.Publish(ctx, "consult-1", owner)
	assert.Equal(t, models.CodeInvalidSchedule, models.ErrorCode(err))

	o, err := f.svc.GetOffering(ctx, "consult-1")
	require.NoError(t, err)
	assert.Equal(t, models.OfferingStatusDraft, o.Status)
}

func TestUpdateScheduleRegeneratesPublishedSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.draft(t, "webinar-1", models.SlotModeRecurring)
	_, err := f.svc.Publish(ctx, "webinar-1", owner)
	require.NoError(t, err)

	res, err := f.svc.UpdateSchedule(ctx, "webinar-1", owner, ScheduleInput{
		SlotMode: models.SlotModeExplicit,
		Timezone: "UTC",
		ExplicitSlots: []models.ExplicitSlotEntry{
			{Date: "2025-03-20", Time: "10:00", DurationMinutes: 90, Capacity: 30},
			{Date: "2025-03-21", Time: "10:00", DurationMinutes: 90, Capacity: 30},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Slots.Deleted)
	assert.Equal(t, 2, res.Slots.Created)
	assert.Equal(t, models.SlotModeExplicit, res.Offering.SlotMode)

	got, err := f.slots.ListSlots(ctx, "webinar-1", "2025-03-20")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "11:30", got[0].EndTime)
	assert.Equal(t, 30, got[0].Capacity)
}

func TestUpdateScheduleRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.draft(t, "webinar-1", models.SlotModeRecurring)
	_, err := f.svc.Publish(ctx, "webinar-1", owner)
	require.NoError(t, err)

	cases := map[string]ScheduleInput{
		"unknown mode":    {SlotMode: "daily"},
		"no entries":      {SlotMode: models.SlotModeExplicit},
		"bad date":        {SlotMode: models.SlotModeExplicit, ExplicitSlots: []models.ExplicitSlotEntry{{Date: "2025-13-40", Time: "10:00", DurationMinutes: 60, Capacity: 1}}},
		"bad timezone":    {SlotMode: models.SlotModeRecurring, Timezone: "Mars/Olympus", WeeklySchedule: []models.WeeklyScheduleEntry{{Day: "monday", Enabled: true, Time: "10:00", DurationMinutes: 60, Capacity: 1}}},
		"only bad days":   {SlotMode: models.SlotModeRecurring, WeeklySchedule: []models.WeeklyScheduleEntry{{Day: "funday", Enabled: true, Time: "10:00", DurationMinutes: 60, Capacity: 1}}},
		"repeated day":    {SlotMode: models.SlotModeRecurring, WeeklySchedule: []models.WeeklyScheduleEntry{{Day: "monday", Enabled: true, Time: "10:00", DurationMinutes: 60, Capacity: 1}, {Day: "Monday", Enabled: true, Time: "10:00", DurationMinutes: 30, Capacity: 5}}},
		"zero capacity":   {SlotMode: models.SlotModeExplicit, ExplicitSlots: []models.ExplicitSlotEntry{{Date: "2025-03-20", Time: "10:00", DurationMinutes: 60}}},
		"negative length": {SlotMode: models.SlotModeTemplate, DurationMinutes: -5},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.UpdateSchedule(ctx, "webinar-1", owner, in)
			require.Error(t, err)
			assert.Equal(t, 8, f.slotCount(t, "webinar-1"), "existing slots survive a rejected schedule")

			o, err := f.svc.GetOffering(ctx, "webinar-1")
			require.NoError(t, err)
			assert.Equal(t, models.SlotModeRecurring, o.SlotMode)
		})
	}
}

func TestUpdateScheduleRejectsRepeatedOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.draft(t, "webinar-1", models.SlotModeRecurring)

	_, err := f.svc.UpdateSchedule(ctx, "webinar-1", owner, ScheduleInput{
		SlotMode: models.SlotModeRecurring,
		WeeklySchedule: []models.WeeklyScheduleEntry{
			{Day: "tuesday", Enabled: true, Time: "08:00", DurationMinutes: 60, Capacity: 1},
			{Day: "monday", Enabled: true, Time: "10:00", DurationMinutes: 60, Capacity: 1},
			{Day: "MONDAY", Enabled: true, Time: "10:00", DurationMinutes: 60, Capacity: 1},
		},
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeInvalidSchedule, models.ErrorCode(err))
	assert.Contains(t, err.Error(), "weeklySchedule[2]")
}

func TestEditorAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.draft(t, "webinar-1", models.SlotModeRecurring)

	_, err := f.svc.Publish(ctx, "webinar-1", Editor{ID: "sp-2", Role: RoleSpecialist})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = f.svc.Publish(ctx, "webinar-1", Editor{ID: "admin-1", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = f.svc.Publish(ctx, "missing", owner)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
