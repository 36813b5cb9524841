package slots

import (
	"fmt"
	"time"

	"mentorly/models"
	"mentorly/services/availability"
)

const dateLayout = "2006-01-02"

// FromTemplate materializes template-driven slots for days starting at from.
// Dates before today, past MaxAdvanceDays, or starting inside the MinNoticeHours window are skipped.
func FromTemplate(tmpl models.AvailabilityTemplate, offering models.Offering, from time.Time, days int, now time.Time) ([]models.Slot, error) {
	loc, err := availability.Location(tmpl)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, nil
	}
	now = now.In(loc)
	today := midnight(now)
	first := midnight(from.In(loc))
	if first.Before(today) {
		first = today
	}
	last := today.AddDate(0, 0, days-1)
	if rules := tmpl.BookingRules; rules.MaxAdvanceDays > 0 {
		if capDay := today.AddDate(0, 0, rules.MaxAdvanceDays); capDay.Before(last) {
			last = capDay
		}
	}
	earliest := now.Add(time.Duration(tmpl.BookingRules.MinNoticeHours) * time.Hour)

	duration := pickDuration(tmpl.SlotConfig, offering.DurationMinutes)
	capacity := offering.Capacity
	if capacity < 1 {
		capacity = 1
	}

	var out []models.Slot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		open, err := availability.ResolveOpenRanges(tmpl, date)
		if err != nil {
			return nil, err
		}
		for _, r := range open {
			units, err := PackRange(r, duration, tmpl.SlotConfig.BufferMinutes)
			if err != nil {
				return nil, err
			}
			for _, u := range units {
				startsAt := time.Date(day.Year(), day.Month(), day.Day(), 0, u.Start, 0, 0, loc)
				if startsAt.Before(earliest) {
					continue
				}
				out = append(out, newSlot(offering, date, u, capacity, tmpl.Timezone))
			}
		}
	}
	return out, nil
}

// FromExplicit turns each curated entry into exactly one slot. Any bad entry rejects the batch.
func FromExplicit(offering models.Offering, entries []models.ExplicitSlotEntry) ([]models.Slot, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]models.Slot, 0, len(entries))
	for i, e := range entries {
		field := fmt.Sprintf("explicitSlots[%d]", i)
		if _, err := time.Parse(dateLayout, e.Date); err != nil {
			return nil, &models.InvalidScheduleError{Field: field + ".date", Reason: "expected YYYY-MM-DD"}
		}
		start, err := availability.ParseClock(e.Time)
		if err != nil || start >= 24*60 {
			return nil, &models.InvalidScheduleError{Field: field + ".time", Reason: fmt.Sprintf("bad start time %q", e.Time)}
		}
		if e.DurationMinutes <= 0 {
			return nil, &models.InvalidScheduleError{Field: field + ".durationMinutes", Reason: "must be positive"}
		}
		if e.Capacity < 1 {
			return nil, &models.InvalidScheduleError{Field: field + ".capacity", Reason: "must be at least 1"}
		}
		key := e.Date + " " + e.Time
		if seen[key] {
			return nil, &models.InvalidScheduleError{Field: field, Reason: "duplicate occurrence " + key}
		}
		seen[key] = true

		out = append(out, newSlot(offering, e.Date, models.Range{Start: start, End: start + e.DurationMinutes}, e.Capacity, offering.Timezone))
	}
	return out, nil
}

// FromRecurring emits one slot per week for each enabled weekday entry, starting at the
// entry's next occurrence on or after today. Entries that can't be used are reported in
// errs and skipped; the rest of the schedule is still materialized.
func FromRecurring(offering models.Offering, schedule []models.WeeklyScheduleEntry, today time.Time, weeks int) ([]models.Slot, []error) {
	var (
		out  []models.Slot
		errs []error
		seen = map[string]int{}
	)
	today = midnight(today)
	for i, e := range schedule {
		if !e.Enabled {
			continue
		}
		field := fmt.Sprintf("weeklySchedule[%d]", i)
		wd, ok := models.ParseWeekday(e.Day)
		if !ok {
			errs = append(errs, &models.InvalidScheduleError{Field: field + ".day", Reason: fmt.Sprintf("unknown weekday %q", e.Day)})
			continue
		}
		start, err := availability.ParseClock(e.Time)
		if err != nil || start >= 24*60 {
			errs = append(errs, &models.InvalidScheduleError{Field: field + ".time", Reason: fmt.Sprintf("bad start time %q", e.Time)})
			continue
		}
		if e.DurationMinutes <= 0 || e.Capacity < 1 {
			errs = append(errs, &models.InvalidScheduleError{Field: field, Reason: "duration must be positive and capacity at least 1"})
			continue
		}

		delta := (int(wd) - int(today.Weekday()) + 7) % 7
		next := today.AddDate(0, 0, delta)
		// Every week repeats the same weekday, so the first date identifies the occurrence.
		key := next.Format(dateLayout) + " " + availability.FormatClock(start)
		if prev, dup := seen[key]; dup {
			errs = append(errs, &DuplicateOccurrenceError{&models.InvalidScheduleError{
				Field:  field,
				Reason: fmt.Sprintf("duplicate occurrence of weeklySchedule[%d] (%s %s)", prev, e.Day, e.Time),
			}})
			continue
		}
		seen[key] = i

		for w := 0; w < weeks; w++ {
			date := next.AddDate(0, 0, 7*w).Format(dateLayout)
			out = append(out, newSlot(offering, date, models.Range{Start: start, End: start + e.DurationMinutes}, e.Capacity, offering.Timezone))
		}
	}
	return out, errs
}

// DuplicateOccurrenceError reports a recurring entry that lands on the same weekday and
// start time as an earlier one. Unlike other entry errors it is never skipped on write.
type DuplicateOccurrenceError struct {
	*models.InvalidScheduleError
}

func (e *DuplicateOccurrenceError) Unwrap() error { return e.InvalidScheduleError }

func newSlot(offering models.Offering, date string, r models.Range, capacity int, tz string) models.Slot {
	s := models.Slot{
		SpecialistID:    offering.SpecialistID,
		OfferingID:      offering.ID,
		Kind:            models.SlotKindSession,
		Date:            date,
		StartTime:       availability.FormatClock(r.Start),
		EndTime:         availability.FormatClock(wrapDay(r.End)),
		DurationMinutes: r.Duration(),
		Timezone:        tz,
		Capacity:        capacity,
	}
	if capacity == 1 {
		s.Kind = models.SlotKindAppointment
	}
	s.Status = s.OpenStatus()
	return s
}

// wrapDay keeps "24:00" as an end of day but folds later ends into the next day.
func wrapDay(minutes int) int {
	if minutes > 24*60 {
		return minutes - 24*60
	}
	return minutes
}

// pickDuration uses the offering's duration when the template allows it.
func pickDuration(cfg models.SlotConfig, requested int) int {
	if requested > 0 {
		if requested == cfg.DefaultDurationMinutes {
			return requested
		}
		for _, d := range cfg.AllowedDurations {
			if d == requested {
				return requested
			}
		}
	}
	return cfg.DefaultDurationMinutes
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
