package availability

import (
	"fmt"
	"time"

	"mentorly/models"
)

// ResolveOpenRanges computes the open ranges of tmpl on date ("2006-01-02").
//
// A closed date exception wins outright. An open exception with ranges replaces the
// weekly pattern for that day; without ranges it falls through to the pattern.
// Breaks for the weekday are subtracted one after another in the order given.
func ResolveOpenRanges(tmpl models.AvailabilityTemplate, date string) ([]models.Range, error) {
	loc, err := templateLocation(tmpl)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, &models.InvalidScheduleError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", date)}
	}
	weekday := day.Weekday()

	var base []models.TimeRange
	usedException := false
	for _, ex := range tmpl.DateExceptions {
		if ex.Date != date {
			continue
		}
		if !ex.IsAvailable {
			return []models.Range{}, nil
		}
		if len(ex.Ranges) > 0 {
			base = ex.Ranges
			usedException = true
		}
		break
	}

	if !usedException {
		pattern, ok := dayPattern(tmpl, weekday)
		if !ok || !pattern.Enabled {
			return []models.Range{}, nil
		}
		base = pattern.Ranges
	}

	open := make([]models.Range, 0, len(base))
	for i, tr := range base {
		if !tr.IsAvailable {
			continue
		}
		r, err := ToRange(tr.StartTime, tr.EndTime)
		if err != nil {
			return nil, &models.InvalidScheduleError{
				Field:  fmt.Sprintf("ranges[%d]", i),
				Reason: err.Error(),
			}
		}
		open = append(open, r)
	}

	for i, br := range tmpl.BreakRules {
		wd, ok := models.ParseWeekday(br.Weekday)
		if !ok {
			return nil, &models.InvalidScheduleError{
				Field:  fmt.Sprintf("breakRules[%d].weekday", i),
				Reason: fmt.Sprintf("unknown weekday %q", br.Weekday),
			}
		}
		if wd != weekday {
			continue
		}
		brk, err := ToRange(br.StartTime, br.EndTime)
		if err != nil {
			return nil, &models.InvalidScheduleError{
				Field:  fmt.Sprintf("breakRules[%d]", i),
				Reason: err.Error(),
			}
		}
		next := make([]models.Range, 0, len(open)+1)
		for _, r := range open {
			pieces, err := SubtractRange(r, brk)
			if err != nil {
				return nil, err
			}
			next = append(next, pieces...)
		}
		open = next
	}

	return NormalizeRanges(open), nil
}

// dayPattern looks up the weekly entry for wd, accepting any casing of the key.
func dayPattern(tmpl models.AvailabilityTemplate, wd time.Weekday) (models.DayPattern, bool) {
	if p, ok := tmpl.WeeklyPattern[models.WeekdayKey(wd)]; ok {
		return p, true
	}
	// Case variants of one weekday are rejected on save; for anything older the
	// lowest key wins so every read resolves the same pattern.
	match, found := "", false
	for key := range tmpl.WeeklyPattern {
		if parsed, ok := models.ParseWeekday(key); ok && parsed == wd && (!found || key < match) {
			match, found = key, true
		}
	}
	if !found {
		return models.DayPattern{}, false
	}
	return tmpl.WeeklyPattern[match], true
}

func templateLocation(tmpl models.AvailabilityTemplate) (*time.Location, error) {
	if tmpl.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tmpl.Timezone)
	if err != nil {
		return nil, &models.InvalidScheduleError{Field: "timezone", Reason: fmt.Sprintf("unknown timezone %q", tmpl.Timezone)}
	}
	return loc, nil
}

// Location returns the template's timezone, defaulting to UTC.
func Location(tmpl models.AvailabilityTemplate) (*time.Location, error) {
	return templateLocation(tmpl)
}
