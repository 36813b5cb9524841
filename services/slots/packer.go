package slots

import (
	"fmt"

	"mentorly/models"
)

// PackRange cuts r into back-to-back units of duration minutes separated by buffer.
// A tail shorter than duration is dropped.
func PackRange(r models.Range, duration, buffer int) ([]models.Range, error) {
	if duration <= 0 {
		return nil, &models.InvalidScheduleError{Field: "durationMinutes", Reason: fmt.Sprintf("must be positive, got %d", duration)}
	}
	if buffer < 0 {
		return nil, &models.InvalidScheduleError{Field: "bufferMinutes", Reason: fmt.Sprintf("must not be negative, got %d", buffer)}
	}

	var out []models.Range
	for cur := r.Start; cur+duration <= r.End; cur += duration + buffer {
		out = append(out, models.Range{Start: cur, End: cur + duration})
	}
	return out, nil
}
