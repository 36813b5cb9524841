package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mentorly/models"
)

const minutesPerDay = 24 * 60

// SubtractRange removes brk from r. It returns r unchanged when they don't overlap,
// nothing when brk covers r, and one or two remainders otherwise. Empty pieces are dropped.
func SubtractRange(r, brk models.Range) ([]models.Range, error) {
	if r.Start >= r.End {
		return nil, &models.InvalidRangeError{Start: r.Start, End: r.End}
	}
	if brk.Start >= brk.End {
		return nil, &models.InvalidRangeError{Start: brk.Start, End: brk.End}
	}

	if brk.End <= r.Start || brk.Start >= r.End {
		return []models.Range{r}, nil
	}

	out := make([]models.Range, 0, 2)
	if brk.Start > r.Start {
		out = append(out, models.Range{Start: r.Start, End: brk.Start})
	}
	if brk.End < r.End {
		out = append(out, models.Range{Start: brk.End, End: r.End})
	}
	return out, nil
}

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is accepted as end of day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("time %q is not in HH:MM form", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time %q has a bad hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time %q has bad minutes", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q is out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ToRange parses a start/end pair, requiring start < end within a single day.
func ToRange(start, end string) (models.Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return models.Range{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return models.Range{}, err
	}
	if s >= e || e > minutesPerDay {
		return models.Range{}, &models.InvalidRangeError{Start: s, End: e}
	}
	return models.Range{Start: s, End: e}, nil
}

// NormalizeRanges sorts by start and folds ranges that overlap. Touching ranges stay separate.
func NormalizeRanges(in []models.Range) []models.Range {
	if len(in) == 0 {
		return []models.Range{}
	}
	sorted := make([]models.Range, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	out := []models.Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start < last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
