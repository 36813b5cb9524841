package models

import (
	"strings"
	"time"
)

// Range is a half-open interval of minutes from midnight, e.g. {540, 600} for 09:00-10:00.
type Range struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

func (r Range) Duration() int { return r.End - r.Start }

// TimeRange is the wire form of a range inside a template ("HH:MM").
type TimeRange struct {
	StartTime   string `bson:"startTime" json:"startTime" validate:"required"`
	EndTime     string `bson:"endTime" json:"endTime" validate:"required"`
	IsAvailable bool   `bson:"isAvailable" json:"isAvailable"`
}

type DayPattern struct {
	Enabled bool        `bson:"enabled" json:"enabled"`
	Ranges  []TimeRange `bson:"ranges" json:"ranges" validate:"dive"`
}

type DateException struct {
	Date        string      `bson:"date" json:"date" validate:"required"` // "2025-02-25"
	IsAvailable bool        `bson:"isAvailable" json:"isAvailable"`
	Ranges      []TimeRange `bson:"ranges,omitempty" json:"ranges,omitempty" validate:"dive"`
}

type BreakRule struct {
	Weekday   string `bson:"weekday" json:"weekday" validate:"required,weekday"`
	StartTime string `bson:"startTime" json:"startTime" validate:"required"`
	EndTime   string `bson:"endTime" json:"endTime" validate:"required"`
	Recurring bool   `bson:"recurring" json:"recurring"`
}

type SlotConfig struct {
	DefaultDurationMinutes int   `bson:"defaultDurationMinutes" json:"defaultDurationMinutes" validate:"gt=0"`
	AllowedDurations       []int `bson:"allowedDurations,omitempty" json:"allowedDurations,omitempty"`
	BufferMinutes          int   `bson:"bufferMinutes" json:"bufferMinutes" validate:"gte=0"`
}

type BookingRules struct {
	MinNoticeHours            int `bson:"minNoticeHours" json:"minNoticeHours" validate:"gte=0"`
	MaxAdvanceDays            int `bson:"maxAdvanceDays" json:"maxAdvanceDays" validate:"gte=0"`
	CancellationDeadlineHours int `bson:"cancellationDeadlineHours" json:"cancellationDeadlineHours" validate:"gte=0"`
}

// AvailabilityTemplate is a specialist's recurring availability. Only one is active per specialist.
type AvailabilityTemplate struct {
	ID             string                `bson:"id" json:"id"`
	SpecialistID   string                `bson:"specialistId" json:"specialistId"`
	WeeklyPattern  map[string]DayPattern `bson:"weeklyPattern" json:"weeklyPattern" validate:"required,dive,keys,weekday,endkeys"`
	DateExceptions []DateException       `bson:"dateExceptions,omitempty" json:"dateExceptions,omitempty" validate:"dive"`
	BreakRules     []BreakRule           `bson:"breakRules,omitempty" json:"breakRules,omitempty" validate:"dive"`
	SlotConfig     SlotConfig            `bson:"slotConfig" json:"slotConfig"`
	BookingRules   BookingRules          `bson:"bookingRules" json:"bookingRules"`
	Timezone       string                `bson:"timezone" json:"timezone" validate:"required"`
	IsActive       bool                  `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// Weekday names used as WeeklyPattern keys and in schedules.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps an English weekday name (any case) to time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// WeekdayKey is the inverse of ParseWeekday.
func WeekdayKey(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}
