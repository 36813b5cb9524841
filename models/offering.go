package models

import "time"

// ServiceType is the tagged offering family used for commission lookups.
type ServiceType string

const (
	ServiceTypeCourse     ServiceType = "course"
	ServiceTypeConsulting ServiceType = "consulting"
	ServiceTypeWebinar    ServiceType = "webinar"
)

// AllServiceTypes lists every tag; commission rates are resolved for each of them.
var AllServiceTypes = []ServiceType{ServiceTypeCourse, ServiceTypeConsulting, ServiceTypeWebinar}

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeCourse, ServiceTypeConsulting, ServiceTypeWebinar:
		return true
	}
	return false
}

const (
	OfferingStatusDraft     = "draft"
	OfferingStatusPublished = "published"
)

// SlotMode decides how an offering's slots are materialized.
type SlotMode string

const (
	SlotModeNone      SlotMode = "none"
	SlotModeTemplate  SlotMode = "template"
	SlotModeExplicit  SlotMode = "explicit"
	SlotModeRecurring SlotMode = "recurring"
)

// Offering is a course, consulting service or webinar sold by a specialist.
type Offering struct {
	ID              string                `bson:"id" json:"id"`
	SpecialistID    string                `bson:"specialistId" json:"specialistId"`
	Title           string                `bson:"title" json:"title"`
	ServiceType     ServiceType           `bson:"serviceType" json:"serviceType"`
	PriceMinor      int64                 `bson:"priceMinor" json:"priceMinor"`
	Currency        string                `bson:"currency" json:"currency"`
	Status          string                `bson:"status" json:"status"`
	SlotMode        SlotMode              `bson:"slotMode" json:"slotMode"`
	DurationMinutes int                   `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Capacity        int                   `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Timezone        string                `bson:"timezone,omitempty" json:"timezone,omitempty"`
	ExplicitSlots   []ExplicitSlotEntry   `bson:"explicitSlots,omitempty" json:"explicitSlots,omitempty"`
	WeeklySchedule  []WeeklyScheduleEntry `bson:"weeklySchedule,omitempty" json:"weeklySchedule,omitempty"`
	MeetingHostRef  string                `bson:"meetingHostRef,omitempty" json:"meetingHostRef,omitempty"`
	CreatedAt       time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt" json:"updatedAt"`
}

func (o Offering) IsPublished() bool { return o.Status == OfferingStatusPublished }

func (o Offering) IsFree() bool { return o.PriceMinor <= 0 }

// ExplicitSlotEntry is one curated occurrence of a single or multi-day event.
type ExplicitSlotEntry struct {
	Date            string `bson:"date" json:"date" validate:"required"`
	Time            string `bson:"time" json:"time" validate:"required"`
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes" validate:"gt=0"`
	Capacity        int    `bson:"capacity" json:"capacity" validate:"gte=1"`
}

// WeeklyScheduleEntry is one weekday of a recurring webinar schedule.
type WeeklyScheduleEntry struct {
	Day             string `bson:"day" json:"day" validate:"required"`
	Enabled         bool   `bson:"enabled" json:"enabled"`
	Time            string `bson:"time" json:"time"`
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes"`
	Capacity        int    `bson:"capacity" json:"capacity"`
}
