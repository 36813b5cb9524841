package offering

import (
	"context"
	"errors"
	"fmt"
	"time"

	offeringRepo "mentorly/database/repository/offering"
	"mentorly/models"
	"mentorly/services/slots"
	"mentorly/utils"

	"go.uber.org/zap"
)

const (
	RoleAdmin      = "admin"
	RoleSpecialist = "specialist"
)

type OfferingService interface {
	GetOffering(ctx context.Context, offeringID string) (*models.Offering, error)
	UpdateSchedule(ctx context.Context, offeringID string, editor Editor, in ScheduleInput) (*ScheduleResult, error)
	Publish(ctx context.Context, offeringID string, editor Editor) (*ScheduleResult, error)
	Unpublish(ctx context.Context, offeringID string, editor Editor) (*ScheduleResult, error)
}

// Editor is whoever changes an offering: its specialist or an admin.
type Editor struct {
	ID   string
	Role string
}

// ScheduleInput replaces the scheduling part of an offering.
type ScheduleInput struct {
	SlotMode        models.SlotMode              `json:"slotMode" validate:"required,oneof=none template explicit recurring"`
	DurationMinutes int                          `json:"durationMinutes" validate:"gte=0,lte=1440"`
	Capacity        int                          `json:"capacity" validate:"gte=0"`
	Timezone        string                       `json:"timezone"`
	ExplicitSlots   []models.ExplicitSlotEntry   `json:"explicitSlots" validate:"dive"`
	WeeklySchedule  []models.WeeklyScheduleEntry `json:"weeklySchedule" validate:"dive"`
	MeetingHostRef  string                       `json:"meetingHostRef"`
}

type ScheduleResult struct {
	Offering *models.Offering        `json:"offering"`
	Slots    *slots.RegenerateResult `json:"slots,omitempty"`
}

type DefaultOfferingService struct {
	Repo   offeringRepo.OfferingRepository
	Slots  slots.SlotService
	Logger *zap.Logger
	Now    func() time.Time
}

func (s *DefaultOfferingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultOfferingService) GetOffering(ctx context.Context, offeringID string) (*models.Offering, error) {
	o, err := s.Repo.GetByID(ctx, offeringID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "offering", ID: offeringID}
	}
	return o, err
}

func (s *DefaultOfferingService) loadForEdit(ctx context.Context, offeringID string, editor Editor) (*models.Offering, error) {
	o, err := s.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	if editor.Role != RoleAdmin && editor.ID != o.SpecialistID {
		return nil, &models.ForbiddenError{Reason: "only the offering's specialist can change it"}
	}
	return o, nil
}

// UpdateSchedule stores a new schedule and rebuilds the offering's slots from it.
// A schedule that would produce no valid slots is rejected before anything is saved.
func (s *DefaultOfferingService) UpdateSchedule(ctx context.Context, offeringID string, editor Editor, in ScheduleInput) (*ScheduleResult, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	o, err := s.loadForEdit(ctx, offeringID, editor)
	if err != nil {
		return nil, err
	}

	next := *o
	next.SlotMode = in.SlotMode
	next.DurationMinutes = in.DurationMinutes
	next.Capacity = in.Capacity
	next.Timezone = in.Timezone
	next.ExplicitSlots = in.ExplicitSlots
	next.WeeklySchedule = in.WeeklySchedule
	next.MeetingHostRef = in.MeetingHostRef
	if err := s.checkSchedule(next); err != nil {
		return nil, err
	}

	next.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("save offering schedule: %w", err)
	}
	res, err := s.Slots.Regenerate(ctx, next.ID)
	if err != nil {
		utils.LoggerOr(s.Logger).Error("schedule saved but slots not regenerated",
			zap.String("offeringID", next.ID), zap.Error(err))
		return nil, err
	}
	utils.LoggerOr(s.Logger).Info("offering schedule updated",
		zap.String("offeringID", next.ID),
		zap.String("mode", string(next.SlotMode)),
		zap.Int("slots", res.Created))
	return &ScheduleResult{Offering: &next, Slots: res}, nil
}

// checkSchedule dry-runs the materializers that can fail on bad input.
func (s *DefaultOfferingService) checkSchedule(o models.Offering) error {
	if o.Timezone != "" {
		if _, err := time.LoadLocation(o.Timezone); err != nil {
			return &models.InvalidScheduleError{Field: "timezone", Reason: err.Error()}
		}
	}
	switch o.SlotMode {
	case models.SlotModeExplicit:
		if len(o.ExplicitSlots) == 0 {
			return &models.InvalidScheduleError{Field: "explicitSlots", Reason: "at least one slot is required"}
		}
		_, err := slots.FromExplicit(o, o.ExplicitSlots)
		return err
	case models.SlotModeRecurring:
		if len(o.WeeklySchedule) == 0 {
			return &models.InvalidScheduleError{Field: "weeklySchedule", Reason: "at least one day is required"}
		}
		out, errs := slots.FromRecurring(o, o.WeeklySchedule, s.now(), 1)
		for _, err := range errs {
			var dup *slots.DuplicateOccurrenceError
			if errors.As(err, &dup) {
				return err
			}
		}
		if len(out) == 0 && len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

func (s *DefaultOfferingService) Publish(ctx context.Context, offeringID string, editor Editor) (*ScheduleResult, error) {
	return s.setStatus(ctx, offeringID, editor, models.OfferingStatusPublished)
}

func (s *DefaultOfferingService) Unpublish(ctx context.Context, offeringID string, editor Editor) (*ScheduleResult, error) {
	return s.setStatus(ctx, offeringID, editor, models.OfferingStatusDraft)
}

// setStatus flips the offering and regenerates. If slots cannot be built for a
// publish, the offering goes back to its previous status.
func (s *DefaultOfferingService) setStatus(ctx context.Context, offeringID string, editor Editor, status string) (*ScheduleResult, error) {
	logger := utils.LoggerOr(s.Logger)
	o, err := s.loadForEdit(ctx, offeringID, editor)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return &ScheduleResult{Offering: o}, nil
	}

	prev := o.Status
	o.Status = status
	o.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("save offering status: %w", err)
	}

	res, err := s.Slots.Regenerate(ctx, o.ID)
	if err != nil {
		o.Status = prev
		if revertErr := s.Repo.Update(ctx, o); revertErr != nil {
			logger.Error("failed to revert offering status",
				zap.String("offeringID", o.ID), zap.Error(revertErr))
		}
		return nil, err
	}
	logger.Info("offering status changed",
		zap.String("offeringID", o.ID),
		zap.String("from", prev),
		zap.String("to", status),
		zap.Int64("slotsDeleted", res.Deleted),
		zap.Int("slotsCreated", res.Created))
	return &ScheduleResult{Offering: o, Slots: res}, nil
}
