package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	offeringRepo "mentorly/database/repository/offering"
	slotRepo "mentorly/database/repository/slot"
	templateRepo "mentorly/database/repository/template"
	"mentorly/models"
	"mentorly/utils"

	"go.uber.org/zap"
)

type SlotService interface {
	Materialize(ctx context.Context, offeringID string) (int, error)
	Regenerate(ctx context.Context, offeringID string) (*RegenerateResult, error)
	ExtendHorizon(ctx context.Context) (int, error)
	ListSlots(ctx context.Context, offeringID, date string) ([]models.Slot, error)
}

type RegenerateResult struct {
	Deleted int64 `json:"deleted"`
	Created int   `json:"created"`
}

// DefaultSlotService persists materialized slots for offerings.
type DefaultSlotService struct {
	Slots          slotRepo.SlotRepository
	Offerings      offeringRepo.OfferingRepository
	Templates      templateRepo.TemplateRepository
	Logger         *zap.Logger
	HorizonDays    int
	RecurringWeeks int
	Now            func() time.Time
}

func (s *DefaultSlotService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultSlotService) horizonDays() int {
	if s.HorizonDays > 0 {
		return s.HorizonDays
	}
	return 90
}

func (s *DefaultSlotService) recurringWeeks() int {
	if s.RecurringWeeks > 0 {
		return s.RecurringWeeks
	}
	return 12
}

func (s *DefaultSlotService) loadOffering(ctx context.Context, offeringID string) (*models.Offering, error) {
	o, err := s.Offerings.GetByID(ctx, offeringID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "offering", ID: offeringID}
	}
	return o, err
}

// generate builds the slots an offering should have from "from" onward, per its slot mode.
func (s *DefaultSlotService) generate(ctx context.Context, o models.Offering, from time.Time) ([]models.Slot, error) {
	logger := utils.LoggerOr(s.Logger)
	now := s.now()

	switch o.SlotMode {
	case models.SlotModeTemplate:
		tmpl, err := s.Templates.GetActive(ctx, o.SpecialistID)
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, &models.InvalidScheduleError{Field: "slotMode", Reason: "specialist has no active availability template"}
		}
		if err != nil {
			return nil, err
		}
		return FromTemplate(*tmpl, o, from, s.horizonDays(), now)

	case models.SlotModeExplicit:
		return FromExplicit(o, o.ExplicitSlots)

	case models.SlotModeRecurring:
		loc := time.UTC
		if o.Timezone != "" {
			if l, err := time.LoadLocation(o.Timezone); err == nil {
				loc = l
			}
		}
		out, errs := FromRecurring(o, o.WeeklySchedule, now.In(loc), s.recurringWeeks())
		for _, err := range errs {
			logger.Warn("skipping recurring schedule entry",
				zap.String("offeringID", o.ID), zap.Error(err))
		}
		return out, nil

	case models.SlotModeNone, "":
		return nil, nil
	}
	return nil, &models.InvalidScheduleError{Field: "slotMode", Reason: fmt.Sprintf("unknown slot mode %q", o.SlotMode)}
}

// Materialize inserts the offering's slots. Occurrences that already exist are kept as they are.
func (s *DefaultSlotService) Materialize(ctx context.Context, offeringID string) (int, error) {
	o, err := s.loadOffering(ctx, offeringID)
	if err != nil {
		return 0, err
	}
	slots, err := s.generate(ctx, *o, s.now())
	if err != nil {
		return 0, err
	}
	n, err := s.Slots.CreateMany(ctx, slots)
	if err != nil {
		return 0, fmt.Errorf("persist slots: %w", err)
	}
	utils.SlotsMaterializedTotal.WithLabelValues(string(o.SlotMode)).Add(float64(n))
	utils.LoggerOr(s.Logger).Info("slots materialized",
		zap.String("offeringID", o.ID), zap.String("mode", string(o.SlotMode)), zap.Int("created", n))
	return n, nil
}

// Regenerate rebuilds a published offering's slots in one atomic swap. A draft offering
// only loses its slots; they come back when it is published.
func (s *DefaultSlotService) Regenerate(ctx context.Context, offeringID string) (*RegenerateResult, error) {
	logger := utils.LoggerOr(s.Logger)
	o, err := s.loadOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	if !o.IsPublished() {
		deleted, err := s.Slots.DeleteByOffering(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		logger.Info("draft offering slots cleared", zap.String("offeringID", o.ID), zap.Int64("deleted", deleted))
		return &RegenerateResult{Deleted: deleted}, nil
	}

	slots, err := s.generate(ctx, *o, s.now())
	if err != nil {
		return nil, err
	}
	existing, err := s.Slots.ListByOffering(ctx, o.ID, "")
	if err != nil {
		return nil, err
	}
	created, err := s.Slots.ReplaceForOffering(ctx, o.ID, slots)
	if err != nil {
		return nil, err
	}
	utils.SlotsMaterializedTotal.WithLabelValues(string(o.SlotMode)).Add(float64(created))
	logger.Info("offering slots regenerated",
		zap.String("offeringID", o.ID), zap.Int("deleted", len(existing)), zap.Int("created", created))
	return &RegenerateResult{Deleted: int64(len(existing)), Created: created}, nil
}

// ExtendHorizon tops up published template and recurring offerings so their slots keep
// reaching the configured horizon. Only dates after the latest materialized one are added.
func (s *DefaultSlotService) ExtendHorizon(ctx context.Context) (int, error) {
	logger := utils.LoggerOr(s.Logger)
	total := 0
	for _, mode := range []models.SlotMode{models.SlotModeTemplate, models.SlotModeRecurring} {
		offerings, err := s.Offerings.ListPublishedBySlotMode(ctx, mode)
		if err != nil {
			return total, err
		}
		for _, o := range offerings {
			n, err := s.extendOffering(ctx, o)
			if err != nil {
				logger.Error("failed to extend slot horizon", zap.String("offeringID", o.ID), zap.Error(err))
				continue
			}
			total += n
		}
	}
	logger.Info("slot horizon extended", zap.Int("created", total))
	return total, nil
}

func (s *DefaultSlotService) extendOffering(ctx context.Context, o models.Offering) (int, error) {
	maxDate, err := s.Slots.MaxDate(ctx, o.ID)
	if err != nil {
		return 0, err
	}
	from := s.now()
	if maxDate != "" {
		if last, err := time.Parse(dateLayout, maxDate); err == nil {
			next := last.AddDate(0, 0, 1)
			if next.After(from) {
				from = next
			}
		}
	}
	slots, err := s.generate(ctx, o, from)
	if err != nil {
		return 0, err
	}
	fresh := slots[:0]
	for _, sl := range slots {
		if sl.Date > maxDate {
			fresh = append(fresh, sl)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	n, err := s.Slots.CreateMany(ctx, fresh)
	if err != nil {
		return 0, err
	}
	utils.SlotsMaterializedTotal.WithLabelValues(string(o.SlotMode)).Add(float64(n))
	return n, nil
}

func (s *DefaultSlotService) ListSlots(ctx context.Context, offeringID, date string) ([]models.Slot, error) {
	return s.Slots.ListByOffering(ctx, offeringID, date)
}
