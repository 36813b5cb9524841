package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	templateRepo "mentorly/database/repository/template"
	"mentorly/models"
	"mentorly/utils"

	"go.uber.org/zap"
)

type AvailabilityService interface {
	CreateTemplate(ctx context.Context, specialistID string, tmpl models.AvailabilityTemplate) (*models.AvailabilityTemplate, error)
	GetActiveTemplate(ctx context.Context, specialistID string) (*models.AvailabilityTemplate, error)
	OpenRanges(ctx context.Context, specialistID, date string) ([]models.Range, error)
}

// DefaultAvailabilityService owns specialists' availability templates.
type DefaultAvailabilityService struct {
	Repo   templateRepo.TemplateRepository
	Logger *zap.Logger
}

func (s *DefaultAvailabilityService) CreateTemplate(ctx context.Context, specialistID string, tmpl models.AvailabilityTemplate) (*models.AvailabilityTemplate, error) {
	logger := utils.LoggerOr(s.Logger)

	tmpl.ID = ""
	tmpl.SpecialistID = specialistID
	if err := ValidateTemplate(tmpl); err != nil {
		return nil, err
	}
	if err := s.Repo.Activate(ctx, &tmpl); err != nil {
		logger.Error("failed to activate availability template",
			zap.String("specialistID", specialistID), zap.Error(err))
		return nil, fmt.Errorf("save template: %w", err)
	}
	logger.Info("availability template activated",
		zap.String("specialistID", specialistID), zap.String("templateID", tmpl.ID))
	return &tmpl, nil
}

func (s *DefaultAvailabilityService) GetActiveTemplate(ctx context.Context, specialistID string) (*models.AvailabilityTemplate, error) {
	tmpl, err := s.Repo.GetActive(ctx, specialistID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "availability template for specialist", ID: specialistID}
	}
	return tmpl, err
}

func (s *DefaultAvailabilityService) OpenRanges(ctx context.Context, specialistID, date string) ([]models.Range, error) {
	tmpl, err := s.GetActiveTemplate(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	return ResolveOpenRanges(*tmpl, date)
}

// ValidateTemplate checks struct tags and then every time, date and duration in tmpl.
func ValidateTemplate(tmpl models.AvailabilityTemplate) error {
	if err := utils.ValidateStruct(tmpl); err != nil {
		return err
	}
	if _, err := templateLocation(tmpl); err != nil {
		return err
	}

	seen := make(map[time.Weekday]bool, len(tmpl.WeeklyPattern))
	for key, day := range tmpl.WeeklyPattern {
		wd, _ := models.ParseWeekday(key)
		if seen[wd] {
			return &models.InvalidScheduleError{Field: "weeklyPattern", Reason: fmt.Sprintf("weekday %q is listed twice", key)}
		}
		seen[wd] = true
		if err := checkRanges("weeklyPattern."+key, day.Ranges); err != nil {
			return err
		}
	}
	for i, ex := range tmpl.DateExceptions {
		if _, err := time.Parse("2006-01-02", ex.Date); err != nil {
			return &models.InvalidScheduleError{Field: fmt.Sprintf("dateExceptions[%d].date", i), Reason: "expected YYYY-MM-DD"}
		}
		if err := checkRanges(fmt.Sprintf("dateExceptions[%d]", i), ex.Ranges); err != nil {
			return err
		}
	}
	for i, br := range tmpl.BreakRules {
		if _, err := ToRange(br.StartTime, br.EndTime); err != nil {
			return &models.InvalidScheduleError{Field: fmt.Sprintf("breakRules[%d]", i), Reason: err.Error()}
		}
	}
	for _, d := range tmpl.SlotConfig.AllowedDurations {
		if d <= 0 {
			return &models.InvalidScheduleError{Field: "slotConfig.allowedDurations", Reason: "durations must be positive"}
		}
	}
	return nil
}

func checkRanges(field string, ranges []models.TimeRange) error {
	for i, tr := range ranges {
		if _, err := ToRange(tr.StartTime, tr.EndTime); err != nil {
			return &models.InvalidScheduleError{Field: fmt.Sprintf("%s.ranges[%d]", field, i), Reason: err.Error()}
		}
	}
	return nil
}
