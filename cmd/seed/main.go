// Command seed loads a demo specialist with one offering per slot mode into MongoDB and
// prints bearer tokens for trying the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"mentorly/config"
	"mentorly/database"
	commissionRepo "mentorly/database/repository/commission"
	offeringRepo "mentorly/database/repository/offering"
	slotRepo "mentorly/database/repository/slot"
	templateRepo "mentorly/database/repository/template"
	"mentorly/models"
	"mentorly/services/availability"
	"mentorly/services/commission"
	"mentorly/services/slots"
	"mentorly/utils"

	"go.uber.org/zap"
)

func demoTemplate() models.AvailabilityTemplate {
	workday := models.DayPattern{
		Enabled: true,
		Ranges:  []models.TimeRange{{StartTime: "09:00", EndTime: "17:00", IsAvailable: true}},
	}
	return models.AvailabilityTemplate{
		Timezone: "Europe/Berlin",
		WeeklyPattern: map[string]models.DayPattern{
			"monday":    workday,
			"tuesday":   workday,
			"wednesday": workday,
			"thursday":  workday,
			"friday":    {Enabled: true, Ranges: []models.TimeRange{{StartTime: "09:00", EndTime: "13:00", IsAvailable: true}}},
		},
		BreakRules: []models.BreakRule{
			{Weekday: "monday", StartTime: "12:00", EndTime: "13:00", Recurring: true},
			{Weekday: "wednesday", StartTime: "12:00", EndTime: "13:00", Recurring: true},
		},
		SlotConfig:   models.SlotConfig{DefaultDurationMinutes: 60, AllowedDurations: []int{30, 60, 90}, BufferMinutes: 15},
		BookingRules: models.BookingRules{MinNoticeHours: 12, MaxAdvanceDays: 60, CancellationDeadlineHours: 24},
	}
}

func demoOfferings(specialistID string, start time.Time) []models.Offering {
	day := func(offset int) string { return start.AddDate(0, 0, offset).Format("2006-01-02") }
	return []models.Offering{
		{
			ID: "demo-course", SpecialistID: specialistID, Title: "Go for Backend Engineers",
			ServiceType: models.ServiceTypeCourse, PriceMinor: 4900, Currency: config.AppConfig.DefaultCurrency,
			Status: models.OfferingStatusPublished, SlotMode: models.SlotModeNone,
		},
		{
			ID: "demo-consulting", SpecialistID: specialistID, Title: "1:1 Architecture Review",
			ServiceType: models.ServiceTypeConsulting, PriceMinor: 12000, Currency: config.AppConfig.DefaultCurrency,
			Status: models.OfferingStatusPublished, SlotMode: models.SlotModeTemplate, DurationMinutes: 60, Capacity: 1,
			Timezone: "Europe/Berlin",
		},
		{
			ID: "demo-intro", SpecialistID: specialistID, Title: "Free Intro Call",
			ServiceType: models.ServiceTypeConsulting, Currency: config.AppConfig.DefaultCurrency,
			Status: models.OfferingStatusPublished, SlotMode: models.SlotModeTemplate, DurationMinutes: 30, Capacity: 1,
			Timezone: "Europe/Berlin",
		},
		{
			ID: "demo-workshop", SpecialistID: specialistID, Title: "Two-day Concurrency Workshop",
			ServiceType: models.ServiceTypeWebinar, PriceMinor: 19900, Currency: config.AppConfig.DefaultCurrency,
			Status: models.OfferingStatusPublished, SlotMode: models.SlotModeExplicit, Timezone: "Europe/Berlin",
			ExplicitSlots: []models.ExplicitSlotEntry{
				{Date: day(14), Time: "10:00", DurationMinutes: 240, Capacity: 25},
				{Date: day(15), Time: "10:00", DurationMinutes: 240, Capacity: 25},
			},
		},
		{
			ID: "demo-webinar", SpecialistID: specialistID, Title: "Weekly Office Hours",
			ServiceType: models.ServiceTypeWebinar, PriceMinor: 1500, Currency: config.AppConfig.DefaultCurrency,
			Status: models.OfferingStatusPublished, SlotMode: models.SlotModeRecurring, Timezone: "Europe/Berlin",
			WeeklySchedule: []models.WeeklyScheduleEntry{
				{Day: "tuesday", Enabled: true, Time: "18:00", DurationMinutes: 60, Capacity: 100},
				{Day: "thursday", Enabled: true, Time: "18:00", DurationMinutes: 60, Capacity: 100},
			},
		},
	}
}

func main() {
	specialistID := flag.String("specialist", "demo-specialist", "specialist id to seed")
	percentage := flag.Float64("commission", commission.DefaultPlatformPercentage, "platform commission percentage")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed demo tokens")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	defer database.Disconnect(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.DB()
	templates := templateRepo.NewMongoTemplateRepo(db)
	offerings := offeringRepo.NewMongoOfferingRepo(db)
	slotStore := slotRepo.NewMongoSlotRepo(db)
	commissions := commissionRepo.NewMongoCommissionRepo(db)
	for _, ix := range []interface{ EnsureIndexes() error }{templates, offerings, slotStore, commissions} {
		if err := ix.EnsureIndexes(); err != nil {
			logger.Fatal("seed: ensure indexes", zap.Error(err))
		}
	}

	avail := &availability.DefaultAvailabilityService{Repo: templates, Logger: logger}
	if _, err := avail.CreateTemplate(ctx, *specialistID, demoTemplate()); err != nil {
		logger.Fatal("seed: availability template", zap.Error(err))
	}

	commissionSvc := &commission.DefaultCommissionService{Repo: commissions, Logger: logger}
	cfg, err := commissionSvc.Update(ctx, commission.UpdateInput{
		PlatformPercentage:  *percentage,
		ByServiceType:       map[models.ServiceType]float64{models.ServiceTypeWebinar: *percentage + 5},
		MinimumChargeAmount: 500,
	}, "seed")
	if err != nil {
		logger.Fatal("seed: commission config", zap.Error(err))
	}
	logger.Info("seed: commission config stored", zap.Int("version", cfg.Version))

	slotSvc := &slots.DefaultSlotService{
		Slots:          slotStore,
		Offerings:      offerings,
		Templates:      templates,
		Logger:         logger,
		HorizonDays:    config.AppConfig.SlotHorizonDays,
		RecurringWeeks: config.AppConfig.RecurringHorizonWeeks,
	}
	for _, o := range demoOfferings(*specialistID, time.Now()) {
		o := o
		if err := offerings.Create(ctx, &o); err != nil && !errors.Is(err, models.ErrDuplicateKey) {
			logger.Fatal("seed: offering", zap.String("offeringID", o.ID), zap.Error(err))
		}
		res, err := slotSvc.Regenerate(ctx, o.ID)
		if err != nil {
			logger.Fatal("seed: slots", zap.String("offeringID", o.ID), zap.Error(err))
		}
		logger.Info("seed: offering ready", zap.String("offeringID", o.ID), zap.Int("slots", res.Created))
	}

	if config.AppConfig.JWTSecret == "" {
		logger.Warn("seed: JWT_SECRET not set, skipping demo tokens")
		return
	}
	for _, who := range []struct{ id, role string }{
		{*specialistID, utils.RoleSpecialist},
		{"demo-customer", utils.RoleCustomer},
		{"demo-admin", utils.RoleAdmin},
	} {
		token, err := utils.GenerateToken(who.id, who.role, *tokenTTL)
		if err != nil {
			logger.Fatal("seed: token", zap.Error(err))
		}
		fmt.Printf("%-10s %s\n", who.role, token)
	}
}
