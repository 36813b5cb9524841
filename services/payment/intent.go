package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/models"
	"mentorly/services/gateway"
	"mentorly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const intentLockTTL = 30 * time.Second

// CreateIntent starts paying for an offering, or for one booking of it. A pending intent
// for the same customer and service within the dedupe window is handed back instead of a
// new one. Free offerings are granted without touching the gateway.
func (s *DefaultPaymentService) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	logger := s.logger()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	offering, err := s.Offerings.GetByID(ctx, req.Service.OfferingID)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "offering", ID: req.Service.OfferingID}
	}
	if err != nil {
		return nil, err
	}
	if !offering.IsPublished() {
		return nil, &models.ValidationError{Message: "offering is not open for enrollment"}
	}
	if offering.SlotMode != models.SlotModeNone && offering.SlotMode != "" && req.Service.BookingID == "" {
		return nil, &models.ValidationError{Message: "book a slot before paying for this offering"}
	}

	serviceKey := req.Service.Key()
	release, err := s.Locker.Acquire(ctx, "payment:intent:"+req.CustomerID+":"+serviceKey, intentLockTTL)
	if errors.Is(err, utils.ErrLockHeld) {
		return nil, &models.BusyError{Key: serviceKey}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire intent lock: %w", err)
	}
	defer release()

	recent, err := s.Payments.LatestForService(ctx, req.CustomerID, serviceKey, s.now().Add(-s.dedupeWindow()))
	switch {
	case err == nil && recent.Status == models.PaymentStatusCompleted:
		utils.PaymentIntentsTotal.WithLabelValues("duplicate").Inc()
		return nil, &models.DuplicateEnrollmentError{CustomerID: req.CustomerID, OfferingID: offering.ID}
	case err == nil:
		utils.PaymentIntentsTotal.WithLabelValues("reused").Inc()
		logger.Info("returning recent payment intent",
			zap.String("paymentID", recent.ID), zap.String("customerID", req.CustomerID))
		return &IntentResult{
			PaymentID:    recent.ID,
			IntentID:     recent.ExternalIntentID,
			ClientSecret: recent.ClientSecret,
			Amount:       recent.Amount,
			Currency:     recent.Currency,
			Status:       recent.Status,
			Reused:       true,
		}, nil
	case !errors.Is(err, models.ErrRecordNotFound):
		return nil, err
	}

	if req.Service.BookingID == "" {
		existing, err := s.Enrollments.GetByCustomerAndOffering(ctx, req.CustomerID, offering.ID)
		if err == nil && existing.Status == models.EnrollmentStatusActive {
			utils.PaymentIntentsTotal.WithLabelValues("duplicate").Inc()
			return nil, &models.DuplicateEnrollmentError{CustomerID: req.CustomerID, OfferingID: offering.ID}
		}
		if err != nil && !errors.Is(err, models.ErrRecordNotFound) {
			return nil, err
		}
	} else if err := s.checkBooking(ctx, req); err != nil {
		return nil, err
	}

	if offering.IsFree() {
		return s.grantFree(ctx, req, offering)
	}
	return s.createPaidIntent(ctx, req, offering)
}

// checkBooking makes sure the booking being paid for is the customer's and still awaiting payment.
func (s *DefaultPaymentService) checkBooking(ctx context.Context, req IntentRequest) error {
	b, err := s.Bookings.GetBooking(ctx, req.Service.BookingID)
	if err != nil {
		return err
	}
	if b.CustomerID != req.CustomerID {
		return &models.ForbiddenError{Reason: "booking belongs to another customer"}
	}
	if b.OfferingID != req.Service.OfferingID {
		return &models.ValidationError{Message: "booking is for a different offering"}
	}
	if b.Status != models.BookingStatusPending {
		return &models.InvalidTransitionError{From: b.Status, To: models.BookingStatusConfirmed}
	}
	return nil
}

func (s *DefaultPaymentService) grantFree(ctx context.Context, req IntentRequest, offering *models.Offering) (*IntentResult, error) {
	logger := s.logger()
	e := &models.Enrollment{
		CustomerID:    req.CustomerID,
		OfferingID:    offering.ID,
		SpecialistID:  offering.SpecialistID,
		BookingID:     req.Service.BookingID,
		Status:        models.EnrollmentStatusActive,
		PaymentStatus: models.PaymentStatusCompleted,
	}
	if _, err := s.Enrollments.Upsert(ctx, e); err != nil {
		return nil, fmt.Errorf("activate free enrollment: %w", err)
	}
	out := &IntentResult{
		Currency:   offering.Currency,
		Status:     models.PaymentStatusCompleted,
		Free:       true,
		Enrollment: e,
	}
	if req.Service.BookingID != "" {
		b, err := s.Bookings.Finalize(ctx, req.Service.BookingID, "")
		if err != nil {
			logger.Error("free enrollment granted but booking not confirmed",
				zap.String("bookingID", req.Service.BookingID), zap.Error(err))
		} else {
			out.Booking = b
		}
	}
	utils.PaymentIntentsTotal.WithLabelValues("free").Inc()
	logger.Info("free enrollment granted",
		zap.String("customerID", req.CustomerID), zap.String("offeringID", offering.ID))
	return out, nil
}

func (s *DefaultPaymentService) createPaidIntent(ctx context.Context, req IntentRequest, offering *models.Offering) (*IntentResult, error) {
	logger := s.logger()
	rates, err := s.Commission.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commission rates: %w", err)
	}
	amount := offering.PriceMinor
	if amount < rates.MinimumCharge {
		amount = rates.MinimumCharge
	}
	split, err := rates.Calculate(amount, offering.ServiceType)
	if err != nil {
		return nil, err
	}

	handle, err := s.gatewayCustomer(ctx, req)
	if err != nil {
		utils.PaymentIntentsTotal.WithLabelValues("gateway_error").Inc()
		return nil, err
	}

	paymentID := uuid.New().String()
	idempotencyKey := uuid.New().String()
	gctx, cancel := s.gatewayCtx(ctx)
	intent, err := s.Gateway.CreateIntent(gctx, gateway.IntentParams{
		Amount:         amount,
		Currency:       offering.Currency,
		CustomerHandle: handle,
		IdempotencyKey: idempotencyKey,
		Metadata: map[string]string{
			"paymentId":  paymentID,
			"customerId": req.CustomerID,
			"offeringId": offering.ID,
			"bookingId":  req.Service.BookingID,
		},
	})
	cancel()
	if err != nil {
		utils.PaymentIntentsTotal.WithLabelValues("gateway_error").Inc()
		logger.Error("gateway intent creation failed",
			zap.String("customerID", req.CustomerID), zap.String("offeringID", offering.ID), zap.Error(err))
		return nil, asGatewayError("create intent", err)
	}

	now := s.now()
	p := &models.Payment{
		ID:                   paymentID,
		IdempotencyKey:       idempotencyKey,
		ExternalIntentID:     intent.ID,
		ClientSecret:         intent.ClientSecret,
		CustomerID:           req.CustomerID,
		CustomerEmail:        req.CustomerEmail,
		SpecialistID:         offering.SpecialistID,
		OfferingID:           offering.ID,
		BookingID:            req.Service.BookingID,
		ServiceKey:           req.Service.Key(),
		ServiceType:          offering.ServiceType,
		Amount:               amount,
		Currency:             offering.Currency,
		Status:               models.PaymentStatusPending,
		CommissionPercentage: split.Percentage,
		CommissionAmount:     split.PlatformCommission,
		SpecialistEarnings:   split.SpecialistEarnings,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		logger.Error("gateway intent created but payment not saved",
			zap.String("intentID", intent.ID), zap.Error(err))
		return nil, fmt.Errorf("save payment: %w", err)
	}

	utils.PaymentIntentsTotal.WithLabelValues("created").Inc()
	logger.Info("payment intent created",
		zap.String("paymentID", p.ID),
		zap.String("intentID", p.ExternalIntentID),
		zap.Int64("amount", p.Amount),
		zap.Int64("commission", p.CommissionAmount))
	return &IntentResult{
		PaymentID:    p.ID,
		IntentID:     p.ExternalIntentID,
		ClientSecret: p.ClientSecret,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       p.Status,
	}, nil
}

// gatewayCustomer returns the cached gateway handle, creating it on first purchase.
func (s *DefaultPaymentService) gatewayCustomer(ctx context.Context, req IntentRequest) (string, error) {
	gc, err := s.Payments.GetGatewayCustomer(ctx, req.CustomerID)
	if err == nil {
		return gc.Handle, nil
	}
	if !errors.Is(err, models.ErrRecordNotFound) {
		return "", err
	}

	gctx, cancel := s.gatewayCtx(ctx)
	handle, err := s.Gateway.CreateCustomer(gctx, req.CustomerEmail, req.CustomerName)
	cancel()
	if err != nil {
		return "", asGatewayError("create customer", err)
	}
	err = s.Payments.SaveGatewayCustomer(ctx, &models.GatewayCustomer{
		CustomerID: req.CustomerID,
		Handle:     handle,
		CreatedAt:  s.now(),
	})
	if errors.Is(err, models.ErrDuplicateKey) {
		// Another purchase by the same customer won; use its handle.
		if gc, getErr := s.Payments.GetGatewayCustomer(ctx, req.CustomerID); getErr == nil {
			return gc.Handle, nil
		}
	}
	if err != nil {
		s.logger().Warn("failed to cache gateway customer", zap.String("customerID", req.CustomerID), zap.Error(err))
	}
	return handle, nil
}

func asGatewayError(op string, err error) error {
	var ge *models.GatewayError
	if errors.As(err, &ge) {
		return err
	}
	return &models.GatewayError{Op: op, Err: err}
}
