package payment

import (
	"context"
	"sync"
	"testing"

	"mentorly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_ExactlyOnceAcrossRedeliveries(t *testing.T) {
	f := newFixture(t)
	f.offering(t, "course-1", 2000, models.SlotModeNone)
	ctx := context.Background()

	res, err := f.svc.CreateIntent(ctx, courseRequest("cust-1", "course-1"))
	require.NoError(t, err)

	got, err := f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, got)

	for i := 0; i < 3; i++ {
		got, err = f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
		require.NoError(t, err)
		assert.Equal(t, ResultDuplicate, got)
	}

	// A second success event for the same intent is a duplicate too.
	got, err = f.svc.Reconcile(ctx, succeeded("evt_2", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, got)

	assert.Equal(t, 1, f.enrollments.Count())
	assert.Equal(t, 1, f.payments.CountByStatus(models.PaymentStatusCompleted))
	assert.Equal(t, 1, f.notifier.count(models.NotifyPaymentSucceeded))
	assert.Equal(t, 1, f.notifier.count(models.NotifyPaymentReceived))

	e, err := f.enrollments.GetByCustomerAndOffering(ctx, "cust-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, res.PaymentID, e.PaymentID)
	assert.Equal(t, models.PaymentStatusCompleted, e.PaymentStatus)
}

func TestReconcile_ConcurrentDeliveries(t *testing.T) {
	f := newFixture(t)
	f.offering(t, "course-1", 2000, models.SlotModeNone)
	ctx := context.Background()

	res, err := f.svc.CreateIntent(ctx, courseRequest("cust-1", "course-1"))
	require.NoError(t, err)

	const deliveries = 20
	results := make([]ReconcileResult, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	processed := 0
	for _, r := range results {
		if r == ResultProcessed {
			processed++
		}
	}
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, f.enrollments.Count())
	assert.Equal(t, 1, f.payments.CountByStatus(models.PaymentStatusCompleted))
	assert.Equal(t, 1, f.notifier.count(models.NotifyPaymentSucceeded))
}

func TestReconcile_FinalizesLinkedBooking(t *testing.T) {
	f := newFixture(t)
	f.offering(t, "session", 3000, models.SlotModeExplicit)
	f.pendingBooking("b-1", "session", "cust-1")
	ctx := context.Background()

	req := courseRequest("cust-1", "session")
	req.Service.BookingID = "b-1"
	res, err := f.svc.CreateIntent(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)
	_, err = f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)

	b, err := f.bookings.GetBooking(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
	assert.Equal(t, res.PaymentID, b.PaymentID)
	assert.Equal(t, 1, f.bookings.finalized["b-1"])
}

func TestReconcile_UnknownIntent(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.Reconcile(context.Background(), succeeded("evt_1", "pi_unknown"))
	require.NoError(t, err)
	assert.Equal(t, ResultUnmatched, got)
	assert.Zero(t, f.enrollments.Count())
}

func TestReconcile_FailureThenSuccess(t *testing.T) {
	f := newFixture(t)
	f.offering(t, "course-1", 2000, models.SlotModeNone)
	ctx := context.Background()

	res, err := f.svc.CreateIntent(ctx, courseRequest("cust-1", "course-1"))
	require.NoError(t, err)

	got, err := f.svc.Reconcile(ctx, failed("evt_f1", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, got)

	p, err := f.svc.GetPayment(ctx, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Equal(t, "card_declined", p.FailureCode)
	assert.Zero(t, f.enrollments.Count())
	assert.Equal(t, 1, f.notifier.count(models.NotifyPaymentFailed))

	got, err = f.svc.Reconcile(ctx, failed("evt_f1", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, got)

	// The customer retries with another card on the same intent.
	got, err = f.svc.Reconcile(ctx, succeeded("evt_s1", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, got)

	// A late failure cannot undo the settlement.
	got, err = f.svc.Reconcile(ctx, failed("evt_f2", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultStale, got)

	p, err = f.svc.GetPayment(ctx, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Empty(t, p.FailureCode)
	assert.Equal(t, 1, f.enrollments.Count())
}

func TestReconcile_RejectsIncompleteEvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Reconcile(context.Background(), models.SettlementEvent{EventID: "evt_1"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}
