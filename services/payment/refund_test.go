package payment

import (
	"context"
	"fmt"
	"testing"

	"mentorly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidCourse(t *testing.T, f *fixture) *IntentResult {
	t.Helper()
	f.offering(t, "course-1", 2000, models.SlotModeNone)
	res, err := f.svc.CreateIntent(context.Background(), courseRequest("cust-1", "course-1"))
	require.NoError(t, err)
	return res
}

func TestRefund_RevokesEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := paidCourse(t, f)
	_, err := f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)

	p, err := f.svc.Refund(ctx, res.PaymentID, "sp-1", nil, "customer request")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, p.Status)
	assert.Equal(t, "re_"+res.IntentID, p.RefundID)
	assert.Equal(t, "customer request", p.RefundReason)

	e, err := f.enrollments.GetByCustomerAndOffering(ctx, "cust-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusRefunded, e.Status)
	assert.Equal(t, 1, f.notifier.count(models.NotifyPaymentRefunded))

	// Redelivering the original success event must not re-grant access.
	got, err := f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, got)
	e, err = f.enrollments.GetByCustomerAndOffering(ctx, "cust-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusRefunded, e.Status)

	_, err = f.svc.Refund(ctx, res.PaymentID, "sp-1", nil, "again")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	_, _, refunds := f.gateway.calls()
	assert.Equal(t, 1, refunds)
}

func TestRefund_CancelsLinkedBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.offering(t, "session", 3000, models.SlotModeExplicit)
	f.pendingBooking("b-1", "session", "cust-1")
	req := courseRequest("cust-1", "session")
	req.Service.BookingID = "b-1"
	res, err := f.svc.CreateIntent(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)

	_, err = f.svc.Refund(ctx, res.PaymentID, "sp-1", nil, "specialist unavailable")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-1"}, f.bookings.cancelled)
}

func TestRefund_KeepsAccessHeldByAnotherPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.offering(t, "session", 3000, models.SlotModeExplicit)

	paid := make([]*IntentResult, 0, 2)
	for i, bookingID := range []string{"b-1", "b-2"} {
		f.pendingBooking(bookingID, "session", "cust-1")
		req := courseRequest("cust-1", "session")
		req.Service.BookingID = bookingID
		res, err := f.svc.CreateIntent(ctx, req)
		require.NoError(t, err)
		_, err = f.svc.Reconcile(ctx, succeeded(fmt.Sprintf("evt_%d", i+1), res.IntentID))
		require.NoError(t, err)
		paid = append(paid, res)
	}

	_, err := f.svc.Refund(ctx, paid[0].PaymentID, "sp-1", nil, "first session cancelled")
	require.NoError(t, err)

	second, err := f.svc.GetPayment(ctx, paid[1].PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, second.Status)
	e, err := f.enrollments.GetByCustomerAndOffering(ctx, "cust-1", "session")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, e.Status)
	assert.Equal(t, paid[1].PaymentID, e.PaymentID)

	_, err = f.svc.Refund(ctx, paid[1].PaymentID, "sp-1", nil, "second session cancelled")
	require.NoError(t, err)
	e, err = f.enrollments.GetByCustomerAndOffering(ctx, "cust-1", "session")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusRefunded, e.Status)
	assert.Equal(t, []string{"b-1", "b-2"}, f.bookings.cancelled)
}

func TestRefund_MovesAccessOntoRemainingPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.offering(t, "session", 3000, models.SlotModeExplicit)

	var first, second *IntentResult
	for i, bookingID := range []string{"b-1", "b-2"} {
		f.pendingBooking(bookingID, "session", "cust-1")
		req := courseRequest("cust-1", "session")
		req.Service.BookingID = bookingID
		res, err := f.svc.CreateIntent(ctx, req)
		require.NoError(t, err)
		if i == 0 {
			first = res
		} else {
			second = res
		}
	}
	// Settled out of order: the enrollment ends up linked to the first payment.
	_, err := f.svc.Reconcile(ctx, succeeded("evt_2", second.IntentID))
	require.NoError(t, err)
	_, err = f.svc.Reconcile(ctx, succeeded("evt_1", first.IntentID))
	require.NoError(t, err)

	_, err = f.svc.Refund(ctx, first.PaymentID, "sp-1", nil, "")
	require.NoError(t, err)

	e, err := f.enrollments.GetByCustomerAndOffering(ctx, "cust-1", "session")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, e.Status)
	assert.Equal(t, second.PaymentID, e.PaymentID)
	assert.Equal(t, "b-2", e.BookingID)
}

func TestRefund_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := paidCourse(t, f)

	_, err := f.svc.Refund(ctx, res.PaymentID, "sp-1", nil, "")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err), "pending payments cannot be refunded")

	_, err = f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)

	_, err = f.svc.Refund(ctx, res.PaymentID, "sp-2", nil, "")
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	tooMuch := int64(5000)
	_, err = f.svc.Refund(ctx, res.PaymentID, "sp-1", &tooMuch, "")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, err = f.svc.Refund(ctx, "missing", "sp-1", nil, "")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	_, _, refunds := f.gateway.calls()
	assert.Zero(t, refunds)
}

func TestRefund_RequiresSettledIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := paidCourse(t, f)
	_, err := f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)

	f.gateway.status = "processing"
	_, err = f.svc.Refund(ctx, res.PaymentID, "sp-1", nil, "")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	_, _, refunds := f.gateway.calls()
	assert.Zero(t, refunds)

	p, err := f.svc.GetPayment(ctx, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
}

func TestListForSpecialist_TotalsCompletedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := paidCourse(t, f)
	_, err := f.svc.Reconcile(ctx, succeeded("evt_1", res.IntentID))
	require.NoError(t, err)

	f.offering(t, "course-2", 1000, models.SlotModeNone)
	_, err = f.svc.CreateIntent(ctx, courseRequest("cust-2", "course-2"))
	require.NoError(t, err)

	earnings, err := f.svc.ListForSpecialist(ctx, "sp-1")
	require.NoError(t, err)
	assert.Len(t, earnings.Payments, 2)
	assert.Equal(t, int64(2000), earnings.GrossTotal)
	assert.Equal(t, int64(200), earnings.CommissionTotal)
	assert.Equal(t, int64(1800), earnings.EarningsTotal)
}
