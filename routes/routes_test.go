package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorly/config"
	memoryRepo "mentorly/database/repository/memory"
	"mentorly/handlers"
	"mentorly/middleware"
	"mentorly/models"
	"mentorly/services/availability"
	"mentorly/services/booking"
	"mentorly/services/commission"
	"mentorly/services/gateway"
	"mentorly/services/meeting"
	"mentorly/services/notification"
	"mentorly/services/offering"
	"mentorly/services/payment"
	"mentorly/services/slots"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	router    *gin.Engine
	offerings *memoryRepo.OfferingRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "route-test-secret"
	utils.MarkInMemory()
	logger := zap.NewNop()

	slotStore := memoryRepo.NewSlotRepo()
	offerings := memoryRepo.NewOfferingRepo()
	templates := memoryRepo.NewTemplateRepo()
	dispatcher := &notification.LogDispatcher{Logger: logger}

	availabilitySvc := &availability.DefaultAvailabilityService{Repo: templates, Logger: logger}
	slotSvc := &slots.DefaultSlotService{Slots: slotStore, Offerings: offerings, Templates: templates, Logger: logger, HorizonDays: 14}
	offeringSvc := &offering.DefaultOfferingService{Repo: offerings, Slots: slotSvc, Logger: logger}
	bookingSvc := &booking.DefaultBookingService{
		Slots:     slotStore,
		Bookings:  memoryRepo.NewBookingRepo(),
		Offerings: offerings,
		Templates: templates,
		Meetings:  &meeting.LocalProvider{BaseURL: "https://meet.test"},
		Notifier:  dispatcher,
		Logger:    logger,
	}
	commissionSvc := &commission.DefaultCommissionService{Repo: memoryRepo.NewCommissionRepo(), Logger: logger}
	paymentSvc := &payment.DefaultPaymentService{
		Payments:    memoryRepo.NewPaymentRepo(),
		Enrollments: memoryRepo.NewEnrollmentRepo(),
		Offerings:   offerings,
		Bookings:    bookingSvc,
		Commission:  commissionSvc,
		Gateway:     gateway.NewStripeGateway("sk_test_unused"),
		Locker:      memoryRepo.NewLocker(),
		Notifier:    dispatcher,
		Logger:      logger,
	}

	ah := handlers.NewAvailabilityHandler(availabilitySvc)
	oh := handlers.NewOfferingHandler(offeringSvc, slotSvc)
	bh := handlers.NewBookingHandler(bookingSvc)
	ph := handlers.NewPaymentHandler(paymentSvc)
	wh := handlers.NewWebhookHandler(paymentSvc, "whsec_test")
	ch := handlers.NewCommissionHandler(commissionSvc)

	r := gin.New()
	r.Use(utils.ErrorHandler(), middleware.RequestLogger())
	RegisterRoutes(r, &handlers.HandlerBundle{
		CreateTemplate:      ah.CreateTemplateHandler,
		GetTemplate:         ah.GetTemplateHandler,
		GetOpenAvailability: ah.GetOpenAvailabilityHandler,
		UpdateSchedule:      oh.UpdateScheduleHandler,
		PublishOffering:     oh.PublishHandler,
		UnpublishOffering:   oh.UnpublishHandler,
		MaterializeSlots:    oh.MaterializeHandler,
		ListSlots:           oh.ListSlotsHandler,
		BookSlot:            bh.BookSlotHandler,
		CancelBooking:       bh.CancelHandler,
		RescheduleBooking:   bh.RescheduleHandler,
		CompleteBooking:     bh.CompleteHandler,
		MarkNoShow:          bh.NoShowHandler,
		MyBookings:          bh.MyBookingsHandler,
		CreatePaymentIntent: ph.CreateIntentHandler,
		RefundPayment:       ph.RefundHandler,
		Earnings:            ph.EarningsHandler,
		StripeWebhook:       wh.StripeHandler,
		GetCommission:       ch.GetHandler,
		UpdateCommission:    ch.UpdateHandler,
		CommissionHistory:   ch.HistoryHandler,
	})
	return &testApp{router: r, offerings: offerings}
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(id, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

var weekdayTemplate = map[string]interface{}{
	"timezone": "UTC",
	"weeklyPattern": map[string]interface{}{
		"monday":    map[string]interface{}{"enabled": true, "ranges": []map[string]interface{}{{"startTime": "09:00", "endTime": "17:00", "isAvailable": true}}},
		"tuesday":   map[string]interface{}{"enabled": true, "ranges": []map[string]interface{}{{"startTime": "09:00", "endTime": "17:00", "isAvailable": true}}},
		"wednesday": map[string]interface{}{"enabled": true, "ranges": []map[string]interface{}{{"startTime": "09:00", "endTime": "17:00", "isAvailable": true}}},
		"thursday":  map[string]interface{}{"enabled": true, "ranges": []map[string]interface{}{{"startTime": "09:00", "endTime": "17:00", "isAvailable": true}}},
		"friday":    map[string]interface{}{"enabled": true, "ranges": []map[string]interface{}{{"startTime": "09:00", "endTime": "17:00", "isAvailable": true}}},
	},
	"slotConfig": map[string]interface{}{"defaultDurationMinutes": 60},
}

func TestFreeSessionBookingFlow(t *testing.T) {
	app := newTestApp(t)
	specialist := token(t, "sp-1", utils.RoleSpecialist)
	alice := token(t, "alice", utils.RoleCustomer)
	bob := token(t, "bob", utils.RoleCustomer)

	w := app.do(t, http.MethodPost, "/api/specialists/templates", specialist, weekdayTemplate)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, app.offerings.Create(context.Background(), &models.Offering{
		ID: "intro", SpecialistID: "sp-1", Title: "Intro call", ServiceType: models.ServiceTypeConsulting,
		Status: models.OfferingStatusPublished, SlotMode: models.SlotModeTemplate, Capacity: 1,
	}))

	w = app.do(t, http.MethodPost, "/api/offerings/intro/materialize", specialist, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var materialized struct{ Created int }
	decode(t, w, &materialized)
	require.Positive(t, materialized.Created)

	w = app.do(t, http.MethodGet, "/api/offerings/intro/slots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct{ Slots []models.Slot }
	decode(t, w, &listed)
	require.NotEmpty(t, listed.Slots)
	slotID := listed.Slots[len(listed.Slots)-1].ID

	w = app.do(t, http.MethodPost, "/api/bookings", alice, map[string]string{"slotId": slotID, "email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var outcome booking.BookingOutcome
	decode(t, w, &outcome)
	assert.False(t, outcome.PaymentRequired)
	assert.Equal(t, models.BookingStatusConfirmed, outcome.Booking.Status)
	require.NotNil(t, outcome.Booking.Meeting)

	w = app.do(t, http.MethodPost, "/api/bookings", bob, map[string]string{"slotId": slotID})
	require.Equal(t, http.StatusConflict, w.Code)
	var errBody utils.ErrorResponse
	decode(t, w, &errBody)
	assert.Equal(t, models.CodeSlotUnavailable, errBody.Code)

	w = app.do(t, http.MethodGet, "/api/bookings/mine", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct{ Bookings []models.Booking }
	decode(t, w, &mine)
	assert.Len(t, mine.Bookings, 1)

	w = app.do(t, http.MethodPost, "/api/bookings/"+outcome.Booking.ID+"/complete", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "customers cannot complete bookings")

	w = app.do(t, http.MethodPost, "/api/bookings/"+outcome.Booking.ID+"/complete", specialist, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuthAndRoleChecks(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/bookings", "", map[string]string{"slotId": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/bookings", "not-a-jwt", map[string]string{"slotId": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/bookings", token(t, "sp-1", utils.RoleSpecialist), map[string]string{"slotId": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/api/bookings", token(t, "alice", utils.RoleCustomer), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "slotId is required")

	w = app.do(t, http.MethodGet, "/api/admin/commission", token(t, "alice", utils.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminCommissionEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := token(t, "admin-1", utils.RoleAdmin)

	w := app.do(t, http.MethodGet, "/api/admin/commission", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current struct{ Commission models.CommissionConfig }
	decode(t, w, &current)
	assert.Equal(t, commission.DefaultPlatformPercentage, current.Commission.PlatformPercentage)

	w = app.do(t, http.MethodPost, "/api/admin/commission", admin, map[string]interface{}{"platformPercentage": 15})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/api/admin/commission", admin, map[string]interface{}{"platformPercentage": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/admin/commission/history", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct{ History []models.CommissionConfig }
	decode(t, w, &history)
	require.Len(t, history.History, 1)
	assert.Equal(t, 1, history.History[0].Version)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBufferString(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
