package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentorly/config"
	"mentorly/cron"
	"mentorly/database"
	bookingRepo "mentorly/database/repository/booking"
	commissionRepo "mentorly/database/repository/commission"
	enrollmentRepo "mentorly/database/repository/enrollment"
	memoryRepo "mentorly/database/repository/memory"
	offeringRepo "mentorly/database/repository/offering"
	paymentRepo "mentorly/database/repository/payment"
	slotRepo "mentorly/database/repository/slot"
	templateRepo "mentorly/database/repository/template"
	"mentorly/handlers"
	"mentorly/middleware"
	"mentorly/routes"
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
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// stores is every repository the services need, backed by Mongo or by memory.
type stores struct {
	slots       slotRepo.SlotRepository
	bookings    bookingRepo.BookingRepository
	offerings   offeringRepo.OfferingRepository
	templates   templateRepo.TemplateRepository
	enrollments enrollmentRepo.EnrollmentRepository
	payments    paymentRepo.PaymentRepository
	commission  commissionRepo.CommissionRepository
	locker      payment.Locker
}

type indexer interface {
	EnsureIndexes() error
}

func memoryStores() *stores {
	return &stores{
		slots:       memoryRepo.NewSlotRepo(),
		bookings:    memoryRepo.NewBookingRepo(),
		offerings:   memoryRepo.NewOfferingRepo(),
		templates:   memoryRepo.NewTemplateRepo(),
		enrollments: memoryRepo.NewEnrollmentRepo(),
		payments:    memoryRepo.NewPaymentRepo(),
		commission:  memoryRepo.NewCommissionRepo(),
		locker:      memoryRepo.NewLocker(),
	}
}

func mongoStores(logger *zap.Logger) *stores {
	db := database.DB()
	sl := slotRepo.NewMongoSlotRepo(db)
	bk := bookingRepo.NewMongoBookingRepo(db)
	of := offeringRepo.NewMongoOfferingRepo(db)
	tp := templateRepo.NewMongoTemplateRepo(db)
	en := enrollmentRepo.NewMongoEnrollmentRepo(db)
	pm := paymentRepo.NewMongoPaymentRepo(db)
	cm := commissionRepo.NewMongoCommissionRepo(db)

	for _, ix := range []indexer{sl, bk, of, tp, en, pm, cm} {
		if err := ix.EnsureIndexes(); err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.Error(err))
		}
	}
	return &stores{
		slots:       sl,
		bookings:    bk,
		offerings:   of,
		templates:   tp,
		enrollments: en,
		payments:    pm,
		commission:  cm,
		locker:      utils.NewRedisLocker(utils.GetCacheClient(), "mentorly:lock:"),
	}
}

// deliveryChannels builds the worker's channels from config. A channel without
// credentials is left out.
func deliveryChannels(ctx context.Context, logger *zap.Logger) []notification.Channel {
	var channels []notification.Channel
	if f := config.AppConfig.FirebaseCredentialsFile; f != "" {
		pusher, err := notification.NewPusher(ctx, f)
		if err != nil {
			logger.Error("main: push notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, pusher)
		}
	}
	if host := config.AppConfig.SMTPHost; host != "" {
		channels = append(channels, notification.NewMailer(host, config.AppConfig.SMTPPort,
			config.AppConfig.SMTPUser, config.AppConfig.SMTPPassword, config.AppConfig.SMTPFrom))
	}
	return channels
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		st         *stores
		dispatcher notification.Dispatcher
		queue      *asynq.Client
		worker     *asynq.Server
	)
	if config.AppConfig.StorageDriver == "memory" {
		logger.Warn("main: running with in-memory storage; data is lost on restart")
		st = memoryStores()
		dispatcher = &notification.LogDispatcher{Logger: logger}
		utils.MarkInMemory()
	} else {
		database.InitDB()
		utils.InitCache()
		st = mongoStores(logger)

		queue = cron.NewQueueClient()
		dispatcher = notification.NewAsynqDispatcher(queue)
		deliverer := &notification.Deliverer{Channels: deliveryChannels(ctx, logger), Logger: logger}
		worker = cron.InitNotificationWorker(ctx, deliverer, logger)

		queueRedis := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		})
		utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient(), queueRedis}, database.MongoClient)
	}

	var meetings meeting.Provider = &meeting.LocalProvider{BaseURL: "https://meet.mentorly.local"}
	if config.AppConfig.MeetingAPIURL != "" {
		meetings = meeting.NewHTTPProvider(config.AppConfig.MeetingAPIURL, config.AppConfig.MeetingAPIToken, config.MeetingTimeout())
	} else {
		logger.Warn("main: MEETING_API_URL not set, using local meeting links")
	}
	if config.AppConfig.StripeKey == "" {
		logger.Warn("main: STRIPE_KEY not set, paid checkouts will fail")
	}

	// services.
	availabilityService := &availability.DefaultAvailabilityService{Repo: st.templates, Logger: logger}
	slotService := &slots.DefaultSlotService{
		Slots:          st.slots,
		Offerings:      st.offerings,
		Templates:      st.templates,
		Logger:         logger,
		HorizonDays:    config.AppConfig.SlotHorizonDays,
		RecurringWeeks: config.AppConfig.RecurringHorizonWeeks,
	}
	offeringService := &offering.DefaultOfferingService{Repo: st.offerings, Slots: slotService, Logger: logger}
	bookingService := &booking.DefaultBookingService{
		Slots:          st.slots,
		Bookings:       st.bookings,
		Offerings:      st.offerings,
		Templates:      st.templates,
		Meetings:       meetings,
		Notifier:       dispatcher,
		Logger:         logger,
		MeetingTimeout: config.MeetingTimeout(),
	}
	commissionService := &commission.DefaultCommissionService{Repo: st.commission, Logger: logger}
	paymentService := &payment.DefaultPaymentService{
		Payments:       st.payments,
		Enrollments:    st.enrollments,
		Offerings:      st.offerings,
		Bookings:       bookingService,
		Commission:     commissionService,
		Gateway:        gateway.NewStripeGateway(config.AppConfig.StripeKey),
		Locker:         st.locker,
		Notifier:       dispatcher,
		Logger:         logger,
		DedupeWindow:   config.IntentDedupeWindow(),
		GatewayTimeout: config.GatewayTimeout(),
	}

	horizon, err := cron.StartHorizonJob(config.AppConfig.HorizonCron, slotService, logger)
	if err != nil {
		logger.Fatal("main: invalid HORIZON_CRON", zap.Error(err))
	}

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	offeringHandler := handlers.NewOfferingHandler(offeringService, slotService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, config.AppConfig.StripeWebhookSecret)
	commissionHandler := handlers.NewCommissionHandler(commissionService)

	handlerBundle := &handlers.HandlerBundle{
		CreateTemplate:      availabilityHandler.CreateTemplateHandler,
		GetTemplate:         availabilityHandler.GetTemplateHandler,
		GetOpenAvailability: availabilityHandler.GetOpenAvailabilityHandler,

		UpdateSchedule:    offeringHandler.UpdateScheduleHandler,
		PublishOffering:   offeringHandler.PublishHandler,
		UnpublishOffering: offeringHandler.UnpublishHandler,
		MaterializeSlots:  offeringHandler.MaterializeHandler,
		ListSlots:         offeringHandler.ListSlotsHandler,

		BookSlot:          bookingHandler.BookSlotHandler,
		CancelBooking:     bookingHandler.CancelHandler,
		RescheduleBooking: bookingHandler.RescheduleHandler,
		CompleteBooking:   bookingHandler.CompleteHandler,
		MarkNoShow:        bookingHandler.NoShowHandler,
		MyBookings:        bookingHandler.MyBookingsHandler,

		CreatePaymentIntent: paymentHandler.CreateIntentHandler,
		RefundPayment:       paymentHandler.RefundHandler,
		Earnings:            paymentHandler.EarningsHandler,
		StripeWebhook:       webhookHandler.StripeHandler,

		GetCommission:     commissionHandler.GetHandler,
		UpdateCommission:  commissionHandler.UpdateHandler,
		CommissionHistory: commissionHandler.HistoryHandler,
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("main: starting server", zap.String("addr", srv.Addr), zap.String("storage", config.AppConfig.StorageDriver))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	<-horizon.Stop().Done()
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		_ = queue.Close()
	}
	stop()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("main: mongo disconnect failed", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
