package routes

import (
	"net/http"
	"time"

	"mentorly/handlers"
	"mentorly/middleware"
	"mentorly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAvailabilityRoutes registers specialist template and availability endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/specialists")
	{
		api.GET("/:id/template", hb.GetTemplate)
		api.GET("/:id/availability", hb.GetOpenAvailability)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleSpecialist))
		protected.POST("/templates", hb.CreateTemplate)
	}
}

// RegisterOfferingRoutes registers schedule management and slot listing.
func RegisterOfferingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/offerings")
	{
		api.GET("/:id/slots", hb.ListSlots)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleSpecialist, utils.RoleAdmin))
		protected.PUT("/:id/schedule", hb.UpdateSchedule)
		protected.POST("/:id/publish", hb.PublishOffering)
		protected.POST("/:id/unpublish", hb.UnpublishOffering)
		protected.POST("/:id/materialize", hb.MaterializeSlots)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(utils.RoleCustomer), hb.BookSlot)
		api.GET("/mine", hb.MyBookings)
		api.POST("/:id/cancel", hb.CancelBooking)
		api.POST("/:id/reschedule", hb.RescheduleBooking)
		api.POST("/:id/complete", middleware.RequireRole(utils.RoleSpecialist, utils.RoleAdmin), hb.CompleteBooking)
		api.POST("/:id/no-show", middleware.RequireRole(utils.RoleSpecialist, utils.RoleAdmin), hb.MarkNoShow)
	}
}

// RegisterPaymentRoutes registers intent creation, refunds and the earnings view.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/intents", middleware.RequireRole(utils.RoleCustomer), hb.CreatePaymentIntent)
		api.POST("/:id/refund", middleware.RequireRole(utils.RoleSpecialist), hb.RefundPayment)
		api.GET("/earnings", middleware.RequireRole(utils.RoleSpecialist), hb.Earnings)
	}
}

// RegisterWebhookRoutes registers gateway callbacks. They are authenticated by signature.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/stripe", hb.StripeWebhook)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleAdmin))
		adminGroup.GET("/commission", hb.GetCommission)
		adminGroup.POST("/commission", hb.UpdateCommission)
		adminGroup.GET("/commission/history", hb.CommissionHistory)
	}
}

// RegisterHealthRoute registers health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		health := utils.GetHealthStatus()
		status := http.StatusOK
		if !health.Mongo {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "health": health})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterOfferingRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
