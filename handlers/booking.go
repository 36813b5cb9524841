package handlers

import (
	"net/http"

	"mentorly/models"
	"mentorly/services/booking"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

type bookSlotRequest struct {
	SlotID string `json:"slotId" binding:"required"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// BookSlotHandler claims a slot for the calling customer. Paid offerings come back
// pending with paymentRequired set; the client then creates a payment intent.
func (h *BookingHandler) BookSlotHandler(c *gin.Context) {
	var req bookSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	customer := booking.CustomerInfo{CustomerID: actor(c).ID, Email: req.Email, Name: req.Name}
	outcome, err := h.Service.BookSlot(c.Request.Context(), req.SlotID, customer)
	if err != nil {
		getLogger(c).Info("booking rejected", zap.String("slotID", req.SlotID), zap.Error(err))
		utils.AbortWithError(c, err, false)
		return
	}
	status := http.StatusCreated
	if outcome.Warning != "" {
		status = http.StatusAccepted
	}
	c.JSON(status, outcome)
}

func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	// The reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&body)

	b, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), actor(c), body.Reason)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) RescheduleHandler(c *gin.Context) {
	var body struct {
		NewSlotID string `json:"newSlotId" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	b, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), body.NewSlotID, actor(c))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) CompleteHandler(c *gin.Context) {
	b, err := h.Service.Complete(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) NoShowHandler(c *gin.Context) {
	b, err := h.Service.MarkNoShow(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// MyBookingsHandler lists the caller's bookings: as customer, or as specialist with an
// optional ?status= filter.
func (h *BookingHandler) MyBookingsHandler(c *gin.Context) {
	a := actor(c)
	var (
		list []models.Booking
		err  error
	)
	if a.Role == utils.RoleSpecialist {
		list, err = h.Service.ListForSpecialist(c.Request.Context(), a.ID, c.Query("status"))
	} else {
		list, err = h.Service.ListForCustomer(c.Request.Context(), a.ID)
	}
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}
