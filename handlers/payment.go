package handlers

import (
	"net/http"

	"mentorly/models"
	"mentorly/services/payment"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Service payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: svc}
}

type intentRequest struct {
	OfferingID string `json:"offeringId" binding:"required"`
	BookingID  string `json:"bookingId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	var body intentRequest
	if !bindJSON(c, &body) {
		return
	}
	req := payment.IntentRequest{
		CustomerID:    actor(c).ID,
		CustomerEmail: body.Email,
		CustomerName:  body.Name,
		Service:       models.ServiceRef{OfferingID: body.OfferingID, BookingID: body.BookingID},
	}
	res, err := h.Service.CreateIntent(c.Request.Context(), req)
	if err != nil {
		getLogger(c).Info("payment intent not created",
			zap.String("offeringID", body.OfferingID), zap.Error(err))
		utils.AbortWithError(c, err, false)
		return
	}
	status := http.StatusCreated
	if res.Reused {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// RefundHandler refunds a completed payment. Omit amount for a full refund.
func (h *PaymentHandler) RefundHandler(c *gin.Context) {
	var body struct {
		Amount *int64 `json:"amount"`
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	p, err := h.Service.Refund(c.Request.Context(), c.Param("id"), actor(c).ID, body.Amount, body.Reason)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

func (h *PaymentHandler) EarningsHandler(c *gin.Context) {
	earnings, err := h.Service.ListForSpecialist(c.Request.Context(), actor(c).ID)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, earnings)
}
