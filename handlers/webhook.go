package handlers

import (
	"io"
	"net/http"

	"mentorly/services/gateway"
	"mentorly/services/payment"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

// WebhookHandler receives gateway settlement notifications.
type WebhookHandler struct {
	Payments payment.PaymentService
	Secret   string
}

func NewWebhookHandler(svc payment.PaymentService, secret string) *WebhookHandler {
	return &WebhookHandler{Payments: svc, Secret: secret}
}

// StripeHandler verifies the signature and reconciles the event. Events that are not
// about intent settlement are acknowledged and ignored so the gateway stops resending them.
func (h *WebhookHandler) StripeHandler(c *gin.Context) {
	logger := getLogger(c)
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Failed to read webhook body", err.Error())
		return
	}

	ev, err := gateway.ParseStripeEvent(payload, c.GetHeader("Stripe-Signature"), h.Secret)
	if err != nil {
		logger.Warn("webhook rejected", zap.Error(err))
		utils.AbortWithError(c, err, false)
		return
	}
	if ev == nil {
		c.JSON(http.StatusOK, gin.H{"received": true, "result": "ignored"})
		return
	}

	res, err := h.Payments.Reconcile(c.Request.Context(), *ev)
	if err != nil {
		// A non-2xx answer makes the gateway redeliver; reconciliation is idempotent.
		logger.Error("reconciliation failed", zap.String("eventID", ev.EventID), zap.Error(err))
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "result": res})
}
