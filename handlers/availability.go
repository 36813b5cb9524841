package handlers

import (
	"net/http"

	"mentorly/models"
	"mentorly/services/availability"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	Service availability.AvailabilityService
}

func NewAvailabilityHandler(svc availability.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc}
}

// CreateTemplateHandler replaces the caller's active availability template.
func (h *AvailabilityHandler) CreateTemplateHandler(c *gin.Context) {
	var tmpl models.AvailabilityTemplate
	if !bindJSON(c, &tmpl) {
		return
	}
	specialistID := actor(c).ID
	saved, err := h.Service.CreateTemplate(c.Request.Context(), specialistID, tmpl)
	if err != nil {
		getLogger(c).Warn("template rejected", zap.String("specialistID", specialistID), zap.Error(err))
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": saved})
}

func (h *AvailabilityHandler) GetTemplateHandler(c *gin.Context) {
	tmpl, err := h.Service.GetActiveTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

// GetOpenAvailabilityHandler returns the open minute ranges of a specialist on ?date=.
func (h *AvailabilityHandler) GetOpenAvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing date", "query parameter 'date' (YYYY-MM-DD) is required")
		return
	}
	ranges, err := h.Service.OpenRanges(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	if ranges == nil {
		ranges = []models.Range{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "ranges": ranges})
}
