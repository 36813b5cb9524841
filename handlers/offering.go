package handlers

import (
	"net/http"

	"mentorly/models"
	"mentorly/services/offering"
	"mentorly/services/slots"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OfferingHandler struct {
	Offerings offering.OfferingService
	Slots     slots.SlotService
}

func NewOfferingHandler(offerings offering.OfferingService, slotSvc slots.SlotService) *OfferingHandler {
	return &OfferingHandler{Offerings: offerings, Slots: slotSvc}
}

func editor(c *gin.Context) offering.Editor {
	a := actor(c)
	return offering.Editor{ID: a.ID, Role: a.Role}
}

func (h *OfferingHandler) UpdateScheduleHandler(c *gin.Context) {
	var in offering.ScheduleInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Offerings.UpdateSchedule(c.Request.Context(), c.Param("id"), editor(c), in)
	if err != nil {
		getLogger(c).Warn("schedule update failed", zap.String("offeringID", c.Param("id")), zap.Error(err))
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OfferingHandler) PublishHandler(c *gin.Context) {
	res, err := h.Offerings.Publish(c.Request.Context(), c.Param("id"), editor(c))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OfferingHandler) UnpublishHandler(c *gin.Context) {
	res, err := h.Offerings.Unpublish(c.Request.Context(), c.Param("id"), editor(c))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MaterializeHandler inserts any missing slots without touching existing ones.
func (h *OfferingHandler) MaterializeHandler(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.Offerings.GetOffering(ctx, c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	if e := editor(c); e.Role != offering.RoleAdmin && e.ID != o.SpecialistID {
		utils.AbortWithError(c, &models.ForbiddenError{Reason: "only the offering's specialist can materialize its slots"}, false)
		return
	}
	created, err := h.Slots.Materialize(ctx, o.ID)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (h *OfferingHandler) ListSlotsHandler(c *gin.Context) {
	list, err := h.Slots.ListSlots(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	if list == nil {
		list = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": list, "count": len(list)})
}
