package handlers

import (
	"net/http"
	"strconv"

	"mentorly/services/commission"
	"mentorly/utils"

	"github.com/gin-gonic/gin"
)

// CommissionHandler encapsulates admin-level commission operations.
type CommissionHandler struct {
	Service commission.CommissionService
}

func NewCommissionHandler(svc commission.CommissionService) *CommissionHandler {
	return &CommissionHandler{Service: svc}
}

func (h *CommissionHandler) GetHandler(c *gin.Context) {
	cfg, err := h.Service.Current(c.Request.Context())
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commission": cfg})
}

func (h *CommissionHandler) UpdateHandler(c *gin.Context) {
	var in commission.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	cfg, err := h.Service.Update(c.Request.Context(), in, actor(c).ID)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"commission": cfg})
}

func (h *CommissionHandler) HistoryHandler(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	history, err := h.Service.History(c.Request.Context(), limit)
	if err != nil {
		utils.AbortWithError(c, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
