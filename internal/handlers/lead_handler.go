package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/services"
)

func CaptureLead(ls *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.LeadInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if _, err := ls.CaptureLead(c.Request.Context(), in); err != nil {
			writeError(c, "email", err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(nil, "Lead saved"))
	}
}
