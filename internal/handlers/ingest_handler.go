package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/services"
)

type ingestResponse struct {
	Event   *models.Event `json:"event"`
	Created bool          `json:"created"`
}

func bindPayload(c *gin.Context) (*models.EventPayload, bool) {
	var payload models.EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid event payload: "+err.Error())
		return nil, false
	}
	return &payload, true
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := bindPayload(c)
		if !ok {
			return
		}
		event, err := es.CreateEvent(c.Request.Context(), payload)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := bindPayload(c)
		if !ok {
			return
		}
		event, err := es.UpdateEvent(c.Request.Context(), c.Param("id"), payload)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// IngestEvent upserts by dedup hash: 201 when the event is new, 200 otherwise.
func IngestEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := bindPayload(c)
		if !ok {
			return
		}
		event, created, err := es.IngestEvent(c.Request.Context(), payload)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, ingestResponse{Event: event, Created: created})
	}
}
