package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/export"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/services"
)

type importRequest struct {
	ImportNotes string `json:"importNotes"`
}

type bulkStatusRequest struct {
	EventIDs []string `json:"eventIds"`
	Status   string   `json:"status"`
}

type bulkStatusResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type eventPage struct {
	Events     []*models.Event   `json:"events"`
	Pagination models.Pagination `json:"pagination"`
}

// ListEvents serves the public catalogue: upcoming, non-inactive events.
func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.ListPublic(c.Request.Context(), c.Query("city"), c.Query("search"))
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// CalendarFeed serves the public listing as an iCalendar subscription.
func CalendarFeed(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.ListPublic(c.Request.Context(), c.Query("city"), c.Query("search"))
		if err != nil {
			writeError(c, "event", err)
			return
		}
		var buf bytes.Buffer
		if err := export.EncodeICS(&buf, events, time.Now()); err != nil {
			writeError(c, "event", err)
			return
		}
		c.Data(http.StatusOK, export.FormatICS.ContentType(), buf.Bytes())
	}
}

func SearchEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := helpers.ParsePageParams(c.Query("page"), c.Query("limit"), services.DefaultSearchLimit, services.MaxSearchLimit)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		events, pagination, err := es.SearchPublic(c.Request.Context(), c.Query("city"), c.Query("search"), page, limit)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, eventPage{Events: events, Pagination: pagination})
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := es.GetEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func DashboardEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, err := helpers.ParseDateParam(c.Query("startDate"), false)
		if err != nil {
			badRequest(c, "startDate: "+err.Error())
			return
		}
		end, err := helpers.ParseDateParam(c.Query("endDate"), true)
		if err != nil {
			badRequest(c, "endDate: "+err.Error())
			return
		}
		filter := models.DashboardFilter{
			City:      c.Query("city"),
			Status:    models.EventStatus(helpers.StringTrim(c.Query("status"))),
			Search:    c.Query("search"),
			StartDate: start,
			EndDate:   end,
		}
		events, err := es.ListDashboard(c.Request.Context(), filter)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func AllEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := helpers.ParsePageParams(c.Query("page"), c.Query("limit"), services.DefaultAllLimit, models.DashboardMaxEvents)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		events, pagination, err := es.ListAll(c.Request.Context(), page, limit)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, eventPage{Events: events, Pagination: pagination})
	}
}

func ImportEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := helpers.IdentityFromContext(c.Request.Context())
		if !ok {
			writeError(c, "event", models.ErrUnauthorized)
			return
		}
		// The body is optional; an empty request imports without notes.
		var req importRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid request body")
			return
		}
		event, err := es.ImportEvent(c.Request.Context(), c.Param("id"), identity, req.ImportNotes)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func MarkInactive(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := helpers.IdentityFromContext(c.Request.Context())
		event, err := es.MarkInactive(c.Request.Context(), c.Param("id"), identity)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func BulkStatus(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := helpers.IdentityFromContext(c.Request.Context())
		if !ok {
			writeError(c, "event", models.ErrUnauthorized)
			return
		}
		var req bulkStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		matched, modified, err := es.BulkUpdateStatus(c.Request.Context(), req.EventIDs, req.Status, identity)
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, bulkStatusResponse{MatchedCount: matched, ModifiedCount: modified})
	}
}

func StatsOverview(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := es.Stats(c.Request.Context())
		if err != nil {
			writeError(c, "event", err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
