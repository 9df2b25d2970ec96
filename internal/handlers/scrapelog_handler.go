package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/services"
)

type scrapeLogPage struct {
	Logs       []*models.ScrapeLog `json:"logs"`
	Pagination models.Pagination   `json:"pagination"`
}

func CreateScrapeLog(ss *services.ScrapeLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var log models.ScrapeLog
		if err := c.ShouldBindJSON(&log); err != nil {
			badRequest(c, "invalid scrape log: "+err.Error())
			return
		}
		saved, err := ss.RecordRun(c.Request.Context(), &log)
		if err != nil {
			writeError(c, "scrape log", err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(saved, "Scrape log saved"))
	}
}

func ListScrapeLogs(ss *services.ScrapeLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := helpers.ParsePageParams(c.Query("page"), c.Query("limit"), services.DefaultScrapeLogLimit, services.MaxSearchLimit)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter := models.ScrapeLogFilter{
			SourceName: helpers.StringTrim(c.Query("sourceName")),
			Status:     helpers.StringTrim(c.Query("status")),
		}
		logs, pagination, err := ss.ListRuns(c.Request.Context(), filter, page, limit)
		if err != nil {
			writeError(c, "scrape log", err)
			return
		}
		c.JSON(http.StatusOK, scrapeLogPage{Logs: logs, Pagination: pagination})
	}
}
