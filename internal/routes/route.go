package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/container"
	"github.com/joshua-takyi/eventsadmin/internal/handlers"
	"github.com/joshua-takyi/eventsadmin/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{container.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.IngestKeyHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/health", handlers.Health())
	r.GET("/ready", handlers.Ready(container.Repo))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireUser := middleware.RequireUser(container.AuthService, container.Cookies.SessionName, container.Logger)
	ingestKey := middleware.IngestKey(container.Config.IngestAPIKey)

	es := container.EventService
	events := r.Group("/api/events")
	{
		// public routes
		events.GET("", handlers.ListEvents(es))
		events.GET("/search", handlers.SearchEvents(es))
		events.GET("/feed.ics", handlers.CalendarFeed(es))

		// scraper routes
		events.POST("/create", ingestKey, handlers.CreateEvent(es))
		events.PUT("/update/:id", ingestKey, handlers.UpdateEvent(es))
		events.POST("/ingest", ingestKey, handlers.IngestEvent(es))

		// dashboard routes
		events.GET("/dashboard", requireUser, handlers.DashboardEvents(es))
		events.GET("/all", requireUser, handlers.AllEvents(es))
		events.GET("/stats/overview", requireUser, handlers.StatsOverview(es))
		events.POST("/bulk-status", requireUser, handlers.BulkStatus(es))
		events.POST("/:id/import", requireUser, handlers.ImportEvent(es))
		events.PUT("/:id/inactive", requireUser, handlers.MarkInactive(es))

		events.GET("/:id", handlers.GetEvent(es))
	}

	r.POST("/api/leads", handlers.CaptureLead(container.LeadService))

	scrapeLogs := r.Group("/api/scrape-logs")
	{
		scrapeLogs.POST("", ingestKey, handlers.CreateScrapeLog(container.ScrapeLogService))
		scrapeLogs.GET("", requireUser, handlers.ListScrapeLogs(container.ScrapeLogService))
	}

	auth := r.Group("/auth")
	{
		auth.GET("/google", handlers.GoogleAuth(container.AuthService, container.Cookies))
		auth.GET("/google/callback", handlers.GoogleAuthCallback(container.AuthService, container.Cookies, container.Config.FrontendURL))
		auth.GET("/failed", handlers.AuthFailed())
		auth.POST("/logout", handlers.Logout(container.AuthService, container.Cookies))
		auth.GET("/user", handlers.CurrentUser(container.AuthService, container.Cookies))
	}

	return r
}
