package container

import (
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/eventsadmin/internal/bus"
	"github.com/joshua-takyi/eventsadmin/internal/config"
	"github.com/joshua-takyi/eventsadmin/internal/handlers"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	MongoDBClient *mongo.Client
	Repo          *models.MongodbRepo
	Publisher     bus.Publisher

	EventService     *services.EventService
	LeadService      *services.LeadService
	ScrapeLogService *services.ScrapeLogService
	AuthService      *services.AuthService
	Cookies          handlers.CookieSettings
}

// NewContainer creates a new dependency injection container. mirror may be
// nil; googleKeys verifies Google id_tokens.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	publisher bus.Publisher,
	mirror helpers.ImageMirror,
	googleKeys jwt.Keyfunc,
) *Container {
	// Initialize repositories
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)

	oauthConfig := services.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL())
	verifier := helpers.NewIDTokenVerifier(cfg.GoogleClientID, googleKeys)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		MongoDBClient:    mongoDBClient,
		Repo:             repo,
		Publisher:        publisher,
		EventService:     services.NewEventService(repo, publisher, mirror, logger, cfg.DefaultCity),
		LeadService:      services.NewLeadService(repo, publisher, logger),
		ScrapeLogService: services.NewScrapeLogService(repo),
		AuthService:      services.NewAuthService(oauthConfig, verifier, repo, repo, []byte(cfg.SessionSecret), cfg.SessionTTL, logger),
		Cookies: handlers.CookieSettings{
			SessionName: cfg.SessionCookieName,
			Production:  cfg.IsProduction(),
		},
	}
}
