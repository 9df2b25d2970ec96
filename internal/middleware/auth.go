package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
)

const IngestKeyHeader = "X-Ingest-Key"

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*helpers.Identity, *models.User, error)
}

// RequireUser resolves the session cookie and stores the caller's identity in
// the request context. Requests without a live session are rejected with 401,
// sessions of non-admin users with 403.
func RequireUser(resolver SessionResolver, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			abortUnauthorized(c)
			return
		}

		identity, _, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				// Store failure, not a bad cookie
				logger.Error("session lookup failed", "error", err)
			} else {
				logger.Debug("rejected session", "error", err)
			}
			abortUnauthorized(c)
			return
		}
		if !identity.IsAdmin() {
			logger.Warn("dashboard access denied", "user_id", identity.UserID, "role", identity.Role)
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("forbidden"))
			return
		}

		c.Request = c.Request.WithContext(helpers.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// IngestKey guards scraper endpoints with a shared key sent in X-Ingest-Key.
// An empty key leaves the routes open.
func IngestKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := strings.TrimSpace(c.GetHeader(IngestKeyHeader))
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}
