package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/joshua-takyi/eventsadmin/internal/services"
)

const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 10 * 60
	authFailedPath    = "/auth/failed"
)

// CookieSettings controls how the session and state cookies are written.
// Production cookies are Secure with SameSite=None so the dashboard on
// FRONTEND_URL can send them cross-site.
type CookieSettings struct {
	SessionName string
	Production  bool
}

func (cs CookieSettings) set(c *gin.Context, name, value string, maxAge int) {
	if cs.Production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(name, value, maxAge, "/", "", cs.Production, true)
}

func (cs CookieSettings) clear(c *gin.Context, name string) {
	cs.set(c, name, "", -1)
}

// GoogleAuth starts the OAuth flow with a fresh state bound to a short-lived cookie.
func GoogleAuth(as *services.AuthService, cookies CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := as.NewState()
		cookies.set(c, stateCookieName, state, stateCookieMaxAge)
		c.Redirect(http.StatusTemporaryRedirect, as.AuthCodeURL(state))
	}
}

// GoogleAuthCallback finishes the OAuth flow and opens a dashboard session.
func GoogleAuthCallback(as *services.AuthService, cookies CookieSettings, frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected, _ := c.Cookie(stateCookieName)
		cookies.clear(c, stateCookieName)

		if c.Query("error") != "" {
			c.Redirect(http.StatusFound, authFailedPath)
			return
		}
		state := c.Query("state")
		if state == "" || expected == "" || state != expected {
			c.Redirect(http.StatusFound, authFailedPath)
			return
		}

		res, err := as.CompleteLogin(c.Request.Context(), c.Query("code"))
		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				_ = c.Error(err)
			}
			c.Redirect(http.StatusFound, authFailedPath)
			return
		}

		cookies.set(c, cookies.SessionName, res.Token, int(as.SessionTTL().Seconds()))
		c.Redirect(http.StatusFound, strings.TrimRight(frontendURL, "/")+"/dashboard")
	}
}

func AuthFailed() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google auth failed"})
	}
}

func Logout(as *services.AuthService, cookies CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookies.SessionName)
		cookies.clear(c, cookies.SessionName)
		if token != "" {
			if err := as.Logout(c.Request.Context(), token); err != nil {
				writeError(c, "session", err)
				return
			}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out"))
	}
}

// CurrentUser returns the signed-in user, or a bare null with 401.
func CurrentUser(as *services.AuthService, cookies CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookies.SessionName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, nil)
			return
		}
		_, user, err := as.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, models.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, nil)
				return
			}
			writeError(c, "user", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
