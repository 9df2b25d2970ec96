package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/eventsadmin/internal/bus"
	"github.com/joshua-takyi/eventsadmin/internal/config"
	"github.com/joshua-takyi/eventsadmin/internal/container"
	"github.com/joshua-takyi/eventsadmin/internal/middleware"
)

func newTestRouter(t *testing.T, ingestKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:       "development",
		MongoDBDatabase:   "events_test",
		FrontendURL:       "http://localhost:3000",
		BackendURL:        "http://localhost:8080",
		GoogleClientID:    "client-id",
		SessionSecret:     "0123456789abcdef0123456789abcdef",
		SessionCookieName: "louderworld.sid",
		SessionTTL:        time.Hour,
		IngestAPIKey:      ingestKey,
		DefaultCity:       "Sydney",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noKeys := func(*jwt.Token) (interface{}, error) { return nil, jwt.ErrTokenUnverifiable }
	c := container.NewContainer(cfg, logger, nil, &bus.NoopPublisher{}, nil, noKeys)
	return SetupRoutes(c)
}

func get(r *gin.Engine, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProbesAndMetrics(t *testing.T) {
	r := newTestRouter(t, "")

	if w := get(r, "/health"); w.Code != http.StatusOK {
		t.Fatalf("/health = %d", w.Code)
	}
	// No database behind the container
	if w := get(r, "/ready"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("/ready = %d", w.Code)
	}
	w := get(r, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "events_http_requests_total") {
		t.Fatalf("/metrics = %d", w.Code)
	}
}

func TestDashboardRoutesNeedSession(t *testing.T) {
	r := newTestRouter(t, "")
	for _, path := range []string{
		"/api/events/dashboard",
		"/api/events/all",
		"/api/events/stats/overview",
		"/api/scrape-logs",
	} {
		if w := get(r, path); w.Code != http.StatusUnauthorized {
			t.Errorf("%s = %d, want 401", path, w.Code)
		}
	}
	if w := get(r, "/auth/user"); w.Code != http.StatusUnauthorized || strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("/auth/user = %d %q", w.Code, w.Body.String())
	}
}

func TestIngestRoutesNeedKey(t *testing.T) {
	r := newTestRouter(t, "s3cret")
	req := httptest.NewRequest(http.MethodPost, "/api/events/ingest", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("ingest without key = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/events/ingest", strings.NewReader(`{}`))
	req.Header.Set(middleware.IngestKeyHeader, "s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	// The key is accepted; the empty payload then fails validation before any store access
	if w.Code != http.StatusBadRequest {
		t.Fatalf("ingest with key = %d %s", w.Code, w.Body)
	}
}

func TestGoogleAuthRedirect(t *testing.T) {
	r := newTestRouter(t, "")
	w := get(r, "/auth/google")
	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("/auth/google = %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://accounts.google.com/") || !strings.Contains(loc, "redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fauth%2Fgoogle%2Fcallback") {
		t.Errorf("redirect = %s", loc)
	}
}

func TestCORSAllowsFrontend(t *testing.T) {
	r := newTestRouter(t, "")
	w := get(r, "/health", "Origin", "http://localhost:3000")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow-credentials = %q", got)
	}
}
