package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/metrics"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeResolver struct {
	identity *helpers.Identity
	err      error
	tokens   []string
}

func (r *fakeResolver) ResolveSession(ctx context.Context, token string) (*helpers.Identity, *models.User, error) {
	r.tokens = append(r.tokens, token)
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.identity, &models.User{Email: r.identity.Email}, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func whoami(c *gin.Context) {
	id, ok := helpers.IdentityFromContext(c.Request.Context())
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, id.UserID)
}

func TestRequireUser(t *testing.T) {
	resolver := &fakeResolver{identity: &helpers.Identity{UserID: "user-1", Email: "a@b.com", Role: helpers.RoleAdmin}}
	r := gin.New()
	r.GET("/private", RequireUser(resolver, "sid", discardLogger()), whoami)

	t.Run("no cookie", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/private", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
		var res models.ApiResponse
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if res.Success || res.Error != "unauthorized" {
			t.Errorf("body = %+v", res)
		}
		if len(resolver.tokens) != 0 {
			t.Error("resolver should not run without a cookie")
		}
	})

	t.Run("live session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "tok-1"})
		w := serve(r, req)
		if w.Code != http.StatusOK || w.Body.String() != "user-1" {
			t.Fatalf("response = %d %q", w.Code, w.Body.String())
		}
		if resolver.tokens[len(resolver.tokens)-1] != "tok-1" {
			t.Errorf("resolver got %v", resolver.tokens)
		}
	})

	t.Run("non-admin session", func(t *testing.T) {
		viewer := gin.New()
		viewer.GET("/private", RequireUser(&fakeResolver{identity: &helpers.Identity{UserID: "user-2", Role: "viewer"}}, "sid", discardLogger()), whoami)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "tok-2"})
		w := serve(viewer, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "user-2") {
			t.Error("handler ran for a non-admin")
		}
	})

	for _, err := range []error{
		fmt.Errorf("session revoked: %w", models.ErrUnauthorized),
		errors.New("server selection timeout"),
	} {
		t.Run(err.Error(), func(t *testing.T) {
			rejecting := gin.New()
			rejecting.GET("/private", RequireUser(&fakeResolver{err: err}, "sid", discardLogger()), whoami)
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.AddCookie(&http.Cookie{Name: "sid", Value: "tok-1"})
			if w := serve(rejecting, req); w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
}

func TestIngestKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		header string
		code   int
	}{
		{"open when unset", "", "", http.StatusOK},
		{"matching key", "s3cret", "s3cret", http.StatusOK},
		{"padded key", "s3cret", "  s3cret ", http.StatusOK},
		{"missing key", "s3cret", "", http.StatusUnauthorized},
		{"wrong key", "s3cret", "s3cre", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/ingest", IngestKey(tt.key), func(c *gin.Context) { c.Status(http.StatusOK) })
			req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
			if tt.header != "" {
				req.Header.Set(IngestKeyHeader, tt.header)
			}
			if w := serve(r, req); w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Get("request_id")
		c.String(http.StatusOK, "%v", id)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	if generated == "" || w.Body.String() != generated {
		t.Fatalf("generated id = %q, body %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	if w := serve(r, req); w.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("incoming id not kept: %q", w.Header().Get("X-Request-ID"))
	}
}

func TestErrorHandler(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	r := gin.New()
	r.Use(RequestID(), ErrorHandler(logger))
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(errors.New("disk on fire"))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("internal server error"))
	})
	r.GET("/silent", func(c *gin.Context) {
		_ = c.Error(errors.New("nobody answered"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	var res models.ApiResponse
	dec := json.NewDecoder(w.Body)
	if err := dec.Decode(&res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if dec.More() {
		t.Fatal("handler body followed by a second response")
	}
	if res.Success || res.Message != "internal server error" {
		t.Errorf("body = %+v", res)
	}
	if !strings.Contains(logs.String(), "disk on fire") {
		t.Errorf("error not logged: %s", logs.String())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/silent", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "request_id") {
		t.Fatalf("fallback body = %d %s", w.Code, w.Body)
	}
	if strings.Contains(w.Body.String(), "nobody answered") {
		t.Error("error detail leaked")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := gin.New()
	r.Use(StructuredLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for path, level := range map[string]string{"/ok?x=1": "INFO", "/bad": "WARN", "/boom": "ERROR"} {
		logs.Reset()
		serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		var entry map[string]interface{}
		if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if entry["level"] != level || entry["path"] != path {
			t.Errorf("%s logged %v", path, entry)
		}
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/events/:id", "200")
	before := testutil.ToFloat64(counter)
	serve(r, httptest.NewRequest(http.MethodGet, "/api/events/abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/api/events/def", nil))
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("counter delta = %v", got)
	}

	unmatched := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")
	before = testutil.ToFloat64(unmatched)
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if got := testutil.ToFloat64(unmatched) - before; got != 1 {
		t.Fatalf("unmatched delta = %v", got)
	}
}
