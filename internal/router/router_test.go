package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/threadboard/backend/pkg/config"
	"github.com/anonto42/threadboard/backend/validators"
	"github.com/labstack/echo/v4"
)

func TestSetupRoutesWithMemoryStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := echo.New()
	e.Validator = validators.NewValidator()

	db := &config.DB{Driver: config.DriverMemory}
	cfg := &config.Config{RenderCacheSize: 8, FeedExcerptWords: 10}
	if err := SetupRoutes(e, db, cfg, logger); err != nil {
		t.Fatalf("SetupRoutes: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"title":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title":"hello"`) {
		t.Fatalf("feed: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
}

func TestSetupRoutesUnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := SetupRoutes(echo.New(), &config.DB{Driver: "cassandra"}, &config.Config{}, logger)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
