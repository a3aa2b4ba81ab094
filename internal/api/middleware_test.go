package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"/api/user/sensor/data", "/api/user/sensor/data"},
		{"/api/user/sensor/data?page=2", "/api/user/sensor/data?page=2"},
		{"/ws?token=abc.def.ghi", "/ws?token=REDACTED"},
		{"/ws?b=1&token=abc&a=2", "/ws?a=2&b=1&token=REDACTED"},
		{"/ws?token=%zz", "/ws"},
	}

	for _, tt := range tests {
		if got := redactURI(tt.uri); got != tt.want {
			t.Errorf("redactURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestRequestLoggerHidesQueryToken(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(requestLogger(zap.New(core)))
	e.GET("/ws", func(c echo.Context) error { return c.NoContent(http.StatusUnauthorized) })

	req := httptest.NewRequest(http.MethodGet, "/ws?token=secret-session-token", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("Request").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one request log, got %d", len(entries))
	}
	uri, _ := entries[0].ContextMap()["uri"].(string)
	if strings.Contains(uri, "secret-session-token") {
		t.Errorf("Token leaked into request log: %q", uri)
	}
	if uri != "/ws?token=REDACTED" {
		t.Errorf("uri = %q", uri)
	}
}
