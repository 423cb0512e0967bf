package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bloomkit/bloom/component"
	"github.com/bloomkit/bloom/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{}
	cfg.ApplyDefaults()
	return New(cfg, logger.NewDefault("test"))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 {
		t.Errorf("default port = %d", cfg.Port)
	}
	if cfg.MaxBodySize != "10MB" {
		t.Errorf("default max body = %q", cfg.MaxBodySize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid port error")
	}
	cfg = Config{Port: 8080, ReadTimeout: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid timeout error")
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test-svc", func(ctx context.Context) []component.Health {
		return []component.Health{{Name: "db", Status: component.StatusHealthy}}
	})

	rec := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["service"] != "test-svc" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthEndpointUnhealthy(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test-svc", func(ctx context.Context) []component.Health {
		return []component.Health{{Name: "db", Status: component.StatusUnhealthy}}
	})

	rec := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestInfoAndVersionEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test-svc", nil)

	for _, path := range []string{"/info", "/version", "/alive", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		s.GinEngine().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestComponentRoutes(t *testing.T) {
	s := newTestServer(t)
	s.ApplyDefaults("test-svc", nil)
	s.GinEngine().POST("/api/users", func(c *gin.Context) { c.Status(http.StatusCreated) })

	sc := NewComponent(s)
	routes := sc.Routes()
	if len(routes) == 0 {
		t.Fatal("no routes reported")
	}
	// Application routes sort before system routes.
	if routes[0].Path != "/api/users" {
		t.Errorf("first route = %s, want /api/users", routes[0].Path)
	}
}

func TestComponentDescribe(t *testing.T) {
	s := newTestServer(t)
	sc := NewComponent(s)
	d := sc.Describe()
	if d.Type != "server" || d.Port != 8080 {
		t.Errorf("describe = %+v", d)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/org/svc/api.(*UserPort).List-fm", "UserPort.List"},
		{"api.(*UserPort).Create-fm", "UserPort.Create"},
	}
	for _, tt := range tests {
		if got := formatHandlerName(tt.in); got != tt.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
