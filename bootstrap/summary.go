package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bloomkit/bloom/component"
	"github.com/bloomkit/bloom/container"
)

// InfrastructureInfo holds detailed infrastructure component information.
type InfrastructureInfo struct {
	Name    string
	Type    string // e.g. "server", "database", "broker"
	Details string
	Port    int
	Healthy bool
}

// RouteInfo represents a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary tracks and displays the application bootstrap process.
// Infrastructure, routes, and container registrations are auto-collected
// at display time; manual tracking is only needed for things the registries
// don't know about.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	routes          []RouteInfo
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName:    serviceName,
		version:        version,
		infrastructure: make([]InfrastructureInfo, 0),
		routes:         make([]RouteInfo, 0),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure adds an infrastructure entry that no registered
// component self-reports (e.g. an external dependency reached over the
// network but not lifecycle-managed here).
func (s *Summary) TrackInfrastructure(name, componentType, details string, port int, healthy bool) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{
		Name:    name,
		Type:    componentType,
		Details: details,
		Port:    port,
		Healthy: healthy,
	})
}

// TrackRoute records an HTTP route not reported by any RouteProvider.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

// collect gathers infrastructure and route information from the component
// registry, merging it with manually tracked entries.
func (s *Summary) collect(registry *component.Registry) (infra []InfrastructureInfo, routes []RouteInfo) {
	infra = append(infra, s.infrastructure...)
	routes = append(routes, s.routes...)
	if registry == nil {
		return infra, routes
	}

	health := make(map[string]component.Health)
	for _, h := range registry.HealthAll(context.Background()) {
		health[h.Name] = h
	}

	for _, c := range registry.All() {
		h, ok := health[c.Name()]
		healthy := ok && h.Status == component.StatusHealthy

		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			name := desc.Name
			if name == "" {
				name = c.Name()
			}
			infra = append(infra, InfrastructureInfo{
				Name:    name,
				Type:    desc.Type,
				Details: desc.Details,
				Port:    desc.Port,
				Healthy: healthy,
			})
		} else {
			infra = append(infra, InfrastructureInfo{
				Name:    c.Name(),
				Details: string(h.Status),
				Healthy: healthy,
			})
		}

		if rp, ok := c.(component.RouteProvider); ok {
			for _, r := range rp.Routes() {
				routes = append(routes, RouteInfo(r))
			}
		}
	}
	return infra, routes
}

// DisplaySummary prints the bootstrap summary: infrastructure from the
// component registry, container registrations from the manager, routes, and
// a live health check.
func (s *Summary) DisplaySummary(registry *component.Registry, manager *container.Manager) {
	infra, routes := s.collect(registry)

	// Header
	fmt.Printf("\n")
	fmt.Printf("🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	// Infrastructure
	if len(infra) > 0 {
		fmt.Printf("📊 Infrastructure\n")
		for i, inf := range infra {
			prefix := "├──"
			if i == len(infra)-1 {
				prefix = "└──"
			}
			icon := "✅"
			if !inf.Healthy {
				icon = "❌"
			}
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Printf("   %s %s %s: %s\n", prefix, icon, inf.Name, details)
		}
		fmt.Printf("\n")
	} else {
		fmt.Printf("📊 Infrastructure\n   └── No components registered\n\n")
	}

	// Container registrations
	if manager != nil {
		recs := manager.Registrations()
		if len(recs) > 0 {
			fmt.Printf("📦 Container (%d registrations)\n", len(recs))
			for i, rec := range recs {
				prefix := "├──"
				if i == len(recs)-1 {
					prefix = "└──"
				}
				fmt.Printf("   %s %s %s %s\n", prefix, kindIcon(rec.Kind()), rec.Identity(), registrationBadges(rec))
			}
			fmt.Printf("\n")
		}
	}

	// Routes
	if len(routes) > 0 {
		fmt.Printf("🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			prefix := "├──"
			if i == len(routes)-1 {
				prefix = "└──"
			}
			fmt.Printf("   %s %-7s %s → %s\n", prefix, r.Method, r.Path, r.Handler)
		}
		fmt.Printf("\n")
	}

	// Live health check
	if registry != nil {
		healthResults := registry.HealthAll(context.Background())
		if len(healthResults) > 0 {
			fmt.Printf("🏥 Health Check\n")
			for i, h := range healthResults {
				prefix := "├──"
				if i == len(healthResults)-1 {
					prefix = "└──"
				}
				icon := healthStatusIcon(h.Status)
				msg := ""
				if h.Message != "" {
					msg = fmt.Sprintf(" — %s", h.Message)
				}
				fmt.Printf("   %s %s %s: %s%s\n", prefix, icon, h.Name, strings.ToLower(string(h.Status)), msg)
			}
			fmt.Printf("\n")
		}
	}
}

// registrationBadges renders the scope plus any flags as a compact suffix.
func registrationBadges(rec *container.Record) string {
	parts := []string{string(rec.Scope())}
	if q := rec.Qualifier(); q != "" {
		parts = append(parts, "qualifier="+q)
	}
	if rec.IsPrimary() {
		parts = append(parts, "primary")
	}
	if rec.IsTransactional() {
		parts = append(parts, "tx")
	}
	if r := rec.Route(); r != nil {
		parts = append(parts, r.Method+" "+r.Path)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func kindIcon(k container.Kind) string {
	switch k {
	case container.KindHandler:
		return "🎯"
	case container.KindFactory:
		return "🏭"
	case container.KindConfiguration:
		return "⚙️"
	default:
		return "📦"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
