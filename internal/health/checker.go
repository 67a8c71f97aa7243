package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Dependency is anything that can report its own health, e.g. the
// opportunities store or the quote cache.
type Dependency interface {
	HealthCheck(ctx context.Context) error
}

type HealthChecker struct {
	dependencies map[string]Dependency
	logger       *logrus.Logger
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func NewHealthChecker(logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		dependencies: make(map[string]Dependency),
		logger:       logger,
	}
}

func (h *HealthChecker) Register(name string, dependency Dependency) {
	h.dependencies[name] = dependency
}

func (h *HealthChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := h.CheckHealth(ctx)

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "healthy" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}

func (h *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	services := make(map[string]string)
	overallStatus := "healthy"

	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.dependencies[name].HealthCheck(ctx); err != nil {
			services[name] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
			h.logger.WithError(err).WithField("service", name).Error("Health check failed")
		} else {
			services[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
	}
}
