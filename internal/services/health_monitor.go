package services

import (
	"sync"
	"time"
)

// HealthStatus represents the health of a provider as observed from the
// outcome of its chat streams
type HealthStatus struct {
	Healthy      bool      `json:"healthy"`
	LastCheck    time.Time `json:"last_check"`
	LastError    string    `json:"last_error,omitempty"`
	ResponseTime int64     `json:"response_time_ms"`
	ErrorCount   int       `json:"error_count"`
	SuccessCount int       `json:"success_count"`
	ErrorRate    float64   `json:"error_rate"`
}

// HealthMonitor tracks provider health by name
type HealthMonitor struct {
	health map[string]*HealthStatus
	mu     sync.RWMutex
	now    func() time.Time
}

// NewHealthMonitor creates a monitor that starts every named provider healthy
func NewHealthMonitor(names ...string) *HealthMonitor {
	m := &HealthMonitor{
		health: make(map[string]*HealthStatus),
		now:    time.Now,
	}
	for _, name := range names {
		m.health[name] = &HealthStatus{Healthy: true, LastCheck: m.now()}
	}
	return m
}

// IsHealthy returns whether a provider is healthy. Unknown providers are not.
func (m *HealthMonitor) IsHealthy(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.health[name]
	return exists && status.Healthy
}

// GetHealth returns a copy of the health status for a provider, or nil
func (m *HealthMonitor) GetHealth(name string) *HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if status, exists := m.health[name]; exists {
		statusCopy := *status
		return &statusCopy
	}
	return nil
}

// RecordSuccess records a stream that finished normally
func (m *HealthMonitor) RecordSuccess(name string, responseTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.statusLocked(name)
	status.SuccessCount++
	status.ResponseTime = responseTime.Milliseconds()
	status.LastCheck = m.now()
	status.Healthy = true
	status.LastError = ""
	updateErrorRate(status)
}

// RecordError records a stream that failed to start or failed midway
func (m *HealthMonitor) RecordError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.statusLocked(name)
	status.ErrorCount++
	status.LastError = err.Error()
	status.LastCheck = m.now()
	updateErrorRate(status)

	// Mark unhealthy if error rate is too high
	if status.ErrorRate > 0.5 && status.ErrorCount > 5 {
		status.Healthy = false
	}
}

// GetAllHealth returns a snapshot of every tracked provider
func (m *HealthMonitor) GetAllHealth() map[string]HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	healthCopy := make(map[string]HealthStatus, len(m.health))
	for k, v := range m.health {
		healthCopy[k] = *v
	}
	return healthCopy
}

func (m *HealthMonitor) statusLocked(name string) *HealthStatus {
	status, exists := m.health[name]
	if !exists {
		status = &HealthStatus{Healthy: true}
		m.health[name] = status
	}
	return status
}

func updateErrorRate(status *HealthStatus) {
	total := status.SuccessCount + status.ErrorCount
	if total > 0 {
		status.ErrorRate = float64(status.ErrorCount) / float64(total)
	}
}
