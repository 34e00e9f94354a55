package providers

import "time"

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns detailed health information.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// updateHealth records the outcome of one request. The provider is marked
// unhealthy after UnhealthyAfter consecutive failures and healthy again on
// the next success.
func (p *HTTPProvider) updateHealth(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	now := time.Now()
	p.health.LastCheck = now

	if success {
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = now
		return
	}

	p.health.ConsecutiveFailures++
	p.health.LastError = err

	if p.health.ConsecutiveFailures >= UnhealthyAfter && p.health.IsHealthy {
		p.health.IsHealthy = false
		p.logger.Warn("provider marked unhealthy",
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// recordRequest records request counters.
func (p *HTTPProvider) recordRequest(success bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if !success {
		p.health.FailedRequests++
	}
}

// HealthOf returns the health of a, looking through wrappers such as
// RateLimited. ok is false when nothing in the chain tracks health.
func HealthOf(a Analyzer) (health ProviderHealth, ok bool) {
	for a != nil {
		if hr, isReporter := a.(HealthReporter); isReporter {
			return hr.GetHealth(), true
		}
		u, isWrapper := a.(interface{ Unwrap() Analyzer })
		if !isWrapper {
			break
		}
		a = u.Unwrap()
	}
	return ProviderHealth{}, false
}
