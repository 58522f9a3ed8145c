package monitoring

import "time"

// Stats returns the running totals.
func (m *Metrics) Stats() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// UptimeDuration returns the time since the collectors were created.
func (m *Metrics) UptimeDuration() time.Duration {
	return time.Since(m.startTime)
}
