package observability

import (
	"sync/atomic"
	"time"
)

// PublishStats is a point-in-time snapshot of delivery outcomes, exposed on
// the debug endpoint.
type PublishStats struct {
	Delivered   uint64 `json:"delivered"`
	Unavailable uint64 `json:"unavailable"`
	Failed      uint64 `json:"failed"`
	FanOuts     uint64 `json:"fanouts"`
	Recipients  uint64 `json:"recipients"`
	Since       string `json:"since"`
}

// PublishMonitor counts publish outcomes. All methods are safe on a nil
// receiver so components can run unmonitored.
type PublishMonitor struct {
	delivered   atomic.Uint64
	unavailable atomic.Uint64
	failed      atomic.Uint64
	fanouts     atomic.Uint64
	recipients  atomic.Uint64
	since       time.Time
}

func NewPublishMonitor() *PublishMonitor {
	return &PublishMonitor{since: time.Now().UTC()}
}

func (m *PublishMonitor) IncrDelivered() {
	if m != nil {
		m.delivered.Add(1)
	}
}

func (m *PublishMonitor) IncrUnavailable() {
	if m != nil {
		m.unavailable.Add(1)
	}
}

func (m *PublishMonitor) IncrFailed() {
	if m != nil {
		m.failed.Add(1)
	}
}

func (m *PublishMonitor) AddFanOut(recipients int) {
	if m != nil {
		m.fanouts.Add(1)
		m.recipients.Add(uint64(recipients))
	}
}

func (m *PublishMonitor) Snapshot() PublishStats {
	if m == nil {
		return PublishStats{}
	}
	return PublishStats{
		Delivered:   m.delivered.Load(),
		Unavailable: m.unavailable.Load(),
		Failed:      m.failed.Load(),
		FanOuts:     m.fanouts.Load(),
		Recipients:  m.recipients.Load(),
		Since:       m.since.Format(time.RFC3339),
	}
}
