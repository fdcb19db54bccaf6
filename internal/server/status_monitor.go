// Package server provides the HTTP server and routing for Lens.
package server

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/clients/pricefeed"
)

// StatusMonitor periodically logs resource usage and price feed state so the
// log stream doubles as a coarse health history.
type StatusMonitor struct {
	systemHandlers *SystemHandlers
	pricefeed      *pricefeed.Client // nil when the price feed is disabled
	log            zerolog.Logger
	stop           chan struct{}

	lastFeedConnected bool
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(systemHandlers *SystemHandlers, pricefeedClient *pricefeed.Client, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		systemHandlers: systemHandlers,
		pricefeed:      pricefeedClient,
		log:            log.With().Str("component", "status_monitor").Logger(),
		stop:           make(chan struct{}),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
	m.log.Info().Dur("interval", interval).Msg("Status monitor started")
}

// Stop halts the monitoring loop
func (m *StatusMonitor) Stop() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
}

func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.checkStatuses()

	for {
		select {
		case <-ticker.C:
			m.checkStatuses()
		case <-m.stop:
			return
		}
	}
}

func (m *StatusMonitor) checkStatuses() {
	cpuPct, ramPct := m.systemHandlers.getSystemStats()

	m.log.Debug().
		Float64("cpu_percent", cpuPct).
		Float64("ram_percent", ramPct).
		Msg("Resource usage")

	m.checkFeedStatus()
}

// checkFeedStatus logs price feed connection transitions, not steady state.
func (m *StatusMonitor) checkFeedStatus() {
	if m.pricefeed == nil {
		return
	}

	connected := m.pricefeed.IsConnected()
	if connected != m.lastFeedConnected {
		m.log.Info().Bool("connected", connected).Msg("Price feed status changed")
		m.lastFeedConnected = connected
	}
}
