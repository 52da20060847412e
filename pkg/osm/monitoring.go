package osm

import (
	"sync"
	"time"
)

// MonitoringHooks defines hooks for observing scans
type MonitoringHooks struct {
	// OnElement is called for every node or way a scanner yields
	OnElement func(format Format, elementType string)

	// OnComplete is called once a scanner is closed
	OnComplete func(format Format, duration time.Duration, success bool)

	// OnError is called when a scan stops on an error
	OnError func(format Format, errorType string)
}

var (
	// Global monitoring hooks
	globalHooks *MonitoringHooks
	hooksMutex  sync.RWMutex
)

// SetMonitoringHooks sets global monitoring hooks
func SetMonitoringHooks(hooks *MonitoringHooks) {
	hooksMutex.Lock()
	defer hooksMutex.Unlock()
	globalHooks = hooks
}

// getMonitoringHooks returns the current monitoring hooks
func getMonitoringHooks() *MonitoringHooks {
	hooksMutex.RLock()
	defer hooksMutex.RUnlock()
	return globalHooks
}

// monitoredScanner reports scanner activity to the global hooks
type monitoredScanner struct {
	Scanner
	format Format
	start  time.Time
	hooks  *MonitoringHooks
	closed bool
}

// Monitor wraps s so that the hooks installed with SetMonitoringHooks observe it.
// It returns s unchanged when no hooks are installed.
func Monitor(s Scanner, format Format) Scanner {
	hooks := getMonitoringHooks()
	if hooks == nil {
		return s
	}
	return &monitoredScanner{Scanner: s, format: format, start: time.Now(), hooks: hooks}
}

func (m *monitoredScanner) Scan() bool {
	if m.Scanner.Scan() {
		if m.hooks.OnElement != nil {
			m.hooks.OnElement(m.format, string(m.Element().Type))
		}
		return true
	}

	if err := m.Scanner.Err(); err != nil && m.hooks.OnError != nil {
		m.hooks.OnError(m.format, errorType(err))
	}
	return false
}

func (m *monitoredScanner) Close() error {
	err := m.Scanner.Close()
	if !m.closed && m.hooks.OnComplete != nil {
		m.hooks.OnComplete(m.format, time.Since(m.start), err == nil && m.Scanner.Err() == nil)
	}
	m.closed = true
	return err
}
