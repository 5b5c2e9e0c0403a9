package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the monitor's view of backend reachability.
type State string

const (
	StateUnknown      State = "unknown"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// HealthChecker probes the backend. A nil error means reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Hooks let the monitor drive offline mode without importing it. All hooks
// are optional.
type Hooks struct {
	// OfflineActive reports whether offline mode is currently enabled;
	// it selects the probe interval and gates OnReconnected.
	OfflineActive func() bool
	// OnDisconnected fires once per connectivity loss, on the check that
	// crosses the failure threshold.
	OnDisconnected func()
	// OnReconnected fires when a probe succeeds while offline mode is
	// active, so the caller can sync and drop back to online mode.
	OnReconnected func(ctx context.Context)
}

// Options tune probe cadence and sensitivity.
type Options struct {
	// HealthInterval is the probe period during normal operation.
	HealthInterval time.Duration
	// ReconnectInterval is the probe period while offline mode is active.
	ReconnectInterval time.Duration
	// Timeout bounds a single probe.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures required
	// before the monitor reports a disconnect. Transient blips below the
	// threshold never change state.
	FailureThreshold int
}

// Status is a point-in-time snapshot of the monitor.
type Status struct {
	State    State
	Failures int
	LastOK   time.Time
}

// Monitor periodically probes the backend and tracks connectivity state.
type Monitor struct {
	checker HealthChecker
	hooks   Hooks
	opts    Options
	logger  zerolog.Logger

	// checkMu serializes probes so a manual CheckNow and the ticker never
	// interleave their threshold accounting.
	checkMu sync.Mutex

	mu       sync.Mutex
	state    State
	failures int
	lastOK   time.Time
}

func New(checker HealthChecker, opts Options, hooks Hooks, logger zerolog.Logger) *Monitor {
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = 30 * time.Second
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 3
	}
	return &Monitor{
		checker: checker,
		hooks:   hooks,
		opts:    opts,
		logger:  logger,
		state:   StateUnknown,
	}
}

// Run probes until ctx is cancelled. While offline mode is active the probe
// period switches to the slower reconnect interval.
func (m *Monitor) Run(ctx context.Context) {
	timer := time.NewTimer(m.interval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			m.CheckNow(ctx)
			timer.Reset(m.interval())
		}
	}
}

func (m *Monitor) interval() time.Duration {
	if m.hooks.OfflineActive != nil && m.hooks.OfflineActive() {
		return m.opts.ReconnectInterval
	}
	return m.opts.HealthInterval
}

// CheckNow runs one probe immediately and returns whether the backend was
// reachable. Concurrent calls are serialized.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	err := m.checker.Health(probeCtx)
	cancel()

	if err != nil {
		m.recordFailure(err)
		return false
	}
	m.recordSuccess(ctx)
	return true
}

func (m *Monitor) recordFailure(err error) {
	m.mu.Lock()
	m.failures++
	crossed := m.state != StateDisconnected && m.failures >= m.opts.FailureThreshold
	if crossed {
		m.state = StateDisconnected
	}
	failures := m.failures
	m.mu.Unlock()

	m.logger.Debug().Err(err).Int("failures", failures).Msg("health check failed")
	if crossed {
		m.logger.Warn().Int("failures", failures).Msg("backend unreachable, going offline")
		if m.hooks.OnDisconnected != nil {
			m.hooks.OnDisconnected()
		}
	}
}

func (m *Monitor) recordSuccess(ctx context.Context) {
	m.mu.Lock()
	wasConnected := m.state == StateConnected
	m.state = StateConnected
	m.failures = 0
	m.lastOK = time.Now().UTC()
	m.mu.Unlock()

	if !wasConnected {
		m.logger.Info().Msg("backend reachable")
	}
	if m.hooks.OfflineActive != nil && m.hooks.OfflineActive() && m.hooks.OnReconnected != nil {
		m.hooks.OnReconnected(ctx)
	}
}

// Status returns the current snapshot.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{State: m.state, Failures: m.failures, LastOK: m.lastOK}
}

// Connected reports whether the last probe cycle left the monitor in the
// connected state.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}
