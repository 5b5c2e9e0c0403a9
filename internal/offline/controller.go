package offline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
)

// Notifier surfaces offline-mode transitions to the user. The console
// notifier in cmd/agent is the default; a UI layer would supply its own.
type Notifier interface {
	Notify(event, message string)
}

// Controller owns the offline-mode flag. The flag is persisted so an app
// restart while offline comes back up in offline mode.
type Controller struct {
	store    *localstore.Store
	check    func(ctx context.Context) bool
	notifier Notifier
	logger   zerolog.Logger

	mu      sync.Mutex
	enabled bool
}

// New loads the persisted flag. check is consulted before leaving offline
// mode; it should run a live connectivity probe.
func New(store *localstore.Store, check func(ctx context.Context) bool, notifier Notifier, logger zerolog.Logger) *Controller {
	c := &Controller{
		store:    store,
		check:    check,
		notifier: notifier,
		logger:   logger,
	}
	enabled := false
	store.Get(localstore.KeyOfflineMode, &enabled)
	c.enabled = enabled
	return c
}

// Enabled reports whether offline mode is active.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Enable turns offline mode on. It always succeeds: entering offline mode
// must work precisely when the network does not.
func (c *Controller) Enable() {
	c.mu.Lock()
	already := c.enabled
	c.enabled = true
	c.mu.Unlock()
	// Persist even when the in-memory flag is already set: a sign-out
	// wipes the store while the controller keeps running.
	if err := c.store.Set(localstore.KeyOfflineMode, true); err != nil {
		c.logger.Error().Err(err).Msg("persist offline flag")
	}
	if already {
		return
	}
	c.logger.Info().Msg("offline mode enabled")
	if c.notifier != nil {
		c.notifier.Notify("offline", "Offline mode enabled. Changes are saved locally.")
	}
}

// Disable turns offline mode off, but only after a live connectivity check
// succeeds. It reports whether the transition happened; on false the flag
// is left untouched.
func (c *Controller) Disable(ctx context.Context) bool {
	if c.check != nil && !c.check(ctx) {
		c.logger.Warn().Msg("refusing to leave offline mode: backend unreachable")
		if c.notifier != nil {
			c.notifier.Notify("offline", "Still offline. Could not reach the server.")
		}
		return false
	}
	c.forceDisable()
	return true
}

// ForceDisable clears the flag without a connectivity check. The reconnect
// path uses it after a probe has already succeeded and data is synced.
func (c *Controller) ForceDisable() {
	c.forceDisable()
}

func (c *Controller) forceDisable() {
	c.mu.Lock()
	already := !c.enabled
	c.enabled = false
	c.mu.Unlock()
	if err := c.store.Set(localstore.KeyOfflineMode, false); err != nil {
		c.logger.Error().Err(err).Msg("persist offline flag")
	}
	if already {
		return
	}
	c.logger.Info().Msg("offline mode disabled")
	if c.notifier != nil {
		c.notifier.Notify("online", "Back online. Data synced with the server.")
	}
}
