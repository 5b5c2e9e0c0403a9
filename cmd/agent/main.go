package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/apiclient"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/config"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/monitor"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/offline"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/session"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/syncer"
)

// The agent is the device-side companion process: it keeps a local SQLite
// cache of the signed-in student's data, watches backend connectivity, and
// flips offline mode on and off as the network comes and goes.
func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel).With().Str("service", "trackly-agent").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := localstore.Open(cfg.AgentDBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.AgentDBPath).Msg("open local store")
	}
	defer store.Close()

	client := apiclient.New(cfg.ServerURL)

	// The monitor and the offline controller reference each other: the
	// controller's disable gate runs a live probe, and the monitor's hooks
	// flip the controller. Declare the monitor first, wire it after.
	var mon *monitor.Monitor

	offlineCtl := offline.New(store, func(ctx context.Context) bool {
		return mon.CheckNow(ctx)
	}, logNotifier{logger}, logger)

	syn := syncer.New(client, store, func() bool { return mon.Connected() }, logger)
	sess := session.New(client, store, syn, offlineCtl, logger)

	mon = monitor.New(client, monitor.Options{
		HealthInterval:    cfg.HealthInterval,
		ReconnectInterval: cfg.ReconnectInterval,
		Timeout:           cfg.HealthTimeout,
		FailureThreshold:  cfg.FailureThreshold,
	}, monitor.Hooks{
		OfflineActive: offlineCtl.Enabled,
		OnDisconnected: func() {
			if cfg.AutoEnableOffline {
				offlineCtl.Enable()
			}
		},
		OnReconnected: func(ctx context.Context) {
			if current := sess.Current(); current.Valid() {
				if result := syn.FullSync(ctx, current.UserID); !result.Success {
					logger.Warn().Strs("errors", result.Errors).Msg("reconnect sync incomplete")
					return
				}
			}
			offlineCtl.ForceDisable()
		},
	}, logger)

	if !sess.Restore() {
		if cfg.AgentEmail == "" || cfg.AgentPassword == "" {
			logger.Fatal().Msg("no stored session and AGENT_EMAIL/AGENT_PASSWORD not set")
		}
		if result := sess.SignIn(ctx, cfg.AgentEmail, cfg.AgentPassword); !result.Success {
			logger.Fatal().Str("error", result.Error).Msg("sign-in failed")
		}
	}

	mon.CheckNow(ctx)
	go mon.Run(ctx)

	logger.Info().
		Str("server", cfg.ServerURL).
		Bool("offline", offlineCtl.Enabled()).
		Msg("agent running")

	<-ctx.Done()
	logger.Info().Msg("agent stopping")
}

// logNotifier surfaces offline transitions on the console; a desktop build
// would swap in a system-notification implementation.
type logNotifier struct {
	logger zerolog.Logger
}

func (n logNotifier) Notify(event, message string) {
	n.logger.Info().Str("event", event).Msg(message)
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
}
