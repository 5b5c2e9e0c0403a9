package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/config"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/notify"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/repository"
)

// StartReminderJob emails students who opted into attendance reminders.
// It fires once per interval and targets users whose reminder hour matches
// the current UTC hour.
func StartReminderJob(ctx context.Context, cfg config.Config, store *repository.Store, email notify.EmailService, logger zerolog.Logger) {
	if !cfg.ReminderJobEnabled {
		return
	}
	if email == nil {
		logger.Warn().Msg("reminder job disabled: email service not configured")
		return
	}
	interval := cfg.ReminderJobInterval
	if interval <= 0 {
		interval = time.Hour
	}
	timeout := cfg.ReminderJobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hour := time.Now().UTC().Hour()
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				recipients, err := store.ListReminderRecipients(tickCtx, hour)
				cancel()
				if err != nil {
					logger.Error().Err(err).Msg("reminder job query failed")
					continue
				}
				for _, user := range recipients {
					email.Send(notify.Message{
						ToName:  user.Name,
						ToEmail: user.Email,
						Subject: "Attendance reminder",
						Text:    "Don't forget to mark today's attendance in TrackLy.",
					})
				}
				if len(recipients) > 0 {
					logger.Info().Int("count", len(recipients)).Msg("reminder emails queued")
				}
			}
		}
	}()
}
