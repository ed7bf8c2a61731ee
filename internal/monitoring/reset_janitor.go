package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/services"
)

// ResetJanitor periodically nulls expired password-reset token columns.
// Redemption lookups are already expiry-gated, so this is hygiene: dead
// secrets should not linger at rest.
type ResetJanitor struct {
	users    services.UserServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewResetJanitor creates a janitor driven by a cron expression, e.g.
// "@every 15m".
func NewResetJanitor(users services.UserServiceProvider, scheduleExpr string) (*ResetJanitor, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, err
	}
	return &ResetJanitor{
		users:    users,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the janitor loop.
func (j *ResetJanitor) Run() {
	log.Info().Msg("Starting reset-token janitor...")

	// Run once immediately on start
	j.purge()

	for {
		timer := time.NewTimer(time.Until(j.schedule.Next(time.Now())))
		select {
		case <-j.done:
			timer.Stop()
			log.Info().Msg("Stopping reset-token janitor.")
			return
		case <-timer.C:
			j.purge()
		}
	}
}

// Stop halts the janitor.
func (j *ResetJanitor) Stop() {
	j.done <- true
}

func (j *ResetJanitor) purge() {
	n, err := j.users.PurgeExpiredResetTokens()
	if err != nil {
		log.Error().Err(err).Msg("Janitor: failed to purge expired reset tokens")
		return
	}
	if n > 0 {
		log.Info().Int64("purged", n).Msg("Janitor: cleared expired reset tokens")
	}
}
