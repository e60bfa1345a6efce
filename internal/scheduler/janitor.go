package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/journal"
	"github.com/pachanga/matchday/internal/matchadmin"
)

// RegisterJanitor schedules the housekeeping job: evict admin sessions idle
// beyond idleTimeout and prune journal rows older than retention. The
// journal may be nil when auditing is disabled.
func (s *Service) RegisterJanitor(manager *matchadmin.Manager, jnl *journal.Journal, cronExpr string, idleTimeout, retention time.Duration) error {
	_, err := s.AddJob("admin_session_janitor", cronExpr, func() {
		evicted := manager.PruneIdle(idleTimeout)
		log.Debug().Int("evicted", evicted).Int("live", manager.Len()).Msg("Janitor swept admin sessions")

		if jnl == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		pruned, err := jnl.PruneOlderThan(ctx, time.Now().Add(-retention))
		if err != nil {
			log.Error().Err(err).Msg("Janitor failed to prune journal")
			return
		}
		if pruned > 0 {
			log.Info().Int64("pruned", pruned).Msg("Janitor pruned journal entries")
		}
	})
	return err
}
