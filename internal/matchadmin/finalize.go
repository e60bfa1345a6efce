// internal/matchadmin/finalize.go
package matchadmin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// FinishAndNotify validates the finalize gate and, when every precondition
// holds, fires the remote notify call. Each unmet precondition is reported
// with its own reason and no network call is made.
func (s *Session) FinishAndNotify(ctx context.Context) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	logger := log.Ctx(ctx).With().
		Str("component", "matchadmin").
		Str("match_id", s.matchID).
		Logger()

	if err := s.checkFinalizeGate(); err != nil {
		logger.Info().Err(err).Str("decision", "rejected").Msg("Finalize gate rejected")
		s.toasts.Error(err.Error())
		s.record(ctx, "match.finalize", "rejected", nil, nil, err.Error())
		return err
	}

	if err := s.api.Notify(ctx, s.matchID); err != nil {
		logger.Error().Err(err).Msg("Notify call failed")
		s.toasts.Error("Could not notify the players")
		s.record(ctx, "match.finalize", "rolled_back", nil, nil, err.Error())
		return fmt.Errorf("notify match %s: %w", s.matchID, err)
	}

	logger.Info().Str("decision", "notified").Msg("Match finalized and players notified")
	s.toasts.Success("Players notified")
	s.record(ctx, "match.finalize", "confirmed", nil, nil, "")
	return nil
}

// checkFinalizeGate verifies the four preconditions in order: at least one
// team, an empty unassigned pool, a position for every assigned player, and
// a finished result.
func (s *Session) checkFinalizeGate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teams.Count() == 0 {
		return ErrNoTeams
	}
	if pool := s.teams.UnassignedPool(s.roster.Attending()); len(pool) > 0 {
		return fmt.Errorf("%w (%d unassigned)", ErrUnassignedPlayers, len(pool))
	}
	if missing := s.teams.MissingPositions(); len(missing) > 0 {
		return fmt.Errorf("%w (%d without position)", ErrMissingPositions, len(missing))
	}
	if !s.ledger.Finished() {
		return ErrResultNotFinished
	}
	return nil
}
